package tablebase

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/luckboy/neurina/internal/chessx"
)

// LichessProber uses the Lichess tablebase API for online lookups.
// Note: this requires network access and has rate limits; it is the
// only Prober backend this port implements (see DESIGN.md).
type LichessProber struct {
	client    *http.Client
	maxPieces int
}

// NewLichessProber creates a new Lichess-based tablebase prober.
func NewLichessProber() *LichessProber {
	return &LichessProber{
		client:    &http.Client{Timeout: 5 * time.Second},
		maxPieces: 7, // Lichess supports up to 7-piece tablebases
	}
}

// lichessResponse is the Lichess tablebase API response shape.
type lichessResponse struct {
	Category string `json:"category"` // "win", "draw", "maybe-win", "maybe-draw", "loss"
	DTZ      int    `json:"dtz"`
	Moves    []struct {
		UCI      string `json:"uci"`
		Category string `json:"category"`
		DTZ      int    `json:"dtz"`
	} `json:"moves"`
}

func (lp *LichessProber) Probe(b chessx.Board) ProbeResult {
	if CountPieces(b) > lp.maxPieces {
		return ProbeResult{Found: false}
	}
	result, ok := lp.query(b)
	if !ok {
		return ProbeResult{Found: false}
	}
	return ProbeResult{Found: true, WDL: categoryToWDL(result.Category), DTZ: result.DTZ}
}

func (lp *LichessProber) ProbeRoot(b chessx.Board) RootResult {
	if CountPieces(b) > lp.maxPieces {
		return RootResult{Found: false}
	}
	result, ok := lp.query(b)
	if !ok || len(result.Moves) == 0 {
		return RootResult{Found: false}
	}
	best := result.Moves[0]
	mv, ok := matchLegalMove(b, best.UCI)
	if !ok {
		return RootResult{Found: false}
	}
	return RootResult{Found: true, Move: mv, WDL: categoryToWDL(best.Category), DTZ: best.DTZ}
}

func (lp *LichessProber) query(b chessx.Board) (lichessResponse, bool) {
	fen := strings.ReplaceAll(b.FEN(), " ", "_")
	url := fmt.Sprintf("https://tablebase.lichess.ovh/standard?fen=%s", fen)
	resp, err := lp.client.Get(url)
	if err != nil {
		return lichessResponse{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return lichessResponse{}, false
	}

	var result lichessResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return lichessResponse{}, false
	}
	return result, true
}

func (lp *LichessProber) MaxPieces() int { return lp.maxPieces }

func (lp *LichessProber) Available() bool { return true } // Always available if network is up

func categoryToWDL(category string) WDL {
	switch category {
	case "win":
		return WDLWin
	case "maybe-win":
		return WDLCursedWin
	case "draw":
		return WDLDraw
	case "maybe-draw", "cursed-win", "blessed-loss":
		return WDLDraw // Treat ambiguous as draw for safety
	case "loss":
		return WDLLoss
	default:
		return WDLDraw
	}
}

// matchLegalMove resolves a UCI move string returned by the API against
// the board's actual legal moves, so a malformed or now-illegal
// suggestion from the API never reaches the caller.
func matchLegalMove(b chessx.Board, uci string) (chessx.Move, bool) {
	mv, ok := chessx.ParseUCIMove(uci)
	if !ok {
		return chessx.Move{}, false
	}
	for _, legal := range chessx.LegalMovesFrom(b) {
		if legal.From == mv.From && legal.To == mv.To && legal.Promo == mv.Promo {
			return legal, true
		}
	}
	return chessx.Move{}, false
}
