// Package search implements the middle searcher (spec component C5) and
// the root/"one-"searcher (spec component C6), grounded on
// original_source/src/engine/{middle_searcher.rs,one_searcher.rs,
// search.rs}.
package search

import "github.com/luckboy/neurina/internal/chessx"

// Outcome score bands, per spec.md §9 "Outcome bands" (the explicit
// constant set is used rather than original_source's partially-defined
// ones; see DESIGN.md's Open Questions).
const (
	MaxEval     = 32767
	MinEval     = -MaxEval
	MaxMate     = MaxEval - 384
	MinMate     = -MaxMate
	MaxMidMate  = MaxEval - 256
	MinMidMate  = -MaxMidMate
	MaxRootMate = MaxEval - 128
	MinRootMate = -MaxRootMate
)

// materialValue gives each classical piece value used by the fallback
// static evaluator below.
var materialValue = map[chessx.Piece]int{
	chessx.Pawn:   100,
	chessx.Knight: 320,
	chessx.Bishop: 330,
	chessx.Rook:   500,
	chessx.Queen:  900,
	chessx.King:   0,
}

// StaticEval is the minimal classical evaluation function
// (evaluation_fn in spec.md §4.5) used only for the rare leaf that, after
// the neural tail replay, still has legal moves left and is not an
// outcome: a material count from the side to move's perspective. The
// network is the primary evaluator everywhere else; this fallback never
// participates in training and exists purely so middle search always
// returns a number.
func StaticEval(b chessx.Board) int {
	total := 0
	for sq := 0; sq < 64; sq++ {
		piece, color, ok := b.PieceAt(sq)
		if !ok {
			continue
		}
		v := materialValue[piece]
		if color == b.Side() {
			total += v
		} else {
			total -= v
		}
	}
	return total
}

// MoveCountToCheckmate estimates the number of half-moves (plies) until
// mate implied by a decisive value, for the UCI "go mate N" stopping
// condition. original_source's Search::move_count_to_checkmate is not
// present in the filtered pack (search.rs's trait omits it); this
// estimates plies-to-mate as the distance from value to MaxEval/MinEval.
// Values outside the root-mate band report false.
func MoveCountToCheckmate(value, depth int) (int, bool) {
	switch {
	case value >= MaxRootMate:
		return MaxEval - value, true
	case value <= MinRootMate:
		return MaxEval + value, true
	default:
		return 0, false
	}
}
