package tablebase

import (
	"log"

	"github.com/luckboy/neurina/internal/chessx"
)

// SyzygyProber is the engine's endgame-tablebase probe seam. This port
// has no pure-Go Syzygy WDL/DTZ file reader (see DESIGN.md), so every
// probe is served through the Lichess tablebase API (Probe results are
// cached, ProbeRoot results are not);
// path is kept only so the UCI "SyzygyPath" option has somewhere to
// land, matching the original's configuration surface.
type SyzygyProber struct {
	path   string
	online *CachedProber
}

// NewSyzygyProber creates a Syzygy prober. path is recorded for
// diagnostics but not read from locally.
func NewSyzygyProber(path string) *SyzygyProber {
	sp := &SyzygyProber{path: path, online: NewCachedLichessProber()}
	log.Printf("[Syzygy] local tablebase reading unavailable; probing %s via Lichess API", path)
	return sp
}

// SetPath updates the recorded tablebase path.
func (sp *SyzygyProber) SetPath(path string) {
	sp.path = path
	log.Printf("[Syzygy] local tablebase reading unavailable; probing %s via Lichess API", path)
}

// Path returns the currently configured tablebase path.
func (sp *SyzygyProber) Path() string { return sp.path }

func (sp *SyzygyProber) Probe(b chessx.Board) ProbeResult { return sp.online.Probe(b) }

func (sp *SyzygyProber) ProbeRoot(b chessx.Board) RootResult { return sp.online.ProbeRoot(b) }

// MaxPieces returns the maximum number of pieces supported.
func (sp *SyzygyProber) MaxPieces() int { return 7 } // Lichess supports 7-piece

// Available returns true: the Lichess fallback is always reachable.
func (sp *SyzygyProber) Available() bool { return true }

// CacheHitRate returns the online-probe cache hit rate.
func (sp *SyzygyProber) CacheHitRate() float64 { return sp.online.HitRate() }

// ClearCache clears the online-probe cache.
func (sp *SyzygyProber) ClearCache() { sp.online.Clear() }
