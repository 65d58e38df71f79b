package tablebase

import "github.com/luckboy/neurina/internal/chessx"

// RootProbeAdapter narrows a Prober into the engine.RootProber shape
// (a single ProbeRootMove method), the seam spec.md's Syzygy
// integration plugs into.
type RootProbeAdapter struct {
	prober Prober
}

// NewRootProbeAdapter wraps prober (typically a SyzygyProber) for use as
// an engine.RootProber. The adapter calls only ProbeRoot, which
// SyzygyProber does not cache.
func NewRootProbeAdapter(prober Prober) *RootProbeAdapter {
	return &RootProbeAdapter{prober: prober}
}

func (a *RootProbeAdapter) ProbeRootMove(b chessx.Board) (chessx.Move, bool) {
	if !a.prober.Available() {
		return chessx.Move{}, false
	}
	result := a.prober.ProbeRoot(b)
	if !result.Found {
		return chessx.Move{}, false
	}
	return result.Move, true
}
