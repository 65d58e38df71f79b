package tablebase

import (
	"testing"

	"github.com/luckboy/neurina/internal/chessx"
)

func TestNoopProber(t *testing.T) {
	prober := NoopProber{}

	if prober.Available() {
		t.Error("NoopProber should not be available")
	}

	if prober.MaxPieces() != 0 {
		t.Errorf("NoopProber MaxPieces should be 0, got %d", prober.MaxPieces())
	}

	b := chessx.Initial()
	result := prober.Probe(b)
	if result.Found {
		t.Error("NoopProber should not find anything")
	}

	rootResult := prober.ProbeRoot(b)
	if rootResult.Found {
		t.Error("NoopProber ProbeRoot should not find anything")
	}
}

func TestCountPieces(t *testing.T) {
	b := chessx.Initial()
	count := CountPieces(b)

	// Starting position has 32 pieces
	if count != 32 {
		t.Errorf("Starting position should have 32 pieces, got %d", count)
	}
}

func TestWDLToScore(t *testing.T) {
	tests := []struct {
		wdl      WDL
		ply      int
		positive bool // Should score be positive (winning)?
	}{
		{WDLWin, 0, true},
		{WDLWin, 10, true},
		{WDLCursedWin, 0, true},
		{WDLDraw, 0, false},
		{WDLBlessedLoss, 0, false},
		{WDLLoss, 0, false},
	}

	for _, tc := range tests {
		score := WDLToScore(tc.wdl, tc.ply)
		isPositive := score > 0

		if tc.positive && !isPositive {
			t.Errorf("WDL %d at ply %d should give positive score, got %d", tc.wdl, tc.ply, score)
		}
		if !tc.positive && tc.wdl != WDLDraw && isPositive {
			t.Errorf("WDL %d at ply %d should give non-positive score, got %d", tc.wdl, tc.ply, score)
		}
	}
}

func TestCachedProberHitRate(t *testing.T) {
	cp := NewCachedProber(NoopProber{}, 10)
	b := chessx.Initial()

	cp.Probe(b)
	cp.Probe(b)

	if got := cp.CacheSize(); got != 1 {
		t.Errorf("expected one cache entry, got %d", got)
	}
	if rate := cp.HitRate(); rate <= 0 {
		t.Errorf("expected a positive hit rate after a repeated probe, got %v", rate)
	}

	cp.Clear()
	if got := cp.CacheSize(); got != 0 {
		t.Errorf("expected Clear to empty the cache, got %d entries", got)
	}
}
