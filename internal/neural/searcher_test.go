package neural_test

import (
	"testing"

	"github.com/luckboy/neurina/internal/chessx"
	"github.com/luckboy/neurina/internal/encoding"
	"github.com/luckboy/neurina/internal/intr"
	"github.com/luckboy/neurina/internal/neural"
	"github.com/luckboy/neurina/internal/poscache"
	"github.com/luckboy/neurina/internal/trainer"
)

func newTestSearcher(t *testing.T) *neural.Searcher {
	t.Helper()
	encoder := encoding.New()
	factory := trainer.XavierNetFactory{HiddenWidth: 4}
	network := factory.Create(encoding.BoardRowCount, encoder.MoveRowCount())
	return neural.NewSearcher(network, encoder, intr.New())
}

func TestSearcherPopulatesCacheOnMiss(t *testing.T) {
	searcher := newTestSearcher(t)
	cache, err := poscache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("poscache.Open: %v", err)
	}
	defer cache.Close()
	searcher.SetCache(cache)

	board := chessx.Initial()
	pvs := [][]chessx.Move{{}}
	if err := searcher.Search(board, pvs, 1); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(pvs[0]) != 1 {
		t.Fatalf("expected a one-move PV extension, got %d moves", len(pvs[0]))
	}

	entry, ok, err := cache.Get(board)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected Search to populate the position cache for the root board")
	}
	if entry.BestMove != pvs[0][0] {
		t.Errorf("cached move %v does not match the move chosen by Search %v", entry.BestMove, pvs[0][0])
	}
}

func TestSearcherReusesCachedMoveOnHit(t *testing.T) {
	searcher := newTestSearcher(t)
	cache, err := poscache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("poscache.Open: %v", err)
	}
	defer cache.Close()
	searcher.SetCache(cache)

	board := chessx.Initial()
	firstPVs := [][]chessx.Move{{}}
	if err := searcher.Search(board, firstPVs, 1); err != nil {
		t.Fatalf("Search (prime cache): %v", err)
	}

	secondPVs := [][]chessx.Move{{}}
	if err := searcher.Search(board, secondPVs, 1); err != nil {
		t.Fatalf("Search (cache hit): %v", err)
	}
	if secondPVs[0][0] != firstPVs[0][0] {
		t.Errorf("expected a cache hit to reproduce the same move, got %v vs %v", secondPVs[0][0], firstPVs[0][0])
	}
}

func TestSearcherWithoutCacheStillWorks(t *testing.T) {
	searcher := newTestSearcher(t)
	board := chessx.Initial()
	pvs := [][]chessx.Move{{}}
	if err := searcher.Search(board, pvs, 1); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(pvs[0]) != 1 {
		t.Fatalf("expected a one-move PV extension, got %d moves", len(pvs[0]))
	}
}
