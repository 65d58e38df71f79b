package poscache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/luckboy/neurina/internal/chessx"
)

func TestCache(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "poscache-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	cache, err := Open(filepath.Join(tmpDir, "db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cache.Close()

	board := chessx.Initial()

	t.Run("MissOnEmptyCache", func(t *testing.T) {
		_, found, err := cache.Get(board)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if found {
			t.Errorf("expected a miss on an empty cache")
		}
	})

	t.Run("PutThenGet", func(t *testing.T) {
		mv, _ := chessx.ParseUCIMove("e2e4")
		entry := Entry{BestMove: mv, Scores: []float32{0.1, 0.2, 0.3}}
		if err := cache.Put(board, entry); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, found, err := cache.Get(board)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !found {
			t.Fatalf("expected a hit after Put")
		}
		if got.BestMove != mv {
			t.Errorf("expected best move %v, got %v", mv, got.BestMove)
		}
		if len(got.Scores) != 3 || got.Scores[1] != 0.2 {
			t.Errorf("unexpected scores: %v", got.Scores)
		}
	})
}
