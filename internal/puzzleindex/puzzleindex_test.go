package puzzleindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/luckboy/neurina/internal/chessx"
)

func TestIndex(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "puzzleindex-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	idx, err := Open(filepath.Join(tmpDir, "db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()

	board := chessx.Initial()

	t.Run("NotSeenInitially", func(t *testing.T) {
		seen, err := idx.Seen(board)
		if err != nil {
			t.Fatalf("Seen: %v", err)
		}
		if seen {
			t.Errorf("expected board to be unseen")
		}
	})

	t.Run("MarkIfAbsentAddsOnce", func(t *testing.T) {
		added, err := idx.MarkIfAbsent(board)
		if err != nil {
			t.Fatalf("MarkIfAbsent: %v", err)
		}
		if !added {
			t.Errorf("expected first MarkIfAbsent to add the board")
		}
		added, err = idx.MarkIfAbsent(board)
		if err != nil {
			t.Fatalf("MarkIfAbsent: %v", err)
		}
		if added {
			t.Errorf("expected second MarkIfAbsent to report already-seen")
		}
	})

	t.Run("SeenAfterMark", func(t *testing.T) {
		seen, err := idx.Seen(board)
		if err != nil {
			t.Fatalf("Seen: %v", err)
		}
		if !seen {
			t.Errorf("expected board to be seen after Mark")
		}
	})
}
