package trainer

import (
	"strings"
	"testing"

	"github.com/luckboy/neurina/internal/lichess"
)

const samplePuzzleCSV = `PuzzleId,FEN,Moves,Rating,RatingDeviation,Popularity,NbPlays,Themes,GameUrl,OpeningTags
00sHx,q3k1nr/1pp1nQpp/3p4/1P2p3/4P3/B1PP1b2/B5PP/5K2 b k - 0 17,e8d7 a2e6 d7d8 f7f8,1760,80,83,72,mate mateIn2 middlegame short,https://lichess.org/yyznGmXs/black#34,Italian_Game Italian_Game_Classical_Variation
`

func TestLichessDataSource(t *testing.T) {
	reader, err := lichess.NewPuzzleReader(strings.NewReader(samplePuzzleCSV))
	if err != nil {
		t.Fatalf("NewPuzzleReader: %v", err)
	}
	src := NewLichessDataSource(reader)

	if !src.Next() {
		t.Fatalf("expected one sample, got none (Err: %v)", src.Err())
	}
	sample, ok := src.Sample()
	if !ok {
		t.Fatalf("expected Sample to report ok=true")
	}
	if len(sample.Moves) != 3 {
		t.Fatalf("expected 3 continuation moves, got %d", len(sample.Moves))
	}
	if sample.Board.Side() != 0 {
		// After e8d7 (black king moves), it is White to move.
		t.Errorf("expected White to move after the puzzle's first move")
	}

	if src.Next() {
		t.Fatalf("expected exactly one sample from a one-row CSV")
	}
	if err := src.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
}
