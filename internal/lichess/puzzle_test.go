package lichess

import (
	"bytes"
	"strings"
	"testing"
)

// Sample rows are from https://database.lichess.org, matching the
// fixture original_source/src/selector/selector/tests.rs embeds.
const sampleCSV = `PuzzleId,FEN,Moves,Rating,RatingDeviation,Popularity,NbPlays,Themes,GameUrl,OpeningTags
00sHx,q3k1nr/1pp1nQpp/3p4/1P2p3/4P3/B1PP1b2/B5PP/5K2 b k - 0 17,e8d7 a2e6 d7d8 f7f8,1760,80,83,72,mate mateIn2 middlegame short,https://lichess.org/yyznGmXs/black#34,Italian_Game Italian_Game_Classical_Variation
00sJ9,r3r1k1/p4ppp/2p2n2/1p6/3P1qb1/2NQR3/PPB2PP1/R1B3K1 w - - 5 18,e3g3 e8e1 g1h2 e1c1 a1c1 f4h6 h2g1 h6c1,2671,105,87,325,advantage attraction fork middlegame sacrifice veryLong,https://lichess.org/gyFeQsOE#35,French_Defense French_Defense_Exchange_Variation
`

func TestPuzzleReader(t *testing.T) {
	pr, err := NewPuzzleReader(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("NewPuzzleReader: %v", err)
	}

	var puzzles []Puzzle
	for {
		p, ok := pr.Next()
		if !ok {
			break
		}
		puzzles = append(puzzles, p)
	}
	if err := pr.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if len(puzzles) != 2 {
		t.Fatalf("expected 2 puzzles, got %d", len(puzzles))
	}
	if puzzles[0].PuzzleID != "00sHx" {
		t.Errorf("unexpected PuzzleId: %q", puzzles[0].PuzzleID)
	}
	if puzzles[1].Moves != "e3g3 e8e1 g1h2 e1c1 a1c1 f4h6 h2g1 h6c1" {
		t.Errorf("unexpected Moves: %q", puzzles[1].Moves)
	}
}

func TestPuzzleReaderMaxCount(t *testing.T) {
	pr, err := NewPuzzleReader(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("NewPuzzleReader: %v", err)
	}
	pr.SetMaxCount(1)

	count := 0
	for {
		if _, ok := pr.Next(); !ok {
			break
		}
		count++
	}
	if count != 1 {
		t.Errorf("expected exactly 1 puzzle under max count, got %d", count)
	}
}

func TestPuzzleWriterRoundTrip(t *testing.T) {
	pr, err := NewPuzzleReader(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("NewPuzzleReader: %v", err)
	}
	p, ok := pr.Next()
	if !ok {
		t.Fatalf("expected at least one puzzle")
	}

	var buf bytes.Buffer
	pw, err := NewPuzzleWriter(&buf)
	if err != nil {
		t.Fatalf("NewPuzzleWriter: %v", err)
	}
	if err := pw.WritePuzzle(p); err != nil {
		t.Fatalf("WritePuzzle: %v", err)
	}
	if err := pw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	pr2, err := NewPuzzleReader(&buf)
	if err != nil {
		t.Fatalf("NewPuzzleReader (round trip): %v", err)
	}
	p2, ok := pr2.Next()
	if !ok {
		t.Fatalf("expected the written puzzle to read back")
	}
	if p2 != p {
		t.Errorf("round-tripped puzzle differs: got %+v, want %+v", p2, p)
	}
}
