package selector

import (
	"bytes"
	"strings"
	"testing"

	"github.com/luckboy/neurina/internal/intr"
	"github.com/luckboy/neurina/internal/lichess"
)

// Sample rows are from https://database.lichess.org, matching
// original_source/src/selector/selector/tests.rs's fixture.
const sampleCSV = `PuzzleId,FEN,Moves,Rating,RatingDeviation,Popularity,NbPlays,Themes,GameUrl,OpeningTags
00sHx,q3k1nr/1pp1nQpp/3p4/1P2p3/4P3/B1PP1b2/B5PP/5K2 b k - 0 17,e8d7 a2e6 d7d8 f7f8,1760,80,83,72,mate mateIn2 middlegame short,https://lichess.org/yyznGmXs/black#34,Italian_Game Italian_Game_Classical_Variation
00sJ9,r3r1k1/p4ppp/2p2n2/1p6/3P1qb1/2NQR3/PPB2PP1/R1B3K1 w - - 5 18,e3g3 e8e1 g1h2 e1c1 a1c1 f4h6 h2g1 h6c1,2671,105,87,325,advantage attraction fork middlegame sacrifice veryLong,https://lichess.org/gyFeQsOE#35,French_Defense French_Defense_Exchange_Variation
00sJb,Q1b2r1k/p2np2p/5bp1/q7/5P2/4B3/PPP3PP/2KR1B1R w - - 1 17,d1d7 a5e1 d7d1 e1e3 c1b1 e3b6,2235,76,97,64,advantage fork long,https://lichess.org/kiuvTFoE#33,Sicilian_Defense Sicilian_Defense_Dragon_Variation
00sO1,1k1r4/pp3pp1/2p1p3/4b3/P3n1P1/8/KPP2PN1/3rBR1R b - - 2 31,b8c7 e1a5 b7b6 f1d1,998,85,94,293,advantage discoveredAttack master middlegame short,https://lichess.org/vsfFkG0s/black#62,
`

func TestSelectorSelectWithoutPanic(t *testing.T) {
	for _, divider := range []uint64{2, 3} {
		reader, err := lichess.NewPuzzleReader(strings.NewReader(sampleCSV))
		if err != nil {
			t.Fatalf("NewPuzzleReader: %v", err)
		}
		var progress, out bytes.Buffer
		sel := New(intr.Empty{}, &progress, EmptyPrinter{})
		if err := sel.Select(reader, &out, divider); err != nil {
			t.Fatalf("Select (divider=%d): %v", divider, err)
		}
	}
}

func TestSelectorSelectRejectsZeroDivider(t *testing.T) {
	reader, err := lichess.NewPuzzleReader(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("NewPuzzleReader: %v", err)
	}
	var progress, out bytes.Buffer
	sel := New(intr.Empty{}, &progress, EmptyPrinter{})
	if err := sel.Select(reader, &out, 0); err == nil {
		t.Errorf("expected an error for a zero divider")
	}
}
