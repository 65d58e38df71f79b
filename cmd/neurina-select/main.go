// Command neurina-select thins a raw Lichess puzzle database down to a
// random one-in-divider subset, grounded on
// original_source/src/bin/neurina-select.rs.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/luckboy/neurina/internal/intr"
	"github.com/luckboy/neurina/internal/lichess"
	"github.com/luckboy/neurina/internal/puzzleindex"
	"github.com/luckboy/neurina/internal/selector"
)

var (
	lichessPuzzles  = flag.String("lichess-puzzles", "", "Lichess puzzle database CSV file")
	maxLichessCount = flag.Uint64("max-lichess-puzzles", 0, "maximal number of puzzles to read (0 = unlimited)")
	output          = flag.String("output", "", "output CSV file")
	divider         = flag.Uint64("divider", 0, "keep one puzzle out of every divider")
	seenIndexDir    = flag.String("seen-index", "", "directory for the durable seen-puzzle dedup index (disabled if empty)")
)

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	flag.Parse()

	if *divider == 0 {
		fatalf("neurina-select: divider is zero")
	}
	if *lichessPuzzles == "" {
		fatalf("neurina-select: -lichess-puzzles is required")
	}
	if *output == "" {
		fatalf("neurina-select: -output is required")
	}

	checker := intr.NewCtrlC()
	defer checker.Close()
	sel := selector.New(checker, os.Stdout, selector.DefaultPrinter{})

	if *seenIndexDir != "" {
		idx, err := puzzleindex.Open(*seenIndexDir)
		if err != nil {
			fatalf("neurina-select: opening seen-puzzle index: %v", err)
		}
		defer idx.Close()
		sel.SetSeenIndex(idx)
	}

	reader, err := lichess.OpenPuzzleReader(*lichessPuzzles)
	if err != nil {
		fatalf("neurina-select: %v", err)
	}
	defer reader.Close()
	if *maxLichessCount > 0 {
		reader.SetMaxCount(*maxLichessCount)
	}

	out, err := os.Create(*output)
	if err != nil {
		fatalf("neurina-select: %v", err)
	}
	defer out.Close()

	if err := sel.Select(reader, out, *divider); err != nil {
		fatalf("neurina-select: %v", err)
	}
}
