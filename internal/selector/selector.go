// Package selector implements cmd/neurina-select's puzzle-thinning
// pass: it reads a raw Lichess puzzle CSV and writes out a random
// one-in-divider subset, so a training run doesn't have to replay the
// full multi-million-row database every epoch. Grounded on
// original_source/src/selector/selector.rs.
package selector

import (
	"fmt"
	"io"
	"math/rand"
	"sync"

	"github.com/luckboy/neurina/internal/chessx"
	"github.com/luckboy/neurina/internal/intr"
	"github.com/luckboy/neurina/internal/lichess"
	"github.com/luckboy/neurina/internal/puzzleindex"
)

// PuzzleCountToPrint matches selector.rs's Selector::PUZZLE_COUNT_TO_PRINT.
const PuzzleCountToPrint = 64 * 1024

// InterruptedError wraps the intr package's stop error, matching
// SelectorError::Interruption.
type InterruptedError struct{ Err error }

func (e *InterruptedError) Error() string { return "selector: interrupted: " + e.Err.Error() }
func (e *InterruptedError) Unwrap() error { return e.Err }

// Selector reads puzzles from a lichess.PuzzleReader and writes a
// random one-in-divider subset to a lichess.PuzzleWriter.
type Selector struct {
	checker intr.Checker

	mu      sync.Mutex
	writer  io.Writer
	printer Printer
	seen    *puzzleindex.Index
}

// New builds a Selector reporting progress through writer via printer.
func New(checker intr.Checker, writer io.Writer, printer Printer) *Selector {
	return &Selector{checker: checker, writer: writer, printer: printer}
}

func (s *Selector) IntrChecker() intr.Checker { return s.checker }

// SetSeenIndex installs a durable dedup index: a puzzle whose FEN was
// already written out by a prior run (or earlier in this one) is
// skipped instead of being written again. A nil index (the default)
// disables dedup.
func (s *Selector) SetSeenIndex(idx *puzzleindex.Index) { s.seen = idx }

func (s *Selector) print(puzzleCount uint64, isDone bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.printer.Print(s.writer, puzzleCount, isDone); err != nil {
		return err
	}
	if f, ok := s.writer.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Select streams every puzzle reader yields, writing exactly one puzzle
// out of every divider consecutive ones (the chosen offset re-rolled at
// the start of each group of divider puzzles) to w, matching
// selector.rs's Select::select.
func (s *Selector) Select(reader *lichess.PuzzleReader, w io.Writer, divider uint64) error {
	if divider == 0 {
		return fmt.Errorf("selector: divider is zero")
	}
	puzzleWriter, err := lichess.NewPuzzleWriter(w)
	if err != nil {
		return err
	}

	var puzzleCount, i uint64
	for {
		if err := s.checker.Check(); err != nil {
			return &InterruptedError{Err: err}
		}
		puzzle, ok := reader.Next()
		if !ok {
			break
		}
		if puzzleCount%PuzzleCountToPrint == 0 {
			if err := s.print(puzzleCount, false); err != nil {
				return err
			}
		}
		if puzzleCount%divider == 0 {
			i = rand.Uint64() % divider
		}
		if puzzleCount%divider == i {
			write := true
			if s.seen != nil {
				if b, err := chessx.BoardFromFEN(puzzle.FEN); err == nil {
					added, err := s.seen.MarkIfAbsent(b)
					if err != nil {
						return err
					}
					write = added
				}
			}
			if write {
				if err := puzzleWriter.WritePuzzle(puzzle); err != nil {
					return err
				}
			}
		}
		puzzleCount++
	}
	if err := reader.Err(); err != nil {
		return err
	}
	if err := s.print(puzzleCount, true); err != nil {
		return err
	}
	return puzzleWriter.Close()
}
