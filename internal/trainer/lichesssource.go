package trainer

import (
	"strings"

	"github.com/luckboy/neurina/internal/chessx"
	"github.com/luckboy/neurina/internal/lichess"
)

// LichessDataSource adapts a lichess.PuzzleReader into a DataSource,
// turning each puzzle's FEN and move list into a DataSample the way
// original_source/src/trainer/lichess_puzzles.rs's Iterator impl does:
// the puzzle's first move is played to reach the position the player is
// actually asked to solve from, and the remaining moves become the
// sample's expected continuation. A puzzle whose FEN or moves don't
// parse, or whose moves turn out illegal, yields no sample but is not a
// fatal error (matching that file's Ok(None) cases).
type LichessDataSource struct {
	reader  *lichess.PuzzleReader
	current *DataSample
}

// NewLichessDataSource wraps reader.
func NewLichessDataSource(reader *lichess.PuzzleReader) *LichessDataSource {
	return &LichessDataSource{reader: reader}
}

func (s *LichessDataSource) Next() bool {
	puzzle, ok := s.reader.Next()
	if !ok {
		s.current = nil
		return false
	}
	s.current = sampleFromPuzzle(puzzle)
	return true
}

func (s *LichessDataSource) Sample() (*DataSample, bool) {
	if s.current == nil {
		return nil, false
	}
	return s.current, true
}

func (s *LichessDataSource) Err() error { return s.reader.Err() }

func sampleFromPuzzle(puzzle lichess.Puzzle) *DataSample {
	chain, err := chessx.NewChainFromFEN(puzzle.FEN)
	if err != nil {
		return nil
	}
	fields := strings.Fields(puzzle.Moves)
	if len(fields) == 0 {
		return nil
	}
	first, ok := chessx.ParseUCIMove(fields[0])
	if !ok {
		return nil
	}
	if err := chain.Push(first); err != nil {
		return nil
	}
	board := chain.Last()

	moves := make([]chessx.Move, 0, len(fields)-1)
	for _, s := range fields[1:] {
		mv, ok := chessx.ParseUCIMove(s)
		if !ok {
			return nil
		}
		if err := chain.Push(mv); err != nil {
			return nil
		}
		moves = append(moves, mv)
	}
	return &DataSample{Board: board, Moves: moves}
}
