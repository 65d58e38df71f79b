// Package lichess reads and writes the Lichess puzzle database CSV
// format (https://database.lichess.org), grounded on
// original_source/src/shared/lichess_puzzle.rs and
// original_source/src/selector/lichess_puzzles.rs. No CSV library
// appears anywhere in the retrieved pack, so this package uses the
// standard library's encoding/csv directly (a documented stdlib
// exception, see DESIGN.md).
package lichess

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Puzzle is one row of a Lichess puzzle CSV export, matching
// shared/lichess_puzzle.rs's LichessPuzzle field-for-field.
type Puzzle struct {
	PuzzleID        string
	FEN             string
	Moves           string
	Rating          string
	RatingDeviation string
	Popularity      string
	NbPlays         string
	Themes          string
	GameURL         string
	OpeningTags     string
}

var columns = []string{
	"PuzzleId", "FEN", "Moves", "Rating", "RatingDeviation",
	"Popularity", "NbPlays", "Themes", "GameUrl", "OpeningTags",
}

func (p *Puzzle) record() []string {
	return []string{
		p.PuzzleID, p.FEN, p.Moves, p.Rating, p.RatingDeviation,
		p.Popularity, p.NbPlays, p.Themes, p.GameURL, p.OpeningTags,
	}
}

func puzzleFromRecord(header map[string]int, rec []string) (Puzzle, error) {
	field := func(name string) (string, error) {
		i, ok := header[name]
		if !ok || i >= len(rec) {
			return "", fmt.Errorf("lichess: missing column %q", name)
		}
		return rec[i], nil
	}
	var p Puzzle
	var err error
	if p.PuzzleID, err = field("PuzzleId"); err != nil {
		return Puzzle{}, err
	}
	if p.FEN, err = field("FEN"); err != nil {
		return Puzzle{}, err
	}
	if p.Moves, err = field("Moves"); err != nil {
		return Puzzle{}, err
	}
	if p.Rating, err = field("Rating"); err != nil {
		return Puzzle{}, err
	}
	if p.RatingDeviation, err = field("RatingDeviation"); err != nil {
		return Puzzle{}, err
	}
	if p.Popularity, err = field("Popularity"); err != nil {
		return Puzzle{}, err
	}
	if p.NbPlays, err = field("NbPlays"); err != nil {
		return Puzzle{}, err
	}
	if p.Themes, err = field("Themes"); err != nil {
		return Puzzle{}, err
	}
	if p.GameURL, err = field("GameUrl"); err != nil {
		return Puzzle{}, err
	}
	if p.OpeningTags, err = field("OpeningTags"); err != nil {
		return Puzzle{}, err
	}
	return p, nil
}

// PuzzleReader iterates the rows of a Lichess puzzle CSV, matching
// LichessPuzzleReader/LichessPuzzles in both lichess_puzzles.rs files.
type PuzzleReader struct {
	r        *csv.Reader
	closer   io.Closer
	header   map[string]int
	count    uint64
	maxCount uint64
	hasMax   bool
	err      error
}

// NewPuzzleReader wraps r, expecting a header row as the first record.
func NewPuzzleReader(r io.Reader) (*PuzzleReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rec, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("lichess: reading header: %w", err)
	}
	header := make(map[string]int, len(rec))
	for i, name := range rec {
		header[name] = i
	}
	return &PuzzleReader{r: cr, header: header}, nil
}

// OpenPuzzleReader opens path and wraps it in a PuzzleReader, matching
// LichessPuzzleReader::from_path.
func OpenPuzzleReader(path string) (*PuzzleReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lichess: %w", err)
	}
	pr, err := NewPuzzleReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	pr.closer = f
	return pr, nil
}

// SetMaxCount bounds the number of puzzles Next will yield, matching
// the max_count argument to puzzles() in both Rust readers.
func (pr *PuzzleReader) SetMaxCount(maxCount uint64) { pr.maxCount, pr.hasMax = maxCount, true }

// Next reads the next puzzle. ok is false once the source is exhausted
// or the max count has been reached; callers must check Err afterward.
func (pr *PuzzleReader) Next() (puzzle Puzzle, ok bool) {
	if pr.err != nil {
		return Puzzle{}, false
	}
	if pr.hasMax && pr.count >= pr.maxCount {
		return Puzzle{}, false
	}
	rec, err := pr.r.Read()
	if err == io.EOF {
		return Puzzle{}, false
	}
	if err != nil {
		pr.err = fmt.Errorf("lichess: csv: %w", err)
		return Puzzle{}, false
	}
	p, err := puzzleFromRecord(pr.header, rec)
	if err != nil {
		pr.err = err
		return Puzzle{}, false
	}
	pr.count++
	return p, true
}

// Err returns the first fatal error Next encountered, if any.
func (pr *PuzzleReader) Err() error { return pr.err }

// Close releases the underlying file, if OpenPuzzleReader opened one.
func (pr *PuzzleReader) Close() error {
	if pr.closer != nil {
		return pr.closer.Close()
	}
	return nil
}

// PuzzleWriter serializes puzzles back to CSV, matching
// LichessPuzzleWriter in selector/lichess_puzzles.rs.
type PuzzleWriter struct {
	w      *csv.Writer
	closer io.Closer
}

// NewPuzzleWriter wraps w, writing the header row immediately.
func NewPuzzleWriter(w io.Writer) (*PuzzleWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return nil, fmt.Errorf("lichess: writing header: %w", err)
	}
	return &PuzzleWriter{w: cw}, nil
}

// CreatePuzzleWriter creates path and wraps it in a PuzzleWriter,
// matching LichessPuzzleWriter::from_path.
func CreatePuzzleWriter(path string) (*PuzzleWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("lichess: %w", err)
	}
	pw, err := NewPuzzleWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	pw.closer = f
	return pw, nil
}

// WritePuzzle serializes one puzzle row.
func (pw *PuzzleWriter) WritePuzzle(p Puzzle) error {
	if err := pw.w.Write(p.record()); err != nil {
		return fmt.Errorf("lichess: csv: %w", err)
	}
	return nil
}

// Close flushes buffered records and releases the underlying file, if
// CreatePuzzleWriter opened one.
func (pw *PuzzleWriter) Close() error {
	pw.w.Flush()
	err := pw.w.Error()
	if pw.closer != nil {
		if cerr := pw.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
