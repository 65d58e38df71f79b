// Package puzzleindex is a durable seen-position dedup store for
// cmd/neurina-select: a puzzle-selection pass over a large game
// database should not emit two training samples that start from the
// same board, so every accepted board's FEN is recorded here first.
// Adapted from internal/storage's badger.Open/View/Update shape
// (internal/book's polyglot opening-book *feature* has no role in this
// domain, but its file-format-reader pattern — keyed binary lookup
// loaded once into memory — has no use here either, since this index
// must be durable across cmd/neurina-select runs, not rebuilt each
// time from a static book file).
package puzzleindex

import (
	"github.com/dgraph-io/badger/v4"

	"github.com/luckboy/neurina/internal/chessx"
)

// Index wraps a badger database of seen board FENs.
type Index struct {
	db *badger.DB
}

// Open opens (creating if absent) a badger database at dir.
func Open(dir string) (*Index, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Index{db: db}, nil
}

func (idx *Index) Close() error { return idx.db.Close() }

// Seen reports whether board's FEN has already been recorded.
func (idx *Index) Seen(board chessx.Board) (bool, error) {
	seen := false
	err := idx.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(board.FEN()))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		seen = true
		return nil
	})
	return seen, err
}

// Mark records board's FEN as seen.
func (idx *Index) Mark(board chessx.Board) error {
	return idx.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(board.FEN()), []byte{1})
	})
}

// MarkIfAbsent records board's FEN as seen and reports true if it was
// newly added (false if already present), combining Seen and Mark into
// one transaction to avoid a check-then-act race between callers.
func (idx *Index) MarkIfAbsent(board chessx.Board) (bool, error) {
	added := false
	err := idx.db.Update(func(txn *badger.Txn) error {
		key := []byte(board.FEN())
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		added = true
		return txn.Set(key, []byte{1})
	})
	return added, err
}
