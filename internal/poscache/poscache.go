// Package poscache is a durable cache of neural policy evaluations,
// keyed by FEN, so a repeated position (transpositions, re-searched
// roots) skips the network forward pass. Grounded on
// internal/storage.Storage's badger.Open/View/Update/txn.Get/Set shape,
// generalized from a UserPreferences/GameStats JSON blob store to a
// large-cardinality position cache with gob-encoded values.
package poscache

import (
	"bytes"
	"encoding/gob"

	"github.com/dgraph-io/badger/v4"

	"github.com/luckboy/neurina/internal/chessx"
)

// Entry is a cached policy evaluation: the column of per-move scores
// the network's output layer produced for a board, plus the move that
// scored highest.
type Entry struct {
	BestMove chessx.Move
	Scores   []float32
}

// Cache wraps a badger database keyed by FEN string.
type Cache struct {
	db *badger.DB
}

// Open opens (creating if absent) a badger database at dir.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// Get looks up board's FEN, reporting ok=false on a cache miss.
func (c *Cache) Get(board chessx.Board) (Entry, bool, error) {
	var entry Entry
	found := false
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(board.FEN()))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&entry)
		})
	})
	return entry, found, err
}

// Put stores entry under board's FEN, overwriting any existing entry.
func (c *Cache) Put(board chessx.Board, entry Entry) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&entry); err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(board.FEN()), buf.Bytes())
	})
}
