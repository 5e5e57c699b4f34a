// Package store persists user preferences in a Badger database.
package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

const prefsPrefix = "prefs:"

// Preferences is a small string key-value store.
type Preferences struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens the preference database in dir. An empty dir keeps everything
// in memory.
func Open(dir string, logger *slog.Logger) (*Preferences, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.SyncWrites = true
	}
	opts.Logger = nil // Badger's own logger is too chatty

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open preference db: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("preference store opened", slog.String("dir", dir), slog.Bool("in_memory", dir == ""))
	return &Preferences{db: db, logger: logger}, nil
}

// OpenInMemory opens a store that is discarded on Close.
func OpenInMemory() (*Preferences, error) {
	return Open("", nil)
}

// Get returns the value of key, or "" when it is not set.
func (p *Preferences) Get(key string) (string, error) {
	var value string
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefsPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if err != nil {
		return "", fmt.Errorf("get preference %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key.
func (p *Preferences) Set(key, value string) error {
	err := p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefsPrefix+key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set preference %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (p *Preferences) Delete(key string) error {
	err := p.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(prefsPrefix + key))
	})
	if err != nil {
		return fmt.Errorf("delete preference %q: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (p *Preferences) Close() error {
	return p.db.Close()
}
