// Package badgerstore provides a shelf.Provider backed by BadgerDB.
//
// The whole catalog document is stored under a single key, so every write
// is one Badger transaction and therefore atomic.
package badgerstore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Key is the Badger key holding the catalog document.
const Key = "shelf/catalog"

// Provider stores the catalog document in a BadgerDB instance.
type Provider struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to the badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Options configures Open.
type Options struct {
	InMemory   bool         // ignore the path and keep everything in memory
	SyncWrites bool         // fsync the value log on every commit
	Logger     *slog.Logger // default slog.Default()
}

// Open opens a BadgerDB database in the directory dir, creating it if it
// doesn't exist.
func Open(dir string, o Options) (*Provider, error) {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	var opts badger.Options
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		} else if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", dir)
		}
		opts = badger.DefaultOptions(dir).WithSyncWrites(o.SyncWrites)
	}

	opts.Logger = &badgerLoggerAdapter{logger: o.Logger}
	// The document is small and rewritten whole; block compression only
	// costs CPU.
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open: %w", err)
	}
	return &Provider{db: db, logger: o.Logger}, nil
}

// Read returns the stored document, or nil if none has been written.
func (p *Provider) Read() ([]byte, error) {
	var data []byte
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(Key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("badger read: %w", err)
	}
	return data, nil
}

// Write replaces the stored document.
func (p *Provider) Write(data []byte) error {
	err := p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(Key), data)
	})
	if err != nil {
		return fmt.Errorf("badger write: %w", err)
	}
	return nil
}

// Close closes the database.
func (p *Provider) Close() error {
	return p.db.Close()
}
