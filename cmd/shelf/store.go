package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jpl-au/shelf"
	"github.com/jpl-au/shelf/badgerstore"
	"github.com/jpl-au/shelf/config"
	"github.com/jpl-au/shelf/library"
	"github.com/jpl-au/shelf/sqlitestore"
	"github.com/urfave/cli/v2"
)

// openProvider opens the storage backend named in cfg.
func openProvider(cfg *config.Config, logger *slog.Logger) (shelf.Provider, error) {
	m := cfg.Main
	switch m.Backend {
	case config.BackendBadger:
		return badgerstore.Open(m.StoragePath, badgerstore.Options{
			SyncWrites: m.SyncWrites,
			Logger:     logger,
		})
	case config.BackendSQLite:
		return sqlitestore.Open(m.StoragePath)
	default:
		return shelf.OpenFile(m.StoragePath, shelf.FileOptions{
			Compress:   m.Compress,
			SyncWrites: m.SyncWrites,
		})
	}
}

// session is everything a command needs: the loaded config and a service
// over an open store.
type session struct {
	cfg   *config.Config
	store *shelf.Store
	svc   *library.Service
}

func (s *session) Close() error {
	return s.store.Close()
}

// open loads the config named by --config and opens the catalog.
func open(c *cli.Context) (*session, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	p, err := openProvider(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	store, err := shelf.Open(p, shelf.Config{
		HashAlgorithm: cfg.Main.Algorithm,
		Logger:        logger,
	})
	if err != nil {
		if cl, ok := p.(io.Closer); ok {
			err = errors.Join(err, cl.Close())
		}
		return nil, err
	}

	svc, err := library.NewService(store, library.WithLogger(logger))
	if err != nil {
		store.Close()
		return nil, err
	}

	return &session{cfg: cfg, store: store, svc: svc}, nil
}
