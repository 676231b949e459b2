// Package config loads the catalog configuration.
//
// Settings come from a TOML file with a [main] table. A .env file in the
// working directory, if present, is loaded into the environment first, and
// SHELF_* environment variables override values from the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/jpl-au/shelf"
)

// DefaultPageSize is used when page_size is absent or zero.
const DefaultPageSize = 10

// Backends.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Environment overrides.
const (
	EnvStoragePath = "SHELF_STORAGE_PATH"
	EnvPageSize    = "SHELF_PAGE_SIZE"
	EnvBackend     = "SHELF_BACKEND"
)

var (
	ErrMissingField = errors.New("missing config field")
	ErrFormat       = errors.New("invalid config")
)

// MissingFieldError names a required setting that has no value.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing config field %q", e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// Config is the loaded configuration.
type Config struct {
	Main Main `toml:"main"`
}

// Main holds the [main] table.
type Main struct {
	StoragePath string `toml:"storage_path"`
	PageSize    int    `toml:"page_size"`
	Backend     string `toml:"backend"`
	Compress    bool   `toml:"compress"`
	SyncWrites  bool   `toml:"sync_writes"`
	Hash        string `toml:"hash"`

	// Algorithm is Hash resolved to a shelf algorithm constant.
	Algorithm int `toml:"-"`
}

// Load reads the configuration at path. A missing file is not an error by
// itself: the environment may still supply every required value.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %w", ErrFormat, err)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse decodes configuration from TOML text, applies environment
// overrides and validates the result.
func Parse(text string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(text, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvStoragePath); ok && v != "" {
		c.Main.StoragePath = v
	}
	if v, ok := os.LookupEnv(EnvBackend); ok && v != "" {
		c.Main.Backend = v
	}
	if v, ok := os.LookupEnv(EnvPageSize); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrFormat, EnvPageSize, err)
		}
		c.Main.PageSize = n
	}
	return nil
}

func (c *Config) validate() error {
	m := &c.Main

	m.StoragePath = strings.TrimSpace(m.StoragePath)
	if m.StoragePath == "" {
		return &MissingFieldError{Field: "storage_path"}
	}

	switch {
	case m.PageSize < 0:
		return fmt.Errorf("%w: page_size must not be negative, got %d", ErrFormat, m.PageSize)
	case m.PageSize == 0:
		m.PageSize = DefaultPageSize
	}

	m.Backend = strings.ToLower(strings.TrimSpace(m.Backend))
	switch m.Backend {
	case "":
		m.Backend = BackendFile
	case BackendFile, BackendBadger, BackendSQLite:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrFormat, m.Backend)
	}

	alg, err := shelf.ParseAlgorithm(m.Hash)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFormat, err)
	}
	m.Algorithm = alg
	return nil
}
