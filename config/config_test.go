package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jpl-au/shelf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv makes sure overrides from the caller's environment do not leak
// into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvStoragePath, EnvPageSize, EnvBackend} {
		t.Setenv(k, "")
	}
}

func TestParseDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse(`
[main]
storage_path = "books.json"
`)
	require.NoError(t, err)
	assert.Equal(t, "books.json", cfg.Main.StoragePath)
	assert.Equal(t, DefaultPageSize, cfg.Main.PageSize)
	assert.Equal(t, BackendFile, cfg.Main.Backend)
	assert.Equal(t, shelf.AlgXXHash3, cfg.Main.Algorithm)
	assert.False(t, cfg.Main.Compress)
}

func TestParseZeroPageSize(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse("[main]\nstorage_path = \"b.json\"\npage_size = 0\n")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Main.PageSize)
}

func TestParseAllFields(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse(`
[main]
storage_path = "data/catalog"
page_size = 25
backend = "Badger"
compress = true
sync_writes = true
hash = "blake2b"
`)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Main.PageSize)
	assert.Equal(t, BackendBadger, cfg.Main.Backend)
	assert.True(t, cfg.Main.Compress)
	assert.True(t, cfg.Main.SyncWrites)
	assert.Equal(t, shelf.AlgBlake2b, cfg.Main.Algorithm)
}

func TestParseMissingStoragePath(t *testing.T) {
	clearEnv(t)

	_, err := Parse("[main]\npage_size = 5\n")
	require.ErrorIs(t, err, ErrMissingField)

	var mf *MissingFieldError
	require.True(t, errors.As(err, &mf))
	assert.Equal(t, "storage_path", mf.Field)
}

func TestParseInvalid(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		text string
	}{
		{"syntax", "[main\nstorage_path = 1"},
		{"page_size type", "[main]\nstorage_path = \"b\"\npage_size = \"ten\"\n"},
		{"negative page_size", "[main]\nstorage_path = \"b\"\npage_size = -1\n"},
		{"backend", "[main]\nstorage_path = \"b\"\nbackend = \"postgres\"\n"},
		{"hash", "[main]\nstorage_path = \"b\"\nhash = \"md5\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvStoragePath, "/tmp/override.json")
	t.Setenv(EnvPageSize, "3")
	t.Setenv(EnvBackend, "sqlite")

	cfg, err := Parse("[main]\nstorage_path = \"books.json\"\npage_size = 20\n")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.json", cfg.Main.StoragePath)
	assert.Equal(t, 3, cfg.Main.PageSize)
	assert.Equal(t, BackendSQLite, cfg.Main.Backend)
}

func TestEnvInvalidPageSize(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPageSize, "many")

	_, err := Parse("[main]\nstorage_path = \"books.json\"\n")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[main]\nstorage_path = \"books.json\"\npage_size = 7\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Main.PageSize)
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "absent.toml")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrMissingField)

	t.Setenv(EnvStoragePath, "from-env.json")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.json", cfg.Main.StoragePath)
}
