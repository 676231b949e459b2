// Package sqlitestore provides a shelf.Provider backed by SQLite.
//
// The catalog document is kept in a single-row table. Writes are an upsert
// of that row, which SQLite applies atomically.
package sqlitestore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Provider stores the catalog document in a SQLite database.
type Provider struct {
	db *sql.DB

	readStmt  *sql.Stmt
	writeStmt *sql.Stmt
}

// Open opens (or creates) the SQLite database at path and applies the
// schema. The special path ":memory:" opens a private in-memory database.
func Open(path string) (*Provider, error) {
	dsn := "file::memory:?_foreign_keys=1"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", path)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	if err := applyMigrations(db, path != ":memory:"); err != nil {
		db.Close()
		return nil, err
	}

	p := &Provider{db: db}
	if err := p.prepareStatements(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// Close releases prepared statements and closes the database.
func (p *Provider) Close() error {
	if p.readStmt != nil {
		p.readStmt.Close()
	}
	if p.writeStmt != nil {
		p.writeStmt.Close()
	}
	return p.db.Close()
}

const schemaVersion = 1

func applyMigrations(db *sql.DB, wal bool) error {
	if wal {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("enable WAL: %w", err)
		}
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return fmt.Errorf("create meta: %w", err)
	}

	var current int
	err := db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS catalog (
            id INTEGER PRIMARY KEY CHECK (id = 1),
            document BLOB NOT NULL,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
		`INSERT INTO meta (key, value) VALUES ('schema_version', '1')
            ON CONFLICT(key) DO UPDATE SET value = excluded.value;`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return tx.Commit()
}

func (p *Provider) prepareStatements() error {
	var err error
	p.readStmt, err = p.db.Prepare(`SELECT document FROM catalog WHERE id = 1;`)
	if err != nil {
		return fmt.Errorf("prepare read: %w", err)
	}
	p.writeStmt, err = p.db.Prepare(`INSERT INTO catalog (id, document) VALUES (1, ?)
        ON CONFLICT(id) DO UPDATE SET document = excluded.document, updated_at = CURRENT_TIMESTAMP;`)
	if err != nil {
		return fmt.Errorf("prepare write: %w", err)
	}
	return nil
}

// Read returns the stored document, or nil if none has been written.
func (p *Provider) Read() ([]byte, error) {
	var data []byte
	err := p.readStmt.QueryRow().Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite read: %w", err)
	}
	return data, nil
}

// Write replaces the stored document.
func (p *Provider) Write(data []byte) error {
	if _, err := p.writeStmt.Exec(data); err != nil {
		return fmt.Errorf("sqlite write: %w", err)
	}
	return nil
}
