// Store lifecycle and catalog operations.
//
// A Store loads the document once on Open and then serves every read from
// the in-memory Schema. Each mutation runs read-mutate-persist under the
// write lock: the change is applied to the schema, the whole document is
// written through the Provider, and if that write fails a checkpoint taken
// before the change (including any id issued) is restored before the error
// is returned.
package shelf

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Config holds store configuration options.
type Config struct {
	HashAlgorithm int          // 1=xxHash3, 2=FNV1a, 3=Blake2b
	Logger        *slog.Logger // default slog.Default()
}

// Store is an open catalog.
type Store struct {
	provider Provider
	schema   *Schema
	config   Config
	log      *slog.Logger
	closed   bool
	mu       sync.RWMutex
}

// Open loads the catalog from p. A document with an invalid shape fails
// with an error matching ErrCorruptDocument.
func Open(p Provider, config Config) (*Store, error) {
	// Default config values
	if config.HashAlgorithm == 0 {
		config.HashAlgorithm = AlgXXHash3
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if !validAlgorithm(config.HashAlgorithm) {
		return nil, fmt.Errorf("open: %w: %d", ErrUnknownAlgorithm, config.HashAlgorithm)
	}

	data, err := p.Read()
	if err != nil {
		return nil, fmt.Errorf("open: read: %w", err)
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	schema, err := FromDocument(doc, config.HashAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	config.Logger.Debug("catalog loaded", "books", schema.Len(), "last_id", schema.LastID())

	return &Store{
		provider: p,
		schema:   schema,
		config:   config,
		log:      config.Logger,
	}, nil
}

// Close marks the store closed and closes the provider if it is an
// io.Closer. Further operations fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if c, ok := s.provider.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// SaveBook adds a new, available book and returns its id. A book with the
// same title, author and year (ignoring case) fails with an *ExistsError
// carrying the id of the stored book.
func (s *Store) SaveBook(nb NewBook) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	cp := s.schema.checkpoint()
	b := Book{
		ID:     s.schema.nextID(),
		Title:  nb.Title,
		Author: nb.Author,
		Year:   nb.Year,
		Status: Available,
	}
	cp.track(b)
	if err := s.schema.insert(b); err != nil {
		cp.restore()
		return 0, err
	}

	if err := s.persist(); err != nil {
		cp.restore()
		s.log.Error("save rolled back", "id", b.ID, "error", err)
		return 0, fmt.Errorf("save: %w", err)
	}

	s.log.Debug("book saved", "id", b.ID)
	return b.ID, nil
}

// UpdateBook replaces the book with b.ID.
func (s *Store) UpdateBook(b Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	prev, ok := s.schema.Get(b.ID)
	if !ok {
		return ErrNotFound
	}
	cp := s.schema.checkpoint()
	cp.track(prev, b)
	if err := s.schema.update(b); err != nil {
		return err
	}

	if err := s.persist(); err != nil {
		cp.restore()
		s.log.Error("update rolled back", "id", b.ID, "error", err)
		return fmt.Errorf("update: %w", err)
	}

	s.log.Debug("book updated", "id", b.ID)
	return nil
}

// DeleteBook removes the book with id.
func (s *Store) DeleteBook(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	prev, ok := s.schema.Get(id)
	if !ok {
		return ErrNotFound
	}
	cp := s.schema.checkpoint()
	cp.track(prev)
	if err := s.schema.delete(id); err != nil {
		return err
	}

	if err := s.persist(); err != nil {
		cp.restore()
		s.log.Error("delete rolled back", "id", id, "error", err)
		return fmt.Errorf("delete: %w", err)
	}

	s.log.Debug("book deleted", "id", id)
	return nil
}

// GetBookByID returns the book with id.
func (s *Store) GetBookByID(id int64) (Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Book{}, ErrClosed
	}

	b, ok := s.schema.Get(id)
	if !ok {
		return Book{}, ErrNotFound
	}
	return b, nil
}

// FindBooks returns the page p of books matching f, in ascending id order.
// A closed store returns nil.
func (s *Store) FindBooks(f Filter, p Page) []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil
	}
	pred := Compile(f)
	// total only matters when it becomes the default limit
	total := 0
	if p.Limit <= 0 {
		total = s.count(pred)
	}
	return Paginate(p, total, where(s.schema.All(), pred))
}

// FindPage returns the page p of books matching f together with the
// number of books matching f, both read under one lock so they agree.
// A closed store returns nil, 0.
func (s *Store) FindPage(f Filter, p Page) ([]Book, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, 0
	}
	pred := Compile(f)
	total := s.count(pred)
	return Paginate(p, total, where(s.schema.All(), pred)), total
}

// GetBookCount returns the number of books matching f.
func (s *Store) GetBookCount(f Filter) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0
	}

	return s.count(Compile(f))
}

// count returns the number of books satisfying pred, or the catalog size
// for a nil pred. Called with s.mu held.
func (s *Store) count(pred Predicate) int {
	if pred == nil {
		return s.schema.Len()
	}
	n := 0
	for range where(s.schema.All(), pred) {
		n++
	}
	return n
}

// persist writes the whole schema through the provider. Called with s.mu
// held for writing.
func (s *Store) persist() error {
	data, err := EncodeDocument(s.schema.Document())
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := s.provider.Write(data); err != nil {
		return err
	}
	s.log.Debug("catalog persisted", "bytes", len(data), "books", s.schema.Len())
	return nil
}
