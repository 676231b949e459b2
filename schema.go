// In-memory catalog schema.
//
// A Schema holds three structures that must always agree: books (id to
// record), hashes (duplicate hash to id) and order (ascending ids, so
// iteration and therefore pagination are stable between calls). Only
// insert, update and delete touch them, and each either applies to all
// three or returns an error having changed nothing. A checkpoint taken
// before a mutation undoes it after the fact. hashes is derived:
// it is rebuilt from books on load and on rehash, never decoded.
package shelf

import (
	"iter"
	"slices"
)

// Schema is the whole catalog held in memory.
type Schema struct {
	lastID int64
	books  map[int64]Book
	hashes map[string]int64
	order  []int64
	alg    int
}

// newSchema returns an empty schema hashing with alg.
func newSchema(alg int) *Schema {
	return &Schema{
		books:  make(map[int64]Book),
		hashes: make(map[string]int64),
		alg:    alg,
	}
}

// LastID returns the most recently issued id (0 for a fresh catalog).
func (s *Schema) LastID() int64 { return s.lastID }

// Len returns the number of books.
func (s *Schema) Len() int { return len(s.books) }

// Get returns the book with the given id.
func (s *Schema) Get(id int64) (Book, bool) {
	b, ok := s.books[id]
	return b, ok
}

// All yields every book in ascending id order. The schema must not be
// mutated while the sequence is being consumed.
func (s *Schema) All() iter.Seq[Book] {
	return func(yield func(Book) bool) {
		for _, id := range s.order {
			if !yield(s.books[id]) {
				return
			}
		}
	}
}

// nextID issues a new id. The counter never goes backwards, so ids of
// deleted books are never handed out again.
func (s *Schema) nextID() int64 {
	s.lastID++
	return s.lastID
}

// insert adds a new book. A duplicate-hash collision returns an
// ExistsError carrying the id of the book already stored.
func (s *Schema) insert(b Book) error {
	h := b.hash(s.alg)
	if id, ok := s.hashes[h]; ok {
		return &ExistsError{ID: id}
	}
	if _, ok := s.books[b.ID]; ok {
		return &ExistsError{ID: b.ID}
	}

	s.books[b.ID] = b
	s.hashes[h] = b.ID
	s.place(b.ID)
	return nil
}

// update replaces an existing book. Keeping its own identity fields is
// not a collision; taking another book's identity is.
func (s *Schema) update(b Book) error {
	prev, ok := s.books[b.ID]
	if !ok {
		return ErrNotFound
	}

	h := b.hash(s.alg)
	if id, ok := s.hashes[h]; ok && id != b.ID {
		return &ExistsError{ID: id}
	}

	s.books[b.ID] = b
	s.unhash(prev)
	s.hashes[h] = b.ID
	return nil
}

// delete removes a book from every structure.
func (s *Schema) delete(id int64) error {
	b, ok := s.books[id]
	if !ok {
		return ErrNotFound
	}

	delete(s.books, id)
	s.unhash(b)
	s.unplace(id)
	return nil
}

// rehash rebuilds the hash index under a different algorithm.
func (s *Schema) rehash(alg int) {
	s.alg = alg
	s.reindex()
}

// reindex rebuilds hashes from books. Colliding books (only possible in a
// hand-edited document) keep the later id in the index.
func (s *Schema) reindex() {
	s.hashes = make(map[string]int64, len(s.books))
	for _, id := range s.order {
		s.hashes[s.books[id].hash(s.alg)] = id
	}
}

// place records id in the ordered id list.
func (s *Schema) place(id int64) {
	if i, found := slices.BinarySearch(s.order, id); !found {
		s.order = slices.Insert(s.order, i, id)
	}
}

// unplace removes id from the ordered id list.
func (s *Schema) unplace(id int64) {
	if i, found := slices.BinarySearch(s.order, id); found {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

// unhash drops b's index entry, but only while it still points at b.
func (s *Schema) unhash(b Book) {
	h := b.hash(s.alg)
	if s.hashes[h] == b.ID {
		delete(s.hashes, h)
	}
}

// checkpoint holds the prior state of every schema entry a mutation may
// touch. restore writes those entries back directly, without the
// insert/update guards, so it also undoes changes to documents that were
// loaded with colliding books.
type checkpoint struct {
	s      *Schema
	lastID int64
	books  map[int64]bookEntry
	hashes map[string]hashEntry
}

type bookEntry struct {
	b  Book
	ok bool
}

type hashEntry struct {
	id int64
	ok bool
}

// checkpoint starts recording. Entries are captured by track.
func (s *Schema) checkpoint() *checkpoint {
	return &checkpoint{
		s:      s,
		lastID: s.lastID,
		books:  make(map[int64]bookEntry, 1),
		hashes: make(map[string]hashEntry, 2),
	}
}

// track captures the current entries for each book's id and hash. Must be
// called before the mutation; entries already captured are kept.
func (c *checkpoint) track(books ...Book) {
	for _, b := range books {
		if _, seen := c.books[b.ID]; !seen {
			cur, ok := c.s.books[b.ID]
			c.books[b.ID] = bookEntry{b: cur, ok: ok}
		}
		h := b.hash(c.s.alg)
		if _, seen := c.hashes[h]; !seen {
			id, ok := c.s.hashes[h]
			c.hashes[h] = hashEntry{id: id, ok: ok}
		}
	}
}

// restore puts every captured entry and the id counter back.
func (c *checkpoint) restore() {
	s := c.s
	s.lastID = c.lastID
	for id, e := range c.books {
		if e.ok {
			s.books[id] = e.b
			s.place(id)
		} else {
			delete(s.books, id)
			s.unplace(id)
		}
	}
	for h, e := range c.hashes {
		if e.ok {
			s.hashes[h] = e.id
		} else {
			delete(s.hashes, h)
		}
	}
}
