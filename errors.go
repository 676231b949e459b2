// Package shelf provides a small book catalog persisted as a single JSON
// document. The whole catalog is held in memory as a Schema: books keyed by
// id plus a derived duplicate-hash index over (title, author, year). Reads
// run against memory only; every mutation rewrites the full document through
// a Provider (file, memory, or one of the database-backed providers in the
// badgerstore and sqlitestore packages).
//
// Listing is a lazy pipeline: books are produced in id order, optionally
// passed through a compiled Predicate, and windowed by Paginate, which stops
// pulling from the source as soon as the page is full.
package shelf

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic handling. Callers can use errors.Is to
// distinguish recoverable conditions (ErrNotFound, ErrExists) from a
// damaged store (ErrCorruptDocument).
var (
	ErrNotFound         = errors.New("book not found")
	ErrExists           = errors.New("book already exists")
	ErrAlreadyTaken     = errors.New("book already taken")
	ErrAlreadyInLibrary = errors.New("book already in library")
	ErrInvalidBook      = errors.New("invalid book")
	ErrCorruptDocument  = errors.New("corrupt document")
	ErrDecompress       = errors.New("decompression failed")
	ErrClosed           = errors.New("store is closed")
	ErrUnknownAlgorithm = errors.New("unknown hash algorithm")
)

// ExistsError reports a (title, author, year) collision. ID is the id of
// the book already in the catalog, not the one being written.
type ExistsError struct {
	ID int64
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("book already exists with id %d", e.ID)
}

func (e *ExistsError) Is(target error) bool { return target == ErrExists }

// FormatError reports a persisted document whose shape is invalid.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return "corrupt document: " + e.Msg }

func (e *FormatError) Is(target error) bool { return target == ErrCorruptDocument }

func formatErrorf(format string, args ...any) error {
	return &FormatError{Msg: fmt.Sprintf(format, args...)}
}

// StatusError reports a status transition into the state a book is
// already in. Err is ErrAlreadyTaken or ErrAlreadyInLibrary.
type StatusError struct {
	ID  int64
	Err error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("book %d: %v", e.ID, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }
