// Book records and their availability status.
package shelf

// Status reports whether a book is on the shelf.
type Status int

const (
	Available Status = iota // in the library
	Taken                   // lent out
)

func (s Status) String() string {
	switch s {
	case Available:
		return "available"
	case Taken:
		return "taken"
	default:
		return "unknown"
	}
}

// Book is a catalog record. ID is assigned by the Store on save.
type Book struct {
	ID     int64
	Title  string
	Author string
	Year   int
	Status Status
}

// NewBook is the input to Store.SaveBook. New books are always saved as
// Available.
type NewBook struct {
	Title  string
	Author string
	Year   int
}

// Take marks the book as lent out. Returns a StatusError wrapping
// ErrAlreadyTaken if it already is.
func (b *Book) Take() error {
	if b.Status == Taken {
		return &StatusError{ID: b.ID, Err: ErrAlreadyTaken}
	}
	b.Status = Taken
	return nil
}

// Return puts the book back on the shelf. Returns a StatusError wrapping
// ErrAlreadyInLibrary if it is already there.
func (b *Book) Return() error {
	if b.Status == Available {
		return &StatusError{ID: b.ID, Err: ErrAlreadyInLibrary}
	}
	b.Status = Available
	return nil
}

// hash returns the duplicate hash of the book's identity fields.
func (b Book) hash(alg int) string {
	return hash(b.Title, b.Author, b.Year, alg)
}
