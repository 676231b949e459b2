// Filter criteria and the predicates built from them.
//
// Title and author match by case-insensitive containment, year by equality.
// Criteria combine with AND. An empty filter compiles to a nil Predicate so
// callers can skip the filtering stage entirely.
package shelf

import (
	"iter"
	"strings"
)

// Filter holds optional search criteria. Empty strings and a nil Year mean
// the criterion is absent.
type Filter struct {
	Title  string
	Author string
	Year   *int
}

// Empty reports whether no criterion is set.
func (f Filter) Empty() bool {
	return f.Title == "" && f.Author == "" && f.Year == nil
}

// Predicate decides whether a book matches.
type Predicate func(Book) bool

// TitleContains matches books whose title contains s, ignoring case.
func TitleContains(s string) Predicate {
	needle := strings.ToLower(s)
	return func(b Book) bool {
		return strings.Contains(strings.ToLower(b.Title), needle)
	}
}

// AuthorContains matches books whose author contains s, ignoring case.
func AuthorContains(s string) Predicate {
	needle := strings.ToLower(s)
	return func(b Book) bool {
		return strings.Contains(strings.ToLower(b.Author), needle)
	}
}

// YearEquals matches books published in year.
func YearEquals(year int) Predicate {
	return func(b Book) bool {
		return b.Year == year
	}
}

// And matches books that satisfy every predicate. With no predicates it
// matches everything.
func And(preds ...Predicate) Predicate {
	return func(b Book) bool {
		for _, p := range preds {
			if !p(b) {
				return false
			}
		}
		return true
	}
}

// Compile builds the predicate for f. It returns nil for an empty filter
// and the bare predicate when only one criterion is set.
func Compile(f Filter) Predicate {
	var preds []Predicate
	if f.Title != "" {
		preds = append(preds, TitleContains(f.Title))
	}
	if f.Author != "" {
		preds = append(preds, AuthorContains(f.Author))
	}
	if f.Year != nil {
		preds = append(preds, YearEquals(*f.Year))
	}

	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	default:
		return And(preds...)
	}
}

// where yields the books of seq that satisfy p. A nil p passes everything.
func where(seq iter.Seq[Book], p Predicate) iter.Seq[Book] {
	if p == nil {
		return seq
	}
	return func(yield func(Book) bool) {
		for b := range seq {
			if p(b) && !yield(b) {
				return
			}
		}
	}
}
