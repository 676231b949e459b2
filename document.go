// Persisted document format.
//
// The catalog is stored as one JSON object:
//
//	{"last_id":3,"books":[{"id":1,"title":"...","author":"...","year":1970,"status":true}, ...]}
//
// status true means the book is available. Books are written in ascending
// id order, but readers must not rely on that. Decoding goes through a
// generic value (numbers kept as json.Number) so that every shape problem
// can be reported as a FormatError naming the offending field and element
// instead of a bare type mismatch from the JSON library.
//
// Field coercion is lenient but not a truthiness test. A status string is
// parsed, so "false" and "0" load as false, and a string ParseBool does not
// know is an error, as is a list or object. Integer fields reject numbers
// that do not fit in an int64.
package shelf

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Document is the serialisable form of a Schema.
type Document struct {
	LastID int64          `json:"last_id"`
	Books  []BookDocument `json:"books"`
}

// BookDocument is the serialisable form of a Book.
type BookDocument struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
	Status bool   `json:"status"` // true = available
}

// Document converts the schema to its serialisable form.
func (s *Schema) Document() Document {
	doc := Document{
		LastID: s.lastID,
		Books:  make([]BookDocument, 0, len(s.books)),
	}
	for b := range s.All() {
		doc.Books = append(doc.Books, BookDocument{
			ID:     b.ID,
			Title:  b.Title,
			Author: b.Author,
			Year:   b.Year,
			Status: b.Status == Available,
		})
	}
	return doc
}

// EncodeDocument serialises a document to JSON.
func EncodeDocument(doc Document) ([]byte, error) {
	return json.Marshal(doc)
}

// DecodeDocument parses raw JSON into a generic value suitable for
// FromDocument. Empty or whitespace-only input means nothing has been
// stored yet and yields nil.
func DecodeDocument(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, formatErrorf("invalid JSON: %v", err)
	}
	return v, nil
}

// FromDocument builds a Schema from a decoded document. A nil document
// yields an empty schema. The hash index is rebuilt from the loaded books
// without duplicate validation.
func FromDocument(doc any, alg int) (*Schema, error) {
	s := newSchema(alg)
	if doc == nil {
		return s, nil
	}

	root, ok := doc.(map[string]any)
	if !ok {
		return nil, formatErrorf("invalid root type %s, want object", kind(doc))
	}

	raw, ok := root["last_id"]
	if !ok || raw == nil {
		return nil, formatErrorf("the field `last_id` is missing")
	}
	lastID, ok := strictInt(raw)
	if !ok {
		return nil, formatErrorf("the field `last_id` must be an integer, got %s", kind(raw))
	}
	s.lastID = lastID

	rawBooks, ok := root["books"]
	if !ok {
		return s, nil
	}
	list, ok := rawBooks.([]any)
	if !ok {
		return nil, formatErrorf("the field `books` must be a list, got %s", kind(rawBooks))
	}

	for i, el := range list {
		b, err := decodeBook(i, el)
		if err != nil {
			return nil, err
		}
		s.books[b.ID] = b
		s.place(b.ID)
		if b.ID > s.lastID {
			s.lastID = b.ID
		}
	}

	s.reindex()
	return s, nil
}

// decodeBook converts element i of the books list into a Book.
func decodeBook(i int, el any) (Book, error) {
	m, ok := el.(map[string]any)
	if !ok {
		return Book{}, formatErrorf("the object `book` must be an object for book with index %d, got %s", i, kind(el))
	}

	for _, f := range [...]string{"id", "title", "author", "year", "status"} {
		if _, ok := m[f]; !ok {
			return Book{}, formatErrorf("missing field %q for book with index %d", f, i)
		}
	}

	id, ok := looseInt(m["id"])
	if !ok {
		return Book{}, fieldError("id", i, m["id"])
	}
	title, ok := looseString(m["title"])
	if !ok {
		return Book{}, fieldError("title", i, m["title"])
	}
	author, ok := looseString(m["author"])
	if !ok {
		return Book{}, fieldError("author", i, m["author"])
	}
	year, ok := looseInt(m["year"])
	if !ok || year < math.MinInt || year > math.MaxInt {
		return Book{}, fieldError("year", i, m["year"])
	}
	avail, ok := looseBool(m["status"])
	if !ok {
		return Book{}, fieldError("status", i, m["status"])
	}

	status := Taken
	if avail {
		status = Available
	}
	return Book{
		ID:     id,
		Title:  title,
		Author: author,
		Year:   int(year),
		Status: status,
	}, nil
}

func fieldError(field string, i int, v any) error {
	return formatErrorf("invalid field %q for book with index %d: unexpected %s", field, i, kind(v))
}

// strictInt accepts only integral JSON numbers (and Go integers, for
// documents built in code).
func strictInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

// looseInt accepts numbers (truncating fractions), numeric strings and
// booleans.
func looseInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return truncate(f)
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return truncate(n)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// truncate drops the fraction of f. NaN, infinities and values outside
// the int64 range are rejected.
func truncate(f float64) (int64, bool) {
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// looseString accepts strings and renders scalars as text.
func looseString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case bool:
		return strconv.FormatBool(s), true
	case int, int64, float64:
		return fmt.Sprint(s), true
	default:
		return "", false
	}
}

// looseBool accepts booleans, numbers (non-zero is true), strings that
// strconv.ParseBool understands, and null (false). Other strings, lists
// and objects are rejected rather than judged by emptiness.
func looseBool(v any) (bool, bool) {
	switch b := v.(type) {
	case nil:
		return false, true
	case bool:
		return b, true
	case json.Number:
		f, err := b.Float64()
		return f != 0, err == nil
	case int:
		return b != 0, true
	case int64:
		return b != 0, true
	case float64:
		return b != 0, true
	case string:
		p, err := strconv.ParseBool(strings.TrimSpace(b))
		return p, err == nil
	default:
		return false, false
	}
}

// kind names the JSON type of a decoded value for error messages.
func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "list"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, int, int64, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
