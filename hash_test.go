// Duplicate hash tests.
//
// The hash decides whether two books are the same book. It must ignore
// case in title and author, respect the year, and never let characters
// move between fields. Every algorithm must produce 16 hex characters.
package shelf

import (
	"errors"
	"regexp"
	"testing"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]{16}$`)

var algorithms = []int{AlgXXHash3, AlgFNV1a, AlgBlake2b}

func TestHashFormat(t *testing.T) {
	for _, alg := range algorithms {
		result := hash("Dune", "Frank Herbert", 1965, alg)
		if !hexPattern.MatchString(result) {
			t.Errorf("alg %d did not produce 16 hex chars: %q", alg, result)
		}
	}
}

func TestHashDeterministic(t *testing.T) {
	for _, alg := range algorithms {
		h1 := hash("Dune", "Frank Herbert", 1965, alg)
		h2 := hash("Dune", "Frank Herbert", 1965, alg)
		if h1 != h2 {
			t.Errorf("alg %d: same book produced different hashes: %q vs %q", alg, h1, h2)
		}
	}
}

// TestHashIgnoresCase verifies that case differences in title and author
// do not make a different book.
func TestHashIgnoresCase(t *testing.T) {
	for _, alg := range algorithms {
		h1 := hash("Dune", "Frank Herbert", 1965, alg)
		h2 := hash("DUNE", "frank HERBERT", 1965, alg)
		if h1 != h2 {
			t.Errorf("alg %d: case changed the hash: %q vs %q", alg, h1, h2)
		}
	}
}

func TestHashDistinguishesFields(t *testing.T) {
	tests := []struct {
		name string
		a, b [3]any
	}{
		{"year", [3]any{"Dune", "Frank Herbert", 1965}, [3]any{"Dune", "Frank Herbert", 1966}},
		{"title", [3]any{"Dune", "Frank Herbert", 1965}, [3]any{"Dune Messiah", "Frank Herbert", 1965}},
		{"boundary", [3]any{"ab", "c", 1}, [3]any{"a", "bc", 1}},
		{"year boundary", [3]any{"a", "b1", 2}, [3]any{"a", "b", 12}},
	}
	for _, tt := range tests {
		for _, alg := range algorithms {
			h1 := hash(tt.a[0].(string), tt.a[1].(string), tt.a[2].(int), alg)
			h2 := hash(tt.b[0].(string), tt.b[1].(string), tt.b[2].(int), alg)
			if h1 == h2 {
				t.Errorf("%s: alg %d produced the same hash %q for %v and %v", tt.name, alg, h1, tt.a, tt.b)
			}
		}
	}
}

func TestHashAlgorithmsDiffer(t *testing.T) {
	x := hash("Dune", "Frank Herbert", 1965, AlgXXHash3)
	f := hash("Dune", "Frank Herbert", 1965, AlgFNV1a)
	b := hash("Dune", "Frank Herbert", 1965, AlgBlake2b)
	if x == f || f == b || x == b {
		t.Errorf("algorithms should differ: xxh3=%q fnv=%q blake2b=%q", x, f, b)
	}
}

func TestHashUnknownAlgorithm(t *testing.T) {
	if got := hash("Dune", "Frank Herbert", 1965, 99); got != "" {
		t.Errorf("hash with unknown alg = %q, want empty", got)
	}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"", AlgXXHash3},
		{"xxh3", AlgXXHash3},
		{"XXHash3", AlgXXHash3},
		{"fnv1a", AlgFNV1a},
		{"fnv", AlgFNV1a},
		{"blake2b", AlgBlake2b},
	}
	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.name)
		if err != nil {
			t.Errorf("ParseAlgorithm(%q): %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAlgorithm(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}

	if _, err := ParseAlgorithm("md5"); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("ParseAlgorithm(md5) error = %v, want ErrUnknownAlgorithm", err)
	}
}

// TestDigestCollisionIsDuplicate pins the behaviour when two different
// books share a digest: only the digest is indexed, so the second is
// reported as a duplicate of the first.
func TestDigestCollisionIsDuplicate(t *testing.T) {
	s := newSchema(AlgXXHash3)
	emma := insertNew(t, s, "Emma", "Jane Austen", 1815)

	dune := Book{ID: s.nextID(), Title: "Dune", Author: "Frank Herbert", Year: 1965}
	s.hashes[dune.hash(s.alg)] = emma.ID

	var exists *ExistsError
	if err := s.insert(dune); !errors.As(err, &exists) || exists.ID != emma.ID {
		t.Errorf("got %v, want ExistsError{%d}", err, emma.ID)
	}
}
