// Duplicate hash for book identity.
//
// Two books are the same book when their lower-cased title, lower-cased
// author and year match, whatever their id or status. The hash is a 16 hex
// character digest of those three fields. Each field is length-prefixed
// before hashing so ("ab", "c") and ("a", "bc") cannot collide. Three
// algorithms are supported, selectable via Config.HashAlgorithm. The index
// is never persisted, so the algorithm can change between runs.
//
// Digests are 64 bits and only the digest is indexed. Two distinct books
// whose digests collide are treated as duplicates and the second save fails
// with an ExistsError. Around 2^32 books are needed before that becomes
// likely, far beyond a single-document catalog.
package shelf

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Hash algorithm constants.
const (
	AlgXXHash3 = 1 // Default, fastest
	AlgFNV1a   = 2 // No external dependencies
	AlgBlake2b = 3 // Best distribution
)

// validAlgorithm reports whether alg names a supported hash.
func validAlgorithm(alg int) bool {
	return alg == AlgXXHash3 || alg == AlgFNV1a || alg == AlgBlake2b
}

// ParseAlgorithm maps a configuration name to an algorithm constant.
// The empty string selects the default.
func ParseAlgorithm(name string) (int, error) {
	switch strings.ToLower(name) {
	case "", "xxh3", "xxhash3":
		return AlgXXHash3, nil
	case "fnv", "fnv1a":
		return AlgFNV1a, nil
	case "blake2b":
		return AlgBlake2b, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// key builds the normalised identity string for a book.
func key(title, author string, year int) string {
	t := strings.ToLower(title)
	a := strings.ToLower(author)
	y := strconv.Itoa(year)

	var b strings.Builder
	b.Grow(len(t) + len(a) + len(y) + 12)
	for _, f := range [...]string{t, a, y} {
		b.WriteString(strconv.Itoa(len(f)))
		b.WriteByte(':')
		b.WriteString(f)
	}
	return b.String()
}

// hash generates the 16 hex character duplicate hash of a book's identity
// fields using the specified algorithm.
func hash(title, author string, year int, alg int) string {
	k := key(title, author, year)
	switch alg {
	case AlgXXHash3:
		return fmt.Sprintf("%016x", xxh3.HashString(k))
	case AlgFNV1a:
		h := fnv.New64a()
		h.Write([]byte(k))
		return fmt.Sprintf("%016x", h.Sum64())
	case AlgBlake2b:
		h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
		h.Write([]byte(k))
		return fmt.Sprintf("%016x", h.Sum(nil))
	default:
		return ""
	}
}
