// Storage providers.
//
// A Provider stores one opaque document. The Store never updates part of
// it: every mutation rewrites the whole catalog, so a provider only has to
// make a single overwrite atomic.
package shelf

import "sync"

// Provider reads and overwrites the persisted document. Read returns nil,
// nil when nothing has been stored yet. Implementations may also implement
// io.Closer, in which case Store.Close closes them.
type Provider interface {
	Read() ([]byte, error)
	Write(data []byte) error
}

// Memory is a Provider that keeps the document in memory. It is safe for
// concurrent use.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

// NewMemory returns a Memory provider seeded with data (nil for empty).
func NewMemory(data []byte) *Memory {
	return &Memory{data: clone(data)}
}

func (m *Memory) Read() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.data), nil
}

func (m *Memory) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = clone(data)
	return nil
}

// Bytes returns a copy of the stored document.
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.data)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
