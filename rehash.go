// Hash algorithm migration.
//
// The duplicate index is never persisted, so changing algorithm only
// rebuilds it in memory. Nothing is written.
package shelf

import "fmt"

// Rehash switches the duplicate hash to newAlg and rebuilds the index.
func (s *Store) Rehash(newAlg int) error {
	if !validAlgorithm(newAlg) {
		return fmt.Errorf("rehash: %w: %d", ErrUnknownAlgorithm, newAlg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.schema.rehash(newAlg)
	s.config.HashAlgorithm = newAlg
	s.log.Debug("catalog rehashed", "algorithm", newAlg, "books", s.schema.Len())
	return nil
}

// Algorithm returns the duplicate hash algorithm in use.
func (s *Store) Algorithm() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.HashAlgorithm
}
