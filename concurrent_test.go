package shelf

import (
	"fmt"
	"sync"
	"testing"
)

// TestConcurrentSaves verifies ids are never issued twice and the index
// stays consistent when many goroutines save at once.
func TestConcurrentSaves(t *testing.T) {
	s := openTestStore(t, NewMemory(nil))

	var mu sync.Mutex
	seen := make(map[int64]bool)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				id, err := s.SaveBook(NewBook{Title: fmt.Sprintf("Book %d-%d", n, j), Author: "Author", Year: 2000})
				if err != nil {
					t.Errorf("SaveBook: %v", err)
					return
				}
				mu.Lock()
				if seen[id] {
					t.Errorf("id %d issued twice", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if n := s.GetBookCount(Filter{}); n != 200 {
		t.Errorf("count = %d, want 200", n)
	}
	checkConsistent(t, s.schema)
}

// TestConcurrentDuplicates verifies exactly one of many racing saves of
// the same book wins.
func TestConcurrentDuplicates(t *testing.T) {
	s := openTestStore(t, NewMemory(nil))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.SaveBook(NewBook{Title: "Dune", Author: "Frank Herbert", Year: 1965}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("%d saves succeeded, want 1", wins)
	}
}

func TestConcurrentReadWrite(t *testing.T) {
	s := openTestStore(t, NewMemory(nil))
	id := mustSave(t, s, "Dune", "Frank Herbert", 1965)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				b, err := s.GetBookByID(id)
				if err != nil {
					t.Errorf("GetBookByID: %v", err)
					return
				}
				if b.Title != "Dune" {
					t.Errorf("Title = %q", b.Title)
					return
				}
				s.FindBooks(Filter{Title: "dune"}, Page{Limit: 5})
			}
		}()
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				s.SaveBook(NewBook{Title: fmt.Sprintf("Other %d-%d", n, j), Author: "A", Year: 1})
			}
		}(i)
	}
	wg.Wait()

	checkConsistent(t, s.schema)
}
