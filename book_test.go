package shelf

import (
	"errors"
	"testing"
)

func TestStatusString(t *testing.T) {
	tests := map[Status]string{
		Available: "available",
		Taken:     "taken",
		Status(7): "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestTakeReturn(t *testing.T) {
	b := Book{ID: 5, Status: Available}

	if err := b.Return(); !errors.Is(err, ErrAlreadyInLibrary) {
		t.Errorf("Return on available book: got %v", err)
	}
	if err := b.Take(); err != nil {
		t.Fatalf("Take: %v", err)
	}
	if b.Status != Taken {
		t.Errorf("Status = %v after Take", b.Status)
	}

	err := b.Take()
	var se *StatusError
	if !errors.As(err, &se) || se.ID != 5 || !errors.Is(err, ErrAlreadyTaken) {
		t.Errorf("second Take: got %v", err)
	}

	if err := b.Return(); err != nil {
		t.Fatalf("Return: %v", err)
	}
	if b.Status != Available {
		t.Errorf("Status = %v after Return", b.Status)
	}
}

// TestBookHashIgnoresStatus verifies that lending a book out does not
// change its identity.
func TestBookHashIgnoresStatus(t *testing.T) {
	a := Book{ID: 1, Title: "Dune", Author: "Frank Herbert", Year: 1965}
	b := a
	b.ID = 2
	b.Status = Taken
	if a.hash(AlgXXHash3) != b.hash(AlgXXHash3) {
		t.Error("id or status changed the duplicate hash")
	}
}
