// Bulk import.
//
// Import reads a JSON array of book requests. Entries are normalised and
// validated concurrently on an ants worker pool, then saved one at a time
// in input order so ids follow the file. A bad or duplicate entry is
// recorded in the report and skipped; it does not stop the import.
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/jpl-au/shelf"
	"github.com/panjf2000/ants/v2"
)

// ImportIssue describes an entry that was not imported.
type ImportIssue struct {
	Index int
	Title string
	Err   error
}

// ImportReport summarises an import.
type ImportReport struct {
	Added      []shelf.Book
	Duplicates []ImportIssue
	Invalid    []ImportIssue
}

// Import adds every valid, new entry read from r.
func (s *Service) Import(ctx context.Context, r io.Reader) (ImportReport, error) {
	var reqs []CreateBookRequest
	if err := json.NewDecoder(r).Decode(&reqs); err != nil {
		return ImportReport{}, fmt.Errorf("import: decode: %w", err)
	}

	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return ImportReport{}, fmt.Errorf("import: pool: %w", err)
	}
	defer pool.Release()

	normalised := make([]CreateBookRequest, len(reqs))
	errs := make([]error, len(reqs))

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			normalised[i], errs[i] = s.normalise(req)
		}); err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	var report ImportReport
	for i, req := range normalised {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if errs[i] != nil {
			report.Invalid = append(report.Invalid, ImportIssue{Index: i, Title: reqs[i].Title, Err: errs[i]})
			continue
		}

		id, err := s.repo.SaveBook(shelf.NewBook{Title: req.Title, Author: req.Author, Year: req.Year})
		switch {
		case errors.Is(err, shelf.ErrExists):
			report.Duplicates = append(report.Duplicates, ImportIssue{Index: i, Title: req.Title, Err: err})
		case err != nil:
			return report, fmt.Errorf("import: entry %d: %w", i, err)
		default:
			report.Added = append(report.Added, shelf.Book{
				ID:     id,
				Title:  req.Title,
				Author: req.Author,
				Year:   req.Year,
				Status: shelf.Available,
			})
		}
	}

	s.logger.Info("import finished",
		"added", len(report.Added),
		"duplicates", len(report.Duplicates),
		"invalid", len(report.Invalid))
	return report, nil
}
