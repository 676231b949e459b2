// Package library is the service layer over a book catalog. It normalises
// and validates input before it reaches the store, guards status
// transitions, and assembles paginated results.
package library

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jpl-au/shelf"
)

// ErrRepositoryRequired is returned by NewService when no repository is given.
var ErrRepositoryRequired = errors.New("repository is required")

// Repository is the catalog the service works on. *shelf.Store implements it.
type Repository interface {
	SaveBook(nb shelf.NewBook) (int64, error)
	FindBooks(f shelf.Filter, p shelf.Page) []shelf.Book
	GetBookCount(f shelf.Filter) int
	UpdateBook(b shelf.Book) error
	DeleteBook(id int64) error
	GetBookByID(id int64) (shelf.Book, error)
}

var _ Repository = (*shelf.Store)(nil)

// pager is implemented by repositories that can return a page and its
// total in one consistent read.
type pager interface {
	FindPage(f shelf.Filter, p shelf.Page) ([]shelf.Book, int)
}

var _ pager = (*shelf.Store)(nil)

// CreateBookRequest is the input for adding a book.
type CreateBookRequest struct {
	Title  string `json:"title" validate:"required,max=1024"`
	Author string `json:"author" validate:"required,max=1024"`
	Year   int    `json:"year"`
}

// Books is one page of results.
type Books struct {
	Data       []shelf.Book
	Pagination shelf.PageResult
}

// Service implements the catalog use cases.
type Service struct {
	repo     Repository
	validate *validator.Validate
	poolSize int
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithPoolSize sets the number of workers used by Import.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Service) error {
		if size < 1 {
			size = 1
		}
		s.poolSize = size
		return nil
	}
}

// NewService creates a service over repo.
func NewService(repo Repository, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	s := &Service{
		repo:     repo,
		validate: validator.New(),
		poolSize: max(runtime.NumCPU(), 1),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// CreateBook trims and validates req, then stores it as an available book.
// A duplicate fails with an error matching shelf.ErrExists.
func (s *Service) CreateBook(req CreateBookRequest) (shelf.Book, error) {
	req, err := s.normalise(req)
	if err != nil {
		return shelf.Book{}, err
	}

	id, err := s.repo.SaveBook(shelf.NewBook{Title: req.Title, Author: req.Author, Year: req.Year})
	if err != nil {
		return shelf.Book{}, err
	}

	s.logger.Info("book created", "id", id, "title", req.Title)
	return shelf.Book{
		ID:     id,
		Title:  req.Title,
		Author: req.Author,
		Year:   req.Year,
		Status: shelf.Available,
	}, nil
}

// DeleteBook removes the book with id.
func (s *Service) DeleteBook(id int64) error {
	if err := s.repo.DeleteBook(id); err != nil {
		return err
	}
	s.logger.Info("book deleted", "id", id)
	return nil
}

// UpdateStatus moves the book with id into status. Taking a taken book
// fails with shelf.ErrAlreadyTaken; returning an available one with
// shelf.ErrAlreadyInLibrary.
func (s *Service) UpdateStatus(id int64, status shelf.Status) (shelf.Book, error) {
	b, err := s.repo.GetBookByID(id)
	if err != nil {
		return shelf.Book{}, err
	}

	switch status {
	case shelf.Taken:
		err = b.Take()
	case shelf.Available:
		err = b.Return()
	default:
		err = fmt.Errorf("%w: unknown status %d", shelf.ErrInvalidBook, status)
	}
	if err != nil {
		return shelf.Book{}, err
	}

	if err := s.repo.UpdateBook(b); err != nil {
		return shelf.Book{}, err
	}
	s.logger.Info("book status changed", "id", id, "status", b.Status)
	return b, nil
}

// FindBooks returns the page p of books matching f together with its
// position in the whole result set. Data and total come from one read when
// the repository supports it; otherwise a concurrent write between the two
// calls can make them disagree.
func (s *Service) FindBooks(f shelf.Filter, p shelf.Page) Books {
	f.Title = strings.TrimSpace(f.Title)
	f.Author = strings.TrimSpace(f.Author)

	var (
		data  []shelf.Book
		total int
	)
	if pr, ok := s.repo.(pager); ok {
		data, total = pr.FindPage(f, p)
	} else {
		data = s.repo.FindBooks(f, p)
		total = s.repo.GetBookCount(f)
	}

	return Books{
		Data: data,
		Pagination: shelf.PageResult{
			Offset: p.Offset,
			Limit:  p.Limit,
			Total:  total,
		},
	}
}

// normalise trims req and checks it against its validation tags.
func (s *Service) normalise(req CreateBookRequest) (CreateBookRequest, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return req, fmt.Errorf("%w: %s", shelf.ErrInvalidBook, strings.Join(msgs, ", "))
		}
		return req, fmt.Errorf("%w: %w", shelf.ErrInvalidBook, err)
	}
	return req, nil
}
