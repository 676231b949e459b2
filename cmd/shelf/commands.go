package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jpl-au/shelf"
	"github.com/jpl-au/shelf/library"
	"github.com/urfave/cli/v2"
)

const separator = "---------"

var statusLabels = map[shelf.Status]string{
	shelf.Available: "Available",
	shelf.Taken:     "Taken",
}

func (con *console) printBook(b shelf.Book) {
	fmt.Fprintf(con.out, "Id: %d\nTitle: %q\nAuthor: %q\nYear: %d\nStatus: %s\n",
		b.ID, b.Title, b.Author, b.Year, statusLabels[b.Status])
}

func parseID(c *cli.Context) (int64, error) {
	if c.Args().Len() != 1 {
		return 0, fmt.Errorf("expected exactly one book id")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid book id %q", c.Args().First())
	}
	return id, nil
}

func (con *console) addCommand(c *cli.Context) error {
	if c.Args().Len() != 3 {
		return fmt.Errorf("add requires TITLE AUTHOR YEAR")
	}
	year, err := strconv.Atoi(c.Args().Get(2))
	if err != nil {
		return fmt.Errorf("invalid year %q", c.Args().Get(2))
	}

	s, err := open(c)
	if err != nil {
		return err
	}
	defer s.Close()

	b, err := s.svc.CreateBook(library.CreateBookRequest{
		Title:  c.Args().Get(0),
		Author: c.Args().Get(1),
		Year:   year,
	})
	var exists *shelf.ExistsError
	if errors.As(err, &exists) {
		return fmt.Errorf("book with same title, author and year already exists with id %d", exists.ID)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(con.out, "Book created")
	con.printBook(b)
	return nil
}

func (con *console) deleteCommand(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	s, err := open(c)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.svc.DeleteBook(id); err != nil {
		if errors.Is(err, shelf.ErrNotFound) {
			return fmt.Errorf("book with id %d not found", id)
		}
		return err
	}
	fmt.Fprintln(con.out, "Book deleted")
	return nil
}

func (con *console) statusCommand(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	take, ret := c.Bool("take"), c.Bool("return")
	if take == ret {
		return fmt.Errorf("exactly one of --take or --return is required")
	}
	status := shelf.Available
	if take {
		status = shelf.Taken
	}

	s, err := open(c)
	if err != nil {
		return err
	}
	defer s.Close()

	_, err = s.svc.UpdateStatus(id, status)
	switch {
	case errors.Is(err, shelf.ErrAlreadyInLibrary):
		return fmt.Errorf("book already in library")
	case errors.Is(err, shelf.ErrAlreadyTaken):
		return fmt.Errorf("book already taken from library")
	case errors.Is(err, shelf.ErrNotFound):
		return fmt.Errorf("book not found")
	case err != nil:
		return err
	}

	fmt.Fprintln(con.out, "Book updated")
	return nil
}

func (con *console) searchCommand(c *cli.Context) error {
	f := shelf.Filter{
		Title:  c.String("title"),
		Author: c.String("author"),
	}
	if c.IsSet("year") {
		year := c.Int("year")
		f.Year = &year
	}
	return con.browse(c, f)
}

// allCommand is search without filters.
func (con *console) allCommand(c *cli.Context) error {
	return con.browse(c, shelf.Filter{})
}

// browse prints one page of matching books. On a terminal it then offers
// to move to the next or previous page until there is nowhere left to go
// or the user quits.
func (con *console) browse(c *cli.Context, f shelf.Filter) error {
	s, err := open(c)
	if err != nil {
		return err
	}
	defer s.Close()

	p := shelf.PageOf(c.Int("page"), s.cfg.Main.PageSize)
	for {
		res := s.svc.FindBooks(f, p)

		fmt.Fprintln(con.out, separator)
		for _, b := range res.Data {
			con.printBook(b)
			fmt.Fprintln(con.out, separator)
		}
		pg := res.Pagination
		fmt.Fprintf(con.out, "Page %d of %d (total books: %d)\n", pg.Number(), pg.Pages(), pg.Total)

		if !con.interactive {
			return nil
		}

		var prompt string
		switch {
		case pg.HasNext() && pg.HasPrev():
			prompt = "Next/Prev (N/P)"
		case pg.HasNext():
			prompt = "Next (N)"
		case pg.HasPrev():
			prompt = "Prev (P)"
		default:
			return nil
		}

		next, ok := con.choose(prompt, pg)
		if !ok {
			return nil
		}
		p = next
	}
}

// choose reads page navigation input until a valid move is entered. It
// returns false when input ends or the user quits.
func (con *console) choose(prompt string, pg shelf.PageResult) (shelf.Page, bool) {
	for {
		fmt.Fprintf(con.out, "Select page change: %s, Q to quit: ", prompt)
		line, err := con.in.ReadString('\n')
		choice := strings.ToLower(strings.TrimSpace(line))
		if choice == "" {
			if err != nil {
				fmt.Fprintln(con.out)
				return shelf.Page{}, false
			}
			fmt.Fprintln(con.out, "Invalid choice")
			continue
		}

		switch choice[0] {
		case 'n', '>':
			if pg.HasNext() {
				return pg.Next(), true
			}
			fmt.Fprintln(con.out, "Next page not available")
		case 'p', '<':
			if pg.HasPrev() {
				return pg.Prev(), true
			}
			fmt.Fprintln(con.out, "Previous page not available")
		case 'q':
			return shelf.Page{}, false
		default:
			fmt.Fprintln(con.out, "Invalid choice")
		}
		if err != nil {
			return shelf.Page{}, false
		}
	}
}

func (con *console) importCommand(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("import requires FILE")
	}

	f, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	s, err := open(c)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.svc.Import(c.Context, f)
	con.printReport(report)
	return err
}

func (con *console) printReport(r library.ImportReport) {
	w := con.out
	for _, issue := range r.Invalid {
		fmt.Fprintf(w, "skipped entry %d (%q): %v\n", issue.Index, issue.Title, issue.Err)
	}
	for _, issue := range r.Duplicates {
		fmt.Fprintf(w, "skipped entry %d (%q): %v\n", issue.Index, issue.Title, issue.Err)
	}
	fmt.Fprintf(w, "Imported %d books, %d duplicates, %d invalid\n",
		len(r.Added), len(r.Duplicates), len(r.Invalid))
}
