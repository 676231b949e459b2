package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

func main() {
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	app := newApp(os.Stdin, os.Stdout, interactive)

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR]: %v\n", err)
		os.Exit(1)
	}
}

// console carries the streams commands read from and print to. Paging
// prompts are only shown when interactive is set.
type console struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

func newApp(in io.Reader, out io.Writer, interactive bool) *cli.App {
	con := &console{in: bufio.NewReader(in), out: out, interactive: interactive}

	return &cli.App{
		Name:      "shelf",
		Usage:     "Book library catalog",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   "configs/config.toml",
				EnvVars: []string{"SHELF_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a book",
				ArgsUsage: "TITLE AUTHOR YEAR",
				Action:    con.addCommand,
			},
			{
				Name:      "delete",
				Usage:     "Delete a book by id",
				ArgsUsage: "ID",
				Action:    con.deleteCommand,
			},
			{
				Name:   "search",
				Usage:  "Search books by title, author or year",
				Action: con.searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Part of the book title"},
					&cli.StringFlag{Name: "author", Usage: "Part of the author name"},
					&cli.IntFlag{Name: "year", Usage: "Year of publication"},
					pageFlag(),
				},
			},
			{
				Name:   "all",
				Usage:  "List all books",
				Action: con.allCommand,
				Flags:  []cli.Flag{pageFlag()},
			},
			{
				Name:      "status",
				Usage:     "Change a book's status",
				ArgsUsage: "ID",
				Action:    con.statusCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "take", Usage: "Mark the book as taken"},
					&cli.BoolFlag{Name: "return", Usage: "Mark the book as available"},
				},
			},
			{
				Name:      "import",
				Usage:     "Import books from a JSON file",
				ArgsUsage: "FILE",
				Action:    con.importCommand,
			},
		},
	}
}

func pageFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "page",
		Usage: "Page number to start from",
		Value: 1,
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
