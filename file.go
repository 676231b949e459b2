// File provider.
//
// The document lives in one file. Writes never touch that file in place:
// the new content goes to a sibling .tmp file which is then renamed over
// the original, so a crash leaves either the old or the new catalog, never
// a torn one. A leftover .tmp from an interrupted write is removed when the
// provider is opened.
//
// All access goes through an os.Root for the catalog's directory, so the
// file name cannot escape it.
package shelf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileOptions configures a File provider.
type FileOptions struct {
	Compress   bool // store as a zstd frame
	SyncWrites bool // fsync the temp file before renaming
}

// File is a Provider backed by a single file.
type File struct {
	root *os.Root
	name string
	opts FileOptions
}

// OpenFile opens a File provider for path, creating its directory if
// needed. The file itself is created on the first write.
func OpenFile(path string, opts FileOptions) (*File, error) {
	dir, name := filepath.Split(path)
	if name == "" {
		return nil, fmt.Errorf("open: %q is a directory", path)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open: mkdir: %w", err)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	// Interrupted write from a previous run
	if err := root.Remove(name + ".tmp"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		root.Close()
		return nil, fmt.Errorf("open: remove temp: %w", err)
	}

	return &File{root: root, name: name, opts: opts}, nil
}

// Read returns the stored document, decompressed if it was written
// compressed. A missing file reads as nil.
func (f *File) Read() ([]byte, error) {
	data, err := f.root.ReadFile(f.name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return decompress(data)
}

// Write replaces the stored document.
func (f *File) Write(data []byte) error {
	if f.opts.Compress {
		data = compress(data)
	}

	tmpName := f.name + ".tmp"
	tmp, err := f.root.Create(tmpName)
	if err != nil {
		return fmt.Errorf("write: create temp: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		f.root.Remove(tmpName)
		return fmt.Errorf("write: %w", err)
	}
	if f.opts.SyncWrites {
		if err := tmp.Sync(); err != nil {
			tmp.Close()
			f.root.Remove(tmpName)
			return fmt.Errorf("write: sync: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		f.root.Remove(tmpName)
		return fmt.Errorf("write: close temp: %w", err)
	}

	if err := f.root.Rename(tmpName, f.name); err != nil {
		f.root.Remove(tmpName)
		return fmt.Errorf("write: rename: %w", err)
	}
	return nil
}

// Close releases the directory handle.
func (f *File) Close() error {
	return f.root.Close()
}
