package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Dir lists matching files directly inside a directory. Subdirectories are
// not descended into.
type Dir struct {
	path    string
	options Options
}

// NewDir creates a directory source.
func NewDir(path string, opts Options) *Dir {
	return &Dir{path: path, options: opts}
}

// List implements the Source interface. Items come back sorted by name.
func (d *Dir) List() ([]Item, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", d.path, err)
	}

	var items []Item
	for _, entry := range entries {
		if entry.IsDir() || !d.options.matches(entry.Name()) {
			continue
		}

		size := int64(-1)
		if info, err := entry.Info(); err == nil {
			size = info.Size()
		}

		items = append(items, fileItem(filepath.Join(d.path, entry.Name()), size))
	}
	return items, nil
}

// Close implements the Source interface.
func (d *Dir) Close() error {
	return nil
}

func (d *Dir) String() string {
	return d.path
}

// File is a single bitmap file, taken regardless of its extension.
type File struct {
	path string
}

// NewFile creates a single-file source.
func NewFile(path string) *File {
	return &File{path: path}
}

// List implements the Source interface.
func (f *File) List() ([]Item, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", f.path)
	}
	return []Item{fileItem(f.path, info.Size())}, nil
}

// Close implements the Source interface.
func (f *File) Close() error {
	return nil
}

func (f *File) String() string {
	return f.path
}

func fileItem(path string, size int64) Item {
	return Item{
		Name: path,
		Size: size,
		open: func() (io.ReadSeekCloser, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}
