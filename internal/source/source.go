// Package source enumerates the bitmap files a batch converts.
package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtension is the file extension a batch picks up by default.
const DefaultExtension = ".bmp"

// Source is the interface for bitmap inputs.
type Source interface {
	// List returns the items to convert, in a stable order.
	List() ([]Item, error)

	// Close releases any resources held by the source.
	Close() error

	// String describes the source for progress output and reports.
	String() string
}

// Item is one bitmap inside a source.
type Item struct {
	Name string // display name, also used to derive the output name
	Size int64  // size in bytes, -1 if unknown

	open func() (io.ReadSeekCloser, error)
}

// Open returns a reader positioned at the start of the item.
func (it Item) Open() (io.ReadSeekCloser, error) {
	if it.open == nil {
		return nil, fmt.Errorf("item %s has no opener", it.Name)
	}
	return it.open()
}

// Stem returns the base name of the item without its extension.
func (it Item) Stem() string {
	base := filepath.Base(it.Name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Kind represents an input kind.
type Kind int

const (
	KindUnknown Kind = iota
	KindDir
	KindFile
	KindCompound // OLE2 compound file
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindDir:
		return "dir"
	case KindFile:
		return "file"
	case KindCompound:
		return "compound"
	default:
		return "unknown"
	}
}

// oleMagic is the OLE2/CFBF signature.
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// DetectKind detects the kind of input at path.
func DetectKind(path string) (Kind, error) {
	info, err := os.Stat(path)
	if err != nil {
		return KindUnknown, err
	}
	if info.IsDir() {
		return KindDir, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer f.Close()

	return DetectKindFromReader(f)
}

// DetectKindFromReader detects a single-file kind by reading magic bytes.
func DetectKindFromReader(r io.ReaderAt) (Kind, error) {
	buf := make([]byte, len(oleMagic))
	n, err := r.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return KindUnknown, fmt.Errorf("failed to read magic bytes: %w", err)
	}

	if n == len(oleMagic) && bytes.Equal(buf, oleMagic) {
		return KindCompound, nil
	}
	return KindFile, nil
}

// Options contains source configuration options.
type Options struct {
	Extension string // case-insensitive, with or without the leading dot
}

// DefaultOptions returns default source options.
func DefaultOptions() Options {
	return Options{
		Extension: DefaultExtension,
	}
}

// matches reports whether name carries the configured extension.
func (o Options) matches(name string) bool {
	ext := o.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.EqualFold(filepath.Ext(name), ext)
}

// Open opens the input at path as a Source of the detected kind.
func Open(path string, opts Options) (Source, error) {
	kind, err := DetectKind(path)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindDir:
		return NewDir(path, opts), nil
	case KindFile:
		return NewFile(path), nil
	case KindCompound:
		return NewCompound(path, opts)
	default:
		return nil, fmt.Errorf("unknown input kind: %s", kind)
	}
}

// nopCloser adds a no-op Close to an in-memory reader.
type nopCloser struct {
	io.ReadSeeker
}

func (nopCloser) Close() error { return nil }
