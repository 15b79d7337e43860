package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/richardlehane/mscfb"
)

// Compound lists bitmap streams stored inside an OLE2 compound file.
// Streams are read into memory when opened.
type Compound struct {
	path    string
	file    *os.File
	doc     *mscfb.Reader
	options Options

	mu sync.Mutex // mscfb.Reader is not safe for concurrent reads
}

// NewCompound opens the compound file at path.
func NewCompound(path string, opts Options) (*Compound, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open compound file: %w", err)
	}

	doc, err := mscfb.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to parse OLE2 document: %w", err)
	}

	return &Compound{
		path:    path,
		file:    f,
		doc:     doc,
		options: opts,
	}, nil
}

// List implements the Source interface. Items are named by their stream
// path joined with "/" and sorted. Storages are skipped even when their
// name matches the extension.
func (c *Compound) List() ([]Item, error) {
	var items []Item
	for _, entry := range c.doc.File {
		if entry.FileInfo().IsDir() || !c.options.matches(entry.Name) {
			continue
		}

		s := &stream{entry: entry, mu: &c.mu}
		items = append(items, Item{
			Name: streamPath(entry.Path, entry.Name),
			Size: entry.Size,
			open: s.open,
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// Close releases the underlying file.
func (c *Compound) Close() error {
	if c.file != nil {
		return c.file.Close()
	}
	return nil
}

func (c *Compound) String() string {
	return c.path
}

// stream reads an entry once; mscfb entries cannot be rewound.
type stream struct {
	entry *mscfb.File
	mu    *sync.Mutex
	once  sync.Once
	data  []byte
	err   error
}

func (s *stream) open() (io.ReadSeekCloser, error) {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.data, s.err = io.ReadAll(s.entry)
	})
	if s.err != nil {
		return nil, fmt.Errorf("failed to read stream %s: %w", s.entry.Name, s.err)
	}
	return nopCloser{bytes.NewReader(s.data)}, nil
}

func streamPath(dirs []string, name string) string {
	if len(dirs) == 0 {
		return name
	}
	return strings.Join(dirs, "/") + "/" + name
}
