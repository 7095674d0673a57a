package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/ZaguanLabs/localeflow"
)

// FileSource loads the canonical source document from a JSON file on every
// call, so edits to the file are picked up without a restart. The pipeline
// treats the source as read-only.
type FileSource struct {
	path string
}

// NewFileSource creates a source provider reading the given JSON file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load reads and parses the source document.
func (f *FileSource) Load(_ context.Context) (*localeflow.Value, error) {
	data, err := os.ReadFile(f.path) // #nosec G304 - path is operator-configured
	if err != nil {
		return nil, fmt.Errorf("reading source file: %w", err)
	}
	doc, err := localeflow.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing source file %s: %w", f.path, err)
	}
	if doc.Kind() != localeflow.KindObject {
		return nil, fmt.Errorf("source file %s: document root must be an object", f.path)
	}
	return doc, nil
}

// StaticSource serves a fixed in-memory document. Tests and examples use it
// to simulate source publishes by swapping the document.
type StaticSource struct {
	mu  sync.RWMutex
	doc *localeflow.Value
}

// NewStaticSource creates a source provider around the given document.
func NewStaticSource(doc *localeflow.Value) *StaticSource {
	return &StaticSource{doc: doc}
}

// Load returns a deep copy of the current document.
func (s *StaticSource) Load(_ context.Context) (*localeflow.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, fmt.Errorf("no source document published")
	}
	return s.doc.Clone(), nil
}

// Publish replaces the source document, simulating a content publish.
func (s *StaticSource) Publish(doc *localeflow.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
}

var (
	_ localeflow.SourceProvider = (*FileSource)(nil)
	_ localeflow.SourceProvider = (*StaticSource)(nil)
)
