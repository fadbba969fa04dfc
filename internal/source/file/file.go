// Package file implements a record source backed by JSON files on disk.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/atricence/voxdata/internal/domain"
	"github.com/atricence/voxdata/internal/domain/record"
)

// Source loads dataset collections from JSON files under a base directory.
// Loaded collections are cached keyed by file modification time: an
// unchanged file reuses the previous snapshot, a changed mtime triggers a
// full reload. For a fixed backing file every load observes the same
// collection, which keeps query results deterministic.
type Source struct {
	dir   string
	files map[string]string // dataset -> file name

	mu    sync.Mutex
	cache map[string]cached
}

type cached struct {
	modTime time.Time
	records []record.Record
}

// New creates a file source. files maps dataset identifiers to file names
// relative to dir.
func New(dir string, files map[string]string) *Source {
	return &Source{
		dir:   dir,
		files: files,
		cache: make(map[string]cached),
	}
}

// Load reads the dataset's JSON file, reusing the cached snapshot when the
// file has not changed since the previous load.
func (s *Source) Load(_ context.Context, dataset string) ([]record.Record, error) {
	name, ok := s.files[dataset]
	if !ok {
		return nil, fmt.Errorf("%w: no file mapped for dataset %q", domain.ErrUnknownDataset, dataset)
	}
	path := filepath.Join(s.dir, filepath.Clean(name))

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", domain.ErrSourceUnavailable, path, err)
	}

	s.mu.Lock()
	if c, ok := s.cache[dataset]; ok && c.modTime.Equal(info.ModTime()) {
		s.mu.Unlock()
		return c.records, nil
	}
	s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrSourceUnavailable, path, err)
	}

	records, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrSourceUnavailable, path, err)
	}

	s.mu.Lock()
	s.cache[dataset] = cached{modTime: info.ModTime(), records: records}
	s.mu.Unlock()

	return records, nil
}

// Ping verifies the base directory is readable.
func (s *Source) Ping(_ context.Context) error {
	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("data directory %s: %w", s.dir, err)
	}
	return nil
}

// decode accepts either a bare JSON array of records or an object wrapping
// the array under "data" (both layouts exist in the wild for these files).
func decode(data []byte) ([]record.Record, error) {
	var records []record.Record
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var wrapped struct {
		Data []record.Record `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("unmarshal records: %w", err)
	}
	if wrapped.Data == nil {
		return nil, fmt.Errorf("unmarshal records: no array found")
	}
	return wrapped.Data, nil
}
