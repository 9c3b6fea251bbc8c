package jsrt

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// snapshotEntry caches one entry script's source with the modification
// time it was captured at.
type snapshotEntry struct {
	ModTime time.Time
	Source  string
}

// SnapshotStore persists entry-script sources in the data home as an
// opaque blob, so startup skips re-reading an unchanged config. Entries
// are validated against the file's modification time on lookup.
type SnapshotStore struct {
	path    string
	entries map[string]snapshotEntry
	dirty   bool
}

// OpenSnapshotStore loads the blob at dir/snapshot.bin, tolerating a
// missing or corrupt file by starting empty.
func OpenSnapshotStore(dir string) *SnapshotStore {
	s := &SnapshotStore{
		path:    filepath.Join(dir, "snapshot.bin"),
		entries: make(map[string]snapshotEntry),
	}
	f, err := os.Open(s.path)
	if err != nil {
		return s
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(&s.entries); err != nil {
		s.entries = make(map[string]snapshotEntry)
	}
	return s
}

// Lookup returns the cached source for path when the file has not been
// modified since the capture.
func (s *SnapshotStore) Lookup(path string) (string, bool) {
	entry, ok := s.entries[path]
	if !ok {
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil || !info.ModTime().Equal(entry.ModTime) {
		delete(s.entries, path)
		s.dirty = true
		return "", false
	}
	return entry.Source, true
}

// Store captures the source for path at its current modification time.
func (s *SnapshotStore) Store(path, source string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	s.entries[path] = snapshotEntry{ModTime: info.ModTime(), Source: source}
	s.dirty = true
}

// Flush writes the blob back when anything changed.
func (s *SnapshotStore) Flush() error {
	if !s.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("snapshot dir: %w", err)
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("snapshot create: %w", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(s.entries); err != nil {
		return fmt.Errorf("snapshot encode: %w", err)
	}
	s.dirty = false
	return nil
}
