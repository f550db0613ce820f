// Package lockfile implements the integrity store: a single JSON document
// binding installed components to their resolved versions and content hashes.
package lockfile

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ocx-dev/ocx/internal/core/domain"
	"github.com/ocx-dev/ocx/internal/core/ports"
	"go.trai.ch/zerr"
)

// Filename is the lockfile name inside a project's .ocx directory.
const Filename = "ocx.lock.json"

var _ ports.LockStore = (*Store)(nil)

// Store persists the lockfile with write-temp-then-rename discipline, so a
// crash between computing entries and persisting leaves the previous
// document fully intact.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache *domain.Lockfile
}

// NewStore creates a lock store backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		cache: domain.NewLockfile(),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read lockfile")
	}
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, s.cache); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to unmarshal lockfile"), "path", s.path)
	}
	if s.cache.Installed == nil {
		s.cache.Installed = make(map[string]domain.LockEntry)
	}
	return nil
}

// save writes the document to a temp file in the same directory and renames
// it over the target, keeping every mutation atomic.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal lockfile")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create lockfile directory")
	}

	tmp, err := os.CreateTemp(dir, Filename+".tmp-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create lockfile temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to write lockfile temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to close lockfile temp file")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to replace lockfile")
	}
	return nil
}

// Record inserts or replaces the entry for its component id. It enforces the
// invariant that no installed path belongs to more than one component.
func (s *Store) Record(entry domain.LockEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.cache.Installed {
		if id == entry.ComponentID {
			continue
		}
		for _, path := range existing.InstalledFiles {
			for _, candidate := range entry.InstalledFiles {
				if path == candidate {
					err := zerr.With(domain.ErrPathConflict, "path", path)
					err = zerr.With(err, "component", entry.ComponentID)
					return zerr.With(err, "owner", id)
				}
			}
		}
	}

	sort.Strings(entry.InstalledFiles)
	s.cache.Installed[entry.ComponentID] = entry
	return s.save()
}

// Get retrieves the entry for a component id. Returns nil, nil if absent.
func (s *Store) Get(componentID string) (*domain.LockEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cache.Installed[componentID]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// Remove deletes the entry for a component id, if present.
func (s *Store) Remove(componentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache.Installed[componentID]; !ok {
		return nil
	}
	delete(s.cache.Installed, componentID)
	return s.save()
}

// All returns every entry, sorted by component id.
func (s *Store) All() ([]domain.LockEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]domain.LockEntry, 0, len(s.cache.Installed))
	for _, entry := range s.cache.Installed {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ComponentID < entries[j].ComponentID
	})
	return entries, nil
}
