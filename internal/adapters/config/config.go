// Package config loads and persists the project configuration at
// .ocx/config.yaml. Registry declaration order is priority order, so the
// document's key order is preserved across load and save.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ocx-dev/ocx/internal/core/domain"
	"go.trai.ch/zerr"
)

// Filename is the project configuration name inside the .ocx directory.
const Filename = "config.yaml"

// Project is the parsed project configuration.
type Project struct {
	// Registries in priority order.
	Registries []domain.Registry

	// LockRegistries rejects registry add and remove when true; the
	// registry set is managed outside the tool.
	LockRegistries bool
}

// Registry returns the named registry, or false.
func (p *Project) Registry(name string) (domain.Registry, bool) {
	for _, reg := range p.Registries {
		if reg.Name == name {
			return reg, true
		}
	}
	return domain.Registry{}, false
}

// Store reads and writes the configuration document.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a config store for the document at path.
func NewStore(path string) *Store {
	return &Store{path: filepath.Clean(path)}
}

// Exists reports whether the configuration document is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load parses the document. A missing document yields an empty
// configuration; ErrNotInitialized is the caller's call to make.
func (s *Store) Load() (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Project{}, nil
		}
		return nil, zerr.Wrap(err, "failed to read project config")
	}

	project, err := parse(data)
	if err != nil {
		return nil, zerr.With(err, "path", s.path)
	}
	return project, nil
}

// Save writes the document, keeping registry order, with write-temp-then-
// rename discipline.
func (s *Store) Save(project *Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, reg := range project.Registries {
		if err := reg.Validate(); err != nil {
			return err
		}
	}

	data, err := render(project)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create config directory")
	}

	tmp, err := os.CreateTemp(dir, Filename+".tmp-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create config temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to write config temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to close config temp file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to replace config file")
	}
	return nil
}
