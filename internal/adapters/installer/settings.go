package installer

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ocx-dev/ocx/internal/core/domain"
	"go.trai.ch/zerr"
)

// SettingsFilename is the aggregate configuration document inside .ocx.
const SettingsFilename = "settings.json"

// Settings persists the project's aggregate configuration: the per-component
// fragments, their install order and the folded document.
type Settings struct {
	path string
	mu   sync.Mutex
	cfg  *domain.AggregateConfig
}

// LoadSettings opens (or initializes) the settings document at path.
func LoadSettings(path string) (*Settings, error) {
	s := &Settings{
		path: filepath.Clean(path),
		cfg:  domain.NewAggregateConfig(),
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, zerr.Wrap(err, "failed to read settings")
	}
	if len(data) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, s.cfg); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to unmarshal settings"), "path", s.path)
	}
	if s.cfg.Fragments == nil {
		s.cfg.Fragments = make(map[string]map[string]any)
	}
	return s, nil
}

// Apply folds a component's config fragment into the aggregate and persists.
func (s *Settings) Apply(componentID string, fragment map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.SetFragment(componentID, fragment)
	return s.save()
}

// Drop removes a component's fragment and persists.
func (s *Settings) Drop(componentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.RemoveFragment(componentID)
	return s.save()
}

// Merged returns the folded configuration document.
func (s *Settings) Merged() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Merged
}

// save uses the same write-temp-then-rename discipline as the lockfile.
func (s *Settings) save() error {
	data, err := json.MarshalIndent(s.cfg, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal settings")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create settings directory")
	}

	tmp, err := os.CreateTemp(dir, SettingsFilename+".tmp-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create settings temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to write settings temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to close settings temp file")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to replace settings")
	}
	return nil
}
