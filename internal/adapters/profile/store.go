// Package profile implements the on-disk profile store used by ghost mode.
// Profiles live under the ocx home directory, each with its own
// configuration, component tree and lockfile.
package profile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/ocx-dev/ocx/internal/core/domain"
	"github.com/ocx-dev/ocx/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// EnvHome overrides where profiles are stored.
	EnvHome = "OCX_HOME"
	// EnvProfile selects the current profile for a single environment.
	EnvProfile = "OCX_PROFILE"

	profileFilename = "profile.yaml"
	pointerFilename = "current"
)

var nameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

var _ ports.ProfileStore = (*Store)(nil)

// Store persists profiles below home/profiles/<name>/.
type Store struct {
	home string
	mu   sync.Mutex
}

// NewStore creates a profile store rooted at home.
func NewStore(home string) *Store {
	return &Store{home: filepath.Clean(home)}
}

// Home resolves the profile home directory: OCX_HOME if set, otherwise
// the user config directory.
func Home() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve user config directory")
	}
	return filepath.Join(base, "ocx"), nil
}

// Dir returns the profile's private directory. Its components/ subdirectory
// holds the profile's own component tree and lockfile.
func (s *Store) Dir(name string) string {
	return filepath.Join(s.home, "profiles", name)
}

// List returns the names of all profiles, sorted.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(filepath.Join(s.home, "profiles"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, "failed to list profiles")
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.Dir(entry.Name()), profileFilename)); err != nil {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Create creates a profile by cloning cloneFrom, or the implicit seed when
// cloneFrom is empty. The new profile starts with an empty component tree;
// cloning copies configuration only.
func (s *Store) Create(name, cloneFrom string) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !nameRe.MatchString(name) {
		return domain.Profile{}, zerr.With(zerr.New("invalid profile name"), "name", name)
	}
	if _, err := s.read(name); err == nil {
		return domain.Profile{}, zerr.With(domain.ErrProfileExists, "name", name)
	}

	profile := domain.SeedProfile(name)
	if cloneFrom != "" {
		source, err := s.read(cloneFrom)
		if err != nil {
			return domain.Profile{}, err
		}
		profile = source
		profile.Name = name
	}

	if err := s.write(profile); err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}

// Get returns a profile by name.
func (s *Store) Get(name string) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(name)
}

// Save persists a profile's configuration.
func (s *Store) Save(profile domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.read(profile.Name); err != nil {
		return err
	}
	return s.write(profile)
}

// Use sets the persisted "current" pointer.
func (s *Store) Use(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.read(name); err != nil {
		return err
	}
	return s.writePointer(name)
}

// Current resolves the current profile. The override wins over OCX_PROFILE,
// which wins over the persisted pointer. With none of those set, the
// implicit default profile is created on first use.
func (s *Store) Current(override string) (domain.Profile, domain.ProfileSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if override != "" {
		profile, err := s.read(override)
		return profile, domain.SourceOverride, err
	}
	if name := os.Getenv(EnvProfile); name != "" {
		profile, err := s.read(name)
		return profile, domain.SourceEnvironment, err
	}

	if name, err := s.readPointer(); err != nil {
		return domain.Profile{}, "", err
	} else if name != "" {
		profile, err := s.read(name)
		return profile, domain.SourcePointer, err
	}

	profile, err := s.read(domain.DefaultProfileName)
	if errors.Is(err, domain.ErrProfileNotFound) {
		profile = domain.SeedProfile(domain.DefaultProfileName)
		if err := s.write(profile); err != nil {
			return domain.Profile{}, "", err
		}
		return profile, domain.SourceDefault, nil
	}
	return profile, domain.SourceDefault, err
}

// Remove deletes a profile together with its component tree. The current
// profile cannot be removed.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.read(name); err != nil {
		return err
	}

	current, err := s.readPointer()
	if err != nil {
		return err
	}
	if current == "" {
		current = domain.DefaultProfileName
	}
	if name == current || name == os.Getenv(EnvProfile) {
		return zerr.With(domain.ErrCannotRemoveActiveProfile, "name", name)
	}

	if err := os.RemoveAll(s.Dir(name)); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove profile"), "name", name)
	}
	return nil
}

func (s *Store) read(name string) (domain.Profile, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(name), profileFilename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Profile{}, zerr.With(domain.ErrProfileNotFound, "name", name)
		}
		return domain.Profile{}, zerr.With(zerr.Wrap(err, "failed to read profile"), "name", name)
	}

	var profile domain.Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return domain.Profile{}, zerr.With(zerr.Wrap(err, "failed to parse profile"), "name", name)
	}
	if profile.Name == "" {
		profile.Name = name
	}
	if profile.ComponentPath == "" {
		profile.ComponentPath = domain.DefaultComponentPath
	}
	return profile, nil
}

func (s *Store) write(profile domain.Profile) error {
	dir := s.Dir(profile.Name)
	if err := os.MkdirAll(filepath.Join(dir, "components"), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create profile directory")
	}

	data, err := yaml.Marshal(profile)
	if err != nil {
		return zerr.Wrap(err, "failed to marshal profile")
	}

	tmp, err := os.CreateTemp(dir, profileFilename+".tmp-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create profile temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to write profile temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to close profile temp file")
	}
	if err := os.Rename(tmpName, filepath.Join(dir, profileFilename)); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to replace profile file")
	}
	return nil
}

func (s *Store) readPointer() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.home, pointerFilename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", zerr.Wrap(err, "failed to read current profile pointer")
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *Store) writePointer(name string) error {
	if err := os.MkdirAll(s.home, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create ocx home")
	}
	if err := os.WriteFile(filepath.Join(s.home, pointerFilename), []byte(name+"\n"), 0o644); err != nil {
		return zerr.Wrap(err, "failed to write current profile pointer")
	}
	return nil
}
