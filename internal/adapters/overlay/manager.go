// Package overlay implements ghost mode: an ephemeral projection of a
// profile's component tree onto a foreign repository, materialized as a
// symlink farm and discarded without mutating the repository.
package overlay

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/ocx-dev/ocx/internal/core/domain"
	"github.com/ocx-dev/ocx/internal/core/ports"
	"go.trai.ch/zerr"
)

// Session is one active ghost overlay. It is scoped to a single process
// invocation and must be ended to release its marker.
type Session struct {
	Profile domain.Profile
	// Target is the absolute path of the real repository.
	Target string
	// Root is the materialized overlay directory. Tools run with this as
	// their working tree.
	Root string
	// Mapping is the projection the session was built from.
	Mapping *Mapping

	marker   string
	baseline map[string]uint64
}

// Manager builds and tears down ghost sessions. The profile's private
// component directory is resolved through the profile store, so a session
// never reads the target repository's own lockfile.
type Manager struct {
	profiles ports.ProfileStore
	walker   Walker
	log      ports.Logger
	scratch  string
}

// NewManager creates a Manager keeping session directories and markers
// below scratch.
func NewManager(profiles ports.ProfileStore, walker Walker, log ports.Logger, scratch string) *Manager {
	return &Manager{profiles: profiles, walker: walker, log: log, scratch: scratch}
}

// Begin builds the overlay mapping for profile over target and materializes
// it. A second session for the same profile and target is rejected with
// ErrSessionActive. The maxFiles ceiling is checked before anything is
// written.
func (m *Manager) Begin(profile domain.Profile, target string) (*Session, error) {
	target, err := filepath.Abs(target)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve target path")
	}
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return nil, zerr.With(zerr.New("target is not a directory"), "target", target)
	}

	componentDir := filepath.Join(m.profiles.Dir(profile.Name), "components")
	mapping, err := buildMapping(profile, target, componentDir, m.walker)
	if err != nil {
		return nil, err
	}

	marker, err := m.claimMarker(profile, target)
	if err != nil {
		return nil, err
	}

	session := &Session{
		Profile:  profile,
		Target:   target,
		Mapping:  mapping,
		marker:   marker,
		baseline: make(map[string]uint64),
	}
	if err := m.materialize(session); err != nil {
		m.discard(session)
		return nil, err
	}

	m.log.Debug("ghost session started",
		"profile", profile.Name,
		"target", target,
		"entries", len(mapping.Entries),
		"hidden", len(mapping.Hidden))
	return session, nil
}

// End synchronizes files newly created under the session's component path
// back into the real repository, then discards the overlay and releases the
// session marker. The mapping leaves no other trace.
func (m *Manager) End(session *Session) error {
	synced, err := m.sync(session)
	if err != nil {
		return err
	}

	m.discard(session)
	m.log.Debug("ghost session ended",
		"profile", session.Profile.Name,
		"target", session.Target,
		"synced", synced)
	return nil
}

// claimMarker creates the session marker, keyed by profile and target.
func (m *Manager) claimMarker(profile domain.Profile, target string) (string, error) {
	if err := os.MkdirAll(m.scratch, 0o750); err != nil {
		return "", zerr.Wrap(err, "failed to create session directory")
	}

	digest := xxhash.Sum64String(profile.Name + "\x00" + target)
	marker := filepath.Join(m.scratch, fmt.Sprintf("session-%016x.marker", digest))

	f, err := os.OpenFile(marker, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			err := zerr.With(domain.ErrSessionActive, "profile", profile.Name)
			return "", zerr.With(err, "target", target)
		}
		return "", zerr.Wrap(err, "failed to create session marker")
	}
	_, _ = fmt.Fprintf(f, "%s\n%s\n", profile.Name, target)
	if err := f.Close(); err != nil {
		return "", zerr.Wrap(err, "failed to write session marker")
	}
	return marker, nil
}

// materialize lays the mapping out as a symlink farm and records the
// baseline digests of the component area.
func (m *Manager) materialize(session *Session) error {
	root, err := os.MkdirTemp(m.scratch, "overlay-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create overlay directory")
	}
	session.Root = root

	for _, entry := range session.Mapping.Entries {
		virtual := filepath.Join(root, filepath.FromSlash(entry.Virtual))
		if err := os.MkdirAll(filepath.Dir(virtual), 0o750); err != nil {
			return zerr.Wrap(err, "failed to create overlay directory")
		}
		if err := os.Symlink(entry.Real, virtual); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to link overlay file"), "path", entry.Virtual)
		}

		if underComponentPath(session.Profile, entry.Virtual) {
			digest, err := hashFile(entry.Real)
			if err != nil {
				return err
			}
			session.baseline[entry.Virtual] = digest
		}
	}

	// Version control operations inside the overlay observe the real
	// repository's history and working tree.
	realGit := filepath.Join(session.Target, ".git")
	if _, err := os.Stat(realGit); err == nil {
		if err := os.Symlink(realGit, filepath.Join(root, ".git")); err != nil {
			return zerr.Wrap(err, "failed to link repository metadata")
		}
	}
	return nil
}

// sync copies files created or rewritten under the component path into the
// real repository, creating parent directories as needed.
func (m *Manager) sync(session *Session) (int, error) {
	area := filepath.Join(session.Root, filepath.FromSlash(session.Profile.ComponentPath))
	if _, err := os.Stat(area); err != nil {
		return 0, nil
	}

	synced := 0
	for rel := range m.walker.WalkFiles(area) {
		full := filepath.Join(area, filepath.FromSlash(rel))
		info, err := os.Lstat(full)
		if err != nil {
			return synced, zerr.Wrap(err, "failed to inspect overlay file")
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			continue
		}

		virtual := session.Profile.ComponentPath + "/" + rel
		digest, err := hashFile(full)
		if err != nil {
			return synced, err
		}
		if recorded, ok := session.baseline[virtual]; ok && recorded == digest {
			continue
		}

		dest := filepath.Join(session.Target, filepath.FromSlash(virtual))
		if err := copyFile(full, dest); err != nil {
			return synced, zerr.With(err, "path", virtual)
		}
		synced++
	}
	return synced, nil
}

func (m *Manager) discard(session *Session) {
	if session.Root != "" {
		if err := os.RemoveAll(session.Root); err != nil {
			m.log.Warn("failed to remove overlay directory", "path", session.Root)
		}
	}
	if err := os.Remove(session.marker); err != nil {
		m.log.Warn("failed to remove session marker", "path", session.marker)
	}
}

func underComponentPath(profile domain.Profile, virtual string) bool {
	return strings.HasPrefix(virtual, profile.ComponentPath+"/")
}

func hashFile(path string) (uint64, error) {
	//nolint:gosec // Paths come from the session's own mapping
	f, err := os.Open(path)
	if err != nil {
		return 0, zerr.Wrap(err, "failed to open file for hashing")
	}
	defer func() { _ = f.Close() }()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, zerr.Wrap(err, "failed to hash file")
	}
	return h.Sum64(), nil
}

func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory")
	}

	in, err := os.Open(src)
	if err != nil {
		return zerr.Wrap(err, "failed to open source file")
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return zerr.Wrap(err, "failed to create destination file")
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.Wrap(err, "failed to copy file")
	}
	return out.Close()
}
