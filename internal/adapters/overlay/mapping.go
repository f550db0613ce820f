package overlay

import (
	"iter"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ocx-dev/ocx/internal/core/domain"
	"go.trai.ch/zerr"
)

// Walker enumerates files below a directory.
type Walker interface {
	WalkFiles(root string) iter.Seq[string]
}

// Entry maps one virtual path inside the overlay to the real file backing it.
type Entry struct {
	// Virtual is the slash-separated path relative to the overlay root.
	Virtual string
	// Real is the absolute path of the backing file.
	Real string
}

// Mapping is the ephemeral, session-scoped projection of a target
// repository combined with a profile's component tree. It is owned by the
// session that built it and never persists.
type Mapping struct {
	// Entries are sorted by virtual path. Paths under the profile's
	// component path are backed by the profile tree, everything else by the
	// target repository.
	Entries []Entry

	// Hidden lists target repository files excluded by the profile's
	// visibility rules, sorted.
	Hidden []string
}

// visibility compiles a profile's include and exclude globs. A path is
// visible only if it matches some include pattern (or Include is empty) and
// matches no exclude pattern.
type visibility struct {
	include []string
	exclude []string
}

func newVisibility(profile domain.Profile) (*visibility, error) {
	for _, pattern := range append(append([]string{}, profile.Include...), profile.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, zerr.With(zerr.New("invalid glob pattern"), "pattern", pattern)
		}
	}
	return &visibility{include: profile.Include, exclude: profile.Exclude}, nil
}

func (v *visibility) visible(rel string) bool {
	for _, pattern := range v.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	if len(v.include) == 0 {
		return true
	}
	for _, pattern := range v.include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// buildMapping projects the target tree through the profile's visibility
// rules and layers the profile component tree at componentPath. Profile
// files shadow target files on the same virtual path.
func buildMapping(profile domain.Profile, target, componentDir string, walker Walker) (*Mapping, error) {
	rules, err := newVisibility(profile)
	if err != nil {
		return nil, err
	}

	byVirtual := make(map[string]string)
	hidden := make([]string, 0)
	for rel := range walker.WalkFiles(target) {
		if !rules.visible(rel) {
			hidden = append(hidden, rel)
			continue
		}
		byVirtual[rel] = filepath.Join(target, filepath.FromSlash(rel))
	}

	for rel := range walker.WalkFiles(componentDir) {
		byVirtual[path.Join(profile.ComponentPath, rel)] = filepath.Join(componentDir, filepath.FromSlash(rel))
	}

	entries := make([]Entry, 0, len(byVirtual))
	for virtual, real := range byVirtual {
		entries = append(entries, Entry{Virtual: virtual, Real: real})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Virtual < entries[j].Virtual })
	sort.Strings(hidden)

	if profile.MaxFiles > 0 && len(entries) > profile.MaxFiles {
		err := zerr.With(domain.ErrOverlayTooLarge, "entries", len(entries))
		return nil, zerr.With(err, "maxFiles", profile.MaxFiles)
	}
	return &Mapping{Entries: entries, Hidden: hidden}, nil
}
