// Package audit implements drift detection between the lockfile and the
// installed tree.
package audit

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/ocx-dev/ocx/internal/core/domain"
	"github.com/ocx-dev/ocx/internal/core/ports"
	"go.trai.ch/zerr"
)

// Engine recomputes hashes of installed files and reports drift against the
// lock entries. An empty report is the success state.
type Engine struct {
	store  ports.LockStore
	hasher ports.Hasher
	walker Walker
	root   string
}

// Walker enumerates files below a directory.
type Walker interface {
	WalkFiles(root string) iter.Seq[string]
}

// New creates an Engine auditing the tree below root.
func New(store ports.LockStore, hasher ports.Hasher, walker Walker, root string) *Engine {
	return &Engine{store: store, hasher: hasher, walker: walker, root: root}
}

// Diff audits one component, or every installed component when componentID
// is empty. Results are sorted by component id then path.
func (e *Engine) Diff(componentID string) ([]domain.Drift, error) {
	all, err := e.store.All()
	if err != nil {
		return nil, err
	}
	entries, err := scopeEntries(all, componentID)
	if err != nil {
		return nil, err
	}

	// Ownership spans the whole lockfile: a path installed by another
	// component in a shared directory is not an addition.
	owned := make(map[string]bool)
	for _, entry := range all {
		for _, rel := range entry.InstalledFiles {
			owned[rel] = true
		}
	}

	drifts := make([]domain.Drift, 0)
	for _, entry := range entries {
		found, err := e.diffEntry(entry, owned)
		if err != nil {
			return nil, err
		}
		drifts = append(drifts, found...)
	}

	sort.Slice(drifts, func(i, j int) bool {
		if drifts[i].ComponentID != drifts[j].ComponentID {
			return drifts[i].ComponentID < drifts[j].ComponentID
		}
		return drifts[i].Path < drifts[j].Path
	})
	return drifts, nil
}

// Fix re-records each drifted component from the current on-disk state:
// missing files are dropped from the entry, modified and added files under
// the component's directories are adopted with fresh hashes. Callers must
// hold the project write lock.
func (e *Engine) Fix(componentID string) ([]domain.Drift, error) {
	drifts, err := e.Diff(componentID)
	if err != nil {
		return nil, err
	}
	if len(drifts) == 0 {
		return nil, nil
	}

	byComponent := make(map[string][]domain.Drift)
	ids := make([]string, 0)
	for _, d := range drifts {
		if _, ok := byComponent[d.ComponentID]; !ok {
			ids = append(ids, d.ComponentID)
		}
		byComponent[d.ComponentID] = append(byComponent[d.ComponentID], d)
	}
	sort.Strings(ids)

	// A stray file in a directory shared by several components is reported
	// once per owner; only the first (by id) adopts it, keeping installed
	// paths unique across entries.
	adopted := make(map[string]bool)
	applied := make([]domain.Drift, 0, len(drifts))

	for _, id := range ids {
		entry, err := e.store.Get(id)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			continue
		}

		files := make(map[string]bool, len(entry.InstalledFiles))
		for _, p := range entry.InstalledFiles {
			files[p] = true
		}
		for _, d := range byComponent[id] {
			switch d.Kind {
			case domain.DriftMissing:
				delete(files, d.Path)
			case domain.DriftAdded:
				if adopted[d.Path] {
					continue
				}
				adopted[d.Path] = true
				files[d.Path] = true
			case domain.DriftModified:
				// Re-hashing below adopts the new content.
			}
			applied = append(applied, d)
		}

		kept := make([]string, 0, len(files))
		for p := range files {
			kept = append(kept, p)
		}
		sort.Strings(kept)

		contentHash, perFile, err := e.hasher.HashComponent(e.root, kept)
		if err != nil {
			return nil, zerr.With(err, "component", id)
		}

		entry.InstalledFiles = kept
		entry.ContentHash = contentHash
		entry.FileHashes = perFile
		entry.UpdatedAt = time.Now().UTC()
		if err := e.store.Record(*entry); err != nil {
			return nil, err
		}
	}
	return applied, nil
}

func scopeEntries(all []domain.LockEntry, componentID string) ([]domain.LockEntry, error) {
	if componentID == "" {
		return all, nil
	}
	for _, entry := range all {
		if entry.ComponentID == componentID {
			return []domain.LockEntry{entry}, nil
		}
	}
	return nil, zerr.With(domain.ErrComponentNotFound, "component", componentID)
}

func (e *Engine) diffEntry(entry domain.LockEntry, owned map[string]bool) ([]domain.Drift, error) {
	drifts := make([]domain.Drift, 0)

	for _, rel := range entry.InstalledFiles {
		full := filepath.Join(e.root, filepath.FromSlash(rel))

		if _, err := os.Stat(full); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				drifts = append(drifts, domain.Drift{ComponentID: entry.ComponentID, Path: rel, Kind: domain.DriftMissing})
				continue
			}
			return nil, zerr.With(zerr.Wrap(err, "failed to stat installed file"), "path", rel)
		}

		hash, err := e.hasher.HashFile(full)
		if err != nil {
			return nil, err
		}
		if recorded, ok := entry.FileHashes[rel]; ok && hash != recorded {
			drifts = append(drifts, domain.Drift{ComponentID: entry.ComponentID, Path: rel, Kind: domain.DriftModified})
		}
	}

	// Files under the component's directories that no lock entry owns are
	// reported as added. Directories are derived from the installed paths,
	// so explicit target overrides audit their own parent directories.
	for _, dir := range componentDirs(entry) {
		full := filepath.Join(e.root, filepath.FromSlash(dir))
		if _, err := os.Stat(full); err != nil {
			continue
		}
		for rel := range e.walker.WalkFiles(full) {
			var candidate string
			if dir == "." {
				candidate = rel
			} else {
				candidate = path.Join(dir, rel)
			}
			if !owned[candidate] {
				drifts = append(drifts, domain.Drift{ComponentID: entry.ComponentID, Path: candidate, Kind: domain.DriftAdded})
			}
		}
	}

	return drifts, nil
}

// componentDirs returns the unique directories containing the entry's files,
// skipping the install root itself so components installed at top level do
// not claim the whole project as theirs.
func componentDirs(entry domain.LockEntry) []string {
	seen := make(map[string]bool)
	dirs := make([]string, 0, 1)
	for _, rel := range entry.InstalledFiles {
		dir := path.Dir(rel)
		if dir == "." || seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}
