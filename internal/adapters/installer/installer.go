// Package installer materializes resolved components into the target tree
// and records lock entries for them.
package installer

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ocx-dev/ocx/internal/core/domain"
	"github.com/ocx-dev/ocx/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// fetchParallelism bounds concurrent file fetches for one component.
const fetchParallelism = 8

// Options control installation behavior.
type Options struct {
	// Overwrite allows claiming a path already owned by another component.
	// The losing component's entry gives up the path.
	Overwrite bool
}

// Installer installs plan entries in order. Each component is the unit of
// atomicity: a failure rolls back that component's files and records nothing
// for it, while earlier completed components stay installed.
type Installer struct {
	client   ports.RegistryClient
	store    ports.LockStore
	hasher   ports.Hasher
	log      ports.Logger
	root     string
	settings *Settings
}

// New creates an Installer writing below root.
func New(
	client ports.RegistryClient,
	store ports.LockStore,
	hasher ports.Hasher,
	log ports.Logger,
	root string,
	settings *Settings,
) *Installer {
	return &Installer{
		client:   client,
		store:    store,
		hasher:   hasher,
		log:      log,
		root:     root,
		settings: settings,
	}
}

// Install applies the plan in order and returns the lock entries of every
// component that completed. On error the returned entries cover the
// components installed before the failure.
func (i *Installer) Install(ctx context.Context, plan domain.Plan, registries []domain.Registry, opts Options) ([]domain.LockEntry, error) {
	regByName := make(map[string]domain.Registry, len(registries))
	for _, reg := range registries {
		regByName[reg.Name] = reg
	}

	completed := make([]domain.LockEntry, 0, len(plan.Entries))
	for _, entry := range plan.Entries {
		if err := ctx.Err(); err != nil {
			return completed, zerr.Wrap(err, "install canceled")
		}

		reg, ok := regByName[entry.ID.Registry]
		if !ok {
			err := zerr.With(zerr.New("plan references unconfigured registry"), "registry", entry.ID.Registry)
			return completed, zerr.With(err, "component", entry.ID.String())
		}

		locked, err := i.installOne(ctx, reg, entry, opts)
		if err != nil {
			return completed, err
		}
		completed = append(completed, locked)
		i.log.Info("installed", "component", entry.ID.String(), "version", entry.Version)
	}
	return completed, nil
}

func (i *Installer) installOne(ctx context.Context, reg domain.Registry, entry domain.PlanEntry, opts Options) (domain.LockEntry, error) {
	id := entry.ID.String()

	targets, err := i.targetPaths(entry)
	if err != nil {
		return domain.LockEntry{}, err
	}

	if err := i.checkConflicts(id, targets, opts); err != nil {
		return domain.LockEntry{}, err
	}

	contents, err := i.fetchFiles(ctx, reg, entry)
	if err != nil {
		return domain.LockEntry{}, err
	}

	written := make([]string, 0, len(targets))
	rollback := func() {
		for _, rel := range written {
			_ = os.Remove(filepath.Join(i.root, filepath.FromSlash(rel)))
		}
	}

	for idx, mapping := range entry.Manifest.Files {
		rel := targets[idx]
		full := filepath.Join(i.root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
			rollback()
			return domain.LockEntry{}, zerr.With(zerr.Wrap(err, "failed to create target directory"), "path", rel)
		}
		//nolint:gosec // Target paths are validated against root escapes
		if err := os.WriteFile(full, contents[mapping.Source], 0o644); err != nil {
			rollback()
			err = zerr.With(zerr.Wrap(err, "failed to write component file"), "component", id)
			return domain.LockEntry{}, zerr.With(err, "path", rel)
		}
		written = append(written, rel)
	}

	// The recorded hash is computed from the bytes on disk, never from the
	// registry's claimed hash.
	contentHash, perFile, err := i.hasher.HashComponent(i.root, written)
	if err != nil {
		rollback()
		return domain.LockEntry{}, zerr.With(err, "component", id)
	}

	locked := domain.LockEntry{
		ComponentID:    id,
		Registry:       entry.ID.Registry,
		Version:        entry.Version,
		ContentHash:    contentHash,
		InstalledFiles: written,
		FileHashes:     perFile,
		InstalledAt:    time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	var previous *domain.LockEntry
	if prev, err := i.store.Get(id); err == nil && prev != nil {
		previous = prev
		locked.InstalledAt = prev.InstalledAt
	}

	// The fragment folds in before the entry is recorded so a recorded
	// component never lacks its configuration.
	if len(entry.Manifest.Config) > 0 {
		if err := i.settings.Apply(id, entry.Manifest.Config); err != nil {
			rollback()
			return domain.LockEntry{}, zerr.With(err, "component", id)
		}
	}

	if err := i.store.Record(locked); err != nil {
		if len(entry.Manifest.Config) > 0 {
			_ = i.settings.Drop(id)
		}
		rollback()
		return domain.LockEntry{}, err
	}

	// Files owned by the previous version but absent from this one are
	// stale and would otherwise surface as drift.
	if previous != nil {
		current := make(map[string]bool, len(written))
		for _, rel := range written {
			current[rel] = true
		}
		for _, rel := range previous.InstalledFiles {
			if !current[rel] {
				_ = os.Remove(filepath.Join(i.root, filepath.FromSlash(rel)))
			}
		}
	}

	return locked, nil
}

// targetPaths computes the install paths for a component: the per-type
// directory convention unless an explicit target override is declared.
// Two declared files resolving to the same target would shadow each other,
// so duplicates are rejected with the escape check.
func (i *Installer) targetPaths(entry domain.PlanEntry) ([]string, error) {
	targets := make([]string, len(entry.Manifest.Files))
	seen := make(map[string]string, len(entry.Manifest.Files))
	for idx, mapping := range entry.Manifest.Files {
		rel := mapping.Target
		if rel == "" {
			rel = path.Join(entry.Manifest.Type.Dir(), entry.Manifest.Name, mapping.Source)
		}
		rel = path.Clean(filepath.ToSlash(rel))
		if path.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, "../") {
			err := zerr.With(zerr.New("target path escapes install root"), "path", mapping.Target)
			return nil, zerr.With(err, "component", entry.ID.String())
		}
		if other, ok := seen[rel]; ok {
			err := zerr.With(domain.ErrPathConflict, "path", rel)
			err = zerr.With(err, "sources", other+", "+mapping.Source)
			return nil, zerr.With(err, "component", entry.ID.String())
		}
		seen[rel] = mapping.Source
		targets[idx] = rel
	}
	return targets, nil
}

// checkConflicts fails with ErrPathConflict when a target path is already
// owned by a different component, naming both owners. With the overwrite
// flag the conflicting paths are ceded by their current owners instead, so
// the unique-path invariant holds either way.
func (i *Installer) checkConflicts(id string, targets []string, opts Options) error {
	entries, err := i.store.All()
	if err != nil {
		return err
	}

	wanted := make(map[string]bool, len(targets))
	for _, rel := range targets {
		wanted[rel] = true
	}

	for _, existing := range entries {
		if existing.ComponentID == id {
			continue
		}
		conflicting := make([]string, 0)
		for _, p := range existing.InstalledFiles {
			if wanted[p] {
				conflicting = append(conflicting, p)
			}
		}
		if len(conflicting) == 0 {
			continue
		}

		if !opts.Overwrite {
			err := zerr.With(domain.ErrPathConflict, "path", conflicting[0])
			err = zerr.With(err, "component", id)
			return zerr.With(err, "owner", existing.ComponentID)
		}

		if err := i.cedePaths(existing, conflicting); err != nil {
			return err
		}
	}
	return nil
}

// cedePaths removes the given paths from an entry and re-records it.
func (i *Installer) cedePaths(entry domain.LockEntry, paths []string) error {
	ceded := make(map[string]bool, len(paths))
	for _, p := range paths {
		ceded[p] = true
	}

	kept := entry.InstalledFiles[:0:0]
	for _, p := range entry.InstalledFiles {
		if !ceded[p] {
			kept = append(kept, p)
		}
	}
	entry.InstalledFiles = kept
	for p := range ceded {
		delete(entry.FileHashes, p)
	}

	// The aggregate hash covers the remaining files only.
	contentHash, perFile, err := i.hasher.HashComponent(i.root, kept)
	if err != nil {
		return zerr.With(err, "component", entry.ComponentID)
	}
	entry.ContentHash = contentHash
	entry.FileHashes = perFile
	entry.UpdatedAt = time.Now().UTC()
	return i.store.Record(entry)
}

// fetchFiles fetches every declared file before anything is written, in
// parallel; fetches are read-only and independent.
func (i *Installer) fetchFiles(ctx context.Context, reg domain.Registry, entry domain.PlanEntry) (map[string][]byte, error) {
	contents := make(map[string][]byte, len(entry.Manifest.Files))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchParallelism)

	for _, mapping := range entry.Manifest.Files {
		g.Go(func() error {
			data, err := i.client.FetchFile(gctx, reg, entry.Manifest.Name, mapping.Source)
			if err != nil {
				return zerr.With(err, "component", entry.ID.String())
			}
			mu.Lock()
			contents[mapping.Source] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return contents, nil
}
