package audit_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ocx-dev/ocx/internal/adapters/audit"
	"github.com/ocx-dev/ocx/internal/adapters/fs"
	"github.com/ocx-dev/ocx/internal/adapters/lockfile"
	"github.com/ocx-dev/ocx/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	engine *audit.Engine
	store  *lockfile.Store
	root   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	root := t.TempDir()
	store, err := lockfile.NewStore(filepath.Join(root, ".ocx", lockfile.Filename))
	require.NoError(t, err)

	hasher := fs.NewHasher()
	return &harness{
		engine: audit.New(store, hasher, fs.NewWalker(), root),
		store:  store,
		root:   root,
	}
}

// record writes the given files below root and records a lock entry whose
// hashes match the on-disk content.
func (h *harness) record(t *testing.T, id string, files map[string]string) domain.LockEntry {
	t.Helper()

	paths := make([]string, 0, len(files))
	for rel, content := range files {
		full := filepath.Join(h.root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
		paths = append(paths, rel)
	}

	contentHash, perFile, err := fs.NewHasher().HashComponent(h.root, paths)
	require.NoError(t, err)

	entry := domain.LockEntry{
		ComponentID:    id,
		Registry:       "core",
		Version:        "1.0.0",
		ContentHash:    contentHash,
		InstalledFiles: paths,
		FileHashes:     perFile,
		InstalledAt:    time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	require.NoError(t, h.store.Record(entry))
	return entry
}

func TestEngine_CleanTree(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.record(t, "core/review-helper", map[string]string{
		"skills/review-helper/SKILL.md":    "# Review Helper",
		"skills/review-helper/checklist.md": "- tests pass",
	})

	drifts, err := h.engine.Diff("")
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestEngine_ReportsModified(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.record(t, "core/review-helper", map[string]string{
		"skills/review-helper/SKILL.md": "# Review Helper",
	})

	full := filepath.Join(h.root, "skills", "review-helper", "SKILL.md")
	require.NoError(t, os.WriteFile(full, []byte("# Edited"), 0o644))

	drifts, err := h.engine.Diff("")
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, domain.DriftModified, drifts[0].Kind)
	assert.Equal(t, "skills/review-helper/SKILL.md", drifts[0].Path)
	assert.Equal(t, "core/review-helper", drifts[0].ComponentID)
}

func TestEngine_ReportsMissing(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.record(t, "core/review-helper", map[string]string{
		"skills/review-helper/SKILL.md":    "# Review Helper",
		"skills/review-helper/checklist.md": "- tests pass",
	})

	require.NoError(t, os.Remove(filepath.Join(h.root, "skills", "review-helper", "checklist.md")))

	drifts, err := h.engine.Diff("")
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, domain.DriftMissing, drifts[0].Kind)
	assert.Equal(t, "skills/review-helper/checklist.md", drifts[0].Path)
}

func TestEngine_ReportsAdded(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.record(t, "core/review-helper", map[string]string{
		"skills/review-helper/SKILL.md": "# Review Helper",
	})

	stray := filepath.Join(h.root, "skills", "review-helper", "notes.md")
	require.NoError(t, os.WriteFile(stray, []byte("scratch"), 0o644))

	drifts, err := h.engine.Diff("")
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, domain.DriftAdded, drifts[0].Kind)
	assert.Equal(t, "skills/review-helper/notes.md", drifts[0].Path)
}

func TestEngine_SharedDirectoryOwnership(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.record(t, "core/a", map[string]string{"skills/shared/a.md": "a"})
	h.record(t, "core/b", map[string]string{"skills/shared/b.md": "b"})

	drifts, err := h.engine.Diff("")
	require.NoError(t, err)
	assert.Empty(t, drifts, "files owned by sibling components are not additions")

	fixed, err := h.engine.Fix("")
	require.NoError(t, err)
	assert.Empty(t, fixed)

	// A genuinely untracked file in the shared directory is still caught.
	stray := filepath.Join(h.root, "skills", "shared", "stray.md")
	require.NoError(t, os.WriteFile(stray, []byte("scratch"), 0o644))

	drifts, err = h.engine.Diff("")
	require.NoError(t, err)
	require.Len(t, drifts, 2, "both owners of the directory report the stray file")
	assert.Equal(t, "skills/shared/stray.md", drifts[0].Path)
	assert.Equal(t, "skills/shared/stray.md", drifts[1].Path)

	// Fixing adopts the stray into exactly one entry.
	fixed, err = h.engine.Fix("")
	require.NoError(t, err)
	require.Len(t, fixed, 1)
	assert.Equal(t, "core/a", fixed[0].ComponentID)

	a, err := h.store.Get("core/a")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Contains(t, a.InstalledFiles, "skills/shared/stray.md")

	b, err := h.store.Get("core/b")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, []string{"skills/shared/b.md"}, b.InstalledFiles)

	drifts, err = h.engine.Diff("")
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestEngine_ScopedToComponent(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.record(t, "core/review-helper", map[string]string{
		"skills/review-helper/SKILL.md": "# Review Helper",
	})
	h.record(t, "core/formatter", map[string]string{
		"tools/formatter/run.sh": "#!/bin/sh",
	})

	require.NoError(t, os.Remove(filepath.Join(h.root, "tools", "formatter", "run.sh")))

	drifts, err := h.engine.Diff("core/review-helper")
	require.NoError(t, err)
	assert.Empty(t, drifts)

	drifts, err = h.engine.Diff("core/formatter")
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, domain.DriftMissing, drifts[0].Kind)
}

func TestEngine_UnknownComponent(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	_, err := h.engine.Diff("core/nope")
	require.ErrorIs(t, err, domain.ErrComponentNotFound)
}

func TestEngine_SortedOutput(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.record(t, "core/b", map[string]string{"skills/b/SKILL.md": "b"})
	h.record(t, "core/a", map[string]string{"skills/a/SKILL.md": "a"})

	require.NoError(t, os.Remove(filepath.Join(h.root, "skills", "a", "SKILL.md")))
	require.NoError(t, os.Remove(filepath.Join(h.root, "skills", "b", "SKILL.md")))

	drifts, err := h.engine.Diff("")
	require.NoError(t, err)
	require.Len(t, drifts, 2)
	assert.Equal(t, "core/a", drifts[0].ComponentID)
	assert.Equal(t, "core/b", drifts[1].ComponentID)
}

func TestEngine_FixRebaselines(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.record(t, "core/review-helper", map[string]string{
		"skills/review-helper/SKILL.md":    "# Review Helper",
		"skills/review-helper/checklist.md": "- tests pass",
	})

	require.NoError(t, os.WriteFile(filepath.Join(h.root, "skills", "review-helper", "SKILL.md"), []byte("# Edited"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(h.root, "skills", "review-helper", "checklist.md")))
	require.NoError(t, os.WriteFile(filepath.Join(h.root, "skills", "review-helper", "notes.md"), []byte("scratch"), 0o644))

	fixed, err := h.engine.Fix("")
	require.NoError(t, err)
	assert.Len(t, fixed, 3)

	entry, err := h.store.Get("core/review-helper")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, []string{
		"skills/review-helper/SKILL.md",
		"skills/review-helper/notes.md",
	}, entry.InstalledFiles)

	drifts, err := h.engine.Diff("")
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestEngine_FixCleanIsNoop(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	before := h.record(t, "core/review-helper", map[string]string{
		"skills/review-helper/SKILL.md": "# Review Helper",
	})

	fixed, err := h.engine.Fix("")
	require.NoError(t, err)
	assert.Empty(t, fixed)

	entry, err := h.store.Get("core/review-helper")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, before.ContentHash, entry.ContentHash)
	assert.Equal(t, before.UpdatedAt, entry.UpdatedAt)
}
