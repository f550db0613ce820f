package fs_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ocx-dev/ocx/internal/adapters/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestHasher_HashComponent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "skills/helper/SKILL.md", "hello")
	writeFile(t, root, "skills/helper/extra.md", "world")

	hasher := fs.NewHasher()

	content, perFile, err := hasher.HashComponent(root, []string{"skills/helper/SKILL.md", "skills/helper/extra.md"})
	require.NoError(t, err)
	assert.Len(t, content, 64)
	assert.Len(t, perFile, 2)

	t.Run("order independent", func(t *testing.T) {
		t.Parallel()
		reversed, _, err := fs.NewHasher().HashComponent(root, []string{"skills/helper/extra.md", "skills/helper/SKILL.md"})
		require.NoError(t, err)
		assert.Equal(t, content, reversed)
	})

	t.Run("content sensitive", func(t *testing.T) {
		t.Parallel()
		other := t.TempDir()
		writeFile(t, other, "skills/helper/SKILL.md", "hellO")
		writeFile(t, other, "skills/helper/extra.md", "world")

		changed, changedPerFile, err := fs.NewHasher().HashComponent(other, []string{"skills/helper/SKILL.md", "skills/helper/extra.md"})
		require.NoError(t, err)
		assert.NotEqual(t, content, changed)
		assert.NotEqual(t, perFile["skills/helper/SKILL.md"], changedPerFile["skills/helper/SKILL.md"])
		assert.Equal(t, perFile["skills/helper/extra.md"], changedPerFile["skills/helper/extra.md"])
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, _, err := fs.NewHasher().HashComponent(root, []string{"skills/helper/gone.md"})
		require.Error(t, err)
	})
}

func TestWalker_WalkFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "AGENTS.md", "a")
	writeFile(t, root, "src/main.x", "b")
	writeFile(t, root, ".git/config", "c")

	var paths []string
	for path := range fs.NewWalker().WalkFiles(root) {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	assert.Equal(t, []string{"AGENTS.md", "src/main.x"}, paths)
}
