package profile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ocx-dev/ocx/internal/adapters/profile"
	"github.com/ocx-dev/ocx/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *profile.Store {
	t.Helper()
	t.Setenv(profile.EnvProfile, "")
	return profile.NewStore(t.TempDir())
}

func TestStore_CreateSeedsDefaults(t *testing.T) {
	s := newStore(t)

	created, err := s.Create("work", "")
	require.NoError(t, err)
	assert.Equal(t, "work", created.Name)
	assert.Equal(t, domain.DefaultComponentPath, created.ComponentPath)
	assert.Contains(t, created.Exclude, "**/node_modules/**")

	got, err := s.Get("work")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	info, err := os.Stat(filepath.Join(s.Dir("work"), "components"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStore_CreateRejectsDuplicate(t *testing.T) {
	s := newStore(t)

	_, err := s.Create("work", "")
	require.NoError(t, err)

	_, err = s.Create("work", "")
	require.ErrorIs(t, err, domain.ErrProfileExists)
}

func TestStore_CreateRejectsInvalidName(t *testing.T) {
	s := newStore(t)

	for _, name := range []string{"", "Work", "../escape", "a b"} {
		_, err := s.Create(name, "")
		assert.Error(t, err, "name %q", name)
	}
}

func TestStore_CreateClonesConfiguration(t *testing.T) {
	s := newStore(t)

	source, err := s.Create("work", "")
	require.NoError(t, err)
	source.Include = []string{"src/**"}
	source.MaxFiles = 500
	require.NoError(t, s.Save(source))

	clone, err := s.Create("scratch", "work")
	require.NoError(t, err)
	assert.Equal(t, "scratch", clone.Name)
	assert.Equal(t, []string{"src/**"}, clone.Include)
	assert.Equal(t, 500, clone.MaxFiles)
}

func TestStore_CloneFromUnknownProfile(t *testing.T) {
	s := newStore(t)

	_, err := s.Create("scratch", "nope")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestStore_ListSorted(t *testing.T) {
	s := newStore(t)

	for _, name := range []string{"work", "demo", "scratch"} {
		_, err := s.Create(name, "")
		require.NoError(t, err)
	}

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"demo", "scratch", "work"}, names)
}

func TestStore_ListEmptyHome(t *testing.T) {
	s := newStore(t)

	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStore_CurrentCreatesImplicitDefault(t *testing.T) {
	s := newStore(t)

	current, source, err := s.Current("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProfileName, current.Name)
	assert.Equal(t, domain.SourceDefault, source)

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{domain.DefaultProfileName}, names)
}

func TestStore_CurrentPrecedence(t *testing.T) {
	s := newStore(t)

	for _, name := range []string{"pointed", "manual", "envied"} {
		_, err := s.Create(name, "")
		require.NoError(t, err)
	}
	require.NoError(t, s.Use("pointed"))

	current, source, err := s.Current("")
	require.NoError(t, err)
	assert.Equal(t, "pointed", current.Name)
	assert.Equal(t, domain.SourcePointer, source)

	t.Setenv(profile.EnvProfile, "envied")
	current, source, err = s.Current("")
	require.NoError(t, err)
	assert.Equal(t, "envied", current.Name)
	assert.Equal(t, domain.SourceEnvironment, source)

	current, source, err = s.Current("manual")
	require.NoError(t, err)
	assert.Equal(t, "manual", current.Name)
	assert.Equal(t, domain.SourceOverride, source)
}

func TestStore_CurrentUnknownOverride(t *testing.T) {
	s := newStore(t)

	_, _, err := s.Current("nope")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestStore_UseUnknownProfile(t *testing.T) {
	s := newStore(t)

	err := s.Use("nope")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestStore_RemoveActiveProfileRejected(t *testing.T) {
	s := newStore(t)

	_, err := s.Create("work", "")
	require.NoError(t, err)
	require.NoError(t, s.Use("work"))

	err = s.Remove("work")
	require.ErrorIs(t, err, domain.ErrCannotRemoveActiveProfile)
}

func TestStore_RemoveImplicitDefaultRejected(t *testing.T) {
	s := newStore(t)

	_, _, err := s.Current("")
	require.NoError(t, err)

	err = s.Remove(domain.DefaultProfileName)
	require.ErrorIs(t, err, domain.ErrCannotRemoveActiveProfile)
}

func TestStore_RemoveDeletesTree(t *testing.T) {
	s := newStore(t)

	for _, name := range []string{"work", "scratch"} {
		_, err := s.Create(name, "")
		require.NoError(t, err)
	}
	require.NoError(t, s.Use("work"))

	require.NoError(t, s.Remove("scratch"))

	_, err := s.Get("scratch")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
	_, statErr := os.Stat(s.Dir("scratch"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestStore_SaveRoundtrips(t *testing.T) {
	s := newStore(t)

	created, err := s.Create("work", "")
	require.NoError(t, err)
	created.Registries = []domain.Registry{{Name: "core", BaseURL: "https://registry.example.com"}}
	created.Include = []string{"docs/**"}
	require.NoError(t, s.Save(created))

	got, err := s.Get("work")
	require.NoError(t, err)
	assert.Equal(t, created, got)
}
