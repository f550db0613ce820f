package commands_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ocx-dev/ocx/cmd/ocx/commands"
	"github.com/ocx-dev/ocx/internal/app"
	"github.com/ocx-dev/ocx/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockApp struct {
	addFunc        func(ctx context.Context, specs []string, opts app.AddOptions) (domain.Plan, []domain.LockEntry, error)
	diffFunc       func(ctx context.Context, componentID string, fix bool) ([]domain.Drift, error)
	searchFunc     func(ctx context.Context, query string, installedOnly bool) ([]domain.SearchResult, error)
	runFunc        func(ctx context.Context, override, target string, argv []string) error
	registryAdd    func(ctx context.Context, name, url, version string) error
	profileUseFunc func(name string) error
	ghostInitFunc  func() (domain.Profile, domain.ProfileSource, error)
}

func (m *mockApp) Init(context.Context) error { return nil }

func (m *mockApp) Add(ctx context.Context, specs []string, opts app.AddOptions) (domain.Plan, []domain.LockEntry, error) {
	if m.addFunc != nil {
		return m.addFunc(ctx, specs, opts)
	}
	return domain.Plan{}, nil, nil
}

func (m *mockApp) Update(context.Context, []string) (domain.Plan, []domain.LockEntry, error) {
	return domain.Plan{}, nil, nil
}

func (m *mockApp) Diff(ctx context.Context, componentID string, fix bool) ([]domain.Drift, error) {
	if m.diffFunc != nil {
		return m.diffFunc(ctx, componentID, fix)
	}
	return nil, nil
}

func (m *mockApp) RegistryAdd(ctx context.Context, name, url, version string) error {
	if m.registryAdd != nil {
		return m.registryAdd(ctx, name, url, version)
	}
	return nil
}

func (m *mockApp) RegistryRemove(context.Context, string) error { return nil }

func (m *mockApp) RegistryList(context.Context) ([]domain.Registry, bool, error) {
	return nil, false, nil
}

func (m *mockApp) Search(ctx context.Context, query string, installedOnly bool) ([]domain.SearchResult, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query, installedOnly)
	}
	return nil, nil
}

func (m *mockApp) GhostInit() (domain.Profile, domain.ProfileSource, error) {
	if m.ghostInitFunc != nil {
		return m.ghostInitFunc()
	}
	return domain.SeedProfile(domain.DefaultProfileName), domain.SourceDefault, nil
}

func (m *mockApp) ProfileCreate(name, _ string) (domain.Profile, error) {
	return domain.SeedProfile(name), nil
}

func (m *mockApp) ProfileUse(name string) error {
	if m.profileUseFunc != nil {
		return m.profileUseFunc(name)
	}
	return nil
}

func (m *mockApp) ProfileList() ([]string, string, error) { return nil, "", nil }

func (m *mockApp) ProfileShow(string) (domain.Profile, domain.ProfileSource, error) {
	return domain.SeedProfile(domain.DefaultProfileName), domain.SourceDefault, nil
}

func (m *mockApp) ProfileRemove(string) error { return nil }

func (m *mockApp) ProfileRegistryAdd(_, _, _, _ string) error { return nil }

func (m *mockApp) ProfileRegistryRemove(_, _ string) error { return nil }

func (m *mockApp) ProfileAdd(context.Context, string, []string, app.AddOptions) (domain.Plan, []domain.LockEntry, error) {
	return domain.Plan{}, nil, nil
}

func (m *mockApp) Run(ctx context.Context, override, target string, argv []string) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, override, target, argv)
	}
	return nil
}

func execute(t *testing.T, mock *mockApp, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cli := commands.New(mock)
	cli.SetArgs(args)
	cli.SetOutput(&out, &errOut)
	err := cli.Execute(context.Background())
	return out.String(), err
}

func TestCommands_Add(t *testing.T) {
	t.Run("wires flags and arguments", func(t *testing.T) {
		var capturedSpecs []string
		var capturedOpts app.AddOptions
		mock := &mockApp{
			addFunc: func(_ context.Context, specs []string, opts app.AddOptions) (domain.Plan, []domain.LockEntry, error) {
				capturedSpecs = specs
				capturedOpts = opts
				return domain.Plan{}, nil, nil
			},
		}

		_, err := execute(t, mock, "add", "core/helper@^1.0.0", "--overwrite")
		require.NoError(t, err)
		assert.Equal(t, []string{"core/helper@^1.0.0"}, capturedSpecs)
		assert.True(t, capturedOpts.Overwrite)
	})

	t.Run("requires at least one component", func(t *testing.T) {
		_, err := execute(t, &mockApp{}, "add")
		require.Error(t, err)
	})

	t.Run("propagates errors", func(t *testing.T) {
		mock := &mockApp{
			addFunc: func(context.Context, []string, app.AddOptions) (domain.Plan, []domain.LockEntry, error) {
				return domain.Plan{}, nil, domain.ErrPathConflict
			},
		}
		_, err := execute(t, mock, "add", "helper")
		require.ErrorIs(t, err, domain.ErrPathConflict)
	})
}

func TestCommands_Diff(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var capturedID string
	var capturedFix bool
	mock := &mockApp{
		diffFunc: func(_ context.Context, componentID string, fix bool) ([]domain.Drift, error) {
			capturedID = componentID
			capturedFix = fix
			return []domain.Drift{{ComponentID: "core/helper", Path: "skills/helper/SKILL.md", Kind: domain.DriftModified}}, nil
		},
	}

	out, err := execute(t, mock, "diff", "core/helper", "--fix")
	require.NoError(t, err)
	assert.Equal(t, "core/helper", capturedID)
	assert.True(t, capturedFix)
	assert.Contains(t, out, "skills/helper/SKILL.md")
}

func TestCommands_Search(t *testing.T) {
	var capturedQuery string
	var capturedInstalled bool
	mock := &mockApp{
		searchFunc: func(_ context.Context, query string, installedOnly bool) ([]domain.SearchResult, error) {
			capturedQuery = query
			capturedInstalled = installedOnly
			return nil, nil
		},
	}

	_, err := execute(t, mock, "search", "review", "--installed")
	require.NoError(t, err)
	assert.Equal(t, "review", capturedQuery)
	assert.True(t, capturedInstalled)
}

func TestCommands_RegistryAdd(t *testing.T) {
	var name, url, version string
	mock := &mockApp{
		registryAdd: func(_ context.Context, n, u, v string) error {
			name, url, version = n, u, v
			return nil
		},
	}

	_, err := execute(t, mock, "registry", "add", "core", "https://core.example.com", "--pin", "1.2.0")
	require.NoError(t, err)
	assert.Equal(t, "core", name)
	assert.Equal(t, "https://core.example.com", url)
	assert.Equal(t, "1.2.0", version)
}

func TestCommands_GhostRun(t *testing.T) {
	var target, override string
	var argv []string
	mock := &mockApp{
		runFunc: func(_ context.Context, o, tgt string, a []string) error {
			override, target, argv = o, tgt, a
			return nil
		},
	}

	_, err := execute(t, mock, "ghost", "run", "/tmp/repo", "--profile", "work", "--", "git", "status")
	require.NoError(t, err)
	assert.Equal(t, "work", override)
	assert.Equal(t, "/tmp/repo", target)
	assert.Equal(t, []string{"git", "status"}, argv)
}

func TestCommands_GhostInit(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	called := false
	mock := &mockApp{ghostInitFunc: func() (domain.Profile, domain.ProfileSource, error) {
		called = true
		return domain.SeedProfile(domain.DefaultProfileName), domain.SourceDefault, nil
	}}

	out, err := execute(t, mock, "ghost", "init")
	require.NoError(t, err)
	assert.True(t, called)
	assert.Contains(t, out, domain.DefaultProfileName)
}

func TestCommands_GhostProfileUse(t *testing.T) {
	var used string
	mock := &mockApp{profileUseFunc: func(name string) error {
		used = name
		return nil
	}}

	_, err := execute(t, mock, "ghost", "profile", "use", "work")
	require.NoError(t, err)
	assert.Equal(t, "work", used)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ocx version "))
}

func TestCommands_UnknownCommand(t *testing.T) {
	_, err := execute(t, &mockApp{}, "definitely-not-a-command")
	require.Error(t, err)
}

func TestCommands_ErrorsAreSilenced(t *testing.T) {
	mock := &mockApp{
		addFunc: func(context.Context, []string, app.AddOptions) (domain.Plan, []domain.LockEntry, error) {
			return domain.Plan{}, nil, errors.New("simulated")
		},
	}

	var out, errOut bytes.Buffer
	cli := commands.New(mock)
	cli.SetArgs([]string{"add", "helper"})
	cli.SetOutput(&out, &errOut)

	err := cli.Execute(context.Background())
	require.Error(t, err)
	assert.NotContains(t, errOut.String(), "simulated", "errors are returned, not printed by cobra")
}
