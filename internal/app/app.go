// Package app implements the application layer for ocx: one method per
// command, orchestrating the adapters and returning plain results for the
// CLI to render.
package app

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ocx-dev/ocx/internal/adapters/audit"
	"github.com/ocx-dev/ocx/internal/adapters/config"
	"github.com/ocx-dev/ocx/internal/adapters/installer"
	"github.com/ocx-dev/ocx/internal/adapters/lockfile"
	"github.com/ocx-dev/ocx/internal/adapters/overlay"
	"github.com/ocx-dev/ocx/internal/core/domain"
	"github.com/ocx-dev/ocx/internal/core/ports"
	"github.com/ocx-dev/ocx/internal/engine/resolver"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	config    *config.Store
	client    ports.RegistryClient
	resolver  *resolver.Resolver
	store     ports.LockStore
	guard     ports.LockGuard
	installer *installer.Installer
	audit     *audit.Engine
	profiles  ports.ProfileStore
	overlay   *overlay.Manager
	hasher    ports.Hasher
	logger    ports.Logger
}

// New creates a new App instance.
func New(
	cfg *config.Store,
	client ports.RegistryClient,
	res *resolver.Resolver,
	store ports.LockStore,
	guard ports.LockGuard,
	inst *installer.Installer,
	auditEngine *audit.Engine,
	profiles ports.ProfileStore,
	overlayManager *overlay.Manager,
	hasher ports.Hasher,
	log ports.Logger,
) *App {
	return &App{
		config:    cfg,
		client:    client,
		resolver:  res,
		store:     store,
		guard:     guard,
		installer: inst,
		audit:     auditEngine,
		profiles:  profiles,
		overlay:   overlayManager,
		hasher:    hasher,
		logger:    log,
	}
}

// Init creates the project's .ocx directory with an empty configuration.
// Re-running it on an initialized project is a no-op.
func (a *App) Init(_ context.Context) error {
	if a.config.Exists() {
		a.logger.Info("project already initialized")
		return nil
	}
	if err := a.config.Save(&config.Project{}); err != nil {
		return err
	}
	a.logger.Info("initialized project", "dir", lockfile.ProjectDir)
	return nil
}

// AddOptions control component installation.
type AddOptions struct {
	// Overwrite allows claiming a path already owned by another component.
	Overwrite bool
}

// Add resolves and installs the requested components into the project. The
// write lock is held for the duration; a concurrent operation fails fast.
func (a *App) Add(ctx context.Context, specs []string, opts AddOptions) (domain.Plan, []domain.LockEntry, error) {
	project, err := a.loadProject()
	if err != nil {
		return domain.Plan{}, nil, err
	}
	requests, err := parseRequests(specs)
	if err != nil {
		return domain.Plan{}, nil, err
	}

	release, err := a.guard.Acquire()
	if err != nil {
		return domain.Plan{}, nil, err
	}
	defer release()

	plan, err := a.resolver.Resolve(ctx, requests, project.Registries)
	if err != nil {
		return domain.Plan{}, nil, err
	}
	entries, err := a.installer.Install(ctx, plan, project.Registries, installer.Options{Overwrite: opts.Overwrite})
	return plan, entries, err
}

// Update re-resolves the named components, or every installed component when
// none are named, and reinstalls them at the highest satisfying versions.
func (a *App) Update(ctx context.Context, specs []string) (domain.Plan, []domain.LockEntry, error) {
	project, err := a.loadProject()
	if err != nil {
		return domain.Plan{}, nil, err
	}

	var requests []domain.Request
	if len(specs) == 0 {
		entries, err := a.store.All()
		if err != nil {
			return domain.Plan{}, nil, err
		}
		for _, entry := range entries {
			requests = append(requests, domain.Request{
				ID: domain.ComponentID{Registry: entry.Registry, Name: strings.TrimPrefix(entry.ComponentID, entry.Registry+"/")},
			})
		}
		if len(requests) == 0 {
			return domain.Plan{}, nil, nil
		}
	} else {
		if requests, err = parseRequests(specs); err != nil {
			return domain.Plan{}, nil, err
		}
	}

	release, err := a.guard.Acquire()
	if err != nil {
		return domain.Plan{}, nil, err
	}
	defer release()

	plan, err := a.resolver.Resolve(ctx, requests, project.Registries)
	if err != nil {
		return domain.Plan{}, nil, err
	}
	entries, err := a.installer.Install(ctx, plan, project.Registries, installer.Options{})
	return plan, entries, err
}

// Diff reports drift for one component, or all of them. With fix the
// current on-disk state is re-recorded under the write lock.
func (a *App) Diff(_ context.Context, componentID string, fix bool) ([]domain.Drift, error) {
	if _, err := a.loadProject(); err != nil {
		return nil, err
	}
	if !fix {
		return a.audit.Diff(componentID)
	}

	release, err := a.guard.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return a.audit.Fix(componentID)
}

// RegistryAdd appends a registry to the project configuration. The endpoint
// is probed through its discovery document; an unreachable registry is
// still added, with a warning.
func (a *App) RegistryAdd(ctx context.Context, name, url, version string) error {
	project, err := a.loadProject()
	if err != nil {
		return err
	}
	if project.LockRegistries {
		return zerr.With(domain.ErrRegistriesLocked, "registry", name)
	}
	if _, exists := project.Registry(name); exists {
		return zerr.With(zerr.New("registry already configured"), "registry", name)
	}

	reg := domain.Registry{Name: name, BaseURL: url, PinnedVersion: version}
	if err := reg.Validate(); err != nil {
		return err
	}

	if discovery, err := a.client.FetchDiscovery(ctx, reg); err != nil {
		a.logger.Warn("registry discovery probe failed", "registry", name)
	} else if discovery.Registry != "" {
		a.logger.Debug("registry discovered", "registry", name, "advertises", discovery.Registry)
	}

	project.Registries = append(project.Registries, reg)
	return a.config.Save(project)
}

// RegistryRemove removes a registry from the project configuration.
func (a *App) RegistryRemove(_ context.Context, name string) error {
	project, err := a.loadProject()
	if err != nil {
		return err
	}
	if project.LockRegistries {
		return zerr.With(domain.ErrRegistriesLocked, "registry", name)
	}

	kept := project.Registries[:0]
	for _, reg := range project.Registries {
		if reg.Name != name {
			kept = append(kept, reg)
		}
	}
	if len(kept) == len(project.Registries) {
		return zerr.With(zerr.New("registry not configured"), "registry", name)
	}
	project.Registries = kept
	return a.config.Save(project)
}

// RegistryList returns the configured registries in priority order, and
// whether the set is locked.
func (a *App) RegistryList(_ context.Context) ([]domain.Registry, bool, error) {
	project, err := a.loadProject()
	if err != nil {
		return nil, false, err
	}
	return project.Registries, project.LockRegistries, nil
}

// Search queries every configured registry's index for components matching
// the query, or filters the installed set when installedOnly is set.
func (a *App) Search(ctx context.Context, query string, installedOnly bool) ([]domain.SearchResult, error) {
	project, err := a.loadProject()
	if err != nil {
		return nil, err
	}

	installed := make(map[string]domain.LockEntry)
	entries, err := a.store.All()
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		installed[entry.ComponentID] = entry
	}

	if installedOnly {
		results := make([]domain.SearchResult, 0, len(entries))
		for _, entry := range entries {
			if query != "" && !strings.Contains(entry.ComponentID, query) {
				continue
			}
			results = append(results, domain.SearchResult{
				Registry:  entry.Registry,
				Installed: true,
				Summary: domain.ComponentSummary{
					Name:          strings.TrimPrefix(entry.ComponentID, entry.Registry+"/"),
					LatestVersion: entry.Version,
				},
			})
		}
		return results, nil
	}

	indexes := make([][]domain.ComponentSummary, len(project.Registries))
	g, gctx := errgroup.WithContext(ctx)
	for i, reg := range project.Registries {
		g.Go(func() error {
			index, err := a.client.FetchIndex(gctx, reg)
			if err != nil {
				return zerr.With(err, "registry", reg.Name)
			}
			indexes[i] = index
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0)
	for i, reg := range project.Registries {
		for _, summary := range indexes[i] {
			if query != "" && !matches(summary, query) {
				continue
			}
			_, isInstalled := installed[reg.Name+"/"+summary.Name]
			results = append(results, domain.SearchResult{Registry: reg.Name, Summary: summary, Installed: isInstalled})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Registry == results[j].Registry {
			return results[i].Summary.Name < results[j].Summary.Name
		}
		return false
	})
	return results, nil
}

func (a *App) loadProject() (*config.Project, error) {
	if !a.config.Exists() {
		return nil, zerr.With(domain.ErrNotInitialized, "dir", lockfile.ProjectDir)
	}
	return a.config.Load()
}

func parseRequests(specs []string) ([]domain.Request, error) {
	if len(specs) == 0 {
		return nil, zerr.New("no components requested")
	}
	requests := make([]domain.Request, 0, len(specs))
	for _, spec := range specs {
		req, err := domain.ParseRequest(spec)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func matches(summary domain.ComponentSummary, query string) bool {
	query = strings.ToLower(query)
	return strings.Contains(strings.ToLower(summary.Name), query) ||
		strings.Contains(strings.ToLower(summary.Description), query)
}

// GhostInit seeds the profile home: the default profile is created when
// absent, and the resolved current profile is returned. Running it twice is
// harmless.
func (a *App) GhostInit() (domain.Profile, domain.ProfileSource, error) {
	if _, err := a.profiles.Create(domain.DefaultProfileName, ""); err != nil && !errors.Is(err, domain.ErrProfileExists) {
		return domain.Profile{}, "", err
	}
	return a.profiles.Current("")
}

// ProfileCreate creates a profile, cloning cloneFrom when given.
func (a *App) ProfileCreate(name, cloneFrom string) (domain.Profile, error) {
	return a.profiles.Create(name, cloneFrom)
}

// ProfileUse sets the persisted current profile.
func (a *App) ProfileUse(name string) error {
	return a.profiles.Use(name)
}

// ProfileList returns all profile names and the currently selected one.
func (a *App) ProfileList() ([]string, string, error) {
	names, err := a.profiles.List()
	if err != nil {
		return nil, "", err
	}
	current, _, err := a.profiles.Current("")
	if err != nil {
		return nil, "", err
	}
	return names, current.Name, nil
}

// ProfileShow resolves the current profile, honoring the override.
func (a *App) ProfileShow(override string) (domain.Profile, domain.ProfileSource, error) {
	return a.profiles.Current(override)
}

// ProfileRemove deletes a profile. The current one is protected.
func (a *App) ProfileRemove(name string) error {
	return a.profiles.Remove(name)
}

// ProfileRegistryAdd appends a registry to the resolved profile.
func (a *App) ProfileRegistryAdd(override, name, url, version string) error {
	profile, _, err := a.profiles.Current(override)
	if err != nil {
		return err
	}
	for _, reg := range profile.Registries {
		if reg.Name == name {
			return zerr.With(zerr.New("registry already configured"), "registry", name)
		}
	}

	reg := domain.Registry{Name: name, BaseURL: url, PinnedVersion: version}
	if err := reg.Validate(); err != nil {
		return err
	}
	profile.Registries = append(profile.Registries, reg)
	return a.profiles.Save(profile)
}

// ProfileRegistryRemove removes a registry from the resolved profile.
func (a *App) ProfileRegistryRemove(override, name string) error {
	profile, _, err := a.profiles.Current(override)
	if err != nil {
		return err
	}

	kept := profile.Registries[:0]
	for _, reg := range profile.Registries {
		if reg.Name != name {
			kept = append(kept, reg)
		}
	}
	if len(kept) == len(profile.Registries) {
		return zerr.With(zerr.New("registry not configured"), "registry", name)
	}
	profile.Registries = kept
	return a.profiles.Save(profile)
}

// ProfileAdd resolves and installs components into the resolved profile's
// private component tree, under the profile's own lockfile.
func (a *App) ProfileAdd(ctx context.Context, override string, specs []string, opts AddOptions) (domain.Plan, []domain.LockEntry, error) {
	profile, _, err := a.profiles.Current(override)
	if err != nil {
		return domain.Plan{}, nil, err
	}
	if len(profile.Registries) == 0 {
		return domain.Plan{}, nil, zerr.With(zerr.New("profile has no registries"), "profile", profile.Name)
	}
	requests, err := parseRequests(specs)
	if err != nil {
		return domain.Plan{}, nil, err
	}

	dir := a.profiles.Dir(profile.Name)
	guard := lockfile.NewGuard(filepath.Join(dir, ".lock"))
	release, err := guard.Acquire()
	if err != nil {
		return domain.Plan{}, nil, err
	}
	defer release()

	store, err := lockfile.NewStore(filepath.Join(dir, lockfile.Filename))
	if err != nil {
		return domain.Plan{}, nil, err
	}
	settings, err := installer.LoadSettings(filepath.Join(dir, installer.SettingsFilename))
	if err != nil {
		return domain.Plan{}, nil, err
	}
	inst := installer.New(a.client, store, a.hasher, a.logger, filepath.Join(dir, "components"), settings)

	plan, err := a.resolver.Resolve(ctx, requests, profile.Registries)
	if err != nil {
		return domain.Plan{}, nil, err
	}
	entries, err := inst.Install(ctx, plan, profile.Registries, installer.Options{Overwrite: opts.Overwrite})
	return plan, entries, err
}

// Run materializes a ghost overlay of the resolved profile over target and
// executes argv inside it, defaulting to the user's shell. The session is
// ended when the command exits, syncing new component files back.
func (a *App) Run(ctx context.Context, override, target string, argv []string) error {
	profile, source, err := a.profiles.Current(override)
	if err != nil {
		return err
	}
	a.logger.Debug("running under profile", "profile", profile.Name, "source", string(source))

	session, err := a.overlay.Begin(profile, target)
	if err != nil {
		return err
	}

	if len(argv) == 0 {
		shell := os.Getenv("SHELL")
		if shell == "" {
			shell = "/bin/sh"
		}
		argv = []string{shell}
	}

	//nolint:gosec // The command is the user's own
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = session.Root
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	runErr := cmd.Run()

	if err := a.overlay.End(session); err != nil {
		if runErr == nil {
			return err
		}
		a.logger.Error(err)
	}
	return runErr
}
