// Package resolver computes ordered, conflict-free install plans from a set
// of requested components and the configured registries.
package resolver

import (
	"context"
	"sort"
	"sync"

	"github.com/ocx-dev/ocx/internal/core/domain"
	"github.com/ocx-dev/ocx/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// maxRounds caps constraint-narrowing rounds. Each round only replaces the
// constraints contributed by components whose chosen version moved, so in
// practice resolution settles in two or three rounds.
const maxRounds = 50

// fetchParallelism bounds concurrent metadata fetches within one resolution.
const fetchParallelism = 8

// Resolver builds install plans. It fetches metadata only; component files
// are never fetched during resolution.
type Resolver struct {
	client ports.RegistryClient
	log    ports.Logger
}

// New creates a Resolver.
func New(client ports.RegistryClient, log ports.Logger) *Resolver {
	return &Resolver{client: client, log: log}
}

// state carries everything accumulated during one resolution run.
type state struct {
	registries []domain.Registry

	// indexes caches each registry's advertised component names.
	indexes map[string]map[string]bool

	// registryOf records the registry chosen for each unqualified short name,
	// so every unqualified reference to one name agrees.
	registryOf map[string]domain.Registry

	// sets caches fetched manifest sets keyed by canonical id.
	sets map[string]domain.ManifestSet

	// rootConstraints are the constraints given explicitly by the caller.
	rootConstraints map[string][]string

	// contributed maps parent id to the constraints its chosen manifest
	// imposes on each child id. Re-choosing a parent version replaces its
	// contributions wholesale.
	contributed map[string]map[string]string

	// chosen is the currently selected version per canonical id.
	chosen map[string]string
}

// Resolve computes a topologically ordered install plan for the requested
// components, or a resolution failure. Identical inputs against identical
// registry state always produce the identical plan.
func (r *Resolver) Resolve(ctx context.Context, requests []domain.Request, registries []domain.Registry) (domain.Plan, error) {
	if len(requests) == 0 {
		return domain.Plan{}, zerr.New("no components requested")
	}

	st := &state{
		registries:      registries,
		indexes:         make(map[string]map[string]bool),
		registryOf:      make(map[string]domain.Registry),
		sets:            make(map[string]domain.ManifestSet),
		rootConstraints: make(map[string][]string),
		contributed:     make(map[string]map[string]string),
		chosen:          make(map[string]string),
	}

	// Seed with the explicit requests.
	for _, req := range requests {
		id, err := r.qualify(ctx, st, req.ID)
		if err != nil {
			return domain.Plan{}, err
		}
		if req.Constraint != "" {
			st.rootConstraints[id.String()] = append(st.rootConstraints[id.String()], req.Constraint)
		} else if _, ok := st.rootConstraints[id.String()]; !ok {
			st.rootConstraints[id.String()] = nil
		}
	}

	if err := r.converge(ctx, st); err != nil {
		return domain.Plan{}, err
	}
	return r.plan(st)
}

// converge alternates version selection and dependency expansion until no
// chosen version moves.
func (r *Resolver) converge(ctx context.Context, st *state) error {
	for round := 0; round < maxRounds; round++ {
		if err := r.fetchMissingSets(ctx, st); err != nil {
			return err
		}

		changed := false
		for _, id := range st.knownIDs() {
			version, err := r.choose(st, id)
			if err != nil {
				return err
			}
			if st.chosen[id] == version {
				continue
			}
			st.chosen[id] = version
			changed = true

			if err := r.contribute(ctx, st, id); err != nil {
				return err
			}
		}

		if !changed {
			r.log.Debug("resolution settled", "components", len(st.chosen), "rounds", round+1)
			return nil
		}
	}
	return zerr.New("version resolution did not converge")
}

// contribute replaces the constraints the component's chosen manifest imposes
// on its dependencies.
func (r *Resolver) contribute(ctx context.Context, st *state, id string) error {
	manifest, ok := st.manifestFor(id)
	if !ok {
		return zerr.With(domain.ErrComponentNotFound, "component", id)
	}

	contrib := make(map[string]string, len(manifest.Dependencies))
	for _, raw := range manifest.Dependencies {
		req, err := domain.ParseRequest(raw)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "malformed dependency"), "component", id)
		}
		depID, err := r.qualify(ctx, st, req.ID)
		if err != nil {
			return zerr.With(err, "required_by", id)
		}
		contrib[depID.String()] = req.Constraint
	}
	st.contributed[id] = contrib
	return nil
}

// choose picks the highest version satisfying the intersection of every
// constraint currently imposed on id.
func (r *Resolver) choose(st *state, id string) (string, error) {
	set, ok := st.sets[id]
	if !ok {
		return "", zerr.With(domain.ErrComponentNotFound, "component", id)
	}

	constraints := make([]string, 0, 4)
	constraints = append(constraints, st.rootConstraints[id]...)

	parents := make([]string, 0, len(st.contributed))
	for parent, contrib := range st.contributed {
		if c, ok := contrib[id]; ok {
			parents = append(parents, parent)
			if c != "" {
				constraints = append(constraints, c)
			}
		}
	}
	sort.Strings(parents)

	versions := make([]string, len(set.Versions))
	for i, m := range set.Versions {
		versions[i] = m.Version
	}

	reg := st.registryByID(id)
	version, err := domain.SelectVersion(versions, constraints, reg.PinnedVersion)
	if err != nil {
		err = zerr.With(err, "component", id)
		if len(parents) > 0 {
			err = zerr.With(err, "required_by", parents[0])
		}
		return "", err
	}
	return version, nil
}

// fetchMissingSets fetches manifest sets for every known id that has none
// yet. Distinct components are fetched in parallel; metadata reads are
// independent and read-only.
func (r *Resolver) fetchMissingSets(ctx context.Context, st *state) error {
	missing := make([]string, 0)
	for _, id := range st.knownIDs() {
		if _, ok := st.sets[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchParallelism)

	for _, id := range missing {
		g.Go(func() error {
			reg := st.registryByID(id)
			name := id[len(reg.Name)+1:]
			set, err := r.client.FetchManifests(gctx, reg, name)
			if err != nil {
				return zerr.With(err, "component", id)
			}
			mu.Lock()
			st.sets[id] = set
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// qualify resolves an identifier to an explicit registry. Unqualified names
// search the registries in priority order; the first registry advertising
// the name wins, including on equal priority.
func (r *Resolver) qualify(ctx context.Context, st *state, id domain.ComponentID) (domain.ComponentID, error) {
	if id.Qualified() {
		for _, reg := range st.registries {
			if reg.Name == id.Registry {
				return id, nil
			}
		}
		err := zerr.With(zerr.New("unknown registry"), "registry", id.Registry)
		return domain.ComponentID{}, zerr.With(err, "component", id.String())
	}

	if reg, ok := st.registryOf[id.Name]; ok {
		return domain.ComponentID{Registry: reg.Name, Name: id.Name}, nil
	}

	for _, reg := range st.registries {
		names, ok := st.indexes[reg.Name]
		if !ok {
			index, err := r.client.FetchIndex(ctx, reg)
			if err != nil {
				return domain.ComponentID{}, err
			}
			names = make(map[string]bool, len(index))
			for _, summary := range index {
				names[summary.Name] = true
			}
			st.indexes[reg.Name] = names
		}
		if names[id.Name] {
			st.registryOf[id.Name] = reg
			return domain.ComponentID{Registry: reg.Name, Name: id.Name}, nil
		}
	}

	return domain.ComponentID{}, zerr.With(domain.ErrComponentNotFound, "component", id.Name)
}

// plan runs cycle detection and emits the topologically ordered plan,
// dependencies before dependents, ties broken by lexicographic id order.
func (r *Resolver) plan(st *state) (domain.Plan, error) {
	edges := make(map[string][]string, len(st.chosen))
	for id := range st.chosen {
		contrib := st.contributed[id]
		children := make([]string, 0, len(contrib))
		for child := range contrib {
			children = append(children, child)
		}
		sort.Strings(children)
		edges[id] = children
	}

	order := make([]string, 0, len(edges))
	visited := make(map[string]int, len(edges)) // 0 unvisited, 1 visiting, 2 done
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		visited[id] = 1
		path = append(path, id)

		for _, child := range edges[id] {
			if visited[child] == 1 {
				return cycleError(path, child)
			}
			if visited[child] == 0 {
				if err := visit(child); err != nil {
					return err
				}
			}
		}

		visited[id] = 2
		path = path[:len(path)-1]
		order = append(order, id)
		return nil
	}

	// Traverse from the requested roots only, so dependencies abandoned by a
	// later version re-selection never leak into the plan.
	roots := make([]string, 0, len(st.rootConstraints))
	for id := range st.rootConstraints {
		roots = append(roots, id)
	}
	sort.Strings(roots)
	for _, id := range roots {
		if visited[id] == 0 {
			if err := visit(id); err != nil {
				return domain.Plan{}, err
			}
		}
	}

	entries := make([]domain.PlanEntry, 0, len(order))
	for _, id := range order {
		manifest, ok := st.manifestFor(id)
		if !ok {
			return domain.Plan{}, zerr.With(domain.ErrComponentNotFound, "component", id)
		}
		reg := st.registryByID(id)
		entries = append(entries, domain.PlanEntry{
			ID:       domain.ComponentID{Registry: reg.Name, Name: manifest.Name},
			Version:  st.chosen[id],
			Manifest: manifest,
		})
	}
	return domain.Plan{Entries: entries}, nil
}

func cycleError(path []string, repeated string) error {
	start := 0
	for i, id := range path {
		if id == repeated {
			start = i
			break
		}
	}
	cycle := ""
	for _, id := range path[start:] {
		cycle += id + " -> "
	}
	cycle += repeated
	return zerr.With(domain.ErrCyclicDependency, "cycle", cycle)
}

// knownIDs returns every id seen so far, sorted for determinism.
func (st *state) knownIDs() []string {
	seen := make(map[string]bool, len(st.rootConstraints)+len(st.chosen))
	for id := range st.rootConstraints {
		seen[id] = true
	}
	for id := range st.chosen {
		seen[id] = true
	}
	for _, contrib := range st.contributed {
		for id := range contrib {
			seen[id] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (st *state) registryByID(id string) domain.Registry {
	for _, reg := range st.registries {
		if len(id) > len(reg.Name) && id[:len(reg.Name)] == reg.Name && id[len(reg.Name)] == '/' {
			return reg
		}
	}
	return domain.Registry{}
}

func (st *state) manifestFor(id string) (domain.Manifest, bool) {
	set, ok := st.sets[id]
	if !ok {
		return domain.Manifest{}, false
	}
	version := st.chosen[id]
	for _, m := range set.Versions {
		if m.Version == version {
			return m, true
		}
	}
	return domain.Manifest{}, false
}
