package domain

// PlanEntry is one resolved step of an install plan: a concrete
// (registry, version) pair with its manifest.
type PlanEntry struct {
	// ID is the fully qualified component identifier.
	ID ComponentID

	// Version is the concrete resolved version.
	Version string

	// Manifest is the manifest of the resolved version.
	Manifest Manifest
}

// Plan is a topologically ordered install plan: dependencies appear before
// their dependents. Identical inputs against identical registry state always
// produce the identical plan and ordering.
type Plan struct {
	Entries []PlanEntry
}

// IDs returns the ordered component identifiers of the plan.
func (p Plan) IDs() []string {
	ids := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		ids[i] = e.ID.String()
	}
	return ids
}
