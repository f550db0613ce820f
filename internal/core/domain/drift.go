package domain

// DriftKind classifies a discrepancy between the lockfile and the disk.
type DriftKind string

const (
	// DriftAdded is a file present on disk under a component's directory but
	// absent from its installed file list.
	DriftAdded DriftKind = "added"
	// DriftMissing is a listed file absent from disk.
	DriftMissing DriftKind = "missing"
	// DriftModified is a listed file whose recomputed hash differs from the
	// recorded one.
	DriftModified DriftKind = "modified"
)

// Drift is one reported discrepancy, attributed to a component and a path.
// An empty drift list is the success state.
type Drift struct {
	ComponentID string
	Path        string
	Kind        DriftKind
}
