package domain

import "time"

// LockVersion is the current lockfile format version.
const LockVersion = 1

// LockEntry binds one installed component to its resolved version, source
// registry and recorded content hashes. It is immutable once recorded except
// through Record with the same component id.
type LockEntry struct {
	// ComponentID is the canonical "registry/name" identifier.
	ComponentID string `json:"componentId"`

	// Registry names the registry the component was resolved from.
	Registry string `json:"registry"`

	// Version is the resolved semantic version.
	Version string `json:"version"`

	// ContentHash is the sha-256 over the concatenated, path-sorted file
	// contents as written to disk.
	ContentHash string `json:"contentHash"`

	// InstalledFiles lists the installed paths relative to the install root,
	// sorted. No path may appear in more than one lock entry.
	InstalledFiles []string `json:"installedFiles"`

	// FileHashes maps each installed path to its individual sha-256, so the
	// audit engine can attribute drift to a specific file.
	FileHashes map[string]string `json:"fileHashes,omitempty"`

	InstalledAt time.Time `json:"installedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Lockfile is the persisted record of every installed component.
type Lockfile struct {
	// LockVersion is the lockfile format version, for schema migrations.
	LockVersion int `json:"lockVersion"`

	// Installed maps component ids to their lock entries.
	Installed map[string]LockEntry `json:"installed"`
}

// NewLockfile returns an empty lockfile at the current format version.
func NewLockfile() *Lockfile {
	return &Lockfile{
		LockVersion: LockVersion,
		Installed:   make(map[string]LockEntry),
	}
}
