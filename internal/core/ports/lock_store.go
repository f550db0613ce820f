package ports

import "github.com/ocx-dev/ocx/internal/core/domain"

// LockStore persists lock entries as a single structured document. Every
// mutation is atomic: a crash mid-write leaves the previous document intact.
//
//go:generate go run go.uber.org/mock/mockgen -source=lock_store.go -destination=mocks/mock_lock_store.go -package=mocks
type LockStore interface {
	// Record inserts or replaces the entry for its component id. It enforces
	// the unique installed-path invariant across all entries.
	Record(entry domain.LockEntry) error

	// Get retrieves the entry for a component id. Returns nil, nil if absent.
	Get(componentID string) (*domain.LockEntry, error)

	// Remove deletes the entry for a component id, if present.
	Remove(componentID string) error

	// All returns every entry, sorted by component id.
	All() ([]domain.LockEntry, error)
}

// LockGuard serializes writes to the lockfile and the installed tree.
// Acquire fails fast with ErrConcurrentOperation instead of blocking.
type LockGuard interface {
	Acquire() (release func(), err error)
}
