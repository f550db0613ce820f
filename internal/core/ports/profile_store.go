package ports

import "github.com/ocx-dev/ocx/internal/core/domain"

// ProfileStore manages named, independent profiles. Exactly one profile is
// current at a time.
//
//go:generate go run go.uber.org/mock/mockgen -source=profile_store.go -destination=mocks/mock_profile_store.go -package=mocks
type ProfileStore interface {
	// List returns the names of all profiles, sorted.
	List() ([]string, error)

	// Create creates a profile by cloning cloneFrom, or the implicit seed
	// when cloneFrom is empty.
	Create(name, cloneFrom string) (domain.Profile, error)

	// Get returns a profile by name.
	Get(name string) (domain.Profile, error)

	// Save persists a profile's configuration.
	Save(profile domain.Profile) error

	// Use sets the persisted "current" pointer.
	Use(name string) error

	// Current resolves the current profile: explicit override, then the
	// OCX_PROFILE environment variable, then the persisted pointer, then an
	// implicit default profile created on first use.
	Current(override string) (domain.Profile, domain.ProfileSource, error)

	// Remove deletes a profile. Removing the current profile is rejected
	// with ErrCannotRemoveActiveProfile.
	Remove(name string) error

	// Dir returns the profile's private directory, which holds its own
	// component tree and lockfile, independent of any target repository.
	Dir(name string) string
}
