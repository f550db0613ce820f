package domain

import "go.trai.ch/zerr"

var (
	// ErrRegistryUnavailable is returned when a registry cannot be reached or
	// returns a malformed response. It is surfaced to the caller and never
	// retried internally.
	ErrRegistryUnavailable = zerr.New("registry unavailable")

	// ErrFileNotFound is returned when a registry has no such file or version.
	ErrFileNotFound = zerr.New("file not found in registry")

	// ErrComponentNotFound is returned when no configured registry advertises
	// the requested component.
	ErrComponentNotFound = zerr.New("component not found")

	// ErrCyclicDependency is returned when the dependency graph contains a
	// cycle. The error carries the cycle path as metadata.
	ErrCyclicDependency = zerr.New("cyclic dependency")

	// ErrUnsatisfiableVersion is returned when the intersection of all version
	// constraints imposed on a component is empty.
	ErrUnsatisfiableVersion = zerr.New("unsatisfiable version")

	// ErrPathConflict is returned when two components claim the same install
	// path. The error names both owning components.
	ErrPathConflict = zerr.New("install path conflict")

	// ErrHashMismatch reports drift between an installed file and the hash
	// recorded at install time. It is reported, not fatal.
	ErrHashMismatch = zerr.New("content hash mismatch")

	// ErrConcurrentOperation is returned when another process holds the
	// project write lock. The caller fails fast rather than blocking.
	ErrConcurrentOperation = zerr.New("concurrent operation in progress")

	// ErrOverlayTooLarge is returned when an overlay would exceed the
	// profile's maxFiles ceiling. Raised before any mapping is materialized.
	ErrOverlayTooLarge = zerr.New("overlay exceeds file ceiling")

	// ErrCannotRemoveActiveProfile is returned when removing the profile that
	// is currently selected.
	ErrCannotRemoveActiveProfile = zerr.New("cannot remove active profile")

	// ErrProfileNotFound is returned when a named profile does not exist.
	ErrProfileNotFound = zerr.New("profile not found")

	// ErrProfileExists is returned when creating a profile whose name is taken.
	ErrProfileExists = zerr.New("profile already exists")

	// ErrSessionActive is returned when a ghost session marker already exists
	// for the same profile and target repository.
	ErrSessionActive = zerr.New("ghost session already active")

	// ErrRegistriesLocked is returned when the project configuration forbids
	// registry mutations.
	ErrRegistriesLocked = zerr.New("registries are locked for this project")

	// ErrNotInitialized is returned when a command requires an initialized
	// project directory.
	ErrNotInitialized = zerr.New("project not initialized")
)
