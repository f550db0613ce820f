package domain

// DefaultProfileName is the implicit profile created on first use.
const DefaultProfileName = "default"

// DefaultComponentPath is where a profile's component tree is projected
// inside a ghost overlay, relative to the repository root.
const DefaultComponentPath = ".ocx"

// Profile is an independent, named configuration used by ghost mode.
// Profiles never share mutable state; exactly one is current at a time.
type Profile struct {
	Name string `yaml:"name"`

	// Registries are the profile's own registries, in priority order.
	Registries []Registry `yaml:"registries,omitempty"`

	// ComponentPath is the virtual mount point of the profile's component
	// tree inside an overlay.
	ComponentPath string `yaml:"componentPath"`

	// Include selects which real repository paths remain visible in an
	// overlay. Empty means everything is selected.
	Include []string `yaml:"include,omitempty"`

	// Exclude narrows what Include selected. A path is visible only if it
	// matches some include pattern (or Include is empty) and no exclude
	// pattern.
	Exclude []string `yaml:"exclude,omitempty"`

	// MaxFiles bounds how many overlay mapping entries may be constructed.
	// Zero means unlimited.
	MaxFiles int `yaml:"maxFiles,omitempty"`
}

// SeedProfile returns the implicit profile every new profile is cloned from.
func SeedProfile(name string) Profile {
	return Profile{
		Name:          name,
		ComponentPath: DefaultComponentPath,
		Exclude:       []string{"**/node_modules/**", "**/vendor/**"},
	}
}

// ProfileSource records how the current profile was selected, highest
// precedence first.
type ProfileSource string

const (
	// SourceOverride means an explicit per-invocation override.
	SourceOverride ProfileSource = "override"
	// SourceEnvironment means the OCX_PROFILE environment variable.
	SourceEnvironment ProfileSource = "environment"
	// SourcePointer means the persisted "current" pointer.
	SourcePointer ProfileSource = "pointer"
	// SourceDefault means the implicit default profile created on first use.
	SourceDefault ProfileSource = "default"
)
