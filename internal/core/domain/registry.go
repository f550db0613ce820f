package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// Registry is an HTTP-addressable source of component metadata and files.
// Ordering within a configuration determines resolution priority when
// multiple registries expose a component with the same short name.
type Registry struct {
	// Name uniquely identifies the registry within a configuration.
	Name string `json:"name" yaml:"name"`

	// BaseURL is the registry endpoint. Encrypted transport is required.
	BaseURL string `json:"url" yaml:"url"`

	// PinnedVersion, when set, restricts every component from this registry
	// to exactly that version. Other advertised versions are ignored.
	PinnedVersion string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Validate checks the registry definition. Only encrypted endpoints are
// accepted; the core provides no transport security of its own.
func (r Registry) Validate() error {
	if r.Name == "" {
		return zerr.New("registry name must not be empty")
	}
	if !strings.HasPrefix(r.BaseURL, "https://") {
		return zerr.With(zerr.New("registry url must use https"), "registry", r.Name)
	}
	return nil
}

// ComponentSummary is one entry of a registry's index.json.
type ComponentSummary struct {
	Name          string        `json:"name"`
	Type          ComponentType `json:"type"`
	LatestVersion string        `json:"latestVersion"`
	Description   string        `json:"description,omitempty"`
}

// SearchResult is one component found by a search, attributed to the
// registry advertising it.
type SearchResult struct {
	Registry  string
	Summary   ComponentSummary
	Installed bool
}

// Discovery is the optional .well-known/ocx.json capabilities document.
type Discovery struct {
	Registry     string   `json:"registry,omitempty"`
	APIVersion   int      `json:"apiVersion,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
}
