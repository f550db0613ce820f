// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"github.com/ocx-dev/ocx/internal/core/domain"
)

// RegistryClient fetches component metadata and file contents from a
// registry. Failures are surfaced to the caller and never retried silently.
//
//go:generate go run go.uber.org/mock/mockgen -source=registry_client.go -destination=mocks/mock_registry_client.go -package=mocks
type RegistryClient interface {
	// FetchIndex returns the registry's advertised component summaries.
	FetchIndex(ctx context.Context, reg domain.Registry) ([]domain.ComponentSummary, error)

	// FetchManifests returns every published version of the named component.
	// If the registry is pinned, only the pinned version is returned.
	FetchManifests(ctx context.Context, reg domain.Registry, name string) (domain.ManifestSet, error)

	// FetchManifest resolves a version constraint against the advertised
	// versions and returns the highest satisfying manifest.
	FetchManifest(ctx context.Context, reg domain.Registry, name, constraint string) (domain.Manifest, error)

	// FetchFile returns the raw bytes of one component file.
	FetchFile(ctx context.Context, reg domain.Registry, name, path string) ([]byte, error)

	// FetchDiscovery returns the optional .well-known capabilities document.
	FetchDiscovery(ctx context.Context, reg domain.Registry) (domain.Discovery, error)
}
