// Package registry implements the HTTP registry client.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ocx-dev/ocx/internal/core/domain"
	"github.com/ocx-dev/ocx/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultTimeout bounds every registry request. On timeout the operation
// fails with ErrRegistryUnavailable; retry policy belongs to the caller.
const DefaultTimeout = 30 * time.Second

var _ ports.RegistryClient = (*Client)(nil)

// Client fetches component metadata and files over HTTPS.
type Client struct {
	http *http.Client
}

// NewClient creates a Client with the default bounded timeout.
func NewClient() *Client {
	return &Client{
		http: &http.Client{Timeout: DefaultTimeout},
	}
}

// NewClientWithHTTP creates a Client using the provided http.Client.
// Used by tests to point at a TLS test server.
func NewClientWithHTTP(httpClient *http.Client) *Client {
	return &Client{http: httpClient}
}

// FetchIndex returns the registry's advertised component summaries.
func (c *Client) FetchIndex(ctx context.Context, reg domain.Registry) ([]domain.ComponentSummary, error) {
	var index []domain.ComponentSummary
	if err := c.getJSON(ctx, reg, reg.BaseURL+"/index.json", &index); err != nil {
		return nil, err
	}
	return index, nil
}

// FetchManifests returns every published version of the named component.
// If the registry is pinned, only the pinned version is returned.
func (c *Client) FetchManifests(ctx context.Context, reg domain.Registry, name string) (domain.ManifestSet, error) {
	var set domain.ManifestSet
	url := fmt.Sprintf("%s/components/%s.json", reg.BaseURL, name)
	if err := c.getJSON(ctx, reg, url, &set); err != nil {
		return domain.ManifestSet{}, zerr.With(err, "component", name)
	}

	if reg.PinnedVersion == "" {
		return set, nil
	}
	pinned := set.Versions[:0:0]
	for _, m := range set.Versions {
		if m.Version == reg.PinnedVersion {
			pinned = append(pinned, m)
		}
	}
	set.Versions = pinned
	return set, nil
}

// FetchManifest resolves a version constraint against the advertised versions
// and returns the highest satisfying manifest.
func (c *Client) FetchManifest(ctx context.Context, reg domain.Registry, name, constraint string) (domain.Manifest, error) {
	set, err := c.FetchManifests(ctx, reg, name)
	if err != nil {
		return domain.Manifest{}, err
	}

	versions := make([]string, len(set.Versions))
	for i, m := range set.Versions {
		versions[i] = m.Version
	}

	var constraints []string
	if constraint != "" {
		constraints = []string{constraint}
	}
	chosen, err := domain.SelectVersion(versions, constraints, reg.PinnedVersion)
	if err != nil {
		err = zerr.With(zerr.Wrap(domain.ErrFileNotFound, "no satisfying version"), "component", name)
		err = zerr.With(err, "registry", reg.Name)
		return domain.Manifest{}, zerr.With(err, "constraint", constraint)
	}

	for _, m := range set.Versions {
		if m.Version == chosen {
			return m, nil
		}
	}
	// Unreachable: chosen always comes from the advertised list.
	return domain.Manifest{}, zerr.With(domain.ErrFileNotFound, "component", name)
}

// FetchFile returns the raw bytes of one component file. A non-2xx response
// fails with ErrFileNotFound; failure to reach the registry at all fails with
// ErrRegistryUnavailable.
func (c *Client) FetchFile(ctx context.Context, reg domain.Registry, name, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/components/%s/%s", reg.BaseURL, name, path)

	resp, err := c.do(ctx, reg, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close in defer

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := zerr.With(domain.ErrFileNotFound, "registry", reg.Name)
		err = zerr.With(err, "component", name)
		err = zerr.With(err, "path", path)
		return nil, zerr.With(err, "status", fmt.Sprintf("%d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		err = zerr.With(zerr.Wrap(domain.ErrFileNotFound, "failed to read file body"), "registry", reg.Name)
		return nil, zerr.With(zerr.With(err, "component", name), "path", path)
	}
	return data, nil
}

// FetchDiscovery returns the optional .well-known capabilities document.
func (c *Client) FetchDiscovery(ctx context.Context, reg domain.Registry) (domain.Discovery, error) {
	var doc domain.Discovery
	if err := c.getJSON(ctx, reg, reg.BaseURL+"/.well-known/ocx.json", &doc); err != nil {
		return domain.Discovery{}, err
	}
	return doc, nil
}

// getJSON fetches and decodes a metadata document. Any failure, including a
// non-2xx status or malformed JSON, is ErrRegistryUnavailable.
func (c *Client) getJSON(ctx context.Context, reg domain.Registry, url string, v any) error {
	resp, err := c.do(ctx, reg, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close in defer

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := zerr.With(zerr.Wrap(domain.ErrRegistryUnavailable, "unexpected status"), "registry", reg.Name)
		err = zerr.With(err, "status", fmt.Sprintf("%d", resp.StatusCode))
		return zerr.With(err, "url", url)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		err := zerr.With(zerr.Wrap(domain.ErrRegistryUnavailable, "malformed registry response"), "registry", reg.Name)
		return zerr.With(err, "url", url)
	}
	return nil
}

func (c *Client) do(ctx context.Context, reg domain.Registry, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json, application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		err = zerr.With(zerr.Wrap(domain.ErrRegistryUnavailable, err.Error()), "registry", reg.Name)
		return nil, zerr.With(err, "url", url)
	}
	return resp, nil
}
