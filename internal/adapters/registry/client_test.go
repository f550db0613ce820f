package registry_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ocx-dev/ocx/internal/adapters/registry"
	"github.com/ocx-dev/ocx/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRegistry serves a minimal registry over TLS with two versions of one
// skill component.
func newTestRegistry(t *testing.T) (*httptest.Server, domain.Registry) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/index.json", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, []domain.ComponentSummary{
			{Name: "review-helper", Type: domain.TypeSkill, LatestVersion: "1.1.0", Description: "code review helper"},
		})
	})
	mux.HandleFunc("/components/review-helper.json", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, domain.ManifestSet{
			Name: "review-helper",
			Versions: []domain.Manifest{
				{Name: "review-helper", Type: domain.TypeSkill, Version: "1.0.0", Files: []domain.FileMapping{{Source: "SKILL.md"}}},
				{Name: "review-helper", Type: domain.TypeSkill, Version: "1.1.0", Files: []domain.FileMapping{{Source: "SKILL.md"}}},
			},
		})
	})
	mux.HandleFunc("/components/review-helper/SKILL.md", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# Review Helper\n"))
	})
	mux.HandleFunc("/.well-known/ocx.json", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, domain.Discovery{Registry: "core", APIVersion: 1, Capabilities: []string{"search"}})
	})
	mux.HandleFunc("/malformed/index.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{ not json"))
	})

	server := httptest.NewTLSServer(mux)
	t.Cleanup(server.Close)

	return server, domain.Registry{Name: "core", BaseURL: server.URL}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_FetchIndex(t *testing.T) {
	t.Parallel()

	server, reg := newTestRegistry(t)
	client := registry.NewClientWithHTTP(server.Client())

	index, err := client.FetchIndex(context.Background(), reg)
	require.NoError(t, err)
	require.Len(t, index, 1)
	assert.Equal(t, "review-helper", index[0].Name)
	assert.Equal(t, domain.TypeSkill, index[0].Type)
}

func TestClient_FetchManifest(t *testing.T) {
	t.Parallel()

	server, reg := newTestRegistry(t)
	client := registry.NewClientWithHTTP(server.Client())

	t.Run("highest version wins", func(t *testing.T) {
		t.Parallel()
		m, err := client.FetchManifest(context.Background(), reg, "review-helper", "")
		require.NoError(t, err)
		assert.Equal(t, "1.1.0", m.Version)
	})

	t.Run("constraint respected", func(t *testing.T) {
		t.Parallel()
		m, err := client.FetchManifest(context.Background(), reg, "review-helper", "<1.1.0")
		require.NoError(t, err)
		assert.Equal(t, "1.0.0", m.Version)
	})

	t.Run("pinned registry only considers the pin", func(t *testing.T) {
		t.Parallel()
		pinnedReg := reg
		pinnedReg.PinnedVersion = "1.0.0"
		m, err := client.FetchManifest(context.Background(), pinnedReg, "review-helper", "")
		require.NoError(t, err)
		assert.Equal(t, "1.0.0", m.Version)
	})

	t.Run("unsatisfiable constraint", func(t *testing.T) {
		t.Parallel()
		_, err := client.FetchManifest(context.Background(), reg, "review-helper", "^3.0.0")
		require.ErrorIs(t, err, domain.ErrFileNotFound)
	})

	t.Run("unknown component is registry unavailable", func(t *testing.T) {
		t.Parallel()
		_, err := client.FetchManifest(context.Background(), reg, "missing", "")
		require.ErrorIs(t, err, domain.ErrRegistryUnavailable)
	})
}

func TestClient_FetchFile(t *testing.T) {
	t.Parallel()

	server, reg := newTestRegistry(t)
	client := registry.NewClientWithHTTP(server.Client())

	data, err := client.FetchFile(context.Background(), reg, "review-helper", "SKILL.md")
	require.NoError(t, err)
	assert.Equal(t, "# Review Helper\n", string(data))

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := client.FetchFile(context.Background(), reg, "review-helper", "nope.md")
		require.ErrorIs(t, err, domain.ErrFileNotFound)
		assert.Contains(t, err.Error(), "nope.md")
	})
}

func TestClient_FetchDiscovery(t *testing.T) {
	t.Parallel()

	server, reg := newTestRegistry(t)
	client := registry.NewClientWithHTTP(server.Client())

	doc, err := client.FetchDiscovery(context.Background(), reg)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.APIVersion)
	assert.Contains(t, doc.Capabilities, "search")
}

func TestClient_MalformedJSON(t *testing.T) {
	t.Parallel()

	server, reg := newTestRegistry(t)
	client := registry.NewClientWithHTTP(server.Client())

	broken := reg
	broken.BaseURL = server.URL + "/malformed"
	_, err := client.FetchIndex(context.Background(), broken)
	require.ErrorIs(t, err, domain.ErrRegistryUnavailable)
}

func TestClient_Unreachable(t *testing.T) {
	t.Parallel()

	client := registry.NewClientWithHTTP(&http.Client{})
	_, err := client.FetchIndex(context.Background(), domain.Registry{
		Name:    "gone",
		BaseURL: "https://127.0.0.1:1",
	})
	require.ErrorIs(t, err, domain.ErrRegistryUnavailable)
}
