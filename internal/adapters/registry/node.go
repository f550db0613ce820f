package registry

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/ocx-dev/ocx/internal/core/ports"
)

// NodeID is the unique identifier for the registry client Graft node.
const NodeID graft.ID = "adapter.registry_client"

func init() {
	graft.Register(graft.Node[ports.RegistryClient]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.RegistryClient, error) {
			return NewClient(), nil
		},
	})
}
