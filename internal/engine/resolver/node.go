package resolver

import (
	"context"

	"github.com/grindlemire/graft"
	adapterlogger "github.com/ocx-dev/ocx/internal/adapters/logger"
	adapterregistry "github.com/ocx-dev/ocx/internal/adapters/registry"
	"github.com/ocx-dev/ocx/internal/core/ports"
)

// NodeID is the unique identifier for the resolver Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			adapterregistry.NodeID,
			adapterlogger.NodeID,
		},
		Run: func(ctx context.Context) (*Resolver, error) {
			client, err := graft.Dep[ports.RegistryClient](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(client, log), nil
		},
	})
}
