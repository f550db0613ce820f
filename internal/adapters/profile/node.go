package profile

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/ocx-dev/ocx/internal/core/ports"
)

// NodeID is the unique identifier for the profile store Graft node.
const NodeID graft.ID = "adapter.profile_store"

func init() {
	graft.Register(graft.Node[ports.ProfileStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ProfileStore, error) {
			home, err := Home()
			if err != nil {
				return nil, err
			}
			return NewStore(home), nil
		},
	})
}
