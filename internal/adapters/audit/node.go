package audit

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/ocx-dev/ocx/internal/adapters/fs"
	"github.com/ocx-dev/ocx/internal/adapters/lockfile"
	"github.com/ocx-dev/ocx/internal/core/ports"
)

// NodeID is the unique identifier for the audit engine Graft node.
const NodeID graft.ID = "adapter.audit_engine"

func init() {
	graft.Register(graft.Node[*Engine]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{lockfile.NodeID, fs.HasherNodeID, fs.WalkerNodeID},
		Run: func(ctx context.Context) (*Engine, error) {
			store, err := graft.Dep[ports.LockStore](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			return New(store, hasher, walker, "."), nil
		},
	})
}
