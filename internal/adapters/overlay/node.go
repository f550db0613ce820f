package overlay

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grindlemire/graft"
	"github.com/ocx-dev/ocx/internal/adapters/fs"
	"github.com/ocx-dev/ocx/internal/adapters/logger"
	"github.com/ocx-dev/ocx/internal/adapters/profile"
	"github.com/ocx-dev/ocx/internal/core/ports"
)

// NodeID is the unique identifier for the overlay manager Graft node.
const NodeID graft.ID = "adapter.overlay_manager"

func init() {
	graft.Register(graft.Node[*Manager]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{profile.NodeID, fs.WalkerNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Manager, error) {
			profiles, err := graft.Dep[ports.ProfileStore](ctx)
			if err != nil {
				return nil, err
			}
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewManager(profiles, walker, log, filepath.Join(os.TempDir(), "ocx")), nil
		},
	})
}
