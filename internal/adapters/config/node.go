package config

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"github.com/ocx-dev/ocx/internal/adapters/lockfile"
)

// NodeID is the unique identifier for the project config store Graft node.
const NodeID graft.ID = "adapter.config_store"

func init() {
	graft.Register(graft.Node[*Store]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Store, error) {
			return NewStore(filepath.Join(lockfile.ProjectDir, Filename)), nil
		},
	})
}
