package lockfile

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"github.com/ocx-dev/ocx/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the project lock store Graft node.
	NodeID graft.ID = "adapter.lock_store"
	// GuardNodeID is the unique identifier for the lock guard Graft node.
	GuardNodeID graft.ID = "adapter.lock_guard"

	// ProjectDir is the project-local state directory.
	ProjectDir = ".ocx"
	guardName  = ".lock"
)

func init() {
	graft.Register(graft.Node[ports.LockStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.LockStore, error) {
			return NewStore(filepath.Join(ProjectDir, Filename))
		},
	})

	graft.Register(graft.Node[ports.LockGuard]{
		ID:        GuardNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.LockGuard, error) {
			return NewGuard(filepath.Join(ProjectDir, guardName)), nil
		},
	})
}
