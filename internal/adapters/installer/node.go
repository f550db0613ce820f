package installer

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	adapterfs "github.com/ocx-dev/ocx/internal/adapters/fs"
	"github.com/ocx-dev/ocx/internal/adapters/lockfile"
	"github.com/ocx-dev/ocx/internal/adapters/logger"
	"github.com/ocx-dev/ocx/internal/adapters/registry"
	"github.com/ocx-dev/ocx/internal/core/ports"
)

// NodeID is the unique identifier for the installer Graft node.
const NodeID graft.ID = "adapter.installer"

func init() {
	graft.Register(graft.Node[*Installer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			registry.NodeID,
			lockfile.NodeID,
			adapterfs.HasherNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Installer, error) {
			client, err := graft.Dep[ports.RegistryClient](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.LockStore](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			settings, err := LoadSettings(filepath.Join(lockfile.ProjectDir, SettingsFilename))
			if err != nil {
				return nil, err
			}
			return New(client, store, hasher, log, ".", settings), nil
		},
	})
}
