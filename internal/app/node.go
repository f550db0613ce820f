package app

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/ocx-dev/ocx/internal/adapters/audit"
	"github.com/ocx-dev/ocx/internal/adapters/config"
	adapterfs "github.com/ocx-dev/ocx/internal/adapters/fs"
	"github.com/ocx-dev/ocx/internal/adapters/installer"
	"github.com/ocx-dev/ocx/internal/adapters/lockfile"
	"github.com/ocx-dev/ocx/internal/adapters/logger"
	"github.com/ocx-dev/ocx/internal/adapters/overlay"
	"github.com/ocx-dev/ocx/internal/adapters/profile"
	"github.com/ocx-dev/ocx/internal/adapters/registry"
	"github.com/ocx-dev/ocx/internal/core/ports"
	"github.com/ocx-dev/ocx/internal/engine/resolver"
)

// Components contains the initialized application components the CLI layer
// needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

// NodeID is the unique identifier for the application components Graft node.
const NodeID graft.ID = "app.components"

func init() {
	graft.Register(graft.Node[*Components]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			registry.NodeID,
			resolver.NodeID,
			lockfile.NodeID,
			lockfile.GuardNodeID,
			installer.NodeID,
			audit.NodeID,
			profile.NodeID,
			overlay.NodeID,
			adapterfs.HasherNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			cfg, err := graft.Dep[*config.Store](ctx)
			if err != nil {
				return nil, err
			}
			client, err := graft.Dep[ports.RegistryClient](ctx)
			if err != nil {
				return nil, err
			}
			res, err := graft.Dep[*resolver.Resolver](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.LockStore](ctx)
			if err != nil {
				return nil, err
			}
			guard, err := graft.Dep[ports.LockGuard](ctx)
			if err != nil {
				return nil, err
			}
			inst, err := graft.Dep[*installer.Installer](ctx)
			if err != nil {
				return nil, err
			}
			auditEngine, err := graft.Dep[*audit.Engine](ctx)
			if err != nil {
				return nil, err
			}
			profiles, err := graft.Dep[ports.ProfileStore](ctx)
			if err != nil {
				return nil, err
			}
			overlayManager, err := graft.Dep[*overlay.Manager](ctx)
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

			application := New(cfg, client, res, store, guard, inst, auditEngine, profiles, overlayManager, hasher, log)
			return &Components{App: application, Logger: log}, nil
		},
	})
}
