// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/ocx-dev/ocx/internal/adapters/audit"
	_ "github.com/ocx-dev/ocx/internal/adapters/config"
	_ "github.com/ocx-dev/ocx/internal/adapters/fs"
	_ "github.com/ocx-dev/ocx/internal/adapters/installer"
	_ "github.com/ocx-dev/ocx/internal/adapters/lockfile"
	_ "github.com/ocx-dev/ocx/internal/adapters/logger"
	_ "github.com/ocx-dev/ocx/internal/adapters/overlay"
	_ "github.com/ocx-dev/ocx/internal/adapters/profile"
	_ "github.com/ocx-dev/ocx/internal/adapters/registry"
	// Register app and engine nodes.
	_ "github.com/ocx-dev/ocx/internal/app"
	_ "github.com/ocx-dev/ocx/internal/engine/resolver"
)
