// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/relay/internal/adapters/config"
	_ "go.trai.ch/relay/internal/adapters/esbuild"
	_ "go.trai.ch/relay/internal/adapters/fs"
	_ "go.trai.ch/relay/internal/adapters/logger"
	_ "go.trai.ch/relay/internal/adapters/shell"
	_ "go.trai.ch/relay/internal/adapters/telemetry"
	_ "go.trai.ch/relay/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/relay/internal/app"
	_ "go.trai.ch/relay/internal/engine/scheduler"
)
