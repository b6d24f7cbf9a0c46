package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/relay/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/relay/internal/adapters/esbuild" //nolint:depguard // Wired in app layer
	"go.trai.ch/relay/internal/adapters/fs"      //nolint:depguard // Wired in app layer
	"go.trai.ch/relay/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/relay/internal/adapters/shell"   //nolint:depguard // Wired in app layer
	"go.trai.ch/relay/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/relay/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			fs.NodeID,
			esbuild.CompilerNodeID,
			esbuild.BundlerNodeID,
			shell.NodeID,
			watcher.NodeID,
			logger.NodeID,
			scheduler.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	fileSystem, err := graft.Dep[ports.FileSystem](ctx)
	if err != nil {
		return nil, err
	}

	compiler, err := graft.Dep[ports.Compiler](ctx)
	if err != nil {
		return nil, err
	}

	bundler, err := graft.Dep[ports.Bundler](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	fileWatcher, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	sched, err := graft.Dep[*scheduler.Scheduler](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, fileSystem, compiler, bundler, executor, fileWatcher, log, sched), nil
}
