package esbuild

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/relay/internal/core/ports"
)

const (
	// CompilerNodeID is the unique identifier for the compiler Graft node.
	CompilerNodeID graft.ID = "adapter.esbuild.compiler"
	// BundlerNodeID is the unique identifier for the bundler Graft node.
	BundlerNodeID graft.ID = "adapter.esbuild.bundler"
)

func init() {
	graft.Register(graft.Node[ports.Compiler]{
		ID:        CompilerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Compiler, error) {
			return NewCompiler(), nil
		},
	})

	graft.Register(graft.Node[ports.Bundler]{
		ID:        BundlerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Bundler, error) {
			return NewBundler(), nil
		},
	})
}
