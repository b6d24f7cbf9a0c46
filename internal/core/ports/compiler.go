package ports

import (
	"context"

	"go.trai.ch/relay/internal/core/domain"
)

// CompileRequest describes one in-process compilation pass.
type CompileRequest struct {
	// Sources are the files to compile.
	Sources []string
	// BaseDir is the directory Sources are relative to in the output tree.
	BaseDir string
	// OutDir receives the compiled files and their linked source maps.
	OutDir string
	// SourceRoot is written into the source maps and points from OutDir back to BaseDir.
	SourceRoot string
	// Config is the compiler configuration.
	Config domain.Locator
}

// Compiler compiles sources in-process.
//
//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	Compile(ctx context.Context, req CompileRequest) error
}
