package esbuild

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Compiler)(nil)

// Compiler transpiles each source file on its own, without type checking.
type Compiler struct{}

// NewCompiler creates a new Compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile writes one script and one linked source map per source into req.OutDir.
// Declaration files produce no output.
func (c *Compiler) Compile(ctx context.Context, req ports.CompileRequest) error {
	entries := make([]string, 0, len(req.Sources))
	for _, src := range req.Sources {
		if strings.HasSuffix(src, ".d.ts") {
			continue
		}
		entries = append(entries, src)
	}
	if len(entries) == 0 {
		return nil
	}

	opts := api.BuildOptions{
		EntryPoints:    entries,
		Outdir:         req.OutDir,
		Outbase:        req.BaseDir,
		Sourcemap:      api.SourceMapLinked,
		SourceRoot:     req.SourceRoot,
		SourcesContent: api.SourcesContentExclude,
		LogLevel:       api.LogLevelSilent,
		Write:          true,
	}

	if err := applyCompilerConfig(&opts, req.Config); err != nil {
		return err
	}

	return build(ctx, opts, domain.ErrCompileFailed)
}

// applyCompilerConfig points esbuild at a project file, or passes inline
// compiler options as a raw project file. An empty inline configuration
// leaves project file discovery to esbuild.
func applyCompilerConfig(opts *api.BuildOptions, config domain.Locator) error {
	switch cfg := config.(type) {
	case domain.PathLocator:
		opts.Tsconfig = cfg.String()
	case domain.InlineConfig:
		if len(cfg) == 0 {
			return nil
		}
		raw, err := json.Marshal(map[string]any{"compilerOptions": map[string]any(cfg)})
		if err != nil {
			return zerr.Wrap(err, "failed to encode inline compiler configuration")
		}
		opts.TsconfigRaw = string(raw)
	}
	return nil
}
