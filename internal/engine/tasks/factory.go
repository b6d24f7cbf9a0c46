// Package tasks constructs the run functions of the pipeline sub-tasks.
package tasks

import (
	"context"
	"path/filepath"
	"runtime"
	"strconv"

	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/relay/internal/engine/paths"
	"go.trai.ch/zerr"
)

// Factory builds task bodies for a configuration.
// Constructors return a domain.RunFunc that does nothing until it is invoked.
type Factory struct {
	cfg      domain.Config
	paths    *paths.Resolver
	fs       ports.FileSystem
	compiler ports.Compiler
	bundler  ports.Bundler
	executor ports.Executor
	watcher  ports.Watcher
	logger   ports.Logger

	binDir string
	goos   string
}

// NewFactory creates a Factory.
func NewFactory(
	cfg domain.Config,
	fs ports.FileSystem,
	compiler ports.Compiler,
	bundler ports.Bundler,
	executor ports.Executor,
	watcher ports.Watcher,
	logger ports.Logger,
) *Factory {
	return &Factory{
		cfg:      cfg,
		paths:    paths.NewResolver(cfg),
		fs:       fs,
		compiler: compiler,
		bundler:  bundler,
		executor: executor,
		watcher:  watcher,
		logger:   logger,
		binDir:   domain.DefaultBinDir(),
		goos:     runtime.GOOS,
	}
}

// WithBinDir overrides the directory the external tools are spawned from.
func (f *Factory) WithBinDir(dir string) *Factory {
	f.binDir = dir
	return f
}

// WithGOOS overrides the operating system used to name the external tools.
func (f *Factory) WithGOOS(goos string) *Factory {
	f.goos = goos
	return f
}

// Paths returns the resolver the factory derives its locations from.
func (f *Factory) Paths() *paths.Resolver {
	return f.paths
}

// Resources copies every non-source file of the source tree into the compiled-output
// directory of t, keeping paths relative to the source directory.
// In watch mode the copy is repeated after every matching change.
func (f *Factory) Resources(t domain.Target, watch bool) domain.RunFunc {
	globs := f.paths.ResourceGlobs()
	dest := f.paths.CompiledDir(t)

	pass := func(_ context.Context) error {
		files, err := f.fs.Expand(globs)
		if err != nil {
			return err
		}
		return f.fs.Copy(files, f.cfg.SrcDir, dest)
	}

	if !watch {
		return pass
	}
	return func(ctx context.Context) error {
		return f.watch(ctx, f.cfg.SrcDir, globs, false, pass)
	}
}

// Compile compiles the sources in-process into the compiled-output directory of t,
// with linked source maps pointing back at the source tree.
// In watch mode the compile is repeated after every source change.
func (f *Factory) Compile(t domain.Target, watch bool) domain.RunFunc {
	globs := f.paths.SourceGlobSet()

	pass := func(ctx context.Context) error {
		sources, err := f.fs.Expand(globs)
		if err != nil {
			return err
		}
		if len(sources) == 0 {
			return nil
		}
		return f.compiler.Compile(ctx, ports.CompileRequest{
			Sources:    sources,
			BaseDir:    f.cfg.SrcDir,
			OutDir:     f.paths.CompiledDir(t),
			SourceRoot: f.paths.SourceRoot(t),
			Config:     f.cfg.Compiler,
		})
	}

	if !watch {
		return pass
	}
	return func(ctx context.Context) error {
		return f.watch(ctx, f.cfg.SrcDir, globs, true, pass)
	}
}

// CompileExec runs the external compiler against the configured project file.
// The compiler configuration must be a path; otherwise the returned function fails
// with domain.ErrConfigNotPath without spawning anything.
func (f *Factory) CompileExec(t domain.Target, watch bool) domain.RunFunc {
	project, err := domain.AsPath(f.cfg.Compiler)
	if err != nil {
		err = zerr.With(zerr.Wrap(err, "compiler configuration cannot be passed to tsc"), "target", t.String())
		return func(context.Context) error { return err }
	}

	args := []string{"--outDir", f.paths.CompiledDir(t), "-p", project.String()}
	if watch {
		args = append(args, "--watch")
	}
	cmd := domain.Command{Name: f.tool("tsc"), Args: args}

	return func(ctx context.Context) error {
		return f.executor.Execute(ctx, cmd)
	}
}

// Bundle removes stale files from the bundle-output directory of t, then bundles the
// compiled output with the effective bundler configuration.
// In watch mode it bundles once, creates the compiled-output directory if it is
// missing, then bundles again after every change of the compiled output.
func (f *Factory) Bundle(t domain.Target, watch bool) domain.RunFunc {
	compiled := f.paths.CompiledDir(t)

	pass := func(ctx context.Context) error {
		if err := f.fs.CleanStale(compiled, f.paths.BundleDir(t)); err != nil {
			return err
		}
		return f.bundler.Bundle(ctx, ports.BundleRequest{
			InputDir: compiled,
			OutDir:   f.paths.BundleDir(t),
			Config:   f.paths.BundlerConfig(t),
		})
	}

	if !watch {
		return pass
	}
	return func(ctx context.Context) error {
		if err := pass(ctx); err != nil {
			f.logger.Error(err)
		}
		// A build without sources leaves nothing to watch yet.
		if err := f.fs.MkdirAll(compiled); err != nil {
			return err
		}
		return f.watch(ctx, compiled, f.paths.CompiledGlobSet(t), false, pass)
	}
}

// DevServer runs the external dev server with the bundler configuration of t.
// That configuration must be a path; otherwise the returned function fails
// with domain.ErrConfigNotPath without spawning anything.
func (f *Factory) DevServer(t domain.Target) domain.RunFunc {
	cfgPath, err := domain.AsPath(f.paths.BundlerConfig(t))
	if err != nil {
		err = zerr.With(zerr.Wrap(err, "bundler configuration cannot be passed to the dev server"), "target", t.String())
		return func(context.Context) error { return err }
	}

	return func(ctx context.Context) error {
		abs, err := filepath.Abs(cfgPath.String())
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to resolve bundler configuration"), "path", cfgPath.String())
		}
		return f.executor.Execute(ctx, domain.Command{
			Name: f.tool("webpack-dev-server"),
			Args: []string{"--config", abs},
			Env:  map[string]string{domain.PortEnvVar: strconv.Itoa(f.cfg.DevServerPort)},
		})
	}
}

// tool returns the path of a locally installed tool, with the .cmd suffix on Windows.
func (f *Factory) tool(name string) string {
	if f.goos == "windows" {
		name += ".cmd"
	}
	return filepath.Join(f.binDir, name)
}
