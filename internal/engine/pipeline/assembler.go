// Package pipeline assembles the build, watch and dev-server pipelines of a target
// from the sub-tasks built by the task factory, and registers them by name.
package pipeline

import (
	"context"
	"sync"
	"time"

	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/relay/internal/engine/paths"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Registry is where pipelines are defined and how a pipeline body starts its sub-tasks.
type Registry interface {
	// Define registers a task under name, replacing any previous definition.
	Define(name string, deps []string, run domain.RunFunc)
	// Start runs the named tasks and their dependencies, blocking until they finish.
	Start(ctx context.Context, names ...string) error
}

// TaskFactory builds the bodies of the pipeline sub-tasks.
type TaskFactory interface {
	Resources(t domain.Target, watch bool) domain.RunFunc
	Compile(t domain.Target, watch bool) domain.RunFunc
	CompileExec(t domain.Target, watch bool) domain.RunFunc
	Bundle(t domain.Target, watch bool) domain.RunFunc
	DevServer(t domain.Target) domain.RunFunc
}

// Options tunes how a pipeline is assembled.
type Options struct {
	// Fork compiles with the external compiler process instead of in-process.
	Fork bool
}

// Assembler registers named pipelines into a Registry.
type Assembler struct {
	cfg     domain.Config
	paths   *paths.Resolver
	factory TaskFactory
	fs      ports.FileSystem
	logger  ports.Logger

	mu     sync.RWMutex
	states map[string]domain.PipelineState
}

// NewAssembler creates an Assembler for cfg.
func NewAssembler(cfg domain.Config, factory TaskFactory, fs ports.FileSystem, logger ports.Logger) *Assembler {
	return &Assembler{
		cfg:     cfg,
		paths:   paths.NewResolver(cfg),
		factory: factory,
		fs:      fs,
		logger:  logger,
		states:  make(map[string]domain.PipelineState),
	}
}

// Register defines every pipeline of pipelines in r, in order.
func (a *Assembler) Register(r Registry, pipelines []domain.Pipeline) error {
	for _, p := range pipelines {
		opts := Options{Fork: p.Fork}
		switch p.Kind {
		case domain.PipelineBuild:
			a.Build(r, p.Name, p.Target, opts)
		case domain.PipelineWatch:
			a.Watch(r, p.Name, p.Target, opts)
		case domain.PipelineDevServer:
			a.DevServer(r, p.Name, p.Target, opts)
		default:
			return zerr.With(domain.Annotate(domain.ErrUnknownPipelineKind, "kind", string(p.Kind)), "pipeline", p.Name)
		}
	}
	return nil
}

func (a *Assembler) setState(name string, state domain.PipelineState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.states[name] = state
}

// Build registers a one-shot build: resources and compile as sub-tasks, and name
// bundling once both have completed.
func (a *Assembler) Build(r Registry, name string, t domain.Target, opts Options) {
	resources := domain.ResourcesTaskName(name)
	compile := domain.CompileTaskName(name)

	r.Define(resources, nil, a.factory.Resources(t, false))
	r.Define(compile, nil, a.compile(t, false, opts))
	r.Define(name, []string{resources, compile}, a.factory.Bundle(t, false))
}

// Watch registers a build under a derived name, the resources, compile and bundle
// watchers, and name. Running name builds first when the compiled output of t is
// missing, then runs the three watchers concurrently.
func (a *Assembler) Watch(r Registry, name string, t domain.Target, opts Options) {
	build := domain.BuildTaskName(name)
	resources := domain.ResourcesTaskName(name)
	compile := domain.CompileTaskName(name)
	bundle := domain.BundleTaskName(name)

	a.Build(r, build, t, opts)
	r.Define(resources, nil, a.factory.Resources(t, true))
	r.Define(compile, nil, a.compile(t, true, opts))
	r.Define(bundle, nil, a.factory.Bundle(t, true))

	r.Define(name, nil, func(ctx context.Context) error {
		if err := a.buildBeforeWatch(ctx, r, name, t); err != nil {
			return err
		}
		a.setState(name, domain.PipelineRunning)

		g, ctx := errgroup.WithContext(ctx)
		for _, task := range []string{resources, compile, bundle} {
			g.Go(func() error {
				return r.Start(ctx, task)
			})
		}
		return g.Wait()
	})
}

// DevServer registers a build under a derived name, the resources and compile
// watchers, the dev server, and name. Running name builds first when the compiled
// output of t is missing, starts the dev server, and starts the watchers once the
// configured startup delay has passed. The delay is not a readiness check.
func (a *Assembler) DevServer(r Registry, name string, t domain.Target, opts Options) {
	build := domain.BuildTaskName(name)
	resources := domain.ResourcesTaskName(name)
	compile := domain.CompileTaskName(name)
	devServer := domain.DevServerTaskName(name)

	a.Build(r, build, t, opts)
	r.Define(resources, nil, a.factory.Resources(t, true))
	r.Define(compile, nil, a.compile(t, true, opts))
	r.Define(devServer, nil, a.factory.DevServer(t))

	r.Define(name, nil, func(ctx context.Context) error {
		if err := a.buildBeforeWatch(ctx, r, name, t); err != nil {
			return err
		}
		a.setState(name, domain.PipelineRunning)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return r.Start(ctx, devServer)
		})
		g.Go(func() error {
			if err := sleep(ctx, a.cfg.DevServerStartupDelay); err != nil {
				return err
			}
			watchers, ctx := errgroup.WithContext(ctx)
			for _, task := range []string{resources, compile} {
				watchers.Go(func() error {
					return r.Start(ctx, task)
				})
			}
			return watchers.Wait()
		})
		return g.Wait()
	})
}

func (a *Assembler) compile(t domain.Target, watch bool, opts Options) domain.RunFunc {
	if opts.Fork {
		return a.factory.CompileExec(t, watch)
	}
	return a.factory.Compile(t, watch)
}

// buildBeforeWatch runs the build of the pipeline when the compiled output of t is
// missing. An existing directory is taken as evidence of an earlier build, even if
// its content is stale.
func (a *Assembler) buildBeforeWatch(ctx context.Context, r Registry, name string, t domain.Target) error {
	exists, err := a.fs.DirExists(a.paths.CompiledDir(t))
	if err != nil {
		return zerr.With(err, "pipeline", name)
	}
	if exists {
		return nil
	}

	a.setState(name, domain.PipelineAwaitingInitialBuild)
	a.logger.Info("performing initial build")
	return r.Start(ctx, domain.BuildTaskName(name))
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
