// Package app implements the application layer for relay.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/relay/internal/engine/paths"
	"go.trai.ch/relay/internal/engine/pipeline"
	"go.trai.ch/relay/internal/engine/scheduler"
	"go.trai.ch/relay/internal/engine/tasks"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	fs           ports.FileSystem
	compiler     ports.Compiler
	bundler      ports.Bundler
	executor     ports.Executor
	watcher      ports.Watcher
	logger       ports.Logger
	scheduler    *scheduler.Scheduler

	getwd func() (string, error)
	chdir func(string) error
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	fs ports.FileSystem,
	compiler ports.Compiler,
	bundler ports.Bundler,
	executor ports.Executor,
	watcher ports.Watcher,
	log ports.Logger,
	sched *scheduler.Scheduler,
) *App {
	return &App{
		configLoader: loader,
		fs:           fs,
		compiler:     compiler,
		bundler:      bundler,
		executor:     executor,
		watcher:      watcher,
		logger:       log,
		scheduler:    sched,
		getwd:        os.Getwd,
		chdir:        os.Chdir,
	}
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// Jobs limits how many tasks run at once. Zero places no limit.
	Jobs int
}

// TaskInfo describes a registered task.
type TaskInfo struct {
	Name         string
	Dependencies []string
}

// Run loads the project, registers its pipelines and runs the named tasks.
func (a *App) Run(ctx context.Context, taskNames []string, opts RunOptions) error {
	if len(taskNames) == 0 {
		return domain.ErrNoTasksSpecified
	}

	project, err := a.load()
	if err != nil {
		return err
	}

	registry, err := a.registry(project, scheduler.WithParallelism(opts.Jobs))
	if err != nil {
		return err
	}

	return registry.Start(ctx, taskNames...)
}

// Tasks returns every task the project's pipelines register, sorted by name.
func (a *App) Tasks(_ context.Context) ([]TaskInfo, error) {
	project, err := a.load()
	if err != nil {
		return nil, err
	}

	registry, err := a.registry(project)
	if err != nil {
		return nil, err
	}

	names := registry.Names()
	infos := make([]TaskInfo, 0, len(names))
	for _, name := range names {
		task, _ := registry.Lookup(name)
		infos = append(infos, TaskInfo{Name: name, Dependencies: task.DependencyNames()})
	}
	return infos, nil
}

// Clean removes the compiled-output and bundle-output directories of targets.
// Without targets, every target a pipeline declares is cleaned.
func (a *App) Clean(_ context.Context, targets []string) error {
	project, err := a.load()
	if err != nil {
		return err
	}

	declared := project.Targets()
	selected := declared
	if len(targets) > 0 {
		selected = make([]domain.Target, 0, len(targets))
		for _, name := range targets {
			t := domain.Target(name)
			if !slices.Contains(declared, t) {
				return domain.Annotate(domain.ErrUnknownTarget, "target", name)
			}
			selected = append(selected, t)
		}
	}

	resolver := paths.NewResolver(project.Config)
	var errs error
	for _, t := range selected {
		for _, dir := range []string{resolver.CompiledDir(t), resolver.BundleDir(t)} {
			a.logger.Info(fmt.Sprintf("removing %s", dir))
			if err := a.fs.RemoveAll(dir); err != nil {
				errs = errors.Join(errs, err)
			}
		}
	}
	return errs
}

// load reads relay.yaml and moves into the project root, which every
// configured directory is relative to.
func (a *App) load() (*domain.Project, error) {
	cwd, err := a.getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to determine working directory")
	}

	project, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	if project.Root != "" && project.Root != cwd {
		if err := a.chdir(project.Root); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to enter project root"), "root", project.Root)
		}
	}
	return project, nil
}

func (a *App) registry(project *domain.Project, opts ...scheduler.RegistryOption) (*scheduler.Registry, error) {
	factory := tasks.NewFactory(
		project.Config,
		a.fs,
		a.compiler,
		a.bundler,
		a.executor,
		a.watcher,
		a.logger,
	)
	assembler := pipeline.NewAssembler(project.Config, factory, a.fs, a.logger)

	registry := scheduler.NewRegistry(a.scheduler, opts...)
	if err := assembler.Register(registry, project.Pipelines); err != nil {
		return nil, err
	}
	return registry, nil
}
