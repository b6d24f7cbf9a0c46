package scheduler

import (
	"context"
	"maps"
	"slices"
	"sync"

	"go.trai.ch/relay/internal/core/domain"
)

// Registry is an explicit set of named tasks.
// Tasks are defined by the pipeline assembler and started by name, either
// from the command line or from the body of another task.
type Registry struct {
	scheduler   *Scheduler
	parallelism int

	mu    sync.RWMutex
	tasks map[string]*domain.Task
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithParallelism limits how many tasks of a single Start run at once.
// Zero, the default, places no limit.
func WithParallelism(n int) RegistryOption {
	return func(r *Registry) {
		r.parallelism = n
	}
}

// NewRegistry creates an empty registry whose tasks run on s.
func NewRegistry(s *Scheduler, opts ...RegistryOption) *Registry {
	r := &Registry{
		scheduler: s,
		tasks:     make(map[string]*domain.Task),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Define registers a task under name. Defining a name again replaces the
// previous definition.
func (r *Registry) Define(name string, deps []string, run domain.RunFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[name] = domain.NewTask(name, slices.Clone(deps), run)
}

// Names returns the names of all registered tasks in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.tasks))
}

// Lookup returns the task registered under name.
func (r *Registry) Lookup(name string) (domain.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[name]
	if !ok {
		return domain.Task{}, false
	}
	return *t, true
}

// Plan builds the validated dependency graph of the named tasks and
// everything they transitively depend on.
func (r *Registry) Plan(names ...string) (*domain.Graph, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	graph := domain.NewGraph()
	visited := make(map[string]bool, len(names))
	queue := make([]string, 0, len(names))

	for _, name := range names {
		if _, ok := r.tasks[name]; !ok {
			return nil, domain.Annotate(domain.ErrTaskNotFound, "task", name)
		}
		if !visited[name] {
			visited[name] = true
			queue = append(queue, name)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		task, ok := r.tasks[current]
		if !ok {
			// Left for Validate to report as a missing dependency of its dependent.
			continue
		}
		if err := graph.AddTask(task); err != nil {
			return nil, err
		}
		for _, dep := range task.DependencyNames() {
			if !visited[dep] {
				visited[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	if err := graph.Validate(); err != nil {
		return nil, err
	}
	return graph, nil
}

// Start runs the named tasks and their dependencies and blocks until they finish.
func (r *Registry) Start(ctx context.Context, names ...string) error {
	graph, err := r.Plan(names...)
	if err != nil {
		return err
	}
	return r.scheduler.Run(ctx, graph, r.parallelism)
}
