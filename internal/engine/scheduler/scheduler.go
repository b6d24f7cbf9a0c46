// Package scheduler implements the task registry and the dependency-ordered task runner.
package scheduler

import (
	"context"
	"errors"
	"sync"

	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/zerr"
)

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting to be executed.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the task has finished successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates the task execution failed.
	StatusFailed TaskStatus = "Failed"
)

// Scheduler manages the execution of tasks in the dependency graph.
type Scheduler struct {
	tracer ports.Tracer

	mu         sync.RWMutex
	taskStatus map[domain.InternedString]TaskStatus
}

// NewScheduler creates a new Scheduler that records every task execution as a span.
func NewScheduler(tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		tracer:     tracer,
		taskStatus: make(map[domain.InternedString]TaskStatus),
	}
}

// initTaskStatuses initializes the status of tasks in the graph to Pending.
func (s *Scheduler) initTaskStatuses(graph *domain.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for task := range graph.Walk() {
		s.taskStatus[task.Name] = StatusPending
	}
}

// updateStatus updates the status of a task.
func (s *Scheduler) updateStatus(name domain.InternedString, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[name] = status
}

// Run executes every task of graph, starting a task only after all of its
// dependencies completed. At most parallelism tasks run at once; a value of
// zero or less places no limit.
// A failed task stops the scheduling of its dependents. Tasks that are already
// running are allowed to finish and all failures are returned joined.
func (s *Scheduler) Run(ctx context.Context, graph *domain.Graph, parallelism int) error {
	// Explicitly validate the graph to ensure executionOrder is populated
	if err := graph.Validate(); err != nil {
		return err
	}

	if parallelism <= 0 {
		parallelism = max(graph.TaskCount(), 1)
	}

	state := s.newRunState(ctx, graph, parallelism)

	planned := make([]string, 0, graph.TaskCount())
	for task := range graph.Walk() {
		planned = append(planned, task.Name.String())
	}
	s.tracer.EmitPlan(ctx, planned)

	s.initTaskStatuses(graph)

	return state.runExecutionLoop()
}

type result struct {
	task domain.InternedString
	err  error
}

type schedulerRunState struct {
	graph       *domain.Graph
	inDegree    map[domain.InternedString]int
	tasks       map[domain.InternedString]domain.Task
	ready       []domain.InternedString
	active      int
	resultsCh   chan result
	errs        error
	ctx         context.Context
	parallelism int
	s           *Scheduler
}

func (s *Scheduler) newRunState(ctx context.Context, graph *domain.Graph, parallelism int) *schedulerRunState {
	taskCount := graph.TaskCount()
	inDegree := make(map[domain.InternedString]int, taskCount)
	tasks := make(map[domain.InternedString]domain.Task, taskCount)

	var ready []domain.InternedString
	// Walk yields tasks in a stable order, so the initial ready queue is stable too.
	for task := range graph.Walk() {
		tasks[task.Name] = task
		inDegree[task.Name] = len(task.Dependencies)
		if len(task.Dependencies) == 0 {
			ready = append(ready, task.Name)
		}
	}

	return &schedulerRunState{
		graph:       graph,
		inDegree:    inDegree,
		tasks:       tasks,
		ready:       ready,
		resultsCh:   make(chan result, parallelism),
		ctx:         ctx,
		parallelism: parallelism,
		s:           s,
	}
}

func (state *schedulerRunState) runExecutionLoop() error {
	// done is cleared once it fired; from then on the loop only waits for
	// running tasks to report back.
	done := state.ctx.Done()

	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil && state.active == 0 {
			return errors.Join(state.errs, state.ctx.Err())
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-done:
			done = nil
		}
	}

	if state.ctx.Err() != nil {
		state.errs = errors.Join(state.errs, state.ctx.Err())
	}

	return state.errs
}

func (state *schedulerRunState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *schedulerRunState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && state.ctx.Err() == nil {
		taskName := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.s.updateStatus(taskName, StatusRunning)

		t := state.tasks[taskName]
		go state.executeTask(&t)
	}
}

func (state *schedulerRunState) executeTask(t *domain.Task) {
	// The span is ended before the result is sent so that it is recorded
	// by the time Run returns.
	res := func() result {
		ctx, span := state.s.tracer.Start(state.ctx, t.Name.String(),
			ports.WithAttribute("relay.dependencies", t.DependencyNames()),
		)
		defer span.End()

		if t.Run == nil {
			return result{task: t.Name}
		}

		err := t.Run(ctx)
		if err != nil {
			span.RecordError(err)
		}
		return result{task: t.Name, err: err}
	}()

	state.resultsCh <- res
}

func (state *schedulerRunState) handleResult(res result) {
	state.active--

	if res.err != nil {
		enhancedErr := zerr.With(zerr.Wrap(res.err, domain.ErrTaskExecutionFailed.Error()), "task", res.task.String())
		state.errs = errors.Join(state.errs, enhancedErr)
		state.s.updateStatus(res.task, StatusFailed)
		return
	}

	state.s.updateStatus(res.task, StatusCompleted)
	for _, dep := range state.graph.Dependents(res.task) {
		if _, ok := state.tasks[dep]; ok {
			state.inDegree[dep]--
			if state.inDegree[dep] == 0 {
				state.ready = append(state.ready, dep)
			}
		}
	}
}
