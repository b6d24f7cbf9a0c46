package domain

import "context"

// RunFunc is the body of a task. Whether it runs once or keeps watching
// is decided when the RunFunc is constructed.
type RunFunc func(ctx context.Context) error

// Task is a named unit of work with dependencies that must complete before it starts.
type Task struct {
	Name         InternedString
	Dependencies []InternedString
	Run          RunFunc
}

// NewTask creates a Task, interning the name and dependency names.
func NewTask(name string, deps []string, run RunFunc) *Task {
	return &Task{
		Name:         NewInternedString(name),
		Dependencies: NewInternedStrings(deps),
		Run:          run,
	}
}

// DependencyNames returns the dependency names as plain strings.
func (t *Task) DependencyNames() []string {
	names := make([]string, len(t.Dependencies))
	for i, dep := range t.Dependencies {
		names[i] = dep.String()
	}
	return names
}
