package domain

import "go.trai.ch/zerr"

var (
	// ErrConfigNotPath is returned when an operation that hands its configuration to an
	// external process receives an inline configuration instead of a file path.
	ErrConfigNotPath = zerr.New("configuration must be a file path")

	// ErrInvalidLocator is returned when a configuration locator is neither a path nor a mapping.
	ErrInvalidLocator = zerr.New("configuration locator must be a path string or a mapping")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when no relay.yaml is found in the directory tree.
	ErrConfigNotFound = zerr.New("could not find " + ConfigFileName)

	// ErrUnknownPipelineKind is returned when a pipeline declaration names an unsupported kind.
	ErrUnknownPipelineKind = zerr.New("unknown pipeline kind, expected 'build', 'watch' or 'devserver'")

	// ErrDuplicatePipeline is returned when two pipeline declarations share a name.
	ErrDuplicatePipeline = zerr.New("duplicate pipeline name")

	// ErrInvalidPipeline is returned when a pipeline declaration lacks a name or a target.
	ErrInvalidPipeline = zerr.New("pipeline requires a name and a target")

	// ErrSubprocessFailed is returned when a spawned tool exits with a non-zero code.
	ErrSubprocessFailed = zerr.New("subprocess failed")

	// ErrDirInspectFailed is returned when a directory exists check fails for a reason
	// other than the directory being absent.
	ErrDirInspectFailed = zerr.New("failed to inspect directory")

	// ErrGlobFailed is returned when a glob pattern cannot be compiled or expanded.
	ErrGlobFailed = zerr.New("failed to expand glob")

	// ErrCopyFailed is returned when a file cannot be copied into the output tree.
	ErrCopyFailed = zerr.New("failed to copy file")

	// ErrCleanFailed is returned when stale output cannot be removed.
	ErrCleanFailed = zerr.New("failed to clean output")

	// ErrCreateDirFailed is returned when an output directory cannot be created.
	ErrCreateDirFailed = zerr.New("failed to create directory")

	// ErrCompileFailed is returned when the in-process compiler reports errors.
	ErrCompileFailed = zerr.New("compilation failed")

	// ErrBundleFailed is returned when the in-process bundler reports errors.
	ErrBundleFailed = zerr.New("bundling failed")

	// ErrTaskNotFound is returned when a requested task is not registered.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrTaskAlreadyExists is returned when a graph receives a second task with the same name.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrMissingDependency is returned when a task references a dependency that is not registered.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrTaskExecutionFailed wraps the error of a task that failed during a run.
	ErrTaskExecutionFailed = zerr.New("task execution failed")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrNoTasksSpecified is returned when the run command is invoked without task names.
	ErrNoTasksSpecified = zerr.New("no tasks specified")

	// ErrUnknownTarget is returned when clean is asked for a target no pipeline declares.
	ErrUnknownTarget = zerr.New("unknown target")
)

// Annotate attaches a key/value pair to sentinel.
// The result still matches sentinel with errors.Is.
func Annotate(sentinel error, key string, value any) error {
	return zerr.With(zerr.Wrap(sentinel, ""), key, value)
}
