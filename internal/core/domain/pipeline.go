package domain

// PipelineKind selects how a pipeline is assembled.
type PipelineKind string

const (
	// PipelineBuild compiles, copies resources and bundles once.
	PipelineBuild PipelineKind = "build"
	// PipelineWatch builds if needed, then keeps compiling, copying and bundling on change.
	PipelineWatch PipelineKind = "watch"
	// PipelineDevServer builds if needed, then runs the dev server next to the watchers.
	PipelineDevServer PipelineKind = "devserver"
)

// ParsePipelineKind validates a pipeline kind name.
func ParsePipelineKind(s string) (PipelineKind, error) {
	switch k := PipelineKind(s); k {
	case PipelineBuild, PipelineWatch, PipelineDevServer:
		return k, nil
	default:
		return "", Annotate(ErrUnknownPipelineKind, "kind", s)
	}
}

// Pipeline is a declared group of tasks registered under Name.
type Pipeline struct {
	Name   string
	Kind   PipelineKind
	Target Target
	// Fork compiles with the external compiler process instead of in-process.
	Fork bool
}

// PipelineState is the lifecycle state of a continuous pipeline.
// There is no terminal state: a running pipeline ends with the process.
type PipelineState int

const (
	// PipelineNotStarted means the pipeline body has not been invoked.
	PipelineNotStarted PipelineState = iota
	// PipelineAwaitingInitialBuild means the compiled output was missing and the build is running.
	PipelineAwaitingInitialBuild
	// PipelineRunning means the continuous tasks have been started.
	PipelineRunning
)

// String returns the state name.
func (s PipelineState) String() string {
	switch s {
	case PipelineNotStarted:
		return "not-started"
	case PipelineAwaitingInitialBuild:
		return "awaiting-initial-build"
	case PipelineRunning:
		return "running"
	default:
		return "unknown"
	}
}

// ResourcesTaskName is the name of the resource-copy sub-task of a pipeline.
func ResourcesTaskName(pipeline string) string {
	return pipeline + ":resources"
}

// CompileTaskName is the name of the compile sub-task of a pipeline.
func CompileTaskName(pipeline string) string {
	return pipeline + ":compile"
}

// BuildTaskName is the name of the build pipeline nested under a watch or dev-server pipeline.
func BuildTaskName(pipeline string) string {
	return pipeline + ":build"
}

// BundleTaskName is the name of the bundle watcher of a watch pipeline.
func BundleTaskName(pipeline string) string {
	return pipeline + ":bundle"
}

// DevServerTaskName is the name of the dev server sub-task of a dev-server pipeline.
func DevServerTaskName(pipeline string) string {
	return pipeline + ":devserver"
}
