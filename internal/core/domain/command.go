package domain

// Command describes an external process invocation.
type Command struct {
	// Name is the executable, either a bare name looked up in PATH or a path.
	Name string
	Args []string
	// Env holds variables set on top of the inherited environment.
	Env map[string]string
	// Dir is the working directory; empty means the current directory.
	Dir string
}
