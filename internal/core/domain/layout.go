package domain

import (
	"path/filepath"
	"time"
)

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "relay.yaml"

	// DefaultSrcDir is the default source directory.
	DefaultSrcDir = "src"

	// DefaultCompiledRoot is the default root for compiled output, one subdirectory per target.
	DefaultCompiledRoot = "build/tmp"

	// DefaultBundleRoot is the default root for bundled output, one subdirectory per target.
	DefaultBundleRoot = "build/dist"

	// DefaultDevServerPort is used when neither the config nor $PORT provide a port.
	DefaultDevServerPort = 8080

	// DefaultDevServerStartupDelay is the fixed wait between starting the dev server
	// and starting the watchers.
	DefaultDevServerStartupDelay = 3000 * time.Millisecond

	// ProjectConfigShorthand is the compiler locator that expands to DefaultCompilerConfigPath.
	ProjectConfigShorthand = "."

	// DefaultCompilerConfigPath is the compiler configuration used for the "." shorthand.
	DefaultCompilerConfigPath = "./tsconfig.json"

	// DefaultBundleEntry is the entry point bundled when the bundler config names none.
	DefaultBundleEntry = "index.js"

	// PortEnvVar is the environment variable holding the dev server port.
	PortEnvVar = "PORT"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultBinDir returns the directory holding locally installed tool binaries.
// It joins node_modules and .bin.
func DefaultBinDir() string {
	return filepath.Join("node_modules", ".bin")
}
