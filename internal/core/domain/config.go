package domain

import (
	"maps"
	"os"
	"strconv"
	"time"
)

// Target names a build flavour such as "debug" or "release".
// It selects the output subdirectories and the bundler configuration.
type Target string

// String returns the target name.
func (t Target) String() string {
	return string(t)
}

// Config is the immutable project configuration.
// Directory fields are relative fragments that are combined with a target name.
type Config struct {
	SrcDir                string
	CompiledRoot          string
	BundleRoot            string
	Compiler              Locator
	Bundler               Locator
	Bundlers              map[Target]Locator
	DevServerPort         int
	DevServerStartupDelay time.Duration
	IncludePlainScripts   bool
}

// ConfigOption overrides a default of NewConfig.
type ConfigOption func(*Config)

// NewConfig returns a Config with defaults applied, then the given options.
// The compiler locator "." is expanded to DefaultCompilerConfigPath.
func NewConfig(opts ...ConfigOption) Config {
	cfg := Config{
		SrcDir:                DefaultSrcDir,
		CompiledRoot:          DefaultCompiledRoot,
		BundleRoot:            DefaultBundleRoot,
		Compiler:              InlineConfig{},
		Bundler:               InlineConfig{},
		Bundlers:              map[Target]Locator{},
		DevServerPort:         portFromEnv(),
		DevServerStartupDelay: DefaultDevServerStartupDelay,
		IncludePlainScripts:   true,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if p, ok := cfg.Compiler.(PathLocator); ok && p == ProjectConfigShorthand {
		cfg.Compiler = PathLocator(DefaultCompilerConfigPath)
	}

	return cfg
}

func portFromEnv() int {
	port, err := strconv.Atoi(os.Getenv(PortEnvVar))
	if err != nil || port <= 0 {
		return DefaultDevServerPort
	}
	return port
}

// WithSrcDir sets the source directory.
func WithSrcDir(dir string) ConfigOption {
	return func(c *Config) { c.SrcDir = dir }
}

// WithCompiledRoot sets the root of compiled output.
func WithCompiledRoot(dir string) ConfigOption {
	return func(c *Config) { c.CompiledRoot = dir }
}

// WithBundleRoot sets the root of bundled output.
func WithBundleRoot(dir string) ConfigOption {
	return func(c *Config) { c.BundleRoot = dir }
}

// WithCompiler sets the compiler configuration.
func WithCompiler(l Locator) ConfigOption {
	return func(c *Config) {
		if l != nil {
			c.Compiler = l
		}
	}
}

// WithBundler sets the shared bundler configuration.
func WithBundler(l Locator) ConfigOption {
	return func(c *Config) {
		if l != nil {
			c.Bundler = l
		}
	}
}

// WithTargetBundlers sets per-target bundler configurations.
// A nil or empty mapping leaves every target on the shared configuration.
func WithTargetBundlers(bundlers map[Target]Locator) ConfigOption {
	return func(c *Config) {
		c.Bundlers = make(map[Target]Locator, len(bundlers))
		maps.Copy(c.Bundlers, bundlers)
	}
}

// WithDevServerPort sets the dev server port.
func WithDevServerPort(port int) ConfigOption {
	return func(c *Config) {
		if port > 0 {
			c.DevServerPort = port
		}
	}
}

// WithDevServerStartupDelay sets the wait between dev server start and watcher start.
// Zero keeps the default, like an unset value.
func WithDevServerStartupDelay(d time.Duration) ConfigOption {
	return func(c *Config) {
		if d > 0 {
			c.DevServerStartupDelay = d
		}
	}
}

// WithIncludePlainScripts controls whether .js and .jsx files are compiled as sources.
func WithIncludePlainScripts(include bool) ConfigOption {
	return func(c *Config) { c.IncludePlainScripts = include }
}
