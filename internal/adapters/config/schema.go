package config

import (
	"strconv"
	"time"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Relayfile represents the structure of the relay.yaml configuration file.
type Relayfile struct {
	SrcDir                string               `yaml:"srcDir"`
	CompiledDir           string               `yaml:"compiledDir"`
	BundleDir             string               `yaml:"bundleDir"`
	CompilerConfig        yaml.Node            `yaml:"compilerConfig"`
	BundlerConfig         yaml.Node            `yaml:"bundlerConfig"`
	BundlerConfigs        map[string]yaml.Node `yaml:"bundlerConfigs"`
	DevServerPort         int                  `yaml:"devServerPort"`
	DevServerStartupDelay *Delay               `yaml:"devServerStartupDelay"`
	IncludePlainScripts   *bool                `yaml:"includePlainScripts"`
	Pipelines             []PipelineDTO        `yaml:"pipelines"`
}

// PipelineDTO represents a pipeline declaration in the configuration.
type PipelineDTO struct {
	Name   string `yaml:"name"`
	Kind   string `yaml:"kind"`
	Target string `yaml:"target"`
	Fork   bool   `yaml:"fork"`
}

// Delay is a duration written either as milliseconds or as a Go duration string.
type Delay time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Delay) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return zerr.With(zerr.New("delay must be a number of milliseconds or a duration"), "line", value.Line)
	}

	var parsed time.Duration
	if ms, err := strconv.Atoi(value.Value); err == nil {
		parsed = time.Duration(ms) * time.Millisecond
	} else {
		parsed, err = time.ParseDuration(value.Value)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "invalid delay"), "line", value.Line)
		}
	}

	if parsed < 0 {
		return zerr.With(zerr.New("delay must not be negative"), "line", value.Line)
	}

	*d = Delay(parsed)
	return nil
}
