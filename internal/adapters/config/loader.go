// Package config provides the relay.yaml loader.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// DiscoverRoot returns the closest directory at or above cwd that contains relay.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve working directory"), "cwd", cwd)
	}

	for {
		if info, err := os.Stat(filepath.Join(currentDir, domain.ConfigFileName)); err == nil && !info.IsDir() {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", domain.Annotate(domain.ErrConfigNotFound, "cwd", cwd)
}

// Load discovers relay.yaml from cwd and returns the project it describes.
func (l *Loader) Load(cwd string) (*domain.Project, error) {
	root, err := l.DiscoverRoot(cwd)
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(root, domain.ConfigFileName)

	var relayfile Relayfile
	if err := readAndUnmarshalYAML(configPath, &relayfile); err != nil {
		return nil, err
	}

	project, err := l.buildProject(root, &relayfile)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	return project, nil
}

func (l *Loader) buildProject(root string, relayfile *Relayfile) (*domain.Project, error) {
	opts, err := configOptions(relayfile)
	if err != nil {
		return nil, err
	}

	pipelines, err := buildPipelines(relayfile.Pipelines)
	if err != nil {
		return nil, err
	}

	project := &domain.Project{
		Root:      root,
		Config:    domain.NewConfig(opts...),
		Pipelines: pipelines,
	}

	targets := project.Targets()
	for target := range project.Config.Bundlers {
		if !slices.Contains(targets, target) {
			l.Logger.Warn(fmt.Sprintf("bundlerConfigs entry %q is not used by any pipeline", target))
		}
	}

	return project, nil
}

func configOptions(relayfile *Relayfile) ([]domain.ConfigOption, error) {
	var opts []domain.ConfigOption

	if relayfile.SrcDir != "" {
		opts = append(opts, domain.WithSrcDir(relayfile.SrcDir))
	}
	if relayfile.CompiledDir != "" {
		opts = append(opts, domain.WithCompiledRoot(relayfile.CompiledDir))
	}
	if relayfile.BundleDir != "" {
		opts = append(opts, domain.WithBundleRoot(relayfile.BundleDir))
	}

	compiler, err := decodeLocator(&relayfile.CompilerConfig)
	if err != nil {
		return nil, zerr.With(err, "key", "compilerConfig")
	}
	opts = append(opts, domain.WithCompiler(compiler))

	bundler, err := decodeLocator(&relayfile.BundlerConfig)
	if err != nil {
		return nil, zerr.With(err, "key", "bundlerConfig")
	}
	opts = append(opts, domain.WithBundler(bundler))

	if len(relayfile.BundlerConfigs) > 0 {
		bundlers := make(map[domain.Target]domain.Locator, len(relayfile.BundlerConfigs))
		for target, node := range relayfile.BundlerConfigs {
			locator, err := decodeLocator(&node)
			if err != nil {
				return nil, zerr.With(err, "key", "bundlerConfigs."+target)
			}
			if locator != nil {
				bundlers[domain.Target(target)] = locator
			}
		}
		opts = append(opts, domain.WithTargetBundlers(bundlers))
	}

	if relayfile.DevServerPort != 0 {
		opts = append(opts, domain.WithDevServerPort(relayfile.DevServerPort))
	}
	if relayfile.DevServerStartupDelay != nil {
		opts = append(opts, domain.WithDevServerStartupDelay(time.Duration(*relayfile.DevServerStartupDelay)))
	}
	if relayfile.IncludePlainScripts != nil {
		opts = append(opts, domain.WithIncludePlainScripts(*relayfile.IncludePlainScripts))
	}

	return opts, nil
}

// decodeLocator maps a YAML value to a locator: a string is a path and a
// mapping is an inline configuration. An absent or null value yields nil.
func decodeLocator(node *yaml.Node) (domain.Locator, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!null":
			return nil, nil
		case "!!str":
			return domain.PathLocator(node.Value), nil
		}
	case yaml.MappingNode:
		inline := domain.InlineConfig{}
		if err := node.Decode(&inline); err != nil {
			return nil, zerr.With(fmt.Errorf("%w: %w", domain.ErrConfigParseFailed, err), "line", node.Line)
		}
		return inline, nil
	}
	return nil, domain.Annotate(domain.ErrInvalidLocator, "line", node.Line)
}

func buildPipelines(dtos []PipelineDTO) ([]domain.Pipeline, error) {
	pipelines := make([]domain.Pipeline, 0, len(dtos))
	seen := make(map[string]int, len(dtos))

	for i, dto := range dtos {
		if dto.Name == "" || dto.Target == "" {
			return nil, domain.Annotate(domain.ErrInvalidPipeline, "index", i)
		}

		kind, err := domain.ParsePipelineKind(dto.Kind)
		if err != nil {
			return nil, zerr.With(err, "pipeline", dto.Name)
		}

		if first, ok := seen[dto.Name]; ok {
			err := domain.Annotate(domain.ErrDuplicatePipeline, "pipeline", dto.Name)
			err = zerr.With(err, "first_occurrence", first)
			return nil, zerr.With(err, "duplicate_at", i)
		}
		seen[dto.Name] = i

		pipelines = append(pipelines, domain.Pipeline{
			Name:   dto.Name,
			Kind:   kind,
			Target: domain.Target(dto.Target),
			Fork:   dto.Fork,
		})
	}

	return pipelines, nil
}

// readAndUnmarshalYAML decodes configPath strictly, rejecting unknown keys.
// An empty file decodes to the zero value.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered by the loader
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrConfigReadFailed, err), "path", configPath)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(configFile))
	decoder.KnownFields(true)
	if err := decoder.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrConfigParseFailed, err), "path", configPath)
	}

	return nil
}
