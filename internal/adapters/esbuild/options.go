package esbuild

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// BundleOptions are the bundler settings read from a YAML or JSON document or an
// inline mapping. Unknown keys are ignored so one file can also configure the dev server.
type BundleOptions struct {
	Entry     []string          `yaml:"entry"`
	Format    string            `yaml:"format"`
	Platform  string            `yaml:"platform"`
	Minify    bool              `yaml:"minify"`
	Sourcemap bool              `yaml:"sourcemap"`
	External  []string          `yaml:"external"`
	Define    map[string]string `yaml:"define"`
}

// scriptConfigExts are configuration files that only a JavaScript tool can evaluate.
var scriptConfigExts = []string{".js", ".cjs", ".mjs", ".ts"}

// LoadBundleOptions reads the options a locator refers to.
func LoadBundleOptions(config domain.Locator) (BundleOptions, error) {
	var opts BundleOptions

	switch cfg := config.(type) {
	case nil:
	case domain.PathLocator:
		if slices.Contains(scriptConfigExts, filepath.Ext(cfg.String())) {
			err := zerr.Wrap(domain.ErrBundleFailed, "bundler configuration must be a YAML or JSON document")
			return opts, zerr.With(err, "path", cfg.String())
		}
		data, err := os.ReadFile(cfg.String())
		if err != nil {
			return opts, zerr.With(fmt.Errorf("%w: %w", domain.ErrConfigReadFailed, err), "path", cfg.String())
		}
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return opts, zerr.With(fmt.Errorf("%w: %w", domain.ErrConfigParseFailed, err), "path", cfg.String())
		}
	case domain.InlineConfig:
		// Round-trip through YAML so inline and file configurations decode alike.
		data, err := yaml.Marshal(map[string]any(cfg))
		if err != nil {
			return opts, zerr.Wrap(err, "failed to encode inline bundler configuration")
		}
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return opts, fmt.Errorf("%w: %w", domain.ErrConfigParseFailed, err)
		}
	}

	if len(opts.Entry) == 0 {
		opts.Entry = []string{domain.DefaultBundleEntry}
	}
	return opts, nil
}

// buildOptions translates the options into an esbuild bundling pass from inputDir to outDir.
func (o BundleOptions) buildOptions(inputDir, outDir string) (api.BuildOptions, error) {
	format, err := parseFormat(o.Format)
	if err != nil {
		return api.BuildOptions{}, err
	}
	platform, err := parsePlatform(o.Platform)
	if err != nil {
		return api.BuildOptions{}, err
	}

	entries := make([]string, 0, len(o.Entry))
	for _, entry := range o.Entry {
		entries = append(entries, filepath.Join(inputDir, filepath.FromSlash(entry)))
	}

	opts := api.BuildOptions{
		EntryPoints:       entries,
		Bundle:            true,
		Outdir:            outDir,
		Outbase:           inputDir,
		Format:            format,
		Platform:          platform,
		MinifyWhitespace:  o.Minify,
		MinifyIdentifiers: o.Minify,
		MinifySyntax:      o.Minify,
		External:          o.External,
		Define:            o.Define,
		LogLevel:          api.LogLevelSilent,
		Write:             true,
	}
	if o.Sourcemap {
		opts.Sourcemap = api.SourceMapLinked
	}
	return opts, nil
}

func parseFormat(s string) (api.Format, error) {
	switch s {
	case "", "iife":
		return api.FormatIIFE, nil
	case "esm":
		return api.FormatESModule, nil
	case "cjs":
		return api.FormatCommonJS, nil
	default:
		return api.FormatDefault, domain.Annotate(domain.ErrConfigParseFailed, "format", s)
	}
}

func parsePlatform(s string) (api.Platform, error) {
	switch s {
	case "", "browser":
		return api.PlatformBrowser, nil
	case "node":
		return api.PlatformNode, nil
	case "neutral":
		return api.PlatformNeutral, nil
	default:
		return api.PlatformBrowser, domain.Annotate(domain.ErrConfigParseFailed, "platform", s)
	}
}
