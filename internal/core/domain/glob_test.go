package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/relay/internal/core/domain"
)

func TestGlobSet_Match(t *testing.T) {
	sources := domain.GlobSet{Include: []string{"src/**/*.ts", "src/**/*.tsx"}}
	resources := domain.GlobSet{
		Include: []string{"src/**/*"},
		Exclude: []string{"src/**/*.ts", "src/**/*.tsx"},
	}

	tests := []struct {
		name     string
		globs    domain.GlobSet
		path     string
		expected bool
	}{
		{name: "top level source", globs: sources, path: "src/index.ts", expected: true},
		{name: "nested source", globs: sources, path: "src/app/views/main.tsx", expected: true},
		{name: "declaration file is a source", globs: sources, path: "src/types/env.d.ts", expected: true},
		{name: "star does not cross directories", globs: domain.GlobSet{Include: []string{"src/*.ts"}}, path: "src/app/main.ts", expected: false},
		{name: "other root", globs: sources, path: "test/index.ts", expected: false},
		{name: "resource", globs: resources, path: "src/img/logo.png", expected: true},
		{name: "source excluded from resources", globs: resources, path: "src/app/main.ts", expected: false},
		{name: "unclean path", globs: resources, path: "./src//style.css", expected: true},
		{name: "empty set", globs: domain.GlobSet{}, path: "src/index.ts", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, err := tt.globs.Match(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, matched)
		})
	}
}

func TestGlobSet_Match_InvalidPattern(t *testing.T) {
	_, err := domain.GlobSet{Include: []string{"src/[a"}}.Match("src/a")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGlobFailed)
}

func TestGlobRoot(t *testing.T) {
	tests := map[string]string{
		"src/**/*.ts":            "src",
		"build/tmp/debug/**/*":   "build/tmp/debug",
		"*.ts":                   ".",
		"src/index.ts":           "src",
		"/abs/project/**/*.json": "/abs/project",
		"src/v[0-9]/*.ts":        "src",
	}

	for pattern, want := range tests {
		assert.Equal(t, want, domain.GlobRoot(pattern), pattern)
	}
}

func TestGlobSet_Roots(t *testing.T) {
	globs := domain.GlobSet{Include: []string{"src/**/*.ts", "src/**/*.js", "assets/*.png"}}

	assert.Equal(t, []string{"src", "assets"}, globs.Roots())
}
