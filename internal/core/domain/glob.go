package domain

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"sync"

	"go.trai.ch/zerr"
	"mvdan.cc/sh/v3/pattern"
)

// GlobSet is a set difference of slash-separated glob patterns:
// a path belongs to the set if it matches an include pattern and no exclude pattern.
// "**" matches any number of path elements, "*" and "?" never match a slash.
type GlobSet struct {
	Include []string
	Exclude []string
}

// Match reports whether p, a slash-separated path, belongs to the set.
func (g GlobSet) Match(p string) (bool, error) {
	p = path.Clean(p)

	included, err := matchAny(g.Include, p)
	if err != nil || !included {
		return false, err
	}

	excluded, err := matchAny(g.Exclude, p)
	if err != nil {
		return false, err
	}
	return !excluded, nil
}

// Roots returns the literal directory prefixes of the include patterns,
// which bound the part of the tree that can contain matches.
func (g GlobSet) Roots() []string {
	seen := make(map[string]struct{}, len(g.Include))
	roots := make([]string, 0, len(g.Include))
	for _, pat := range g.Include {
		root := GlobRoot(pat)
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		roots = append(roots, root)
	}
	return roots
}

// GlobRoot returns the longest leading run of path elements of pat that contain no
// pattern metacharacters, or "." if the first element already has one.
func GlobRoot(pat string) string {
	elems := strings.Split(pat, "/")
	literal := make([]string, 0, len(elems))
	for _, elem := range elems[:len(elems)-1] {
		if strings.ContainsAny(elem, `*?[\`) {
			break
		}
		literal = append(literal, elem)
	}
	if len(literal) == 0 {
		return "."
	}
	root := strings.Join(literal, "/")
	if root == "" {
		return "/"
	}
	return path.Clean(root)
}

var globCache sync.Map // string -> *regexp.Regexp

// CompileGlob turns a glob pattern into an anchored regular expression.
// Compiled patterns are cached.
func CompileGlob(pat string) (*regexp.Regexp, error) {
	if re, ok := globCache.Load(pat); ok {
		return re.(*regexp.Regexp), nil
	}

	expr, err := pattern.Regexp(path.Clean(pat), pattern.Filenames|pattern.EntireString)
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %w", ErrGlobFailed, err), "pattern", pat)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %w", ErrGlobFailed, err), "pattern", pat)
	}

	actual, _ := globCache.LoadOrStore(pat, re)
	return actual.(*regexp.Regexp), nil
}

func matchAny(patterns []string, p string) (bool, error) {
	for _, pat := range patterns {
		re, err := CompileGlob(pat)
		if err != nil {
			return false, err
		}
		if re.MatchString(p) {
			return true, nil
		}
	}
	return false, nil
}
