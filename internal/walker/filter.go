package walker

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes are directory names never descended into: version
// control, Jekyll and Bundler caches, editor settings and generated code
// box scripts.
var DefaultExcludes = []string{
	".git",
	"node_modules",
	"vendor",
	".bundle",
	".sass-cache",
	".jekyll-cache",
	".jekyll-metadata",
	"_codeboxes",
	".pagekit",
	".idea",
	".vscode",
}

// ExcludedDir reports whether a directory should be skipped with its whole
// subtree.
func ExcludedDir(name string) bool {
	for _, excl := range DefaultExcludes {
		if strings.EqualFold(name, excl) {
			return true
		}
	}
	return false
}

// pattern is a validated glob. Globs without a slash apply to the file name
// in any directory, like "*.min.js"; the rest, and globs anchored with a
// leading slash, apply to the site-relative path.
type pattern struct {
	glob     string
	baseOnly bool
}

func compilePatterns(globs []string) ([]pattern, error) {
	out := make([]pattern, 0, len(globs))
	for _, g := range globs {
		g = filepath.ToSlash(strings.TrimSpace(g))
		anchored := strings.HasPrefix(g, "/")
		g = strings.TrimPrefix(g, "/")
		if g == "" {
			continue
		}
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("invalid glob %q", g)
		}
		out = append(out, pattern{glob: g, baseOnly: !anchored && !strings.Contains(g, "/")})
	}
	return out, nil
}

func (p pattern) match(relPath string) bool {
	name := relPath
	if p.baseOnly {
		name = path.Base(relPath)
	}
	return doublestar.MatchUnvalidated(p.glob, name)
}

// Filter selects site files by include and exclude globs. A file is kept
// when it matches some include glob (or there are none) and no exclude glob.
type Filter struct {
	include []pattern
	exclude []pattern
}

// NewFilter validates the globs once so that a typo in the config is
// reported instead of silently matching nothing.
func NewFilter(include, exclude []string) (*Filter, error) {
	inc, err := compilePatterns(include)
	if err != nil {
		return nil, fmt.Errorf("include: %w", err)
	}
	exc, err := compilePatterns(exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	return &Filter{include: inc, exclude: exc}, nil
}

// Keep reports whether relPath passes the filter.
func (f *Filter) Keep(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	return (len(f.include) == 0 || anyMatch(f.include, relPath)) && !anyMatch(f.exclude, relPath)
}

func anyMatch(patterns []pattern, relPath string) bool {
	for _, p := range patterns {
		if p.match(relPath) {
			return true
		}
	}
	return false
}

// MatchesInclude reports whether relPath matches one of patterns. No
// patterns include everything; invalid globs never match.
func MatchesInclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	ps, _ := compilePatterns(patterns)
	return anyMatch(ps, filepath.ToSlash(relPath))
}

// MatchesExclude reports whether relPath matches one of patterns.
func MatchesExclude(relPath string, patterns []string) bool {
	ps, _ := compilePatterns(patterns)
	return anyMatch(ps, filepath.ToSlash(relPath))
}
