// Package pathfilter compiles a monorepo package's include/exclude glob sets
// and matches changed file paths against them (§4.3, PackagePathFilter).
package pathfilter

import (
	"fmt"
	"path"

	"github.com/gobwas/glob"
)

// Filter matches a path iff it matches Include and does not match Exclude.
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

// Compile builds a Filter for a package rooted at pkgPath with extra include
// globs and ignore globs. The package's own subtree ({pkgPath}/**) is always
// part of Include.
func Compile(pkgPath string, extraInclude, ignore []string) (*Filter, error) {
	include := append([]string{path.Join(pkgPath, "**")}, extraInclude...)

	f := &Filter{}
	for _, pattern := range include {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid include glob %q: %w", pattern, err)
		}
		f.include = append(f.include, g)
	}
	for _, pattern := range ignore {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore glob %q: %w", pattern, err)
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

// Match reports whether p is selected by this filter.
func (f *Filter) Match(p string) bool {
	matched := false
	for _, g := range f.include {
		if g.Match(p) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, g := range f.exclude {
		if g.Match(p) {
			return false
		}
	}
	return true
}

// MatchAny reports whether any of paths is selected by this filter.
func (f *Filter) MatchAny(paths []string) bool {
	for _, p := range paths {
		if f.Match(p) {
			return true
		}
	}
	return false
}

// UnderAnyPackage reports whether p falls under any of the given package
// roots, regardless of include/ignore globs. Used by the monorepo-global
// walk (§4.3) to exclude commits touching package paths.
func UnderAnyPackage(p string, packagePaths []string) bool {
	for _, root := range packagePaths {
		if p == root || (len(p) > len(root) && p[:len(root)+1] == root+"/") {
			return true
		}
	}
	return false
}
