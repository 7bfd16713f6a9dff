// Package walker implements CommitWalker (C5): producing ordered
// (OidOf, Commit) sequences for a revspec, with path-scoped specializations
// for per-package and monorepo-global commit ranges.
//
// Per the design notes (§9), all three specializations share one traversal
// primitive parameterized by a path predicate rather than three
// near-duplicated walks.
package walker

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/cocogitto-go/cocogitto/internal/gitrepo"
	"github.com/cocogitto-go/cocogitto/internal/oid"
	"github.com/cocogitto-go/cocogitto/internal/pathfilter"
)

// Entry pairs an annotated commit identity with its loaded commit object.
type Entry struct {
	Of     oid.Of
	Commit *object.Commit
}

// Walker resolves revspecs into commit sequences.
type Walker struct {
	repo     *gitrepo.Repository
	resolver *gitrepo.Resolver
}

// New builds a Walker over repo using resolver for both the initial range
// resolution and per-commit identity annotation.
func New(repo *gitrepo.Repository, resolver *gitrepo.Resolver) *Walker {
	return &Walker{repo: repo, resolver: resolver}
}

// Revwalk resolves spec to a from..to range and returns every commit in
// newest-first order. The `from` endpoint is excluded by default; it is
// appended when `from` is Head or FirstCommit (the user wrote "..X" or the
// range starts at repository root), per §4.3's inclusion rule.
func (w *Walker) Revwalk(spec string) ([]Entry, error) {
	rng, err := w.resolver.ParseRevspec(spec)
	if err != nil {
		return nil, err
	}
	return w.WalkRange(rng)
}

// WalkRange is Revwalk without the string-parsing step, used by callers
// that already hold a resolved gitrepo.Range (e.g. `verify --range`, which
// parses the revspec itself first).
func (w *Walker) WalkRange(rng gitrepo.Range) ([]Entry, error) {
	toCommit, err := w.repo.CommitObject(rng.To.Hash)
	if err != nil {
		return nil, fmt.Errorf("loading range endpoint %s: %w", rng.To, err)
	}

	exclude, err := w.repo.AncestorsOf(rng.From.Hash)
	if err != nil {
		return nil, fmt.Errorf("computing excluded ancestors: %w", err)
	}
	includeFrom := rng.From.IsHead() || rng.From.IsFirstCommit()

	var entries []Entry
	iter := object.NewCommitIterBSF(toCommit, nil, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		if exclude[c.Hash] && !(includeFrom && c.Hash == rng.From.Hash) {
			return nil
		}
		of, err := w.resolver.ResolveOidOf(c.Hash.String())
		if err != nil {
			of = oid.NewOther(c.Hash)
		}
		entries = append(entries, Entry{Of: of, Commit: c})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking range: %w", err)
	}
	return entries, nil
}

// CommitsForPackage walks spec and keeps only commits where at least one
// changed path matches filter (§4.3).
func (w *Walker) CommitsForPackage(spec string, filter *pathfilter.Filter) ([]Entry, error) {
	all, err := w.Revwalk(spec)
	if err != nil {
		return nil, err
	}
	var kept []Entry
	for _, e := range all {
		paths, err := w.repo.ChangedPaths(e.Commit)
		if err != nil {
			return nil, err
		}
		if filter.MatchAny(paths) {
			kept = append(kept, e)
		}
	}
	return kept, nil
}

// CommitsForMonorepoGlobal walks spec and keeps commits where *no* changed
// path falls under any configured package path. Iteration is oldest-first to
// preserve deterministic root inclusion, and the initial (parentless)
// commit is always retained (§4.3).
func (w *Walker) CommitsForMonorepoGlobal(spec string, packagePaths []string) ([]Entry, error) {
	all, err := w.Revwalk(spec)
	if err != nil {
		return nil, err
	}

	oldestFirst := make([]Entry, len(all))
	for i, e := range all {
		oldestFirst[len(all)-1-i] = e
	}

	var kept []Entry
	for _, e := range oldestFirst {
		if e.Commit.NumParents() == 0 {
			kept = append(kept, e)
			continue
		}
		paths, err := w.repo.ChangedPaths(e.Commit)
		if err != nil {
			return nil, err
		}
		touchesPackage := false
		for _, p := range paths {
			if pathfilter.UnderAnyPackage(p, packagePaths) {
				touchesPackage = true
				break
			}
		}
		if !touchesPackage {
			kept = append(kept, e)
		}
	}
	return kept, nil
}
