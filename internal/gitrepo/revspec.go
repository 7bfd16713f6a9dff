package gitrepo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/cocogitto-go/cocogitto/internal/oid"
	"github.com/cocogitto-go/cocogitto/internal/tag"
)

// UnknownRevisionError is returned when a revspec endpoint resolves to
// nothing, neither through the tag cache nor the host library's generic
// revision parser.
type UnknownRevisionError struct{ Raw string }

func (e *UnknownRevisionError) Error() string { return fmt.Sprintf("unknown revision %q", e.Raw) }

// InvalidCommitRangePatternError is returned by ParseRevspec when s is
// neither an "A..B" range nor a tag name.
type InvalidCommitRangePatternError struct{ Raw string }

func (e *InvalidCommitRangePatternError) Error() string {
	return fmt.Sprintf("invalid commit range pattern %q", e.Raw)
}

// Range is a resolved from..to revspec (§4.2).
type Range struct {
	From oid.Of
	To   oid.Of
}

// Resolver implements RevspecResolver (C4): parsing "A..B" patterns and
// mapping endpoints to oid.Of using the TagCache.
type Resolver struct {
	repo  *Repository
	cache *TagCache
	cfg   tag.ParseConfig
}

// NewResolver builds a Resolver over repo's tag cache.
func NewResolver(repo *Repository, cache *TagCache, cfg tag.ParseConfig) *Resolver {
	return &Resolver{repo: repo, cache: cache, cfg: cfg}
}

// ResolveOidOf implements §4.2's three-step lookup: cache hit, else the host
// library's generic revision parser (wrapped as Other), else
// UnknownRevisionError.
func (r *Resolver) ResolveOidOf(s string) (oid.Of, error) {
	if of, ok, err := r.cache.Resolve(s); err != nil {
		return oid.Of{}, err
	} else if ok {
		return of, nil
	}

	hash, err := r.repo.repo.ResolveRevision(plumbing.Revision(s))
	if err == nil && hash != nil {
		return oid.NewOther(*hash), nil
	}

	return oid.Of{}, &UnknownRevisionError{Raw: s}
}

// ParseRevspec implements §4.2's revspec_from_str grammar:
//   - "A..B": split at the first "..". An empty left side means
//     FirstCommit(first-commit); an empty right side means Head(head).
//   - a bare tag name: resolve as `to`, find the previous tag with the same
//     package/prefix and pre-release policy as `from` (else first-commit).
//   - anything else: InvalidCommitRangePatternError.
func (r *Resolver) ParseRevspec(s string) (Range, error) {
	if idx := strings.Index(s, ".."); idx >= 0 {
		left := s[:idx]
		right := s[idx+2:]

		from, err := r.resolveRangeEndpoint(left, true)
		if err != nil {
			return Range{}, err
		}
		to, err := r.resolveRangeEndpoint(right, false)
		if err != nil {
			return Range{}, err
		}
		return Range{From: from, To: to}, nil
	}

	parsed, err := tag.Parse(s, nil, nil, r.cfg)
	if err != nil {
		return Range{}, &InvalidCommitRangePatternError{Raw: s}
	}
	to, err := r.ResolveOidOf(s)
	if err != nil {
		return Range{}, err
	}
	from, err := r.previousTag(parsed)
	if err != nil {
		return Range{}, err
	}
	return Range{From: from, To: to}, nil
}

func (r *Resolver) resolveRangeEndpoint(s string, isFrom bool) (oid.Of, error) {
	if s == "" {
		if isFrom {
			first, err := r.repo.FirstCommit()
			if err != nil {
				return oid.Of{}, err
			}
			return oid.NewFirstCommit(first), nil
		}
		head, err := r.repo.Head()
		if err != nil {
			return oid.Of{}, err
		}
		return oid.NewHead(head), nil
	}
	return r.ResolveOidOf(s)
}

// previousTag finds the tag immediately preceding current (by Package and
// Prefix, matching pre-release policy), falling back to the repository's first
// commit (§9 note: grounded on the original's get_previous_tag helper).
func (r *Resolver) previousTag(current tag.Tag) (oid.Of, error) {
	if err := r.cache.Build(); err != nil {
		return oid.Of{}, err
	}

	var candidates []tag.Tag
	for _, of := range r.cache.byKey {
		if !of.IsTag() {
			continue
		}
		candidate := of.Tag
		if !samePackage(candidate.Package, current.Package) {
			continue
		}
		if !samePackage(candidate.Prefix, current.Prefix) {
			continue
		}
		if current.Version.Prerelease() == "" && candidate.Version.Prerelease() != "" {
			continue
		}
		if !candidate.Less(current) {
			continue // only strictly-older tags are candidates.
		}
		candidates = append(candidates, candidate)
	}

	if len(candidates) == 0 {
		first, err := r.repo.FirstCommit()
		if err != nil {
			return oid.Of{}, err
		}
		return oid.NewFirstCommit(first), nil
	}

	sort.Sort(tag.Collection(candidates))
	best := candidates[len(candidates)-1] // greatest version strictly below current.
	return oid.NewTag(best), nil
}

func samePackage(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
