package gitrepo

import (
	"sort"
	"sync"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/cocogitto-go/cocogitto/internal/oid"
	"github.com/cocogitto-go/cocogitto/internal/tag"
)

// TagCache is the process-scoped, lazily built map from string keys (tag
// name, full oid, short oid) to oid.Of, limited to ancestors of HEAD (C3).
// Reachability is the core invariant: a tag whose target was reset away
// from HEAD must never resolve through this cache.
type TagCache struct {
	repo   *Repository
	cfg    tag.ParseConfig
	mu     sync.Mutex
	built  bool
	byKey  map[string]oid.Of
}

// NewTagCache constructs an unbuilt cache; Build (or the first Resolve) does
// the actual scan.
func NewTagCache(repo *Repository, cfg tag.ParseConfig) *TagCache {
	return &TagCache{repo: repo, cfg: cfg, byKey: map[string]oid.Of{}}
}

// Clear resets the cache so the next access rebuilds it. Long-running test
// flows that rewrite history call this explicitly (§3).
func (c *TagCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.built = false
	c.byKey = map[string]oid.Of{}
}

// Build performs the guarded single-shot scan described in §4.2: push HEAD
// into a full revwalk (not a push-range), collect ancestors, then insert
// HEAD, the first commit, and every reachable tag.
func (c *TagCache) Build() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buildLocked()
}

func (c *TagCache) buildLocked() error {
	if c.built {
		return nil
	}

	head, err := c.repo.Head()
	if err != nil {
		return err
	}
	ancestors, err := c.repo.AncestorsOf(head)
	if err != nil {
		return err
	}
	first, err := c.repo.FirstCommit()
	if err != nil {
		return err
	}

	c.insert(head, oid.NewHead(head))
	c.insert(first, oid.NewFirstCommit(first))

	tags, err := c.repo.ListTags()
	if err != nil {
		return err
	}
	for _, rt := range tags {
		if !ancestors[rt.Target] {
			continue // not reachable from HEAD: invisible to the resolver.
		}
		parsed, err := tag.Parse(rt.Name, hashPtr(rt.Target), rt.AnnotOid, c.cfg)
		if err != nil {
			continue // non-semver tags are not part of the tag model.
		}
		of := oid.NewTag(parsed)
		c.byKey[rt.Name] = of
		c.insert(rt.Target, of)
		if rt.AnnotOid != nil {
			c.insert(*rt.AnnotOid, of)
		}
	}

	c.built = true
	return nil
}

func hashPtr(h plumbing.Hash) *plumbing.Hash { return &h }

func (c *TagCache) insert(h plumbing.Hash, of oid.Of) {
	full := h.String()
	c.byKey[full] = of
	if len(full) > 7 {
		if _, exists := c.byKey[full[:7]]; !exists {
			c.byKey[full[:7]] = of
		}
	}
}

// LatestTag returns the greatest tag matching packageName (nil for the
// repository's global, non-package tags), per §4.8 step 1: pre-releases are
// excluded unless includePreRelease is set. The bool result is false when no
// matching tag exists (callers fall back to 0.0.0).
func (c *TagCache) LatestTag(packageName *string, includePreRelease bool) (tag.Tag, bool, error) {
	c.mu.Lock()
	err := c.buildLocked()
	var candidates []tag.Tag
	if err == nil {
		for _, of := range c.byKey {
			if !of.IsTag() {
				continue
			}
			t := of.Tag
			if !samePackage(t.Package, packageName) {
				continue
			}
			if !includePreRelease && t.Version.Prerelease() != "" {
				continue
			}
			candidates = append(candidates, t)
		}
	}
	c.mu.Unlock()
	if err != nil {
		return tag.Tag{}, false, err
	}
	if len(candidates) == 0 {
		return tag.Tag{}, false, nil
	}
	sort.Sort(tag.Collection(candidates))
	return candidates[len(candidates)-1], true, nil
}

// Resolve looks s up in the cache, building it on first use.
func (c *TagCache) Resolve(s string) (oid.Of, bool, error) {
	c.mu.Lock()
	if err := c.buildLocked(); err != nil {
		c.mu.Unlock()
		return oid.Of{}, false, err
	}
	of, ok := c.byKey[s]
	c.mu.Unlock()
	return of, ok, nil
}
