// Package changelog implements ReleaseBuilder (C8) and ChangelogRenderer
// (C9): slicing a walked commit sequence into a linked Release chain at tag
// boundaries, then rendering that chain through a template.
package changelog

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/cocogitto-go/cocogitto/internal/commitparse"
	"github.com/cocogitto-go/cocogitto/internal/config"
	"github.com/cocogitto-go/cocogitto/internal/corelog"
	"github.com/cocogitto-go/cocogitto/internal/oid"
	"github.com/cocogitto-go/cocogitto/internal/walker"
)

// ErrEmptyRelease is returned by Build when the input walk has no commits.
var ErrEmptyRelease = errors.New("cannot build a release from an empty commit range")

// ChangelogCommit is one surviving commit inside a Release, carrying just
// the fields the renderer needs (§3).
type ChangelogCommit struct {
	OidOf       oid.Of
	Author      string
	Type        string
	Scope       string
	HasScope    bool
	Summary     string
	Breaking    bool
	ChangelogTitle string
}

// Release is a contiguous slice of commits bounded by two tags (§3).
type Release struct {
	Version  oid.Of
	From     oid.Of
	Date     time.Time
	Commits  []ChangelogCommit
	Previous *Release
}

// BuildOptions controls the drop rules applied while filtering a release's
// commits (§4.5 step 3).
type BuildOptions struct {
	IgnoreMergeCommits bool
	IgnoreFixupCommits bool
	Now                time.Time
}

var fixupRe = regexp.MustCompile(`^(fixup|squash|amend)!\s`)

// Build implements §4.5's slicing algorithm over entries (newest-first, as
// produced by walker.Walker).
func Build(entries []walker.Entry, settings config.Settings, opts BuildOptions) ([]*Release, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyRelease
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	// 1. reverse to oldest-first.
	oldestFirst := make([]walker.Entry, len(entries))
	for i, e := range entries {
		oldestFirst[len(entries)-1-i] = e
	}

	// 2. group consecutive commits, closing a release when a tag is hit
	// (the tagged commit is the last member of its group).
	var groups [][]walker.Entry
	var current []walker.Entry
	for _, e := range oldestFirst {
		current = append(current, e)
		if e.Of.IsTag() {
			groups = append(groups, current)
			current = nil
		}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	// 3. reverse group order back to newest-first.
	for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
		groups[i], groups[j] = groups[j], groups[i]
	}

	_, types := settings.EffectiveCommitTypes()

	releases := make([]*Release, len(groups))
	for i, group := range groups {
		releases[i] = &Release{
			Version: group[len(group)-1].Of,
			Date:    opts.Now,
			Commits: filterCommits(group, types, opts),
		}
	}

	// 4b. set From + Previous now that every release in the slice exists.
	for i, r := range releases {
		if i+1 < len(releases) {
			r.From = releases[i+1].Version
			r.Previous = releases[i+1]
		} else {
			// initial release: from is the oldest group member's identity.
			oldest := groups[i][0].Of
			r.From = oldest
		}
	}

	return releases, nil
}

func filterCommits(group []walker.Entry, types map[string]config.CommitTypeConfig, opts BuildOptions) []ChangelogCommit {
	// commits within a release render newest-first; group is oldest-first.
	var out []ChangelogCommit
	for i := len(group) - 1; i >= 0; i-- {
		e := group[i]
		msg := e.Commit.Message
		parsed, ok := commitparse.Parse(msg)
		if !ok {
			corelog.Log.Warnf("skipping non-conventional commit %s from changelog", e.Commit.Hash)
			continue
		}
		if opts.IgnoreMergeCommits && strings.HasPrefix(msg, "Merge ") {
			continue
		}
		if opts.IgnoreFixupCommits && fixupRe.MatchString(msg) {
			continue
		}
		cfg, known := types[parsed.Type]
		if known && cfg.OmitFromChangelog {
			continue
		}
		title := cfg.ChangelogTitle
		out = append(out, ChangelogCommit{
			OidOf:          oid.NewOther(e.Commit.Hash),
			Author:         e.Commit.Author.Name,
			Type:           parsed.Type,
			Scope:          parsed.Scope,
			HasScope:       parsed.HasScope,
			Summary:        parsed.Summary,
			Breaking:       parsed.Breaking,
			ChangelogTitle: title,
		})
	}
	return out
}
