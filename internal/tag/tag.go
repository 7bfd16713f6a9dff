// Package tag implements the tag model described in the core design: parsing
// and ordering tags that may carry a package namespace, a configurable
// prefix, and a semver version, plus the bump arithmetic used to derive the
// next tag from the current one.
package tag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5/plumbing"
)

// Tag is the parsed, orderable representation of a git tag name. Equality
// includes Package and Prefix (so "foo-1.0.0" and "bar-1.0.0" are distinct
// tags); ordering compares Version alone.
type Tag struct {
	Package   *string
	Prefix    *string
	Separator *string
	Version   *semver.Version
	Oid       *plumbing.Hash
	Target    *plumbing.Hash
}

// ParseConfig carries the settings needed to disambiguate a raw tag name:
// the global tag prefix, the monorepo package/tag separator, and the set of
// configured package names (order does not matter; ties are broken
// lexicographically, see Parse).
type ParseConfig struct {
	Prefix       string
	Separator    string
	PackageNames []string
}

// Parse matches raw against, in order: every configured package name (the
// first lexicographic match wins), then the bare prefix form. An unmatched
// remainder that doesn't parse as semver is a *semver.ErrInvalidSemVer-class
// error.
func Parse(raw string, oid, target *plumbing.Hash, cfg ParseConfig) (Tag, error) {
	names := make([]string, len(cfg.PackageNames))
	copy(names, cfg.PackageNames)
	sort.Strings(names)

	for _, name := range names {
		cut := name + cfg.Separator
		remains, ok := strings.CutPrefix(raw, cut)
		if !ok || cfg.Separator == "" {
			continue
		}
		versionStr := remains
		if cfg.Prefix != "" {
			if stripped, ok := strings.CutPrefix(remains, cfg.Prefix); ok {
				versionStr = stripped
			}
		}
		v, err := semver.NewVersion(versionStr)
		if err != nil {
			continue
		}
		pkg := name
		var sep *string
		if cfg.Separator != "" {
			s := cfg.Separator
			sep = &s
		}
		var prefix *string
		if cfg.Prefix != "" {
			p := cfg.Prefix
			prefix = &p
		}
		return Tag{Package: &pkg, Prefix: prefix, Separator: sep, Version: v, Oid: oid, Target: target}, nil
	}

	versionStr := raw
	var prefix *string
	if cfg.Prefix != "" {
		if stripped, ok := strings.CutPrefix(raw, cfg.Prefix); ok {
			versionStr = stripped
			p := cfg.Prefix
			prefix = &p
		}
	}
	v, err := semver.NewVersion(versionStr)
	if err != nil {
		return Tag{}, fmt.Errorf("tag %q is not a valid version: %w", raw, err)
	}
	return Tag{Prefix: prefix, Version: v, Oid: oid, Target: target}, nil
}

// String renders the Display form: {package}{sep}{prefix}{version} with
// segments omitted when absent. A tag carrying a package but no separator is
// invalid and this panics, matching the source's Display impl (which itself
// panics on the equivalent invariant violation).
func (t Tag) String() string {
	version := t.Version.String()
	switch {
	case t.Package != nil && t.Separator != nil && *t.Separator != "":
		prefix := ""
		if t.Prefix != nil {
			prefix = *t.Prefix
		}
		return *t.Package + *t.Separator + prefix + version
	case t.Package != nil:
		panic(fmt.Sprintf("tag for package %q has no configured separator", *t.Package))
	case t.Prefix != nil:
		return *t.Prefix + version
	default:
		return version
	}
}

// Equal compares Package, Prefix and Version; Oid/Target are ignored.
func (t Tag) Equal(other Tag) bool {
	return strPtrEqual(t.Package, other.Package) &&
		strPtrEqual(t.Prefix, other.Prefix) &&
		t.Version.Equal(other.Version)
}

// Less orders by Version alone, per semver precedence.
func (t Tag) Less(other Tag) bool {
	return t.Version.LessThan(other.Version)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// IsZero reports whether the version is exactly 0.0.0.
func (t Tag) IsZero() bool {
	return t.Version.Major() == 0 && t.Version.Minor() == 0 && t.Version.Patch() == 0 &&
		t.Version.Prerelease() == "" && t.Version.Metadata() == ""
}

func (t Tag) bumped(major, minor, patch uint64) Tag {
	v := semver.New(major, minor, patch, "", "")
	return Tag{Package: t.Package, Prefix: t.Prefix, Separator: t.Separator, Version: v}
}

// MajorBump zeroes minor/patch and strips pre-release/build metadata.
func (t Tag) MajorBump() Tag { return t.bumped(t.Version.Major()+1, 0, 0) }

// MinorBump zeroes patch and strips pre-release/build metadata.
func (t Tag) MinorBump() Tag { return t.bumped(t.Version.Major(), t.Version.Minor()+1, 0) }

// PatchBump increments patch and strips pre-release/build metadata.
func (t Tag) PatchBump() Tag {
	return t.bumped(t.Version.Major(), t.Version.Minor(), t.Version.Patch()+1)
}

// NoBump strips pre-release/build metadata but keeps major/minor/patch.
func (t Tag) NoBump() Tag {
	return t.bumped(t.Version.Major(), t.Version.Minor(), t.Version.Patch())
}

// ManualBump parses version as a full semver string and returns a Tag
// carrying this tag's Package/Prefix/Separator.
func (t Tag) ManualBump(version string) (Tag, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return Tag{}, fmt.Errorf("invalid manual version %q: %w", version, err)
	}
	return Tag{Package: t.Package, Prefix: t.Prefix, Separator: t.Separator, Version: v}, nil
}

// Increment names the four bump magnitudes used by GetIncrementFrom.
type Increment int

const (
	// IncrementNone means no component of self exceeds other.
	IncrementNone Increment = iota
	IncrementPatch
	IncrementMinor
	IncrementMajor
)

// GetIncrementFrom checks Major, then Minor, then Patch and returns the first
// whose component in t exceeds other's, else IncrementNone. Each component is
// compared on its own, so a lower component can match even when a higher
// one of t is smaller than other's.
func (t Tag) GetIncrementFrom(other Tag) Increment {
	switch {
	case t.Version.Major() > other.Version.Major():
		return IncrementMajor
	case t.Version.Minor() > other.Version.Minor():
		return IncrementMinor
	case t.Version.Patch() > other.Version.Patch():
		return IncrementPatch
	default:
		return IncrementNone
	}
}

// Collection sorts a slice of Tag by Version ascending, mirroring
// semver.Collection's sort.Interface contract.
type Collection []Tag

func (c Collection) Len() int           { return len(c) }
func (c Collection) Swap(i, j int)      { c[i], c[j] = c[j], c[i] }
func (c Collection) Less(i, j int) bool { return c[i].Less(c[j]) }
