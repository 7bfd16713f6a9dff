// Package oid carries the tag-aware commit-identifier union used throughout
// the core so renderers can tell a tagged release apart from HEAD or the
// repository root without re-resolving anything.
package oid

import (
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/cocogitto-go/cocogitto/internal/tag"
)

// Kind discriminates the variants of Of. The zero Kind is none of them, so a
// zero Of (e.g. a cache miss) never reports itself as a Tag.
type Kind int

const (
	// KindTag means the commit is the target of a parsed tag.
	KindTag Kind = iota + 1
	// KindHead means the commit is (or was, at resolution time) HEAD.
	KindHead
	// KindFirstCommit means the commit is the oldest ancestor of HEAD.
	KindFirstCommit
	// KindOther means the commit carries no special meaning to the resolver.
	KindOther
)

// Of is the tagged union described in the data model as OidOf: Tag | Head |
// FirstCommit | Other. Exactly one of Tag/Hash is meaningful depending on
// Kind; Hash is always populated (including for the Tag variant, where it
// mirrors Tag.Oid) so callers never need a type switch just to get a commit
// id.
type Of struct {
	Kind Kind
	Hash plumbing.Hash
	Tag  tag.Tag // only meaningful when Kind == KindTag
}

// NewTag wraps a resolved Tag.
func NewTag(t tag.Tag) Of {
	h := plumbing.ZeroHash
	if t.Oid != nil {
		h = *t.Oid
	}
	return Of{Kind: KindTag, Hash: h, Tag: t}
}

// NewHead wraps the current HEAD commit.
func NewHead(h plumbing.Hash) Of { return Of{Kind: KindHead, Hash: h} }

// NewFirstCommit wraps the repository's root commit.
func NewFirstCommit(h plumbing.Hash) Of { return Of{Kind: KindFirstCommit, Hash: h} }

// NewOther wraps an arbitrary commit id with no special display semantics.
func NewOther(h plumbing.Hash) Of { return Of{Kind: KindOther, Hash: h} }

// IsTag reports whether this is the Tag variant.
func (o Of) IsTag() bool { return o.Kind == KindTag }

// IsHead reports whether this is the Head variant.
func (o Of) IsHead() bool { return o.Kind == KindHead }

// IsFirstCommit reports whether this is the FirstCommit variant.
func (o Of) IsFirstCommit() bool { return o.Kind == KindFirstCommit }

// String renders the display form used by changelog templates: a tag's
// Display string, the literal "HEAD", or a 7-character short hash.
func (o Of) String() string {
	switch o.Kind {
	case KindTag:
		return o.Tag.String()
	case KindHead:
		return "HEAD"
	case KindFirstCommit, KindOther:
		s := o.Hash.String()
		if len(s) > 7 {
			return s[:7]
		}
		return s
	default:
		return o.Hash.String()
	}
}
