package gitrepo

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// RawTag is one repository tag reference plus its resolved target commit
// and, for annotated tags, the tag object's own oid.
type RawTag struct {
	Name       string
	Target     plumbing.Hash // the commit the tag (ultimately) points to
	AnnotOid   *plumbing.Hash
}

// ListTags enumerates every tag reference in the repository, resolving
// annotated tags to their target commit (§6.2).
func (r *Repository) ListTags() ([]RawTag, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	var tags []RawTag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		rt, err := r.resolveTagRef(ref)
		if err != nil {
			return err
		}
		tags = append(tags, rt)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tags, nil
}

func (r *Repository) resolveTagRef(ref *plumbing.Reference) (RawTag, error) {
	name := ref.Name().Short()
	if tagObj, err := r.repo.TagObject(ref.Hash()); err == nil {
		// annotated tag: dereference to the commit it targets.
		commit, err := tagObj.Commit()
		if err != nil {
			return RawTag{}, fmt.Errorf("resolving annotated tag %s: %w", name, err)
		}
		annot := tagObj.Hash
		return RawTag{Name: name, Target: commit.Hash, AnnotOid: &annot}, nil
	}
	// lightweight tag: the reference points straight at the commit.
	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return RawTag{}, fmt.Errorf("resolving lightweight tag %s: %w", name, err)
	}
	return RawTag{Name: name, Target: commit.Hash}, nil
}

// ResolveTagByName looks up a single tag reference by its short name.
func (r *Repository) ResolveTagByName(name string) (RawTag, error) {
	ref, err := r.repo.Reference(plumbing.NewTagReferenceName(name), true)
	if err != nil {
		return RawTag{}, fmt.Errorf("resolving tag %q: %w", name, err)
	}
	return r.resolveTagRef(ref)
}

// CreateLightweightTag creates a tag ref pointing directly at HEAD. This
// doesn't require a clean worktree: go-git's CreateTag has no such
// precondition, and disable_bump_commit lets a caller tag HEAD while
// the changelog write still sits uncommitted in the working tree.
func (r *Repository) CreateLightweightTag(name string) error {
	head, err := r.Head()
	if err != nil {
		return err
	}
	if _, err := r.repo.CreateTag(name, head, nil); err != nil {
		return fmt.Errorf("creating tag %q: %w", name, err)
	}
	return nil
}

// CreateAnnotatedTag creates a tag object at HEAD carrying msg, signed by
// sig's identity. Same no-clean-worktree-required note as
// CreateLightweightTag applies here.
func (r *Repository) CreateAnnotatedTag(name, msg string, sig Signature) error {
	head, err := r.Head()
	if err != nil {
		return err
	}
	opts := &git.CreateTagOptions{
		Tagger:  &object.Signature{Name: sig.Name, Email: sig.Email},
		Message: msg,
	}
	if _, err := r.repo.CreateTag(name, head, opts); err != nil {
		return fmt.Errorf("creating annotated tag %q: %w", name, err)
	}
	return nil
}
