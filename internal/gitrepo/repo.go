// Package gitrepo implements the §6.2 "required git operations" surface the
// core depends on, wrapping github.com/go-git/go-git/v5, plus the handful of
// operations (stash, signature, branch shorthand) go-git doesn't model
// directly, where this shells out to the git binary instead.
package gitrepo

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/cocogitto-go/cocogitto/internal/corelog"
)

// Repository wraps an open go-git repository plus its working directory,
// used for the subprocess calls (stash, config lookup) go-git has no API
// for.
type Repository struct {
	repo *git.Repository
	path string
}

// Open discovers a repository rooted at path (PlainOpen, no parent-dir
// search).
func Open(path string) (*Repository, error) {
	clean := filepath.Clean(path)
	r, err := git.PlainOpen(clean)
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", clean, err)
	}
	return &Repository{repo: r, path: clean}, nil
}

// Path returns the working directory this Repository was opened from.
func (r *Repository) Path() string { return r.path }

// Raw exposes the underlying go-git handle for callers that need direct
// access beyond this wrapper's surface.
func (r *Repository) Raw() *git.Repository { return r.repo }

// Signature is the {name, email, gpg-sign} triple required to create
// commits/tags.
type Signature struct {
	Name  string
	Email string
	Sign  bool
}

// Signature reads user.name/user.email via the git binary (go-git's Config
// type exposes raw sections, not the author identity the same way `git
// config` does) and whether commit.gpgsign is on.
func (r *Repository) Signature() (Signature, error) {
	name, err := r.gitConfig("user.name")
	if err != nil {
		return Signature{}, err
	}
	email, err := r.gitConfig("user.email")
	if err != nil {
		return Signature{}, err
	}
	sign, _ := r.gitConfig("commit.gpgsign")
	return Signature{Name: name, Email: email, Sign: sign == "true"}, nil
}

func (r *Repository) gitConfig(key string) (string, error) {
	out, err := r.runGit("config", "--get", key)
	if err != nil {
		// a missing key is not fatal; callers treat "" as "unset".
		return "", nil
	}
	return strings.TrimSpace(out), nil
}

func (r *Repository) runGit(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.path
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return out.String(), nil
}

// Head resolves HEAD to a commit hash.
func (r *Repository) Head() (plumbing.Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving HEAD: %w", err)
	}
	return ref.Hash(), nil
}

// BranchShorthand returns the short name of the branch HEAD points to (e.g.
// "main"), used by whitelist enforcement in §4.8.
func (r *Repository) BranchShorthand() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	if !ref.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is detached")
	}
	return ref.Name().Short(), nil
}

// CommitObject loads the commit for hash.
func (r *Repository) CommitObject(hash plumbing.Hash) (*object.Commit, error) {
	c, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("loading commit %s: %w", hash, err)
	}
	return c, nil
}

// FirstCommit walks HEAD's first-parent chain back to the commit with no
// parents: the oldest ancestor of HEAD, per §3's OidOf::FirstCommit.
func (r *Repository) FirstCommit() (plumbing.Hash, error) {
	head, err := r.Head()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	commit, err := r.CommitObject(head)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	for commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("walking to first commit: %w", err)
		}
		commit = parent
	}
	return commit.Hash, nil
}

// AncestorsOf returns the set of commit hashes reachable from start,
// following every parent edge (a full revwalk push-head, not a push-range,
// per §4.2's TagCache build procedure).
func (r *Repository) AncestorsOf(start plumbing.Hash) (map[plumbing.Hash]bool, error) {
	startCommit, err := r.CommitObject(start)
	if err != nil {
		return nil, err
	}
	seen := map[plumbing.Hash]bool{}
	iter := object.NewCommitIterBSF(startCommit, nil, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		seen[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking ancestors of %s: %w", start, err)
	}
	return seen, nil
}

// Stash creates a named stash of the current worktree/index state. go-git
// has no stash API; this shells out to the git binary, the same escape
// hatch the core uses for signature lookup.
func (r *Repository) Stash(message string) error {
	corelog.Log.Debugf("stashing working tree as %q", message)
	_, err := r.runGit("stash", "push", "--include-untracked", "--message", message)
	return err
}

// StageAll runs the equivalent of `git add -A`.
func (r *Repository) StageAll() error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("staging changes: %w", err)
	}
	return nil
}

// IsClean reports whether the worktree has no modified, added, deleted,
// renamed, untracked or type-changed entries.
func (r *Repository) IsClean() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("opening worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("reading status: %w", err)
	}
	return status.IsClean(), nil
}

// StatusLines renders a short human-readable status report, used in failure
// messages (§4.8 step 2).
func (r *Repository) StatusLines() (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", err
	}
	status, err := wt.Status()
	if err != nil {
		return "", err
	}
	return status.String(), nil
}

// Commit creates a commit with HEAD as its parent and message as the full
// commit message (subject + body), authored and committed as sig's
// name/email. sig.Sign is not used: the commit is always created without a
// GPG signature.
func (r *Repository) Commit(message string, sig Signature) (plumbing.Hash, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("opening worktree: %w", err)
	}
	author := &object.Signature{Name: sig.Name, Email: sig.Email}
	hash, err := wt.Commit(message, &git.CommitOptions{Author: author, Committer: author})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("committing: %w", err)
	}
	return hash, nil
}
