package gitrepo

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/object"
)

// ChangedPaths returns every path touched by commit relative to its first
// parent (or, for a parentless commit, relative to the empty tree, since every
// file in the commit counts as changed), per §4.3.
func (r *Repository) ChangedPaths(commit *object.Commit) ([]string, error) {
	if commit.NumParents() == 0 {
		return filesInTree(commit)
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return nil, fmt.Errorf("loading parent of %s: %w", commit.Hash, err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("loading tree of %s: %w", commit.Hash, err)
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, fmt.Errorf("loading tree of %s: %w", parent.Hash, err)
	}

	changes, err := parentTree.Diff(tree)
	if err != nil {
		return nil, fmt.Errorf("diffing %s against parent: %w", commit.Hash, err)
	}

	seen := map[string]bool{}
	for _, c := range changes {
		if c.From.Name != "" {
			seen[c.From.Name] = true
		}
		if c.To.Name != "" {
			seen[c.To.Name] = true
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	return paths, nil
}

func filesInTree(commit *object.Commit) ([]string, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("loading tree of %s: %w", commit.Hash, err)
	}
	var paths []string
	err = tree.Files().ForEach(func(f *object.File) error {
		paths = append(paths, f.Name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing files in %s: %w", commit.Hash, err)
	}
	return paths, nil
}
