package walker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitobj "github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/cocogitto-go/cocogitto/internal/gitrepo"
	"github.com/cocogitto-go/cocogitto/internal/pathfilter"
	"github.com/cocogitto-go/cocogitto/internal/tag"
)

func testRepo(t *testing.T) (*gitrepo.Repository, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	raw, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	r, err := gitrepo.Open(dir)
	require.NoError(t, err)
	return r, raw
}

func commitFiles(t *testing.T, dir string, raw *git.Repository, message string, files map[string]string) {
	t.Helper()
	wt, err := raw.Worktree()
	require.NoError(t, err)
	for name, content := range files {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
		_, err = wt.Add(name)
		require.NoError(t, err)
	}
	sig := &gitobj.Signature{Name: "Test", Email: "test@example.com", When: time.Now()}
	_, err = wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
}

func TestRevwalkExcludesFromEndpointByDefault(t *testing.T) {
	r, raw := testRepo(t)
	dir := r.Path()

	commitFiles(t, dir, raw, "chore: init", map[string]string{"a.txt": "1"})
	require.NoError(t, r.CreateLightweightTag("1.0.0"))
	commitFiles(t, dir, raw, "feat: b", map[string]string{"b.txt": "2"})

	cache := gitrepo.NewTagCache(r, tag.ParseConfig{})
	resolver := gitrepo.NewResolver(r, cache, tag.ParseConfig{})
	w := New(r, resolver)

	entries, err := w.Revwalk("1.0.0..HEAD")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "feat: b", entries[0].Commit.Message)
}

func TestRevwalkIncludesFromWhenFirstCommit(t *testing.T) {
	r, raw := testRepo(t)
	dir := r.Path()
	commitFiles(t, dir, raw, "chore: init", map[string]string{"a.txt": "1"})
	commitFiles(t, dir, raw, "feat: b", map[string]string{"b.txt": "2"})

	cache := gitrepo.NewTagCache(r, tag.ParseConfig{})
	resolver := gitrepo.NewResolver(r, cache, tag.ParseConfig{})
	w := New(r, resolver)

	entries, err := w.Revwalk("..")
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestCommitsForPackage(t *testing.T) {
	r, raw := testRepo(t)
	dir := r.Path()
	commitFiles(t, dir, raw, "chore: init", map[string]string{"README.md": "x"})
	commitFiles(t, dir, raw, "feat(jenkins): a", map[string]string{"jenkins/main.go": "1"})
	commitFiles(t, dir, raw, "feat(thumbor): a", map[string]string{"thumbor/main.go": "1"})

	cache := gitrepo.NewTagCache(r, tag.ParseConfig{})
	resolver := gitrepo.NewResolver(r, cache, tag.ParseConfig{})
	w := New(r, resolver)

	filter, err := pathfilter.Compile("jenkins", nil, nil)
	require.NoError(t, err)

	entries, err := w.CommitsForPackage("..", filter)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "feat(jenkins): a", entries[0].Commit.Message)
}

func TestCommitsForMonorepoGlobalExcludesPackagePaths(t *testing.T) {
	r, raw := testRepo(t)
	dir := r.Path()
	commitFiles(t, dir, raw, "chore: init", map[string]string{"README.md": "x"})
	commitFiles(t, dir, raw, "feat(jenkins): a", map[string]string{"jenkins/main.go": "1"})
	commitFiles(t, dir, raw, "docs: update readme", map[string]string{"README.md": "y"})

	cache := gitrepo.NewTagCache(r, tag.ParseConfig{})
	resolver := gitrepo.NewResolver(r, cache, tag.ParseConfig{})
	w := New(r, resolver)

	entries, err := w.CommitsForMonorepoGlobal("..", []string{"jenkins", "thumbor"})
	require.NoError(t, err)

	var messages []string
	for _, e := range entries {
		messages = append(messages, e.Commit.Message)
	}
	require.Equal(t, []string{"chore: init", "docs: update readme"}, messages)
}
