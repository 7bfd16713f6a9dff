package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitobj "github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/cocogitto-go/cocogitto/internal/bump"
	"github.com/cocogitto-go/cocogitto/internal/config"
	"github.com/cocogitto-go/cocogitto/internal/gitrepo"
)

func testRepo(t *testing.T) (*gitrepo.Repository, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	raw, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	cfg, err := raw.Config()
	require.NoError(t, err)
	cfg.User.Name = "Test"
	cfg.User.Email = "test@example.com"
	require.NoError(t, raw.SetConfig(cfg))

	r, err := gitrepo.Open(dir)
	require.NoError(t, err)
	return r, raw
}

func commitFile(t *testing.T, dir string, raw *git.Repository, name, content, message string) {
	t.Helper()
	wt, err := raw.Worktree()
	require.NoError(t, err)
	full := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	_, err = wt.Add(name)
	require.NoError(t, err)
	sig := &gitobj.Signature{Name: "Test", Email: "test@example.com", When: time.Now()}
	_, err = wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
}

func TestCreateVersionFirstBumpFromNoTags(t *testing.T) {
	r, raw := testRepo(t)
	dir := r.Path()
	commitFile(t, dir, raw, "a.txt", "1", "feat: initial feature")

	o := New(r, config.Default())
	next, err := o.CreateVersion(context.Background(), Options{Increment: bump.Auto()})
	require.NoError(t, err)
	require.Equal(t, "0.1.0", next.String())

	tags, err := r.ListTags()
	require.NoError(t, err)
	require.Len(t, tags, 1)
	require.Equal(t, "0.1.0", tags[0].Name)
}

func TestCreateVersionSecondInvocationWithNoNewCommitsFails(t *testing.T) {
	r, raw := testRepo(t)
	dir := r.Path()
	commitFile(t, dir, raw, "a.txt", "1", "feat: initial feature")

	o := New(r, config.Default())
	_, err := o.CreateVersion(context.Background(), Options{Increment: bump.Auto()})
	require.NoError(t, err)

	_, err = o.CreateVersion(context.Background(), Options{Increment: bump.Auto()})
	require.Error(t, err)
}

func TestCreateVersionDryRunDoesNotTag(t *testing.T) {
	r, raw := testRepo(t)
	dir := r.Path()
	commitFile(t, dir, raw, "a.txt", "1", "feat: initial feature")

	o := New(r, config.Default())
	_, err := o.CreateVersion(context.Background(), Options{Increment: bump.Auto(), DryRun: true})
	require.NoError(t, err)

	tags, err := r.ListTags()
	require.NoError(t, err)
	require.Len(t, tags, 0)
}

func TestCreateVersionManualIncrement(t *testing.T) {
	r, raw := testRepo(t)
	dir := r.Path()
	commitFile(t, dir, raw, "a.txt", "1", "chore: init")

	o := New(r, config.Default())
	next, err := o.CreateVersion(context.Background(), Options{Increment: bump.Manual("2.5.0")})
	require.NoError(t, err)
	require.Equal(t, "2.5.0", next.String())
}

func TestCreateVersionFailsOnDirtyWorktree(t *testing.T) {
	r, raw := testRepo(t)
	dir := r.Path()
	commitFile(t, dir, raw, "a.txt", "1", "feat: initial feature")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "untracked.txt"), []byte("x"), 0o644))

	o := New(r, config.Default())
	_, err := o.CreateVersion(context.Background(), Options{Increment: bump.Auto()})
	require.Error(t, err)
	var dirty *DirtyWorktreeError
	require.ErrorAs(t, err, &dirty)
}

func TestCreateVersionEnforcesBranchWhitelist(t *testing.T) {
	r, raw := testRepo(t)
	dir := r.Path()
	commitFile(t, dir, raw, "a.txt", "1", "feat: initial feature")

	settings := config.Default()
	settings.BranchWhitelist = []string{"release/*"}
	o := New(r, settings)
	_, err := o.CreateVersion(context.Background(), Options{Increment: bump.Auto()})
	require.Error(t, err)
	var branchErr *BranchNotAllowedError
	require.ErrorAs(t, err, &branchErr)
}

func TestCreatePackageVersionUnknownPackage(t *testing.T) {
	r, raw := testRepo(t)
	dir := r.Path()
	commitFile(t, dir, raw, "a.txt", "1", "chore: init")

	o := New(r, config.Default())
	_, err := o.CreatePackageVersion(context.Background(), "missing", Options{Increment: bump.Auto()})
	require.Error(t, err)
	var unknown *UnknownPackageError
	require.ErrorAs(t, err, &unknown)
}

func TestCreatePackageVersionScopesToPackagePath(t *testing.T) {
	r, raw := testRepo(t)
	dir := r.Path()
	commitFile(t, dir, raw, "README.md", "x", "chore: init")
	commitFile(t, dir, raw, "pkgs/widget/main.go", "1", "feat(widget): add widget")

	settings := config.Default()
	settings.MonorepoVersionSeparator = "-"
	settings.Packages = map[string]config.PackageConfig{
		"widget": {Path: "pkgs/widget", PublicAPI: true},
	}

	o := New(r, settings)
	next, err := o.CreatePackageVersion(context.Background(), "widget", Options{Increment: bump.Auto()})
	require.NoError(t, err)
	require.Equal(t, "widget-0.1.0", next.String())
}
