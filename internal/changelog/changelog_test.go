package changelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/cocogitto-go/cocogitto/internal/config"
	"github.com/cocogitto-go/cocogitto/internal/oid"
	"github.com/cocogitto-go/cocogitto/internal/tag"
	"github.com/cocogitto-go/cocogitto/internal/walker"
)

func entry(hash, tagName, message string) walker.Entry {
	h := plumbing.NewHash(hash)
	var of oid.Of
	if tagName != "" {
		tg, err := tag.Parse(tagName, &h, &h, tag.ParseConfig{})
		if err != nil {
			panic(err)
		}
		of = oid.NewTag(tg)
	} else {
		of = oid.NewOther(h)
	}
	return walker.Entry{
		Of: of,
		Commit: &object.Commit{
			Hash:    h,
			Message: message,
			Author:  object.Signature{Name: "Test", Email: "test@example.com"},
		},
	}
}

func TestBuildEmptyRangeErrors(t *testing.T) {
	_, err := Build(nil, config.Default(), BuildOptions{})
	require.ErrorIs(t, err, ErrEmptyRelease)
}

func TestBuildGroupsCommitsAtTagBoundaries(t *testing.T) {
	entries := []walker.Entry{
		entry("2222222222222222222222222222222222222222", "", "feat: after tag"),
		entry("1111111111111111111111111111111111111111", "1.0.0", "fix: before tag"),
		entry("0000000000000000000000000000000000000000", "", "feat: init"),
	}

	releases, err := Build(entries, config.Default(), BuildOptions{Now: time.Now()})
	require.NoError(t, err)
	require.Len(t, releases, 2)

	require.False(t, releases[0].Version.IsTag())
	require.True(t, releases[1].Version.IsTag())
	require.Equal(t, "1.0.0", releases[1].Version.Tag.String())
	require.Same(t, releases[1], releases[0].Previous)
}

func TestBuildSkipsNonConventionalCommits(t *testing.T) {
	entries := []walker.Entry{
		entry("1111111111111111111111111111111111111111", "1.0.0", "not a conventional commit"),
	}
	releases, err := Build(entries, config.Default(), BuildOptions{Now: time.Now()})
	require.NoError(t, err)
	require.Len(t, releases, 1)
	require.Empty(t, releases[0].Commits)
}

func TestBuildIgnoresFixupCommitsWhenConfigured(t *testing.T) {
	entries := []walker.Entry{
		entry("1111111111111111111111111111111111111111", "1.0.0", "fixup! feat: wip"),
	}
	releases, err := Build(entries, config.Default(), BuildOptions{Now: time.Now(), IgnoreFixupCommits: true})
	require.NoError(t, err)
	require.Empty(t, releases[0].Commits)
}

func TestRenderOrdersSectionsAndMarksBreaking(t *testing.T) {
	entries := []walker.Entry{
		entry("3333333333333333333333333333333333333333", "1.0.0", "feat!: breaking change"),
		entry("2222222222222222222222222222222222222222", "", "fix: a bugfix"),
		entry("1111111111111111111111111111111111111111", "", "feat: a feature"),
	}
	releases, err := Build(entries, config.Default(), BuildOptions{Now: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.Len(t, releases, 1)

	out := Render(releases[0], []string{"feat", "fix"}, nil)
	require.Contains(t, out, "## 1.0.0 - 2026-01-02")
	require.Contains(t, out, "### Breaking Changes")
	require.Contains(t, out, "### Features")
	require.Contains(t, out, "### Bug Fixes")

	breakingIdx := strings.Index(out, "Breaking Changes")
	featuresIdx := strings.Index(out, "### Features")
	require.Less(t, breakingIdx, featuresIdx)
}

func TestRenderSectionOrderFollowsTypeOrderNotCommitOrder(t *testing.T) {
	// Newest-first commit order is fix, feat, chore -- fix comes before feat,
	// the reverse of their order in typeOrder below. Section order must follow typeOrder
	// regardless (§4.6), matching scenario 1's "chore: init, feat(x): a,
	// fix: b" history.
	entries := []walker.Entry{
		entry("2222222222222222222222222222222222222222", "1.0.0", "fix: b"),
		entry("1111111111111111111111111111111111111111", "", "feat(x): a"),
		entry("0000000000000000000000000000000000000000", "", "chore: init"),
	}
	releases, err := Build(entries, config.Default(), BuildOptions{Now: time.Now()})
	require.NoError(t, err)
	require.Len(t, releases, 1)

	out := Render(releases[0], []string{"feat", "fix", "chore"}, nil)
	featuresIdx := strings.Index(out, "### Features")
	bugFixesIdx := strings.Index(out, "### Bug Fixes")
	require.NotEqual(t, -1, featuresIdx)
	require.NotEqual(t, -1, bugFixesIdx)
	require.Less(t, featuresIdx, bugFixesIdx)
}

func TestWriteReleaseRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CHANGELOG.md")

	require.NoError(t, WriteRelease(path, "## 1.0.0\n\n- first release\n"))
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(first), header)
	require.Contains(t, string(first), separator)
	require.Contains(t, string(first), "## 1.0.0")

	require.NoError(t, WriteRelease(path, "## 2.0.0\n\n- second release\n"))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(second)
	require.Contains(t, content, header)

	firstSep := strings.Index(content, separator)
	require.GreaterOrEqual(t, firstSep, 0)
	v200 := strings.Index(content, "## 2.0.0")
	v100 := strings.Index(content, "## 1.0.0")
	require.Greater(t, v200, firstSep)
	require.Greater(t, v100, v200)

	require.Equal(t, 2, strings.Count(content, separator))
}
