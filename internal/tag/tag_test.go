package tag

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBareVersion(t *testing.T) {
	tg, err := Parse("1.2.3", nil, nil, ParseConfig{})
	require.NoError(t, err)
	assert.Nil(t, tg.Package)
	assert.Nil(t, tg.Prefix)
	assert.Equal(t, "1.2.3", tg.String())
}

func TestParseWithPrefix(t *testing.T) {
	tg, err := Parse("v1.2.3", nil, nil, ParseConfig{Prefix: "v"})
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", tg.String())
}

func TestParsePackagePrecedence(t *testing.T) {
	// package "v" with prefix "v" - the package-strip step must win.
	cfg := ParseConfig{Prefix: "v", Separator: "-", PackageNames: []string{"v", "jenkins"}}
	tg, err := Parse("v-v1.0.0", nil, nil, cfg)
	require.NoError(t, err)
	require.NotNil(t, tg.Package)
	assert.Equal(t, "v", *tg.Package)
	assert.Equal(t, "v-v1.0.0", tg.String())
}

func TestParsePackageTag(t *testing.T) {
	cfg := ParseConfig{Separator: "-", PackageNames: []string{"jenkins", "thumbor"}}
	tg, err := Parse("jenkins-0.1.0", nil, nil, cfg)
	require.NoError(t, err)
	require.NotNil(t, tg.Package)
	assert.Equal(t, "jenkins", *tg.Package)
	assert.Equal(t, "jenkins-0.1.0", tg.String())
}

func TestParseInvalidSemver(t *testing.T) {
	_, err := Parse("not-a-version", nil, nil, ParseConfig{})
	assert.Error(t, err)
}

func TestFormatPackageWithoutSeparatorPanics(t *testing.T) {
	pkg := "jenkins"
	tg, err := Parse("0.1.0", nil, nil, ParseConfig{})
	require.NoError(t, err)
	tg.Package = &pkg
	assert.Panics(t, func() { _ = tg.String() })
}

func TestBumps(t *testing.T) {
	tg, err := Parse("1.2.3-alpha.1+build", nil, nil, ParseConfig{})
	require.NoError(t, err)

	assert.Equal(t, "2.0.0", tg.MajorBump().String())
	assert.Equal(t, "1.3.0", tg.MinorBump().String())
	assert.Equal(t, "1.2.4", tg.PatchBump().String())
	assert.Equal(t, "1.2.3", tg.NoBump().String())
}

func TestManualBump(t *testing.T) {
	tg, err := Parse("1.0.0", nil, nil, ParseConfig{})
	require.NoError(t, err)
	next, err := tg.ManualBump("9.9.9")
	require.NoError(t, err)
	assert.Equal(t, "9.9.9", next.String())
}

func TestIsZero(t *testing.T) {
	zero, _ := Parse("0.0.0", nil, nil, ParseConfig{})
	assert.True(t, zero.IsZero())
	nonZero, _ := Parse("0.0.1", nil, nil, ParseConfig{})
	assert.False(t, nonZero.IsZero())
}

func TestGetIncrementFrom(t *testing.T) {
	a, _ := Parse("2.0.0", nil, nil, ParseConfig{})
	b, _ := Parse("1.5.9", nil, nil, ParseConfig{})
	assert.Equal(t, IncrementMajor, a.GetIncrementFrom(b))

	c, _ := Parse("1.6.0", nil, nil, ParseConfig{})
	assert.Equal(t, IncrementMinor, c.GetIncrementFrom(b))

	assert.Equal(t, IncrementMinor, b.GetIncrementFrom(a))
}

func TestEqualityIgnoresOid(t *testing.T) {
	h1 := plumbing.NewHash("1111111111111111111111111111111111111111")
	h2 := plumbing.NewHash("2222222222222222222222222222222222222222")
	a, _ := Parse("1.0.0", &h1, &h1, ParseConfig{})
	b, _ := Parse("1.0.0", &h2, nil, ParseConfig{})
	assert.True(t, a.Equal(b))
}

func TestOrdering(t *testing.T) {
	v1, _ := Parse("1.0.0", nil, nil, ParseConfig{})
	v2, _ := Parse("2.0.0", nil, nil, ParseConfig{})
	coll := Collection{v2, v1}
	assert.True(t, coll.Less(1, 0))
	assert.False(t, coll.Less(0, 1))
}
