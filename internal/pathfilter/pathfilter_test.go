package pathfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchIncludesPackageSubtree(t *testing.T) {
	f, err := Compile("jenkins", nil, nil)
	require.NoError(t, err)
	assert.True(t, f.Match("jenkins/main.go"))
	assert.True(t, f.Match("jenkins/sub/dir/file.go"))
	assert.False(t, f.Match("thumbor/main.go"))
}

func TestMatchExcludesIgnored(t *testing.T) {
	f, err := Compile("jenkins", nil, []string{"jenkins/testdata/**"})
	require.NoError(t, err)
	assert.True(t, f.Match("jenkins/main.go"))
	assert.False(t, f.Match("jenkins/testdata/fixture.json"))
}

func TestMatchExtraInclude(t *testing.T) {
	f, err := Compile("jenkins", []string{"shared/proto/**"}, nil)
	require.NoError(t, err)
	assert.True(t, f.Match("shared/proto/api.proto"))
}

func TestUnderAnyPackage(t *testing.T) {
	pkgs := []string{"jenkins", "thumbor"}
	assert.True(t, UnderAnyPackage("jenkins/main.go", pkgs))
	assert.False(t, UnderAnyPackage("docs/readme.md", pkgs))
	assert.False(t, UnderAnyPackage("jenkins-extra/file", pkgs))
}
