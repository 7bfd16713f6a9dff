package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAppliesDefaultsForOmittedSections(t *testing.T) {
	s, err := Decode([]byte(`tag_prefix = "v"`))
	require.NoError(t, err)
	assert.Equal(t, "v", s.TagPrefix)
	assert.Equal(t, "CHANGELOG.md", s.Changelog.Path)
}

func TestDecodeRejectsUnknownField(t *testing.T) {
	_, err := Decode([]byte(`bogus_field = true`))
	assert.Error(t, err)
}

func TestDecodePackages(t *testing.T) {
	doc := `
monorepo_version_separator = "-"

[packages.jenkins]
path = "jenkins"
public_api = true
include = ["jenkins/**"]

[packages.thumbor]
path = "thumbor"
public_api = true
`
	s, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.Len(t, s.Packages, 2)
	assert.Equal(t, []string{"jenkins", "thumbor"}, s.SortedPackageNames())
}

func TestEffectiveCommitTypesDisablesNullOverride(t *testing.T) {
	s := Default()
	s.CommitTypes["style"] = nil
	order, merged := s.EffectiveCommitTypes()
	assert.NotContains(t, order, "style")
	_, ok := merged["style"]
	assert.False(t, ok)
}

func TestEffectiveCommitTypesAddsCustomType(t *testing.T) {
	s := Default()
	s.CommitTypes["security"] = &CommitTypeConfig{ChangelogTitle: "Security", BumpPatch: true}
	order, merged := s.EffectiveCommitTypes()
	assert.Contains(t, order, "security")
	assert.True(t, merged["security"].BumpPatch)
	assert.Equal(t, order[len(order)-1], "security")
}
