package hook

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/require"

	"github.com/cocogitto-go/cocogitto/internal/tag"
)

func version(v string) tag.Tag {
	return tag.Tag{Version: semver.MustParse(v)}
}

func TestParseEmptyCommandErrors(t *testing.T) {
	_, err := Parse("")
	require.Error(t, err)
}

func TestParseAndRenderPlainCommand(t *testing.T) {
	h, err := Parse(`echo "Hello World"`)
	require.NoError(t, err)
	args, err := h.Render(version("1.0.0"), version("1.0.0"))
	require.NoError(t, err)
	require.Equal(t, []string{"echo", "Hello World"}, args)
}

func TestRenderSubstitutesVersionPlaceholder(t *testing.T) {
	h, err := Parse("cargo bump {{version}}")
	require.NoError(t, err)
	args, err := h.Render(version("0.9.0"), version("1.0.0"))
	require.NoError(t, err)
	require.Equal(t, []string{"cargo", "bump", "1.0.0"}, args)
}

func TestRenderSplitsPlaceholderFromSurroundingLiteral(t *testing.T) {
	h, err := Parse("mvn versions:set -DnewVersion={{version}}")
	require.NoError(t, err)
	args, err := h.Render(version("0.9.0"), version("1.0.0"))
	require.NoError(t, err)
	require.Equal(t, []string{"mvn", "versions:set", "-DnewVersion=", "1.0.0"}, args)
}

func TestRenderAppliesIncrementAndSuffix(t *testing.T) {
	h, err := Parse("mvn versions:set -DnewVersion={{version+1minor-SNAPSHOT}}")
	require.NoError(t, err)
	args, err := h.Render(version("0.9.0"), version("1.0.0"))
	require.NoError(t, err)
	require.Equal(t, []string{"mvn", "versions:set", "-DnewVersion=", "1.1.0-SNAPSHOT"}, args)
}

func TestRenderLatestTargetsCurrentTag(t *testing.T) {
	h, err := Parse("echo {{latest}} {{version}}")
	require.NoError(t, err)
	args, err := h.Render(version("0.9.0"), version("1.0.0"))
	require.NoError(t, err)
	require.Equal(t, []string{"echo", "0.9.0", "1.0.0"}, args)
}

func TestRenderDefaultsAmountToOne(t *testing.T) {
	h, err := Parse("echo {{version+patch}}")
	require.NoError(t, err)
	args, err := h.Render(version("0.9.0"), version("1.0.2"))
	require.NoError(t, err)
	require.Equal(t, []string{"echo", "1.0.3"}, args)
}

func TestParseInvalidExpressionErrors(t *testing.T) {
	_, err := Parse("echo {{+patch}}")
	require.Error(t, err)
}

func TestParseBuildMetadataSuffix(t *testing.T) {
	h, err := Parse("echo {{version+1major+build.1}}")
	require.NoError(t, err)
	args, err := h.Render(version("0.9.0"), version("1.0.0"))
	require.NoError(t, err)
	require.Equal(t, []string{"echo", "2.0.0+build.1"}, args)
}
