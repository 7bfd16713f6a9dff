package commitverify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allowed(types ...string) map[string]bool {
	m := make(map[string]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

func TestVerifyAcceptsAllowedType(t *testing.T) {
	parsed, err := Verify("feat(parser): support footers", allowed("feat", "fix"), false)
	require.NoError(t, err)
	assert.Equal(t, "feat", parsed.Type)
	assert.True(t, parsed.HasScope)
}

func TestVerifyRejectsDisallowedType(t *testing.T) {
	_, err := Verify("wip: half done", allowed("feat", "fix"), false)
	require.Error(t, err)
	var typeErr *TypeNotAllowedError
	assert.ErrorAs(t, err, &typeErr)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	_, err := Verify("just a plain message with no type", allowed("feat"), false)
	require.Error(t, err)
	var fmtErr *FormatError
	assert.ErrorAs(t, err, &fmtErr)
}

func TestVerifyAcceptsMergeWhenIgnored(t *testing.T) {
	_, err := Verify("Merge branch 'main' into feature", allowed("feat"), true)
	assert.NoError(t, err)
}

func TestStripCommentsRemovesHashLines(t *testing.T) {
	msg := "feat: add thing\n# please enter a commit message\nbody text"
	assert.Equal(t, "feat: add thing\nbody text", StripComments(msg))
}
