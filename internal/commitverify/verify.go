// Package commitverify implements CommitVerifier (C12): validating a raw
// commit message against the conventional-commit grammar and a configured
// set of allowed types.
package commitverify

import (
	"fmt"
	"strings"

	"github.com/cocogitto-go/cocogitto/internal/commitparse"
)

// TypeNotAllowedError reports a conventional commit whose type isn't in the
// configured allowed set.
type TypeNotAllowedError struct {
	Summary    string
	CommitType string
}

func (e *TypeNotAllowedError) Error() string {
	return fmt.Sprintf("commit type %q is not allowed (summary: %q)", e.CommitType, e.Summary)
}

// FormatError reports a message that doesn't parse as a conventional commit
// at all.
type FormatError struct {
	Summary string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("commit message does not follow conventional-commit format: %q", e.Summary)
}

// StripComments removes lines beginning with '#' (after optional leading
// whitespace), the way an editor-authored commit message template does.
func StripComments(message string) string {
	lines := strings.Split(message, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// Verify validates message against the conventional-commit grammar and the
// allowedTypes set. Merge commits are accepted without further checks when
// ignoreMerge is set.
func Verify(message string, allowedTypes map[string]bool, ignoreMerge bool) (commitparse.Parsed, error) {
	stripped := StripComments(message)

	if ignoreMerge && strings.HasPrefix(stripped, "Merge ") {
		return commitparse.Parsed{}, nil
	}

	parsed, ok := commitparse.Parse(stripped)
	if !ok {
		return commitparse.Parsed{}, &FormatError{Summary: firstLine(stripped)}
	}
	if allowedTypes != nil && !allowedTypes[parsed.Type] {
		return parsed, &TypeNotAllowedError{Summary: parsed.Summary, CommitType: parsed.Type}
	}
	return parsed, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
