package changelog

import (
	"fmt"
	"os"
	"strings"
)

const separator = "- - -"

const header = "# Changelog\n" +
	"All notable changes to this project will be documented in this file. See [conventional commits](https://www.conventionalcommits.org/) for commit guidelines.\n"

// WriteRelease merges a freshly rendered release block into the changelog
// file at path, per §4.6's write semantics: a fixed header + separator on
// first write, then each new block inserted immediately after the
// separator (so releases stack newest-first) on every later write.
func WriteRelease(path, releaseMarkdown string) error {
	existing, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		content := header + "\n" + separator + "\n" + releaseMarkdown
		return os.WriteFile(path, []byte(content), 0o644)
	}
	if err != nil {
		return fmt.Errorf("reading changelog %s: %w", path, err)
	}

	idx := strings.Index(string(existing), separator)
	if idx < 0 {
		return fmt.Errorf("changelog %s has no %q separator to insert after", path, separator)
	}
	insertAt := idx + len(separator)
	before := string(existing)[:insertAt]
	after := strings.TrimPrefix(string(existing)[insertAt:], "\n")

	updated := before + "\n" + releaseMarkdown + "\n" + separator + "\n" + after
	return os.WriteFile(path, []byte(updated), 0o644)
}
