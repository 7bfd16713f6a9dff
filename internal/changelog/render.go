package changelog

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cocogitto-go/cocogitto/internal/oid"
)

// RemoteContext carries the optional remote/owner/repository triple used to
// turn commit hashes and tag ranges into links (§4.6).
type RemoteContext struct {
	Remote     string
	Owner      string
	Repository string
}

// Render applies §4.6's rendering rules to a single release: section
// headers ordered per typeOrder, commits listed newest-first within each
// section, and (when remote is non-nil) hash/compare/author links.
func Render(r *Release, typeOrder []string, remote *RemoteContext) string {
	var b strings.Builder

	header := fmt.Sprintf("## %s", r.Version.String())
	if !r.Date.IsZero() {
		header += fmt.Sprintf(" - %s", r.Date.Format("2006-01-02"))
	}
	if remote != nil && !r.From.IsFirstCommit() {
		header = fmt.Sprintf("## [%s](%s)", versionLabel(r), compareLink(*remote, r.From, r.Version))
		if !r.Date.IsZero() {
			header += fmt.Sprintf(" - %s", r.Date.Format("2006-01-02"))
		}
	}
	b.WriteString(header + "\n")

	breaking := sectionFor(r.Commits, func(c ChangelogCommit) bool { return c.Breaking })
	if len(breaking) > 0 {
		writeSection(&b, "Breaking Changes", breaking, remote)
	}

	// Section order follows typeOrder (the configured commit-type order),
	// not the order sections happen to first appear in r.Commits (§4.6).
	titleByType := map[string]string{}
	for _, c := range r.Commits {
		if !c.Breaking {
			titleByType[c.Type] = c.ChangelogTitle
		}
	}
	seenTitle := map[string]bool{}
	for _, typeName := range typeOrder {
		title, ok := titleByType[typeName]
		if !ok || seenTitle[title] {
			continue
		}
		seenTitle[title] = true
		commits := sectionFor(r.Commits, func(c ChangelogCommit) bool { return !c.Breaking && c.ChangelogTitle == title })
		if len(commits) == 0 {
			continue
		}
		writeSection(&b, title, commits, remote)
	}

	return b.String()
}

func versionLabel(r *Release) string { return r.Version.String() }

func sectionFor(commits []ChangelogCommit, pred func(ChangelogCommit) bool) []ChangelogCommit {
	var out []ChangelogCommit
	for _, c := range commits {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

func writeSection(b *strings.Builder, title string, commits []ChangelogCommit, remote *RemoteContext) {
	b.WriteString(fmt.Sprintf("\n### %s\n\n", title))
	for _, c := range commits {
		b.WriteString("- " + renderCommitLine(c, remote) + "\n")
	}
}

var titleCaser = cases.Title(language.Und, cases.NoLower)

func renderCommitLine(c ChangelogCommit, remote *RemoteContext) string {
	var line strings.Builder
	if c.HasScope && c.Scope != "" {
		line.WriteString(fmt.Sprintf("(**%s**) ", strings.ToLower(c.Scope)))
	}
	summary := c.Summary
	if len(summary) > 0 {
		summary = titleCaser.String(summary[:1]) + summary[1:]
	}
	line.WriteString(summary)
	if remote != nil {
		hash := c.OidOf.Hash.String()
		short := hash
		if len(short) > 7 {
			short = short[:7]
		}
		line.WriteString(fmt.Sprintf(" - [%s](%s)", short, commitLink(*remote, hash)))
	}
	line.WriteString(" - " + authorLink(c.Author, remote))
	return line.String()
}

func authorLink(author string, remote *RemoteContext) string {
	if remote != nil && strings.HasPrefix(author, "@") {
		user := strings.TrimPrefix(author, "@")
		return fmt.Sprintf("[@%s](%s/%s/%s)", user, remote.Remote, remote.Owner, user)
	}
	return author
}

func commitLink(remote RemoteContext, hash string) string {
	return fmt.Sprintf("%s/%s/%s/commit/%s", remote.Remote, remote.Owner, remote.Repository, hash)
}

func compareLink(remote RemoteContext, from, to oid.Of) string {
	return fmt.Sprintf("%s/%s/%s/compare/%s..%s", remote.Remote, remote.Owner, remote.Repository, from.String(), to.String())
}

// Preview renders markdown for terminal display with glamour, matching the
// teacher's getChangeLog: "notty" style when stdout isn't a TTY, word-wrap
// capped at 120 columns.
func Preview(markdown string) (string, error) {
	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	style := "auto"
	if !isTerminal {
		style = "notty"
	}

	width := uint(80)
	if isTerminal {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = uint(w)
		}
		if width > 120 {
			width = 120
		}
	}

	var gs glamour.TermRendererOption
	if style == "auto" {
		gs = glamour.WithEnvironmentConfig()
	} else {
		gs = glamour.WithStylePath(style)
	}
	r, err := glamour.NewTermRenderer(gs, glamour.WithWordWrap(int(width)), glamour.WithPreservedNewLines())
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering changelog: %w", err)
	}
	return out, nil
}
