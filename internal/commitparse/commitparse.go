// Package commitparse adapts github.com/leodido/go-conventionalcommits (the
// "library returning {type, scope, summary, body, footers[], breaking}" that
// §1 assumes is available) into the Commit shape the core operates on.
// Grammar parsing itself is out of scope for the core; this package is only
// the seam.
package commitparse

import (
	"regexp"
	"strings"

	cc "github.com/leodido/go-conventionalcommits"
	"github.com/leodido/go-conventionalcommits/parser"
)

// FooterSeparator enumerates the three separator styles a trailer can use,
// per the Commit data model in §3.
type FooterSeparator int

const (
	SeparatorColon FooterSeparator = iota
	SeparatorHash
	SeparatorColonNewline
)

// Footer is one trailer line of a parsed commit.
type Footer struct {
	Token     string
	Separator FooterSeparator
	Content   string
}

// Parsed is the enriched conventional-commit payload described in §3's
// Commit.conventional field.
type Parsed struct {
	Type     string
	Scope    string
	HasScope bool
	Summary  string
	Body     string
	HasBody  bool
	Footers  []Footer
	Breaking bool
}

var footerLine = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9-]*|BREAKING CHANGE)(: | #|:$)(.*)$`)

// Parse runs the library's machine in best-effort mode and reshapes its
// result into Parsed. It returns ok=false when the message doesn't parse as
// a conventional commit at all (no type, no description).
func Parse(message string) (parsed Parsed, ok bool) {
	machine := parser.NewMachine(cc.WithTypes(cc.TypesFreeForm), cc.WithBestEffort())
	msg, err := machine.Parse([]byte(message))
	if err != nil || msg == nil {
		return Parsed{}, false
	}
	if !msg.Ok() {
		return Parsed{}, false
	}

	ccMsg, isCC := msg.(*cc.ConventionalCommit)
	if !isCC {
		return Parsed{}, false
	}

	parsed.Type = ccMsg.Type
	parsed.Summary = ccMsg.Description
	parsed.Breaking = msg.IsBreakingChange()
	if ccMsg.Scope != nil {
		parsed.Scope = *ccMsg.Scope
		parsed.HasScope = true
	}
	if ccMsg.Body != nil {
		parsed.Body = *ccMsg.Body
		parsed.HasBody = true
	}
	parsed.Footers = parseFooters(message)

	return parsed, true
}

// parseFooters re-scans the raw message for trailer lines so the separator
// style (":", " #", or ":\n") survives, since the upstream library folds all
// three into a single map[string][]string and loses that distinction.
func parseFooters(message string) []Footer {
	var footers []Footer
	lines := strings.Split(message, "\n")
	for i, line := range lines {
		m := footerLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		sep := SeparatorColon
		content := strings.TrimSpace(m[3])
		switch m[2] {
		case " #":
			sep = SeparatorHash
		case ":":
			// "token:" ending the line: the content is on the next line.
			sep = SeparatorColonNewline
			if i+1 < len(lines) {
				content = strings.TrimSpace(lines[i+1])
			}
		}
		footers = append(footers, Footer{Token: m[1], Separator: sep, Content: content})
	}
	return footers
}
