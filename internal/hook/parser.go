// Package hook implements HookRunner (C10): parsing the `{{…}}` version
// placeholder grammar out of a hook command string, substituting the
// surrounding tag's version into it, and running the result as a
// subprocess scoped to a package directory or the repository root.
package hook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	shellwords "github.com/mattn/go-shellwords"

	"github.com/cocogitto-go/cocogitto/internal/tag"
)

const (
	delimiterStart = "{{"
	delimiterEnd   = "}}"
)

// Target names which version an expression substitutes: the version about
// to be created, or the latest (current, pre-bump) tag.
type Target int

const (
	TargetVersion Target = iota
	TargetLatest
)

// Component names the semver field an Op increments.
type Component int

const (
	ComponentMajor Component = iota
	ComponentMinor
	ComponentPatch
)

// SuffixKind distinguishes a prerelease override from a build-metadata one.
type SuffixKind int

const (
	SuffixPrerelease SuffixKind = iota
	SuffixBuild
)

// Suffix carries an optional `-pre` or `+build` override appended to an Op.
type Suffix struct {
	Kind  SuffixKind
	Value string
}

// Op is the `+amount component suffix?` half of an expr.
type Op struct {
	Amount    uint64
	Component Component
	Suffix    *Suffix
}

// Expr is one parsed `{{…}}` placeholder.
type Expr struct {
	Target Target
	Op     *Op
}

// exprPattern matches the grammar from §4.7:
//
//	expr    := target ( op )?
//	target  := 'version' | 'latest'
//	op      := '+' amount component suffix?
//	amount  := positive integer (defaults to 1)
//	component := 'major' | 'minor' | 'patch'
//	suffix  := '-' prerelease | '+' build
var exprPattern = regexp.MustCompile(
	`^\s*(version|latest)\s*(?:\+\s*(\d+)?\s*(major|minor|patch)\s*(?:([-+])([A-Za-z0-9.]+))?)?\s*$`,
)

// parseExpr parses the text between a `{{` and `}}` pair.
func parseExpr(raw string) (Expr, error) {
	m := exprPattern.FindStringSubmatch(raw)
	if m == nil {
		return Expr{}, fmt.Errorf("invalid hook expression %q", raw)
	}

	expr := Expr{}
	switch m[1] {
	case "version":
		expr.Target = TargetVersion
	case "latest":
		expr.Target = TargetLatest
	}

	if m[3] == "" {
		return expr, nil
	}

	amount := uint64(1)
	if m[2] != "" {
		n, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return Expr{}, fmt.Errorf("invalid hook expression amount %q: %w", m[2], err)
		}
		amount = n
	}

	op := &Op{Amount: amount}
	switch m[3] {
	case "major":
		op.Component = ComponentMajor
	case "minor":
		op.Component = ComponentMinor
	case "patch":
		op.Component = ComponentPatch
	}

	if m[4] != "" {
		kind := SuffixPrerelease
		if m[4] == "+" {
			kind = SuffixBuild
		}
		op.Suffix = &Suffix{Kind: kind, Value: m[5]}
	}

	expr.Op = op
	return expr, nil
}

// Apply computes the version expr substitutes, given the current (latest)
// and next (version) tags already resolved by the orchestrator. With no Op,
// the raw target tag is used; with an Op, the target's version is bumped by
// amount on the named component (1-indexed, so `+1minor` is one minor bump
// beyond the target) and the suffix, if present, replaces prerelease/build.
func (e Expr) Apply(current, next tag.Tag) (tag.Tag, error) {
	base := next
	if e.Target == TargetLatest {
		base = current
	}
	if e.Op == nil {
		return base, nil
	}

	v := base.Version
	major, minor, patch := v.Major(), v.Minor(), v.Patch()
	switch e.Op.Component {
	case ComponentMajor:
		major += e.Op.Amount
		minor, patch = 0, 0
	case ComponentMinor:
		minor += e.Op.Amount
		patch = 0
	case ComponentPatch:
		patch += e.Op.Amount
	}

	pre, meta := v.Prerelease(), v.Metadata()
	if e.Op.Suffix != nil {
		switch e.Op.Suffix.Kind {
		case SuffixPrerelease:
			pre, meta = e.Op.Suffix.Value, ""
		case SuffixBuild:
			meta = e.Op.Suffix.Value
		}
	}

	bumped := semver.New(major, minor, patch, pre, meta)
	return tag.Tag{Package: base.Package, Prefix: base.Prefix, Separator: base.Separator, Version: bumped}, nil
}

// token is one piece of a shell-split hook word: either a literal string or
// a parsed placeholder, emitted as a standalone argv entry on substitution
// (matching the reference implementation's word-splitting quirk, where
// "-DnewVersion={{version}}" becomes two separate arguments).
type token struct {
	literal string
	expr    *Expr
}

// Hook is a parsed, shell-split hook command ready for version substitution
// and execution.
type Hook struct {
	tokens []token
}

// Parse shell-splits command and extracts `{{…}}` placeholders from each
// resulting word, per §4.7. An empty command is an error.
func Parse(command string) (*Hook, error) {
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("hook command must not be empty")
	}

	words, err := shellwords.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("splitting hook command %q: %w", command, err)
	}

	var tokens []token
	for _, word := range words {
		start := strings.Index(word, delimiterStart)
		end := strings.Index(word, delimiterEnd)
		if start < 0 || end < 0 || end < start {
			tokens = append(tokens, token{literal: word})
			continue
		}

		before := word[:start]
		inner := word[start+len(delimiterStart) : end]
		after := word[end+len(delimiterEnd):]

		expr, err := parseExpr(inner)
		if err != nil {
			return nil, err
		}

		if before != "" {
			tokens = append(tokens, token{literal: before})
		}
		tokens = append(tokens, token{expr: &expr})
		if after != "" {
			tokens = append(tokens, token{literal: after})
		}
	}

	return &Hook{tokens: tokens}, nil
}

// Render substitutes every placeholder token against current/next and
// returns the final argv.
func (h *Hook) Render(current, next tag.Tag) ([]string, error) {
	args := make([]string, 0, len(h.tokens))
	for _, tok := range h.tokens {
		if tok.expr == nil {
			args = append(args, tok.literal)
			continue
		}
		v, err := tok.expr.Apply(current, next)
		if err != nil {
			return nil, err
		}
		args = append(args, v.String())
	}
	return args, nil
}
