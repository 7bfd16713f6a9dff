// Package config loads cog.toml into a Settings tree. Deserialization is the
// only concern here; the core treats Settings as a read-only value handed in
// by the caller rather than a package-level global.
package config

import "sort"

// CommitTypeConfig configures how one conventional-commit type contributes
// to the changelog and to the bump decision. A nil value for a default type
// name disables it entirely (see Settings.CommitTypes).
type CommitTypeConfig struct {
	ChangelogTitle    string `toml:"changelog_title"`
	OmitFromChangelog bool   `toml:"omit_from_changelog"`
	BumpMinor         bool   `toml:"bump_minor"`
	BumpPatch         bool   `toml:"bump_patch"`
}

// Author maps a commit author's VCS signature to a display username used by
// remote-linked changelog rendering.
type Author struct {
	Signature string `toml:"signature"`
	Username  string `toml:"username"`
}

// ChangelogSettings configures where and how the changelog is rendered.
type ChangelogSettings struct {
	Path            string   `toml:"path"`
	Template        string   `toml:"template"`
	PackageTemplate string   `toml:"package_template"`
	Remote          string   `toml:"remote"`
	Owner           string   `toml:"owner"`
	Repository      string   `toml:"repository"`
	Authors         []Author `toml:"authors"`
}

// BumpProfile overrides the global pre/post hook lists for a named profile,
// selectable per-invocation (e.g. `cog bump --hook-profile ci`).
type BumpProfile struct {
	Pre  []string `toml:"pre"`
	Post []string `toml:"post"`
}

// PackageConfig describes one monorepo package: its subtree, the globs that
// scope commits to it, and its own changelog/hooks.
type PackageConfig struct {
	Path            string                 `toml:"path"`
	PublicAPI       bool                   `toml:"public_api"`
	ChangelogPath   string                 `toml:"changelog_path"`
	Include         []string               `toml:"include"`
	Ignore          []string               `toml:"ignore"`
	PreBumpHooks    []string               `toml:"pre_bump_hooks"`
	PostBumpHooks   []string               `toml:"post_bump_hooks"`
	BumpProfiles    map[string]BumpProfile `toml:"bump_profiles"`
}

// Settings is the deserialized form of cog.toml. Field names mirror the
// TOML keys verbatim; unknown top-level keys are a load error (see Load).
type Settings struct {
	FromLatestTag                 bool                         `toml:"from_latest_tag"`
	IgnoreMergeCommits             bool                         `toml:"ignore_merge_commits"`
	IgnoreFixupCommits             bool                         `toml:"ignore_fixup_commits"`
	DisableChangelog               bool                         `toml:"disable_changelog"`
	DisableBumpCommit              bool                         `toml:"disable_bump_commit"`
	GenerateMonoRepositoryGlobalTag bool                        `toml:"generate_mono_repository_global_tag"`
	MonorepoVersionSeparator       string                        `toml:"monorepo_version_separator"`
	BranchWhitelist                []string                     `toml:"branch_whitelist"`
	TagPrefix                      string                        `toml:"tag_prefix"`
	SkipCI                         string                        `toml:"skip_ci"`
	SkipUntracked                   bool                         `toml:"skip_untracked"`
	PreBumpHooks                    []string                     `toml:"pre_bump_hooks"`
	PostBumpHooks                   []string                     `toml:"post_bump_hooks"`
	PrePackageBumpHooks              []string                     `toml:"pre_package_bump_hooks"`
	PostPackageBumpHooks             []string                     `toml:"post_package_bump_hooks"`
	CommitTypes                     map[string]*CommitTypeConfig `toml:"commit_types"`
	Changelog                       ChangelogSettings             `toml:"changelog"`
	BumpProfiles                     map[string]BumpProfile        `toml:"bump_profiles"`
	Packages                         map[string]PackageConfig      `toml:"packages"`
}

// DefaultCommitTypes is the built-in type table from §4.4: feat bumps minor,
// fix bumps patch, and the rest carry only a changelog title.
func DefaultCommitTypes() map[string]*CommitTypeConfig {
	return map[string]*CommitTypeConfig{
		"feat":     {ChangelogTitle: "Features", BumpMinor: true},
		"fix":      {ChangelogTitle: "Bug Fixes", BumpPatch: true},
		"chore":    {ChangelogTitle: "Miscellaneous Chores"},
		"revert":   {ChangelogTitle: "Reverts"},
		"perf":     {ChangelogTitle: "Performance Improvements"},
		"docs":     {ChangelogTitle: "Documentation"},
		"style":    {ChangelogTitle: "Style"},
		"refactor": {ChangelogTitle: "Refactoring"},
		"test":     {ChangelogTitle: "Tests"},
		"build":    {ChangelogTitle: "Build System"},
		"ci":       {ChangelogTitle: "Continuous Integration"},
	}
}

// Default returns the zero-configuration Settings a repository gets when it
// has no cog.toml: default commit types, changelog at CHANGELOG.md, no
// packages. BumpOrchestrator warns when a loaded Settings equals this.
func Default() Settings {
	return Settings{
		CommitTypes: DefaultCommitTypes(),
		Changelog: ChangelogSettings{
			Path:     "CHANGELOG.md",
			Template: "default",
		},
		MonorepoVersionSeparator: "-",
	}
}

// EffectiveCommitTypes merges Settings.CommitTypes over DefaultCommitTypes:
// a nil override removes the default entry, a non-nil override replaces it,
// and names absent from both maps are untouched. The returned order (default
// order, then names that only the overrides add) drives the changelog's
// section ordering per §4.6. Added names are appended in Go map iteration
// order, so their relative order is not defined and not the order in which
// cog.toml lists them.
func (s Settings) EffectiveCommitTypes() ([]string, map[string]CommitTypeConfig) {
	order := []string{"feat", "fix", "chore", "revert", "perf", "docs", "style", "refactor", "test", "build", "ci"}
	defaults := DefaultCommitTypes()
	merged := make(map[string]CommitTypeConfig, len(defaults))
	for _, name := range order {
		merged[name] = *defaults[name]
	}

	for name, override := range s.CommitTypes {
		_, known := merged[name]
		if override == nil {
			delete(merged, name)
			continue
		}
		if !known {
			order = append(order, name)
		}
		merged[name] = *override
	}

	finalOrder := make([]string, 0, len(order))
	for _, name := range order {
		if _, ok := merged[name]; ok {
			finalOrder = append(finalOrder, name)
		}
	}
	return finalOrder, merged
}

// PackageNames returns the configured package names, unordered; callers that
// need determinism (e.g. tag.Parse) sort them.
func (s Settings) PackageNames() []string {
	names := make([]string, 0, len(s.Packages))
	for name := range s.Packages {
		names = append(names, name)
	}
	return names
}

// SortedPackageNames returns package names in lexicographic order, the
// deterministic iteration order required by §4.8's monorepo global bump and
// §9's note on tag-parsing precedence.
func (s Settings) SortedPackageNames() []string {
	names := s.PackageNames()
	sort.Strings(names)
	return names
}
