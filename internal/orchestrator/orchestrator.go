// Package orchestrator implements BumpOrchestrator (C11): the transactional
// bump sequence (pre-checks -> compute version -> write changelog ->
// pre-hook -> stage -> commit -> tag -> post-hook) with stash-on-failure
// recovery, in its single-package, per-package and monorepo-global forms.
package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"

	"github.com/Masterminds/semver/v3"
	"github.com/gobwas/glob"

	"github.com/cocogitto-go/cocogitto/internal/bump"
	"github.com/cocogitto-go/cocogitto/internal/changelog"
	"github.com/cocogitto-go/cocogitto/internal/commitparse"
	"github.com/cocogitto-go/cocogitto/internal/config"
	"github.com/cocogitto-go/cocogitto/internal/corelog"
	"github.com/cocogitto-go/cocogitto/internal/gitrepo"
	"github.com/cocogitto-go/cocogitto/internal/hook"
	"github.com/cocogitto-go/cocogitto/internal/oid"
	"github.com/cocogitto-go/cocogitto/internal/pathfilter"
	"github.com/cocogitto-go/cocogitto/internal/tag"
	"github.com/cocogitto-go/cocogitto/internal/walker"
)

// DirtyWorktreeError reports uncommitted or untracked changes blocking a
// bump, per §4.8 pre-check 2.
type DirtyWorktreeError struct{ Status string }

func (e *DirtyWorktreeError) Error() string {
	return fmt.Sprintf("cannot bump: working tree is not clean:\n%s", e.Status)
}

// BranchNotAllowedError reports a current branch outside branch_whitelist.
type BranchNotAllowedError struct {
	Branch  string
	Allowed []string
}

func (e *BranchNotAllowedError) Error() string {
	return fmt.Sprintf("branch %q is not in the configured whitelist %v", e.Branch, e.Allowed)
}

// NotGreaterError reports a computed next version that doesn't exceed the
// current one, per §4.8 step 3.
type NotGreaterError struct{ Current, Next string }

func (e *NotGreaterError) Error() string {
	return fmt.Sprintf("next version %s is not greater than current version %s", e.Next, e.Current)
}

// UnknownPackageError reports a package name absent from Settings.Packages.
type UnknownPackageError struct{ Name string }

func (e *UnknownPackageError) Error() string {
	return fmt.Sprintf("unknown package %q", e.Name)
}

// BumpFailedError wraps a pre-hook failure after the working tree has been
// stashed, per §4.8's stash-on-failure recovery.
type BumpFailedError struct {
	Version   string
	StashName string
	Err       error
}

func (e *BumpFailedError) Error() string {
	return fmt.Sprintf("bump to %s failed (working tree stashed as %q): %v", e.Version, e.StashName, e.Err)
}

func (e *BumpFailedError) Unwrap() error { return e.Err }

// Options controls one bump invocation, gathered from CLI flags (§4.8).
type Options struct {
	DryRun            bool
	Increment         bump.Increment
	IncludePreRelease bool
	Prerelease        string
	BuildMetadata     string
	Annotated         string // non-empty: create an annotated tag with this message
	HookProfile       string
	SkipCIOverride    string // non-empty: overrides settings.SkipCI for this invocation's trailer
}

// commitMessage builds the version-commit subject, appending a skip-ci
// trailer (§6.4) when opts.SkipCIOverride or settings.SkipCI is set. The
// override wins when both are present.
func (o *Orchestrator) commitMessage(tagName string, opts Options) string {
	subject := fmt.Sprintf("chore(version): %s", tagName)
	trailer := opts.SkipCIOverride
	if trailer == "" {
		trailer = o.settings.SkipCI
	}
	if trailer == "" {
		return subject
	}
	return subject + "\n\n" + trailer
}

// Orchestrator drives the bump sequence over one repository.
type Orchestrator struct {
	repo     *gitrepo.Repository
	cache    *gitrepo.TagCache
	walker   *walker.Walker
	settings config.Settings
}

// New builds an Orchestrator over repo using settings' tag-parsing policy.
func New(repo *gitrepo.Repository, settings config.Settings) *Orchestrator {
	cfg := tag.ParseConfig{
		Prefix:       settings.TagPrefix,
		Separator:    settings.MonorepoVersionSeparator,
		PackageNames: settings.SortedPackageNames(),
	}
	cache := gitrepo.NewTagCache(repo, cfg)
	resolver := gitrepo.NewResolver(repo, cache, cfg)
	return &Orchestrator{
		repo:     repo,
		cache:    cache,
		walker:   walker.New(repo, resolver),
		settings: settings,
	}
}

// preChecks runs the three checks common to every entry point (§4.8).
func (o *Orchestrator) preChecks() error {
	if reflect.DeepEqual(o.settings, config.Default()) {
		corelog.Log.Warn("no cog.toml found; bumping with default settings")
	}

	if !o.settings.SkipUntracked {
		clean, err := o.repo.IsClean()
		if err != nil {
			return err
		}
		if !clean {
			status, err := o.repo.StatusLines()
			if err != nil {
				return err
			}
			return &DirtyWorktreeError{Status: status}
		}
	}

	if len(o.settings.BranchWhitelist) > 0 {
		branch, err := o.repo.BranchShorthand()
		if err != nil {
			return err
		}
		matched := false
		for _, pattern := range o.settings.BranchWhitelist {
			g, err := glob.Compile(pattern, '/')
			if err != nil {
				return fmt.Errorf("invalid branch_whitelist pattern %q: %w", pattern, err)
			}
			if g.Match(branch) {
				matched = true
				break
			}
		}
		if !matched {
			return &BranchNotAllowedError{Branch: branch, Allowed: o.settings.BranchWhitelist}
		}
	}

	return nil
}

// stashOnFailure creates a named stash and wraps err for the caller.
func (o *Orchestrator) stashOnFailure(next tag.Tag, err error) error {
	name := fmt.Sprintf("cog_bump_%s", next.String())
	if stashErr := o.repo.Stash(name); stashErr != nil {
		corelog.Log.Errorf("stash-on-failure itself failed: %v", stashErr)
	}
	return &BumpFailedError{Version: next.String(), StashName: name, Err: err}
}

// applyIncrement returns the tag current bumps to under kind.
func applyIncrement(current tag.Tag, kind bump.Kind) tag.Tag {
	switch kind {
	case bump.KindMajor:
		return current.MajorBump()
	case bump.KindMinor:
		return current.MinorBump()
	case bump.KindPatch:
		return current.PatchBump()
	default:
		return current.NoBump()
	}
}

// resolveNext dispatches Increment's union (§4.1/§4.4) to the next tag.
func resolveNext(current tag.Tag, inc bump.Increment, commits []bump.CommitInfo, types map[string]config.CommitTypeConfig) (tag.Tag, error) {
	switch inc.Kind {
	case bump.KindManual:
		return current.ManualBump(inc.ManualVersion)
	case bump.KindMajor:
		return current.MajorBump(), nil
	case bump.KindMinor:
		return current.MinorBump(), nil
	case bump.KindPatch:
		return current.PatchBump(), nil
	case bump.KindNone:
		return current.NoBump(), nil
	default:
		kind, err := bump.VersionIncrementFromCommitHistory(current.Version.Major() == 0, commits, types)
		if err != nil {
			return tag.Tag{}, err
		}
		return applyIncrement(current, kind), nil
	}
}

// applyOverrides layers an optional prerelease/build-metadata override onto
// next, per §4.8 step 4.
func applyOverrides(next tag.Tag, prerelease, build string) tag.Tag {
	if prerelease == "" && build == "" {
		return next
	}
	pre := next.Version.Prerelease()
	meta := next.Version.Metadata()
	if prerelease != "" {
		pre = prerelease
	}
	if build != "" {
		meta = build
	}
	v := semver.New(next.Version.Major(), next.Version.Minor(), next.Version.Patch(), pre, meta)
	return tag.Tag{Package: next.Package, Prefix: next.Prefix, Separator: next.Separator, Version: v}
}

func commitInfosFrom(entries []walker.Entry) []bump.CommitInfo {
	var infos []bump.CommitInfo
	for _, e := range entries {
		parsed, ok := commitparse.Parse(e.Commit.Message)
		if !ok {
			continue
		}
		infos = append(infos, bump.CommitInfo{Type: parsed.Type, Breaking: parsed.Breaking})
	}
	return infos
}

func rangeSpec(current tag.Tag, hasCurrent bool) string {
	if !hasCurrent {
		return ".."
	}
	return current.String() + "..HEAD"
}

// stageAndCommit stages every change and creates the version commit, unless
// disable_bump_commit is set.
func (o *Orchestrator) stageAndCommit(message string) error {
	if o.settings.DisableBumpCommit {
		return nil
	}
	sig, err := o.repo.Signature()
	if err != nil {
		return err
	}
	if err := o.repo.StageAll(); err != nil {
		return err
	}
	_, err = o.repo.Commit(message, sig)
	return err
}

// createTag creates a lightweight or (when opts.Annotated is set) annotated
// tag named next.String() at HEAD.
func (o *Orchestrator) createTag(next tag.Tag, opts Options) error {
	if opts.Annotated != "" {
		sig, err := o.repo.Signature()
		if err != nil {
			return err
		}
		return o.repo.CreateAnnotatedTag(next.String(), opts.Annotated, sig)
	}
	return o.repo.CreateLightweightTag(next.String())
}

// tagAndCommit stages, commits and tags next in one step, used by the
// single-package and per-package entry points.
func (o *Orchestrator) tagAndCommit(next tag.Tag, message string, opts Options) error {
	if err := o.stageAndCommit(message); err != nil {
		return err
	}
	return o.createTag(next, opts)
}

// CreateVersion implements the standard, single-package bump (§4.8).
func (o *Orchestrator) CreateVersion(ctx context.Context, opts Options) (*tag.Tag, error) {
	if err := o.preChecks(); err != nil {
		return nil, err
	}

	current, hasCurrent, err := o.cache.LatestTag(nil, opts.IncludePreRelease)
	if err != nil {
		return nil, err
	}
	if !hasCurrent {
		current = tag.Tag{Version: semver.New(0, 0, 0, "", "")}
	}

	entries, err := o.walker.Revwalk(rangeSpec(current, hasCurrent))
	if err != nil {
		return nil, err
	}

	_, types := o.settings.EffectiveCommitTypes()
	next, err := resolveNext(current, opts.Increment, commitInfosFrom(entries), types)
	if err != nil {
		return nil, err
	}
	next = applyOverrides(next, opts.Prerelease, opts.BuildMetadata)

	if !next.Version.GreaterThan(current.Version) {
		return nil, &NotGreaterError{Current: current.Version.String(), Next: next.Version.String()}
	}

	if opts.DryRun {
		fmt.Println(next.String())
		return &next, nil
	}

	if !o.settings.DisableChangelog {
		if err := o.writeChangelog(entries, next, o.settings.Changelog.Path); err != nil {
			return nil, err
		}
	}

	pre, post := o.hookLists(opts.HookProfile, o.settings.PreBumpHooks, o.settings.PostBumpHooks)
	if err := hook.Run(ctx, pre, o.repo.Path(), current, next); err != nil {
		return nil, o.stashOnFailure(next, err)
	}

	if err := o.tagAndCommit(next, o.commitMessage(next.String(), opts), opts); err != nil {
		return nil, err
	}

	if err := hook.Run(ctx, post, o.repo.Path(), current, next); err != nil {
		return nil, err
	}

	o.cache.Clear()
	return &next, nil
}

// hookLists resolves the pre/post hook lists for profile, falling back to
// the unconditional lists when profile is empty or unknown.
func (o *Orchestrator) hookLists(profile string, defaultPre, defaultPost []string) ([]string, []string) {
	if profile == "" {
		return defaultPre, defaultPost
	}
	if p, ok := o.settings.BumpProfiles[profile]; ok {
		return p.Pre, p.Post
	}
	return defaultPre, defaultPost
}

// resolvePath joins a repo-relative changelog path with the repository
// root, leaving an already-absolute path untouched.
func (o *Orchestrator) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(o.repo.Path(), path)
}

func (o *Orchestrator) writeChangelog(entries []walker.Entry, next tag.Tag, path string) error {
	path = o.resolvePath(path)
	releases, err := changelog.Build(entries, o.settings, changelog.BuildOptions{
		IgnoreMergeCommits: o.settings.IgnoreMergeCommits,
		IgnoreFixupCommits: o.settings.IgnoreFixupCommits,
	})
	if err != nil {
		return err
	}
	releases[0].Version = oid.NewTag(next)

	var remote *changelog.RemoteContext
	if o.settings.Changelog.Remote != "" {
		remote = &changelog.RemoteContext{
			Remote:     o.settings.Changelog.Remote,
			Owner:      o.settings.Changelog.Owner,
			Repository: o.settings.Changelog.Repository,
		}
	}
	typeOrder, _ := o.settings.EffectiveCommitTypes()
	markdown := changelog.Render(releases[0], typeOrder, remote)
	return changelog.WriteRelease(path, markdown)
}

// CreatePackageVersion implements the per-package monorepo bump (§4.8).
func (o *Orchestrator) CreatePackageVersion(ctx context.Context, name string, opts Options) (*tag.Tag, error) {
	if err := o.preChecks(); err != nil {
		return nil, err
	}

	pkg, ok := o.settings.Packages[name]
	if !ok {
		return nil, &UnknownPackageError{Name: name}
	}

	next, entries, current, _, err := o.computePackageNext(name, pkg, opts)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		fmt.Println(next.String())
		return &next, nil
	}

	changelogPath := pkg.ChangelogPath
	if changelogPath == "" {
		changelogPath = fmt.Sprintf("%s/CHANGELOG.md", pkg.Path)
	}
	if !o.settings.DisableChangelog {
		if err := o.writeChangelog(entries, next, changelogPath); err != nil {
			return nil, err
		}
	}

	pre, post := o.packageHookLists(pkg, opts.HookProfile)
	if err := hook.Run(ctx, pre, o.resolvePath(pkg.Path), current, next); err != nil {
		return nil, o.stashOnFailure(next, err)
	}

	if err := o.tagAndCommit(next, o.commitMessage(next.String(), opts), opts); err != nil {
		return nil, err
	}

	if err := hook.Run(ctx, post, o.resolvePath(pkg.Path), current, next); err != nil {
		return nil, err
	}

	o.cache.Clear()
	return &next, nil
}

func (o *Orchestrator) packageHookLists(pkg config.PackageConfig, profile string) ([]string, []string) {
	if profile != "" {
		if p, ok := pkg.BumpProfiles[profile]; ok {
			return p.Pre, p.Post
		}
		if p, ok := o.settings.BumpProfiles[profile]; ok {
			return p.Pre, p.Post
		}
	}
	pre := pkg.PreBumpHooks
	if pre == nil {
		pre = o.settings.PrePackageBumpHooks
	}
	post := pkg.PostBumpHooks
	if post == nil {
		post = o.settings.PostPackageBumpHooks
	}
	return pre, post
}

// computePackageNext resolves one package's next tag and its commit range,
// without writing anything, shared by CreatePackageVersion and
// CreateMonorepoVersion's per-package pass.
func (o *Orchestrator) computePackageNext(name string, pkg config.PackageConfig, opts Options) (next tag.Tag, entries []walker.Entry, current tag.Tag, hasCurrent bool, err error) {
	current, hasCurrent, err = o.cache.LatestTag(&name, opts.IncludePreRelease)
	if err != nil {
		return tag.Tag{}, nil, tag.Tag{}, false, err
	}
	sep := o.settings.MonorepoVersionSeparator
	var prefix *string
	if o.settings.TagPrefix != "" {
		prefix = &o.settings.TagPrefix
	}
	if !hasCurrent {
		current = tag.Tag{Package: &name, Separator: &sep, Prefix: prefix, Version: semver.New(0, 0, 0, "", "")}
	}

	filter, err := pathfilter.Compile(pkg.Path, pkg.Include, pkg.Ignore)
	if err != nil {
		return tag.Tag{}, nil, tag.Tag{}, false, err
	}

	entries, err = o.walker.CommitsForPackage(rangeSpec(current, hasCurrent), filter)
	if err != nil {
		return tag.Tag{}, nil, tag.Tag{}, false, err
	}

	_, types := o.settings.EffectiveCommitTypes()
	next, err = resolveNext(current, opts.Increment, commitInfosFrom(entries), types)
	if err != nil {
		return tag.Tag{}, nil, tag.Tag{}, false, err
	}
	next = applyOverrides(next, opts.Prerelease, opts.BuildMetadata)

	if !next.Version.GreaterThan(current.Version) {
		return tag.Tag{}, nil, tag.Tag{}, false, &NotGreaterError{Current: current.Version.String(), Next: next.Version.String()}
	}
	return next, entries, current, hasCurrent, nil
}

// CreateMonorepoVersion implements the global monorepo bump (§4.8): each
// package's next version is computed and its changelog written, the maximum
// public-API package increment is combined with the history-derived global
// increment, and everything lands in one commit plus one tag per package
// (and, if configured, one aggregate global tag).
func (o *Orchestrator) CreateMonorepoVersion(ctx context.Context, opts Options) (global *tag.Tag, perPackage map[string]*tag.Tag, err error) {
	if err := o.preChecks(); err != nil {
		return nil, nil, err
	}

	names := o.settings.SortedPackageNames()
	perPackage = make(map[string]*tag.Tag, len(names))
	combined := bump.KindNone
	var packagePaths []string
	for _, name := range names {
		packagePaths = append(packagePaths, o.settings.Packages[name].Path)
	}

	type pending struct {
		name    string
		pkg     config.PackageConfig
		next    tag.Tag
		entries []walker.Entry
		current tag.Tag
	}
	var work []pending

	for _, name := range names {
		pkg := o.settings.Packages[name]
		next, entries, current, _, err := o.computePackageNext(name, pkg, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("package %s: %w", name, err)
		}
		work = append(work, pending{name: name, pkg: pkg, next: next, entries: entries, current: current})
		if pkg.PublicAPI {
			combined = bump.Max(combined, incrementKindOf(current, next))
		}
	}

	globalCurrent, hasGlobal, err := o.cache.LatestTag(nil, opts.IncludePreRelease)
	if err != nil {
		return nil, nil, err
	}
	if !hasGlobal {
		globalCurrent = tag.Tag{Version: semver.New(0, 0, 0, "", "")}
	}
	globalEntries, err := o.walker.CommitsForMonorepoGlobal(rangeSpec(globalCurrent, hasGlobal), packagePaths)
	if err != nil {
		return nil, nil, err
	}
	_, types := o.settings.EffectiveCommitTypes()
	historyKind, histErr := bump.VersionIncrementFromCommitHistory(globalCurrent.Version.Major() == 0, commitInfosFrom(globalEntries), types)
	if histErr != nil {
		historyKind = bump.KindNone
	}
	finalKind := bump.Max(historyKind, combined)
	if finalKind == bump.KindNone {
		return nil, nil, bump.ErrNoCommitFound
	}
	nextGlobal := applyIncrement(globalCurrent, finalKind)
	nextGlobal = applyOverrides(nextGlobal, opts.Prerelease, opts.BuildMetadata)

	if opts.DryRun {
		fmt.Println(nextGlobal.String())
		for _, w := range work {
			fmt.Printf("%s: %s\n", w.name, w.next.String())
		}
		return &nextGlobal, nil, nil
	}

	if !o.settings.DisableChangelog {
		for _, w := range work {
			changelogPath := w.pkg.ChangelogPath
			if changelogPath == "" {
				changelogPath = fmt.Sprintf("%s/CHANGELOG.md", w.pkg.Path)
			}
			if err := o.writeChangelog(w.entries, w.next, changelogPath); err != nil {
				return nil, nil, err
			}
		}
		if err := o.writeChangelog(globalEntries, nextGlobal, o.settings.Changelog.Path); err != nil {
			return nil, nil, err
		}
	}

	if err := hook.Run(ctx, o.settings.PreBumpHooks, o.repo.Path(), globalCurrent, nextGlobal); err != nil {
		return nil, nil, o.stashOnFailure(nextGlobal, err)
	}

	if err := o.stageAndCommit(o.commitMessage(nextGlobal.String(), opts)); err != nil {
		return nil, nil, err
	}

	if o.settings.GenerateMonoRepositoryGlobalTag {
		if err := o.createTag(nextGlobal, opts); err != nil {
			return nil, nil, err
		}
	}

	for _, w := range work {
		next := w.next
		if err := o.createTag(next, opts); err != nil {
			return nil, nil, err
		}
		perPackage[w.name] = &next
	}

	if err := hook.Run(ctx, o.settings.PostBumpHooks, o.repo.Path(), globalCurrent, nextGlobal); err != nil {
		return nil, nil, err
	}
	for _, w := range work {
		_, post := o.packageHookLists(w.pkg, opts.HookProfile)
		if err := hook.Run(ctx, post, o.resolvePath(w.pkg.Path), w.current, w.next); err != nil {
			return nil, nil, err
		}
	}

	o.cache.Clear()
	return &nextGlobal, perPackage, nil
}

// incrementKindOf classifies the magnitude of the bump from current to next
// by comparing their version components directly (used where next was
// computed from an explicit increment rather than a bump.Kind value).
func incrementKindOf(current, next tag.Tag) bump.Kind {
	switch next.GetIncrementFrom(current) {
	case tag.IncrementMajor:
		return bump.KindMajor
	case tag.IncrementMinor:
		return bump.KindMinor
	case tag.IncrementPatch:
		return bump.KindPatch
	default:
		return bump.KindNone
	}
}
