package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cocogitto-go/cocogitto/internal/changelog"
	"github.com/cocogitto-go/cocogitto/internal/gitrepo"
	"github.com/cocogitto-go/cocogitto/internal/tag"
	"github.com/cocogitto-go/cocogitto/internal/walker"
)

var changelogCmd = &cobra.Command{
	Use:   "changelog [range]",
	Short: "Render the changelog for a commit range without bumping a version",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChangelog,
}

func init() {
	changelogCmd.Flags().Bool("write", false, "merge the rendered release into the configured changelog file instead of printing it")
	changelogCmd.Flags().Bool("at", false, "render to the terminal through the glamour pager instead of plain markdown")
	rootCmd.AddCommand(changelogCmd)
}

func runChangelog(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	repo, err := gitrepo.Open(viper.GetString("repo"))
	if err != nil {
		return fmt.Errorf("opening repository: %w", err)
	}

	rangeSpec := ".."
	if len(args) == 1 {
		rangeSpec = args[0]
	}

	cfg := tag.ParseConfig{
		Prefix:       settings.TagPrefix,
		Separator:    settings.MonorepoVersionSeparator,
		PackageNames: settings.SortedPackageNames(),
	}
	cache := gitrepo.NewTagCache(repo, cfg)
	resolver := gitrepo.NewResolver(repo, cache, cfg)

	entries, err := walker.New(repo, resolver).Revwalk(rangeSpec)
	if err != nil {
		return err
	}

	releases, err := changelog.Build(entries, settings, changelog.BuildOptions{
		IgnoreMergeCommits: settings.IgnoreMergeCommits,
		IgnoreFixupCommits: settings.IgnoreFixupCommits,
	})
	if err != nil {
		return err
	}

	typeOrder, _ := settings.EffectiveCommitTypes()
	var remote *changelog.RemoteContext
	if settings.Changelog.Remote != "" {
		remote = &changelog.RemoteContext{
			Remote:     settings.Changelog.Remote,
			Owner:      settings.Changelog.Owner,
			Repository: settings.Changelog.Repository,
		}
	}

	markdown := changelog.Render(releases[0], typeOrder, remote)

	write, _ := cmd.Flags().GetBool("write")
	if write {
		path := settings.Changelog.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(repo.Path(), path)
		}
		return changelog.WriteRelease(path, markdown)
	}

	preview, _ := cmd.Flags().GetBool("at")
	if preview {
		rendered, err := changelog.Preview(markdown)
		if err != nil {
			return err
		}
		fmt.Print(rendered)
		return nil
	}

	fmt.Println(markdown)
	return nil
}
