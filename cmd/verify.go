package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cocogitto-go/cocogitto/internal/commitverify"
	"github.com/cocogitto-go/cocogitto/internal/config"
	"github.com/cocogitto-go/cocogitto/internal/gitrepo"
	"github.com/cocogitto-go/cocogitto/internal/tag"
	"github.com/cocogitto-go/cocogitto/internal/walker"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [message]",
	Short: "Check that a commit message follows the configured conventional-commit grammar",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().String("file", "", "read the message from this file instead of the argument (e.g. .git/COMMIT_EDITMSG)")
	verifyCmd.Flags().String("range", "", "verify every commit in this revspec instead of a single message")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	_, types := settings.EffectiveCommitTypes()
	allowed := make(map[string]bool, len(types))
	for name := range types {
		allowed[name] = true
	}

	rangeSpec, _ := cmd.Flags().GetString("range")
	if rangeSpec != "" {
		return verifyRange(settings, allowed, rangeSpec)
	}

	message, err := singleMessage(cmd, args)
	if err != nil {
		return err
	}
	if _, err := commitverify.Verify(message, allowed, settings.IgnoreMergeCommits); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func singleMessage(cmd *cobra.Command, args []string) (string, error) {
	file, _ := cmd.Flags().GetString("file")
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", file, err)
		}
		return string(data), nil
	}
	if len(args) == 1 {
		return args[0], nil
	}
	return "", fmt.Errorf("verify requires a message argument, --file, or --range")
}

func verifyRange(settings config.Settings, allowed map[string]bool, rangeSpec string) error {
	repo, err := gitrepo.Open(viper.GetString("repo"))
	if err != nil {
		return fmt.Errorf("opening repository: %w", err)
	}
	cfg := tag.ParseConfig{
		Prefix:       settings.TagPrefix,
		Separator:    settings.MonorepoVersionSeparator,
		PackageNames: settings.SortedPackageNames(),
	}
	cache := gitrepo.NewTagCache(repo, cfg)
	resolver := gitrepo.NewResolver(repo, cache, cfg)
	rng, err := resolver.ParseRevspec(rangeSpec)
	if err != nil {
		return err
	}

	entries, err := walker.New(repo, resolver).WalkRange(rng)
	if err != nil {
		return err
	}

	var failures int
	for _, entry := range entries {
		if _, err := commitverify.Verify(entry.Commit.Message, allowed, settings.IgnoreMergeCommits); err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "%s: %v\n", entry.Commit.Hash.String()[:7], err)
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d commit(s) failed verification", failures)
	}
	fmt.Println("ok")
	return nil
}
