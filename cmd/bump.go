package cmd

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cocogitto-go/cocogitto/internal/bump"
	"github.com/cocogitto-go/cocogitto/internal/config"
	"github.com/cocogitto-go/cocogitto/internal/gitrepo"
	"github.com/cocogitto-go/cocogitto/internal/orchestrator"
)

var bumpCmd = &cobra.Command{
	Use:   "bump",
	Short: "Compute the next version from conventional commit history and tag it",
	RunE:  runBump,
}

func init() {
	bumpCmd.Flags().Bool("auto", true, "derive the increment from commit history (default)")
	bumpCmd.Flags().Bool("major", false, "force a major bump")
	bumpCmd.Flags().Bool("minor", false, "force a minor bump")
	bumpCmd.Flags().Bool("patch", false, "force a patch bump")
	bumpCmd.Flags().String("version", "", "set an explicit version instead of incrementing")
	bumpCmd.Flags().String("package", "", "bump a single configured package instead of the whole repository")
	bumpCmd.Flags().Bool("monorepo", false, "bump every configured package plus the global tag")
	bumpCmd.Flags().Bool("dry-run", false, "print the computed version without tagging or committing")
	bumpCmd.Flags().Bool("include-prerelease", false, "consider pre-release tags when looking up the current version")
	bumpCmd.Flags().String("pre-release", "", "pre-release suffix to attach to the computed version")
	bumpCmd.Flags().String("build-metadata", "", "build metadata to attach to the computed version")
	bumpCmd.Flags().String("annotated", "", "create an annotated tag with this message instead of a lightweight one")
	bumpCmd.Flags().String("hook-profile", "", "named hook profile to run instead of the default pre/post hooks")
	bumpCmd.Flags().String("skip-ci", "", "override the configured skip_ci trailer for this bump's version commit")
	rootCmd.AddCommand(bumpCmd)
}

func loadSettings() (config.Settings, error) {
	path := configPath()
	if _, err := os.Stat(path); err != nil {
		return config.Default(), nil
	}
	return config.Load(path)
}

func increment(cmd *cobra.Command) (bump.Increment, error) {
	version, _ := cmd.Flags().GetString("version")
	if version != "" {
		return bump.Manual(version), nil
	}
	if ok, _ := cmd.Flags().GetBool("major"); ok {
		return bump.Major(), nil
	}
	if ok, _ := cmd.Flags().GetBool("minor"); ok {
		return bump.Minor(), nil
	}
	if ok, _ := cmd.Flags().GetBool("patch"); ok {
		return bump.Patch(), nil
	}
	return bump.Auto(), nil
}

func runBump(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	repo, err := gitrepo.Open(viper.GetString("repo"))
	if err != nil {
		return fmt.Errorf("opening repository: %w", err)
	}

	inc, err := increment(cmd)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	includePre, _ := cmd.Flags().GetBool("include-prerelease")
	prerelease, _ := cmd.Flags().GetString("pre-release")
	build, _ := cmd.Flags().GetString("build-metadata")
	annotated, _ := cmd.Flags().GetString("annotated")
	profile, _ := cmd.Flags().GetString("hook-profile")
	skipCI, _ := cmd.Flags().GetString("skip-ci")

	opts := orchestrator.Options{
		DryRun:            dryRun,
		Increment:         inc,
		IncludePreRelease: includePre,
		Prerelease:        prerelease,
		BuildMetadata:     build,
		Annotated:         annotated,
		HookProfile:       profile,
		SkipCIOverride:    skipCI,
	}

	o := orchestrator.New(repo, settings)
	ctx := context.Background()

	monorepo, _ := cmd.Flags().GetBool("monorepo")
	packageName, _ := cmd.Flags().GetString("package")

	switch {
	case monorepo:
		global, perPackage, err := o.CreateMonorepoVersion(ctx, opts)
		if err != nil {
			return err
		}
		if global != nil && !dryRun {
			fmt.Println(global.String())
		}
		for name, next := range perPackage {
			log.Infof("%s -> %s", name, next.String())
		}
	case packageName != "":
		next, err := o.CreatePackageVersion(ctx, packageName, opts)
		if err != nil {
			return err
		}
		if !dryRun {
			fmt.Println(next.String())
		}
	default:
		next, err := o.CreateVersion(ctx, opts)
		if err != nil {
			return err
		}
		if !dryRun {
			fmt.Println(next.String())
		}
	}
	return nil
}
