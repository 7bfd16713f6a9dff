package cmd

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cocogitto-go/cocogitto/internal/corelog"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cocogitto",
	Short: "Conventional commit tooling: bump, verify and changelog generation",
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to cog.toml (default: <repo>/cog.toml)")
	rootCmd.PersistentFlags().StringP("repo", "r", cwd, "path to git repository")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	if err := rootCmd.MarkPersistentFlagDirname("repo"); err != nil {
		panic(err)
	}

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
}

// initConfig reads cog.toml relative to --repo unless --config overrides it,
// and ENV variables prefixed COCOGITTO_.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(viper.GetString("repo"))
		viper.SetConfigType("toml")
		viper.SetConfigName("cog")
	}

	viper.SetEnvPrefix("COCOGITTO")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func initLogging() {
	if viper.GetBool("verbose") {
		corelog.SetLevel(log.DebugLevel)
	}
}

// configPath returns the cog.toml path to load: --config verbatim, or
// <repo>/cog.toml. A caller that finds the file missing falls back to
// config.Default() rather than treating it as fatal; cog.toml is optional.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return viper.GetString("repo") + string(os.PathSeparator) + "cog.toml"
}
