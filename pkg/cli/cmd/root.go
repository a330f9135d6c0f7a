// Package cmd implements the nocodb-cli command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rzbill/nocodb-cli/pkg/cli/format"
	"github.com/rzbill/nocodb-cli/pkg/config"
	"github.com/rzbill/nocodb-cli/pkg/log"
	"github.com/rzbill/nocodb-cli/pkg/version"
)

// Per-invocation overrides, highest precedence in the effective config.
var (
	flagBaseURL     string
	flagToken       string
	flagBaseID      string
	flagWorkspaceID string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nocodb-cli",
	Short: "nocodb-cli - command-line client for NocoDB",
	Long: `nocodb-cli is a command-line client for NocoDB. It manages named
workspace profiles with per-workspace aliases, and performs bulk row
operations (create, update, delete, upsert) against tables.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Help()
			return
		}
	},
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		format.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config-dir", "", "config directory (default is $HOME/.nocodb-cli)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "override the workspace base URL")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "override the API token")
	rootCmd.PersistentFlags().StringVar(&flagBaseID, "base-id", "", "override the default base id")
	rootCmd.PersistentFlags().StringVar(&flagWorkspaceID, "workspace-id", "", "override the remote workspace id")

	// config-dir and verbose flow through viper so the flag and its
	// environment variables share one lookup: flag > env > default.
	viper.SetEnvPrefix("NOCODB")
	viper.AutomaticEnv() // read in environment variables that match
	viper.BindPFlag("config-dir", rootCmd.PersistentFlags().Lookup("config-dir"))
	viper.BindEnv("config-dir", config.EnvConfigDir, config.EnvConfigDirFallback)
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(newWorkspaceCmd())
	rootCmd.AddCommand(newAliasCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newRowsCmd())
	rootCmd.AddCommand(newBasesCmd())
	rootCmd.AddCommand(newTablesCmd())
}

// cliLogger returns the logger for command execution, honoring --verbose and
// NOCODB_VERBOSE.
func cliLogger() log.Logger {
	logger := log.GetDefaultLogger()
	if viper.GetBool("verbose") {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// newConfigManager constructs the configuration manager for this invocation.
func newConfigManager() (*config.Manager, error) {
	opts := []config.Option{config.WithLogger(cliLogger().WithComponent("config"))}
	if dir := viper.GetString("config-dir"); dir != "" {
		opts = append(opts, config.WithDir(dir))
	}
	mgr, err := config.NewManager(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return mgr, nil
}
