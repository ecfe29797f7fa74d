package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ustudio/datadog-logger/internal/app"
	"github.com/ustudio/datadog-logger/internal/config"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

var (
	configPath string
	envFile    string
)

// AppOptions are passed to every app.New call made by commands.
var AppOptions []app.Option

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "ddlogger",
	Short: "Forward error log records to the Datadog Events API",
	Long: `ddlogger turns error-and-above log records into Datadog events.

Records written through the configured logger (and its descendants) are
translated into events with the record message as title, the rendered
record as text, and the configured tags and mentions attached.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ReadEnvFile(envFile); err != nil {
			return fmt.Errorf("reading env file: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ddlogger %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./ddlogger.yaml", "path to config (json or yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file with DD_API_KEY/DD_APP_KEY/DD_SITE")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command; ctx cancellation stops long-running commands.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
