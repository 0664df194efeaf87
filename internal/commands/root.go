package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/finai-dev/finai/internal/buildinfo"
	"github.com/finai-dev/finai/internal/config"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "finai",
		Short:   "Personal finance dashboard and advisor",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is normal outside local development.
			_ = godotenv.Load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.FileName, "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(
		newInitCommand(),
		newSummaryCommand(opts),
		newTxCommand(opts),
		newGoalsCommand(opts),
		newInsightsCommand(opts),
		newAlertsCommand(opts),
		newChartCommand(opts),
		newChatCommand(opts),
		newDashboardCommand(opts),
		newWatchCommand(opts),
	)

	return rootCmd
}
