// Package cmd wires the provisioning engine to its command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"provision/internal/report"
)

var (
	jsonOutput bool
	verbosity  int
	log        zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "provision <git_url> <app_name> <app_folder> <db_name> <db_user>",
	Short: "Declarative, idempotent single-host provisioning",
	Long: `provision deploys one web application onto this host: system packages,
database, source checkout, build, vhost, services. Every step is an
idempotent action; completed steps are recorded per deployment target
so re-runs resume instead of redoing work.

Secrets are read from DB_PASSWORD / DB_ROOT_PASSWORD or prompted with
echo disabled; they are never accepted as arguments.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = report.SetupLogger(os.Stderr, verbosity)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeRun(cmd.Context(), args, flagDryRun)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output raw JSON")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity")
	rootCmd.Flags().BoolVar(&flagContinue, "continue-on-error", false, "Keep running after a failed action and report all failures")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Report what would be applied without applying")
	rootCmd.Flags().StringVar(&flagProfile, "profile", "", "Optional YAML deployment profile")
}

// Execute runs the root command, mapping failures to the documented
// exit codes: 1 input/validation, 2 failed actions, 3 internal.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
