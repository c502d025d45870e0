package cmd

import "github.com/spf13/cobra"

var planCmd = &cobra.Command{
	Use:   "plan <git_url> <app_name> <app_folder> <db_name> <db_user>",
	Short: "Show which actions a run would apply, without applying",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeRun(cmd.Context(), args, true)
	},
}

func init() {
	planCmd.Flags().StringVar(&flagProfile, "profile", "", "Optional YAML deployment profile")
	rootCmd.AddCommand(planCmd)
}
