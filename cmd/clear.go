package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"provision/internal/config"
	"provision/internal/inputs"
	"provision/internal/state"
)

var clearCmd = &cobra.Command{
	Use:   "clear <git_url> <app_name> <app_folder> <db_name> <db_user>",
	Short: "Drop the recorded state for this deployment target",
	Long: `Drop the recorded state for a deployment target so the next run
starts from scratch. The host itself is not touched; idempotence checks
still skip anything genuinely satisfied.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ec, err := inputs.ResolveTarget(args)
		if err != nil {
			return err
		}
		store := state.New(config.Load().StateDir)
		if err := store.Clear(ec.Fingerprint()); err != nil {
			return err
		}
		fmt.Printf("Cleared recorded state for fingerprint %s.\n", ec.Fingerprint())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
