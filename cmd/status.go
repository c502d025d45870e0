package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"provision/internal/config"
	"provision/internal/inputs"
	"provision/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status <git_url> <app_name> <app_folder> <db_name> <db_user>",
	Short: "Show the recorded run for this deployment target",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ec, err := inputs.ResolveTarget(args)
		if err != nil {
			return err
		}
		settings := config.Load()
		store := state.New(settings.StateDir)

		rec, err := store.Load(ec.Fingerprint())
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Printf("No recorded run for fingerprint %s.\n", ec.Fingerprint())
			return nil
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(rec)
		}

		fmt.Printf("Run %s (fingerprint %s, started %s)\n",
			rec.RunID, rec.Fingerprint, rec.CreatedAt.Format("2006-01-02 15:04:05 MST"))
		for _, res := range rec.Results {
			line := fmt.Sprintf("  %-20s %s", res.Action, res.Status)
			if res.Error != "" {
				line += "  " + res.Error
			}
			fmt.Println(line)
		}
		counts := rec.Counts()
		fmt.Printf("succeeded %d, skipped %d, failed %d, unreached %d\n",
			counts[state.StatusSucceeded], counts[state.StatusSkipped],
			counts[state.StatusFailed], counts[state.StatusUnreached])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
