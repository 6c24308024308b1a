package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// migrateCmd creates the events_to_process table when it does not exist.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the work item table",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.log.Sync()

		_, closeStore, err := a.openStore(cmd.Context(), true)
		if err != nil {
			return fmt.Errorf("failed to migrate work item store: %w", err)
		}
		closeStore()
		a.log.Info("Work item table ready")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
