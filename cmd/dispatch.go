package cmd

import (
	"fmt"

	"event-reconciler/feature/dispatch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dispatchVenue string
	dispatchLimit int
)

// dispatchCmd enqueues active, unlisted work items for the downstream scrapers.
var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Enqueue active work items to the redis stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.log.Sync()

		store, closeStore, err := a.openStore(ctx, false)
		if err != nil {
			return fmt.Errorf("failed to open work item store: %w", err)
		}
		defer closeStore()

		client, err := dispatch.NewClient(ctx, a.cfg.Dispatch)
		if err != nil {
			return err
		}
		defer client.Close()

		limit := a.cfg.Dispatch.BatchSize
		if dispatchLimit > 0 {
			limit = dispatchLimit
		}
		producer := dispatch.NewRedisProducer(client, a.cfg.Dispatch.Stream, a.cfg.Dispatch.MaxLen)
		res, err := dispatch.NewDispatcher(store, producer, limit, a.log).Run(ctx, dispatchVenue)
		a.log.Info("Dispatch report",
			zap.String("stream", a.cfg.Dispatch.Stream),
			zap.Int("read", res.Read),
			zap.Int("published", res.Published),
			zap.Int("failed", res.Failed))
		return err
	},
}

func init() {
	dispatchCmd.Flags().StringVar(&dispatchVenue, "venue", "", "Only dispatch this venue's items")
	dispatchCmd.Flags().IntVar(&dispatchLimit, "limit", 0, "Override dispatch.batch_size")
	RootCmd.AddCommand(dispatchCmd)
}
