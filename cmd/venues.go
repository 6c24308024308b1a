package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var venuesJSON bool

// venuesCmd lists the active venues of the catalog.
var venuesCmd = &cobra.Command{
	Use:   "venues",
	Short: "List active venues from the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.log.Sync()

		catalog, err := a.venueLoader().Catalog(cmd.Context())
		if err != nil {
			return err
		}
		active := catalog.Active()

		if venuesJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(active)
		}
		for _, p := range active {
			a.log.Info("Venue",
				zap.String("name", p.Name),
				zap.String("timezone", p.Timezone),
				zap.String("listing_endpoint", p.ListingEndpoint))
		}
		a.log.Info("Active venues", zap.Int("count", len(active)), zap.Int("total", len(catalog.Venues)))
		return nil
	},
}

func init() {
	venuesCmd.Flags().BoolVar(&venuesJSON, "json", false, "Print venues as JSON on stdout")
	RootCmd.AddCommand(venuesCmd)
}
