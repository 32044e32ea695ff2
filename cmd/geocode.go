package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode <place>",
	Short: "Resolve a place name to a lon,lat coordinate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("route"); err != nil {
			return err
		}

		client := newProviderClient()
		coord, err := resolveEndpoint(cmd.Context(), client, args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%.6f,%.6f\n", coord.Lon, coord.Lat)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}
