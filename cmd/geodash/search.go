package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// searchCmd geocodes the joined arguments.
func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <place>",
		Short: "Geocode a place name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.dash.Geocoder.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%.6f, %.6f\n", p.DisplayName, p.Lat, p.Lon)
			return nil
		},
	}
}
