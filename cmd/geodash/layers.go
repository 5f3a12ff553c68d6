package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/geodash/pkg/store"
	"github.com/dmitrymomot/geodash/svc/geodata"
)

// load fetches every layer that has a source.
func (a *app) load(cmd *cobra.Command) error {
	return a.dash.Geo.LoadAll(cmd.Context())
}

// layersCmd lists layers; the table is printed even when a load fails.
func (a *app) layersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layers",
		Short: "List map layers and their load state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loadErr := a.load(cmd)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tVISIBLE\tFEATURES")
			for _, l := range a.dash.Geo.Layers() {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%d\n", l.ID, l.Name, l.Visible, l.Data.Len())
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return loadErr
		},
	}
}

// filterFlags holds the filter flags of the features command.
type filterFlags struct {
	municipality []string
	municode     []string
	areaMin      string
	areaMax      string
}

// patch sets every filter field, so unset flags clear their filter.
func (f filterFlags) patch() geodata.FilterPatch {
	return geodata.FilterPatch{
		Municipality: store.Set(geodata.NewSet(f.municipality...)),
		Municode:     store.Set(geodata.NewSet(f.municode...)),
		AreaMin:      store.Set(f.areaMin),
		AreaMax:      store.Set(f.areaMax),
	}
}

// featuresCmd prints the filtered collection as GeoJSON or a table.
func (a *app) featuresCmd() *cobra.Command {
	var (
		ff      filterFlags
		asTable bool
	)
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Print municipality features matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			a.dash.Geo.SetFilters(ff.patch())
			fc := a.dash.Geo.FilteredFeatures()
			if !asTable || fc == nil {
				return printJSON(cmd.OutOrStdout(), fc)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MUNICIPALITY\tMUNICODE\tSQ_MILES")
			for _, ft := range fc.Features {
				area, _ := ft.Properties.SquareMiles()
				fmt.Fprintf(tw, "%s\t%s\t%.2f\n", ft.Properties.Municipality(), ft.Properties.Municode(), area)
			}
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&ff.municipality, "municipality", nil, "keep only these municipalities")
	f.StringSliceVar(&ff.municode, "municode", nil, "keep only these municipal codes")
	f.StringVar(&ff.areaMin, "area-min", "", "minimum area in square miles")
	f.StringVar(&ff.areaMax, "area-max", "", "maximum area in square miles")
	f.BoolVar(&asTable, "table", false, "print a table instead of GeoJSON")
	return cmd
}

// facetsCmd prints the distinct municipality names and codes.
func (a *app) facetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "List the distinct municipalities and codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string][]string{
				"municipalities": a.dash.Geo.UniqueMunicipalities(),
				"municodes":      a.dash.Geo.UniqueMunicodes(),
			})
		},
	}
}
