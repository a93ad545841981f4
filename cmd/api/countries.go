package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shaardie/emissions-api/internal/emissions"
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List supported country codes",
	Long:  "Print every country code accepted by the country filter with its bounding box.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		table, err := emissions.LoadCountryTable()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tNAME\tMIN LON\tMIN LAT\tMAX LON\tMAX LAT")
		for _, e := range table.Entries() {
			fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%.4f\t%.4f\n",
				e.Code, e.Name, e.Bounds.MinLon, e.Bounds.MinLat, e.Bounds.MaxLon, e.Bounds.MaxLat)
		}
		return w.Flush()
	},
}

func init() { rootCmd.AddCommand(countriesCmd) }
