package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ecostats/ecostats/internal/census"
)

var censusCmd = &cobra.Command{
	Use:   "census",
	Short: "Fetch data from the Census Bureau API",
}

var (
	censusDataset    string
	censusVars       []string
	censusFor        string
	censusIn         string
	censusYear       string
	censusPredicates []string
)

var censusGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Run a data query",
	RunE: func(cmd *cobra.Command, _ []string) error {
		predicates, err := parseFilters(censusPredicates)
		if err != nil {
			return err
		}

		client := census.NewClient(newFetcher(), cfg.Census.Key)
		rows, err := client.Data(cmd.Context(), census.Query{
			Dataset:    censusDataset,
			Variables:  censusVars,
			GeoFor:     censusFor,
			GeoIn:      censusIn,
			Year:       censusYear,
			Predicates: predicates,
		})
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, rows)
	},
}

var censusDatasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List cataloged datasets",
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tPATH\tTIMESERIES\tNAME")
		for _, key := range census.ListDatasets() {
			info, _ := census.Dataset(key)
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", key, info.Path, info.Timeseries, info.Name)
		}
		return w.Flush()
	},
}

func init() {
	censusGetCmd.Flags().StringVar(&censusDataset, "dataset", "acs5", "dataset key or literal path")
	censusGetCmd.Flags().StringSliceVar(&censusVars, "vars", nil, "variable codes to retrieve")
	censusGetCmd.Flags().StringVar(&censusFor, "for", "", `geography clause (e.g. "state:*")`)
	censusGetCmd.Flags().StringVar(&censusIn, "in", "", "containing geography clause")
	censusGetCmd.Flags().StringVar(&censusYear, "year", "", "vintage year")
	censusGetCmd.Flags().StringArrayVar(&censusPredicates, "predicate", nil, "extra name=value predicate (repeatable)")
	_ = censusGetCmd.MarkFlagRequired("vars")
	_ = censusGetCmd.MarkFlagRequired("for")

	censusCmd.AddCommand(censusGetCmd)
	censusCmd.AddCommand(censusDatasetsCmd)
	rootCmd.AddCommand(censusCmd)
}
