package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ecostats/ecostats/internal/bea"
)

var beaCmd = &cobra.Command{
	Use:   "bea",
	Short: "Fetch data from the BEA API",
}

var (
	beaFreq string
	beaYear string
)

var beaNIPACmd = &cobra.Command{
	Use:   "nipa <table-name>",
	Short: "Fetch a NIPA table (e.g. T10101 for GDP)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := bea.NewClient(newFetcher(), cfg.BEA.Key)
		result, err := client.NIPAData(cmd.Context(), args[0], beaFreq, beaYear)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, result)
	},
}

var (
	beaLineCode string
	beaGeoFips  string
)

var beaRegionalCmd = &cobra.Command{
	Use:   "regional <table-name>",
	Short: "Fetch regional data (e.g. CAINC1 county income)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := bea.NewClient(newFetcher(), cfg.BEA.Key)
		result, err := client.RegionalData(cmd.Context(), args[0], beaLineCode, beaGeoFips, beaYear)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, result)
	},
}

var beaParamsCmd = &cobra.Command{
	Use:   "params <dataset>",
	Short: "List a dataset's request parameters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := bea.NewClient(newFetcher(), cfg.BEA.Key)
		params, err := client.ParameterList(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, params)
	},
}

func init() {
	beaNIPACmd.Flags().StringVar(&beaFreq, "freq", "A", "frequency (A, Q, or M)")
	beaNIPACmd.Flags().StringVar(&beaYear, "year", "X", "year list or X for all")

	beaRegionalCmd.Flags().StringVar(&beaLineCode, "line", "1", "table line code")
	beaRegionalCmd.Flags().StringVar(&beaGeoFips, "geo", "STATE", "geography (STATE, COUNTY, or FIPS list)")
	beaRegionalCmd.Flags().StringVar(&beaYear, "year", "LAST5", "year list or LAST5/LAST10/ALL")

	beaCmd.AddCommand(beaNIPACmd)
	beaCmd.AddCommand(beaRegionalCmd)
	beaCmd.AddCommand(beaParamsCmd)
	rootCmd.AddCommand(beaCmd)
}
