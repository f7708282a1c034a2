package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ecostats/ecostats/internal/fred"
)

var fredCmd = &cobra.Command{
	Use:   "fred",
	Short: "Fetch series from the FRED API",
}

var fredSeriesCmd = &cobra.Command{
	Use:   "series <series-id>",
	Short: "Show series metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := fred.NewClient(newFetcher(), cfg.FRED.Key)
		info, err := client.Series(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, info)
	},
}

var (
	fredStart string
	fredEnd   string
	fredUnits string
	fredFreq  string
)

var fredObsCmd = &cobra.Command{
	Use:   "obs <series-id>",
	Short: "Fetch series observations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := fred.NewClient(newFetcher(), cfg.FRED.Key)
		rows, err := client.Observations(cmd.Context(), args[0], fred.ObservationOptions{
			Start:     fredStart,
			End:       fredEnd,
			Units:     fredUnits,
			Frequency: fredFreq,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tVALUE")
		for _, o := range rows {
			value := "."
			if o.Value != nil {
				value = fmt.Sprintf("%g", *o.Value)
			}
			fmt.Fprintf(w, "%s\t%s\n", o.Date.Format("2006-01-02"), value)
		}
		return w.Flush()
	},
}

var fredLimit int

var fredSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search series by full text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := fred.NewClient(newFetcher(), cfg.FRED.Key)
		results, err := client.SearchSeries(cmd.Context(), strings.Join(args, " "), fredLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tFREQUENCY\tUNITS")
		for _, s := range results {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Frequency, s.Units)
		}
		return w.Flush()
	},
}

func init() {
	fredObsCmd.Flags().StringVar(&fredStart, "start", "", "observation start date (YYYY-MM-DD)")
	fredObsCmd.Flags().StringVar(&fredEnd, "end", "", "observation end date (YYYY-MM-DD)")
	fredObsCmd.Flags().StringVar(&fredUnits, "units", "", "unit transform (e.g. pc1, chg)")
	fredObsCmd.Flags().StringVar(&fredFreq, "freq", "", "frequency aggregation (e.g. q, a)")

	fredSearchCmd.Flags().IntVar(&fredLimit, "limit", 20, "max results")

	fredCmd.AddCommand(fredSeriesCmd)
	fredCmd.AddCommand(fredObsCmd)
	fredCmd.AddCommand(fredSearchCmd)
	rootCmd.AddCommand(fredCmd)
}
