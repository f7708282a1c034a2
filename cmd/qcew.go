package main

import (
	"encoding/csv"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ecostats/ecostats/internal/bls/qcew"
)

var qcewCmd = &cobra.Command{
	Use:   "qcew",
	Short: "Fetch QCEW employment and wage data slices",
	Long:  "Pulls industry, area, and establishment-size slices from the QCEW open data API. Unpublished quarters are skipped.",
}

var (
	qcewStartYear int
	qcewEndYear   int
	qcewQuarters  []int
)

var qcewIndustryCmd = &cobra.Command{
	Use:   "industry <naics-code>",
	Short: "Fetch an industry slice (NAICS code, e.g. 10 for total)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := qcew.NewClient(newFetcher(), newCache())
		rows, err := client.Industry(cmd.Context(), args[0], qcewStartYear, qcewEndYear, qcewQuarters)
		if err != nil {
			return err
		}
		return writeSliceCSV(rows)
	},
}

var qcewAreaCmd = &cobra.Command{
	Use:   "area <fips-code>",
	Short: "Fetch an area slice (FIPS code, e.g. 26000 for Michigan)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := qcew.NewClient(newFetcher(), newCache())
		rows, err := client.Area(cmd.Context(), args[0], qcewStartYear, qcewEndYear, qcewQuarters)
		if err != nil {
			return err
		}
		return writeSliceCSV(rows)
	},
}

var qcewSizeCmd = &cobra.Command{
	Use:   "size <size-code>",
	Short: "Fetch an establishment size slice (published for Q1 only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := qcew.NewClient(newFetcher(), newCache())
		rows, err := client.Size(cmd.Context(), args[0], qcewStartYear, qcewEndYear)
		if err != nil {
			return err
		}
		return writeSliceCSV(rows)
	},
}

// writeSliceCSV re-emits slice rows as CSV with a stable header order.
func writeSliceCSV(rows []map[string]string) error {
	if len(rows) == 0 {
		return nil
	}

	header := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		header = append(header, col)
	}
	sort.Strings(header)

	w := csv.NewWriter(os.Stdout)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		rec := make([]string, len(header))
		for i, col := range header {
			rec[i] = row[col]
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func init() {
	for _, c := range []*cobra.Command{qcewIndustryCmd, qcewAreaCmd, qcewSizeCmd} {
		c.Flags().IntVar(&qcewStartYear, "start", 0, "start year")
		c.Flags().IntVar(&qcewEndYear, "end", 0, "end year")
		_ = c.MarkFlagRequired("start")
		_ = c.MarkFlagRequired("end")
	}
	qcewIndustryCmd.Flags().IntSliceVar(&qcewQuarters, "quarters", nil, "quarters to fetch (default all)")
	qcewAreaCmd.Flags().IntSliceVar(&qcewQuarters, "quarters", nil, "quarters to fetch (default all)")

	qcewCmd.AddCommand(qcewIndustryCmd)
	qcewCmd.AddCommand(qcewAreaCmd)
	qcewCmd.AddCommand(qcewSizeCmd)
	rootCmd.AddCommand(qcewCmd)
}
