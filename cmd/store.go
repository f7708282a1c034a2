package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect locally stored observations",
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "Summarize stored series",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		series, err := st.ListSeries(ctx)
		if err != nil {
			return err
		}
		if len(series) == 0 {
			fmt.Fprintln(os.Stderr, "No stored series.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SERIES\tSOURCE\tROWS\tYEARS")
		for _, s := range series {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d-%d\n", s.SeriesID, s.Source, s.Rows, s.FirstYear, s.LastYear)
		}
		return w.Flush()
	},
}

var storeObsCmd = &cobra.Command{
	Use:   "obs <series-id>",
	Short: "Show stored observations for a series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		rows, err := st.Observations(ctx, args[0])
		if err != nil {
			return err
		}
		return writeObservations(rows, storeOutput, storeFormat)
	},
}

var (
	storeOutput  string
	storeFormat  string
	historyLimit int
)

var storeHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent save batches",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		logs, err := st.SyncHistory(ctx, historyLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SYNCED\tSOURCE\tROWS\tID")
		for _, l := range logs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", l.SyncedAt.Format("2006-01-02 15:04:05"), l.Source, l.Rows, l.ID)
		}
		return w.Flush()
	},
}

func init() {
	storeObsCmd.Flags().StringVarP(&storeOutput, "output", "o", "", "write to file instead of stdout")
	storeObsCmd.Flags().StringVar(&storeFormat, "format", "csv", "output file format (csv or xlsx)")

	storeHistoryCmd.Flags().IntVar(&historyLimit, "limit", 20, "max batches to show")

	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeObsCmd)
	storeCmd.AddCommand(storeHistoryCmd)
	rootCmd.AddCommand(storeCmd)
}
