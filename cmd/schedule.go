package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ecostats/ecostats/internal/bls/schedule"
)

var (
	scheduleStartYear int
	scheduleEndYear   int
	scheduleSource    string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Scrape BLS release schedules",
	Long:  "Scrapes release dates for tracked programs (CES national, CES state, QCEW) from the BLS schedule pages.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		start, end := scheduleStartYear, scheduleEndYear
		if start == 0 {
			start = time.Now().Year()
		}
		if end == 0 {
			end = start
		}

		scraper := schedule.NewScraper(newFetcher())
		entries, err := scraper.ScrapeRange(cmd.Context(), start, end)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE\tREFERENCE\tREF DATE\tRELEASE")
		for _, e := range entries {
			if scheduleSource != "" && e.Source != scheduleSource {
				continue
			}
			refDate := ""
			if e.RefDate != nil {
				refDate = e.RefDate.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				e.Source, e.ReferencePeriod, refDate, e.ReleaseDate.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

func init() {
	scheduleCmd.Flags().IntVar(&scheduleStartYear, "start", 0, "first schedule year (default current)")
	scheduleCmd.Flags().IntVar(&scheduleEndYear, "end", 0, "last schedule year (default start)")
	scheduleCmd.Flags().StringVar(&scheduleSource, "source", "", "filter by source (ces_national, ces_state, qcew)")
	rootCmd.AddCommand(scheduleCmd)
}
