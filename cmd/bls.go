package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ecostats/ecostats/internal/bls"
	"github.com/ecostats/ecostats/internal/bls/flatfile"
	"github.com/ecostats/ecostats/internal/bls/obs"
	"github.com/ecostats/ecostats/internal/export"
)

var blsCmd = &cobra.Command{
	Use:   "bls",
	Short: "Fetch BLS time series and bulk flat files",
}

// -- bls fetch --

var (
	blsStartYear string
	blsEndYear   string
	blsCatalog   bool
	blsSave      bool
	blsOutput    string
	blsFormat    string
)

var blsFetchCmd = &cobra.Command{
	Use:   "fetch <series-id...>",
	Short: "Fetch series observations from the BLS API",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client := bls.NewClient(newFetcher(), cfg.BLS.Key)
		rows, err := client.Series(ctx, args, bls.SeriesOptions{
			StartYear: blsStartYear,
			EndYear:   blsEndYear,
			Catalog:   blsCatalog,
		})
		if err != nil {
			return err
		}

		if blsSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			n, err := st.SaveObservations(ctx, "bls-api", rows)
			if err != nil {
				return err
			}
			zap.L().Info("saved observations", zap.Int64("rows", n))
		}

		return writeObservations(rows, blsOutput, blsFormat)
	},
}

// -- bls mapping --

var blsMappingCmd = &cobra.Command{
	Use:   "mapping <program> <name>",
	Short: "Fetch a program mapping file (e.g. cu area)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := flatfile.NewClient(newFetcher(), newCache())
		rows, err := client.Mapping(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, rows)
	},
}

// -- bls series-list --

var blsFilters []string

var blsSeriesListCmd = &cobra.Command{
	Use:   "series-list <program>",
	Short: "List a program's series from its bulk series file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilters(blsFilters)
		if err != nil {
			return err
		}

		client := flatfile.NewClient(newFetcher(), newCache())
		rows, err := client.SeriesList(cmd.Context(), args[0], filters)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, rows)
	},
}

// -- bls data --

var blsDataSuffix string

var blsDataCmd = &cobra.Command{
	Use:   "data <program>",
	Short: "Fetch observations from a program's bulk data file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client := flatfile.NewClient(newFetcher(), newCache())
		rows, err := client.Observations(ctx, args[0], blsDataSuffix)
		if err != nil {
			return err
		}

		if blsSave {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			n, err := st.SaveObservations(ctx, "bls-flat-files", rows)
			if err != nil {
				return err
			}
			zap.L().Info("saved observations", zap.Int64("rows", n))
		}

		return writeObservations(rows, blsOutput, blsFormat)
	},
}

// -- bls download --

var blsDownloadCmd = &cobra.Command{
	Use:   "download <program> <file>",
	Short: "Download a raw flat file with a progress bar",
	Long:  "Downloads a LABSTAT file to disk, e.g. ecostats bls download ce data.0.AllCESSeries -o ce.data",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest := blsOutput
		if dest == "" {
			dest = fmt.Sprintf("%s.%s", args[0], args[1])
		}

		client := flatfile.NewClient(newFetcher(), newCache())
		n, err := client.Download(cmd.Context(), args[0], args[1], dest)
		if err != nil {
			return err
		}
		zap.L().Info("download complete", zap.String("path", dest), zap.Int64("bytes", n))
		return nil
	},
}

// parseFilters converts repeated column=value flags into a map.
func parseFilters(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filters := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, eris.Errorf("filter %q is not in column=value form", pair)
		}
		filters[name] = value
	}
	return filters, nil
}

// writeObservations renders rows to stdout as a table, or to a file in
// the requested format when --output is set.
func writeObservations(rows []obs.Observation, output, format string) error {
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck
		return export.Write(f, format, rows)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES\tDATE\tPERIOD\tVALUE\tFOOTNOTES")
	for _, o := range rows {
		date, value := "", ""
		if o.Date != nil {
			date = o.Date.Format("2006-01-02")
		}
		if o.Value != nil {
			value = fmt.Sprintf("%g", *o.Value)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.SeriesID, date, o.Period, value, o.FootnoteCodes)
	}
	return w.Flush()
}

func init() {
	blsFetchCmd.Flags().StringVar(&blsStartYear, "start", "", "start year")
	blsFetchCmd.Flags().StringVar(&blsEndYear, "end", "", "end year")
	blsFetchCmd.Flags().BoolVar(&blsCatalog, "catalog", false, "request catalog metadata")
	blsFetchCmd.Flags().BoolVar(&blsSave, "save", false, "save observations to the store")
	blsFetchCmd.Flags().StringVarP(&blsOutput, "output", "o", "", "write to file instead of stdout")
	blsFetchCmd.Flags().StringVar(&blsFormat, "format", "csv", "output file format (csv or xlsx)")

	blsSeriesListCmd.Flags().StringArrayVar(&blsFilters, "filter", nil, "column=value filter (repeatable)")

	blsDataCmd.Flags().StringVar(&blsDataSuffix, "file", "", `data file suffix (default "0.Current")`)
	blsDataCmd.Flags().BoolVar(&blsSave, "save", false, "save observations to the store")
	blsDataCmd.Flags().StringVarP(&blsOutput, "output", "o", "", "write to file instead of stdout")
	blsDataCmd.Flags().StringVar(&blsFormat, "format", "csv", "output file format (csv or xlsx)")

	blsDownloadCmd.Flags().StringVarP(&blsOutput, "output", "o", "", "destination path (default <program>.<file>)")

	blsCmd.AddCommand(blsFetchCmd)
	blsCmd.AddCommand(blsDownloadCmd)
	blsCmd.AddCommand(blsMappingCmd)
	blsCmd.AddCommand(blsSeriesListCmd)
	blsCmd.AddCommand(blsDataCmd)
	rootCmd.AddCommand(blsCmd)
}
