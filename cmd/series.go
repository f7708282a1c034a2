package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ecostats/ecostats/internal/bls/period"
	"github.com/ecostats/ecostats/internal/bls/series"
)

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Parse and build BLS series IDs",
}

var seriesParseCmd = &cobra.Command{
	Use:   "parse <series-id>",
	Short: "Decompose a series ID into its named fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := series.Parse(args[0])
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, fields)
	},
}

var seriesBuildCmd = &cobra.Command{
	Use:   "build <program> [field=value...]",
	Short: "Construct a series ID from named components",
	Long:  "Unspecified fields are zero-filled. Example: ecostats series build CE seasonal=S data_type=01",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		components := make(map[string]string, len(args)-1)
		for _, arg := range args[1:] {
			name, value, ok := strings.Cut(arg, "=")
			if !ok {
				return eris.Errorf("component %q is not in field=value form", arg)
			}
			components[name] = value
		}

		id, err := series.Build(args[0], components)
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var (
	resolveYear int
	resolveDay  int
)

var seriesResolveCmd = &cobra.Command{
	Use:   "resolve <period>",
	Short: "Resolve a year/period pair to its representative date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, ok := period.Resolve(resolveYear, args[0], resolveDay)
		if !ok {
			fmt.Printf("%d %s has no calendar date\n", resolveYear, args[0])
			return nil
		}
		fmt.Println(d.Format("2006-01-02"))
		return nil
	},
}

func init() {
	seriesResolveCmd.Flags().IntVar(&resolveYear, "year", 0, "observation year")
	seriesResolveCmd.Flags().IntVar(&resolveDay, "day", 1, "reference day of month")
	_ = seriesResolveCmd.MarkFlagRequired("year")

	seriesCmd.AddCommand(seriesParseCmd)
	seriesCmd.AddCommand(seriesBuildCmd)
	seriesCmd.AddCommand(seriesResolveCmd)
	rootCmd.AddCommand(seriesCmd)
}
