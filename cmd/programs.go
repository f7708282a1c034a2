package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ecostats/ecostats/internal/bls/program"
)

var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "Inspect the BLS survey program registry",
}

var programsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered survey programs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		names := program.List()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tNAME")
		for _, code := range program.Codes() {
			fmt.Fprintf(w, "%s\t%s\n", code, names[code])
		}
		return w.Flush()
	},
}

var programsShowCmd = &cobra.Command{
	Use:   "show <code>",
	Short: "Show a program's series ID layout and mapping files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := program.Get(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s: %s\n", p.Code, p.Name)
		if p.Description != "" {
			fmt.Println(p.Description)
		}
		fmt.Printf("series ID length: %d\n\n", p.IDLength())

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FIELD\tPOSITIONS\tDESCRIPTION")
		for _, f := range p.Fields {
			fmt.Fprintf(w, "%s\t%d-%d\t%s\n", f.Name, f.Start, f.End, f.Description)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if len(p.MappingFiles) > 0 {
			fmt.Println("\nmapping files:")
			for _, m := range p.MappingFiles {
				fmt.Printf("  %s.%s\n", strings.ToLower(p.Code), m)
			}
		}
		return nil
	},
}

func init() {
	programsCmd.AddCommand(programsListCmd)
	programsCmd.AddCommand(programsShowCmd)
	rootCmd.AddCommand(programsCmd)
}
