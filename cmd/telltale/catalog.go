package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marek-kar/telltale/pkg/analysis"
)

func newCatalogCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Validate the indicator catalog and list its vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(flags)
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Catalog %s: %d indicators, %d groups\n\n", a.catalog.Version(), len(a.catalog.Entries()), len(a.catalog.Groups()))

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\tTERM\tGROUP\tALIASES\n")
			for _, e := range a.catalog.Entries() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Term, a.catalog.Group(e.Group).Label, strings.Join(e.Aliases, ", "))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "\nDecision table:\n")
			tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "RULE\tSTATE\tSEVERITY\n")
			for _, r := range analysis.DefaultEngine().Rules() {
				fmt.Fprintf(tw, "%s\t%s (%s)\t%s (%s)\n", r.Name, r.State, a.catalog.StateLabel(r.State), r.Severity, a.catalog.SeverityLabel(r.Severity))
			}
			return tw.Flush()
		},
	}
}
