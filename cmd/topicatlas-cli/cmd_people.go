package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/topicatlas/internal/query"
)

func newPersonCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "person [identity]",
		Short: "Show every topic of one person, per source",
		Long: `Shows the labels of one person for every source in the schema.

The identity must match exactly, as printed by "search". When the file holds
the same identity twice, the first row is shown.`,
		Example: `  topicatlas person "Alice Adams <alice@example.edu>"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.load()
			if err != nil {
				return err
			}
			p, ok := query.Lookup(ds, args[0])
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintf(out, "No person named %q.\n", args[0])
				return nil
			}
			fmt.Fprintln(out, p.Record.Identity)
			if p.ProfileURL != "" {
				fmt.Fprintf(out, "  profile: %s\n", p.ProfileURL)
			}
			derived := false
			for _, sv := range p.Sources {
				labels := sv.Labels.Join(", ")
				if labels == "" {
					labels = "-"
				}
				fmt.Fprintf(out, "  %s: %s\n", sv.Title, labels)
				derived = derived || (sv.Derived && !sv.Labels.Empty())
			}
			if derived && ds.Schema.DerivedNote != "" {
				fmt.Fprintf(out, "  note: %s\n", ds.Schema.DerivedNote)
			}
			return nil
		},
	}
}

func newSearchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search [text]",
		Short: "Find people whose name or contact contains text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.load()
			if err != nil {
				return err
			}
			text := ""
			if len(args) == 1 {
				text = args[0]
			}
			printPeople(cmd, ds, query.SearchRecords(ds.Records, text), "No matching people.")
			return nil
		},
	}
}
