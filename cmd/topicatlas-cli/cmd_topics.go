package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/topicatlas/internal/dataset"
	"github.com/example/topicatlas/internal/query"
)

func newTopicsCmd(opts *options) *cobra.Command {
	var (
		source         string
		search         string
		sortMode       string
		hideSingletons bool
	)
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List topics with the number of people carrying each",
		Example: `  topicatlas topics --source category --hide-singletons
  topicatlas topics --search fin --sort alpha`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.load()
			if err != nil {
				return err
			}
			src, err := sourceFlag(ds, source, dataset.All)
			if err != nil {
				return err
			}
			mode, err := query.ParseSortMode(sortMode)
			if err != nil {
				return err
			}
			facets := query.Facets(ds.Records, query.FacetQuery{
				Source:         src,
				Search:         search,
				Sort:           mode,
				HideSingletons: hideSingletons,
			})
			out := cmd.OutOrStdout()
			if len(facets) == 0 {
				fmt.Fprintln(out, "No topics found.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, f := range facets {
				fmt.Fprintf(tw, "%d\t%s\n", f.Count, f.Label)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", string(dataset.All), "Label source, or \"all\"")
	cmd.Flags().StringVarP(&search, "search", "q", "", "Only topics containing this text")
	cmd.Flags().StringVar(&sortMode, "sort", string(query.SortByCount), "Sort order: count or alpha")
	cmd.Flags().BoolVar(&hideSingletons, "hide-singletons", false, "Hide topics carried by a single person")
	return cmd
}

func newMembersCmd(opts *options) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:     "members [topic]",
		Short:   "List the people carrying a topic",
		Example: `  topicatlas members Finance --source category`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.load()
			if err != nil {
				return err
			}
			src, err := sourceFlag(ds, source, dataset.All)
			if err != nil {
				return err
			}
			printPeople(cmd, ds, query.MembersOf(ds.Records, src, args[0]), "No one has this topic.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", string(dataset.All), "Label source, or \"all\"")
	return cmd
}

// sourceFlag validates a --source value against the dataset schema.
func sourceFlag(ds *dataset.Dataset, raw string, def dataset.Source) (dataset.Source, error) {
	if raw == "" {
		return def, nil
	}
	src := dataset.Source(raw)
	if !ds.HasSource(src) {
		names := []string{string(dataset.All)}
		for _, s := range ds.Sources() {
			names = append(names, string(s.Name))
		}
		return "", fmt.Errorf("unknown source %q (available: %v)", raw, names)
	}
	return src, nil
}

func printPeople(cmd *cobra.Command, ds *dataset.Dataset, records []dataset.Record, empty string) {
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, empty)
		return
	}
	for _, r := range records {
		if url := ds.ProfileURL(r); url != "" {
			fmt.Fprintf(out, "%s  %s\n", r.Identity, url)
			continue
		}
		fmt.Fprintln(out, r.Identity)
	}
}
