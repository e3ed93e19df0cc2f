package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/topicatlas/internal/config"
	"github.com/example/topicatlas/internal/dataset"
	"github.com/example/topicatlas/internal/export"
	"github.com/example/topicatlas/internal/query"
)

type filterFlags struct {
	categorySource string
	categories     []string
	keywordSource  string
	keyword        string
	match          string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.categorySource, "category-source", "", "Source the categories are matched against (default: category, or all)")
	cmd.Flags().StringArrayVarP(&f.categories, "category", "c", nil, "Keep people with any of these categories (repeatable)")
	cmd.Flags().StringVar(&f.keywordSource, "keyword-source", "", "Source the keyword is matched against (default: keyword, or all)")
	cmd.Flags().StringVarP(&f.keyword, "keyword", "k", "", "Keep people with a label matching this keyword")
	cmd.Flags().StringVarP(&f.match, "match", "m", string(query.MatchExact), "Keyword match mode: exact or substring")
}

func (f *filterFlags) build(ds *dataset.Dataset) (query.Filter, error) {
	catSrc, err := sourceFlag(ds, f.categorySource, ds.SourceOr("category"))
	if err != nil {
		return query.Filter{}, err
	}
	kwSrc, err := sourceFlag(ds, f.keywordSource, ds.SourceOr("keyword"))
	if err != nil {
		return query.Filter{}, err
	}
	mode, err := query.ParseMatchMode(f.match)
	if err != nil {
		return query.Filter{}, err
	}
	return query.Filter{
		CategorySource: catSrc,
		Categories:     f.categories,
		KeywordSource:  kwSrc,
		Keyword:        f.keyword,
		Mode:           mode,
	}, nil
}

func newFilterCmd(opts *options) *cobra.Command {
	var flags filterFlags
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "List people matching categories and a keyword",
		Example: `  topicatlas filter -c Finance -c Retail
  topicatlas filter -k finance -m substring`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.load()
			if err != nil {
				return err
			}
			f, err := flags.build(ds)
			if err != nil {
				return err
			}
			matched := query.Apply(ds.Records, f)
			printPeople(cmd, ds, matched, "No matching people.")
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d people\n", len(matched), len(ds.Records))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var (
		flags     filterFlags
		identity  string
		output    string
		outputDir string
		separator string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write filtered people, or one person, as CSV",
		Long: `Writes a CSV with Name, Contact and one column per label source.

Without --identity the filter flags select the rows, as for "filter". With
--output the file is written there ("-" for stdout); otherwise a timestamped
file is created in --output-dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.load()
			if err != nil {
				return err
			}
			stem := "filtered"
			var records []dataset.Record
			if identity != "" {
				r, ok := query.FindRecord(ds.Records, identity)
				if !ok {
					return fmt.Errorf("no person named %q", identity)
				}
				records, stem = []dataset.Record{r}, r.Name
			} else {
				f, err := flags.build(ds)
				if err != nil {
					return err
				}
				records = query.Apply(ds.Records, f)
			}

			switch output {
			case "-":
				return export.WriteRecords(cmd.OutOrStdout(), ds.Sources(), records, separator)
			case "":
				path, err := export.NewManager(outputDir).Save(stem, ds.Sources(), records, separator)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(records), path)
				return nil
			default:
				if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
					return err
				}
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := export.WriteRecords(file, ds.Sources(), records, separator); err != nil {
					file.Close()
					return err
				}
				if err := file.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(records), output)
				return nil
			}
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&identity, "identity", "", "Export this single person instead of a filter result")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, or - for stdout")
	cmd.Flags().StringVar(&outputDir, "output-dir", config.DefaultExportDir, "Directory for timestamped exports")
	cmd.Flags().StringVar(&separator, "separator", export.DefaultSeparator, "Separator between labels in one field")
	return cmd
}
