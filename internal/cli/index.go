package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/faizmokh/lifelog/internal/index"
	"github.com/faizmokh/lifelog/internal/logbook"
)

func (a *app) openIndex() (*index.Index, error) {
	return index.Open(filepath.Join(a.manager.BasePath(), index.FileName))
}

func newIndexCommand(ctx context.Context, a *app) *cobra.Command {
	var workersFlag int

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild the statistics index from every log document.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := index.Scan(ctx, a.store, workersFlag)
			if err != nil {
				return err
			}
			ix, err := a.openIndex()
			if err != nil {
				return err
			}
			defer ix.Close()
			if err := ix.Replace(ctx, entries); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d log block(s)\n", len(entries))
			return nil
		},
	}

	cmd.Flags().IntVar(&workersFlag, "workers", index.DefaultWorkers, "Documents parsed in parallel")

	return cmd
}

type filterFlags struct {
	category string
	from     string
	to       string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.category, "category", "", "Only this category")
	cmd.Flags().StringVar(&f.from, "from", "", "First date in YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "Last date in YYYY-MM-DD")
}

func (f filterFlags) filter() (index.Filter, error) {
	out := index.Filter{From: f.from, To: f.to}
	if f.category != "" {
		category, err := logbook.ParseCategory(f.category)
		if err != nil {
			return index.Filter{}, err
		}
		out.Category = category.String()
	}
	for _, date := range []string{f.from, f.to} {
		if date == "" {
			continue
		}
		if _, ok := logbook.LogDate(date); !ok {
			return index.Filter{}, fmt.Errorf("parse date: %q is not YYYY-MM-DD", date)
		}
	}
	return out, nil
}

func newStatsCommand(ctx context.Context, a *app) *cobra.Command {
	var (
		flags    filterFlags
		topFlag  int
		jsonFlag bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize indexed logs per category.",
		Long:  "stats reads the index built by `lifelog index` and prints session counts, tracked time, completion rate and the most completed items.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			ix, err := a.openIndex()
			if err != nil {
				return err
			}
			defer ix.Close()

			report, err := ix.Report(ctx, filter, topFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonFlag {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			if len(report.Categories) == 0 {
				fmt.Fprintln(out, "No indexed logs. Run `lifelog index` first.")
				return nil
			}
			for _, c := range report.Categories {
				fmt.Fprintf(out, "%-8s %d session(s), %d completed (%.0f%%), %s tracked, %d item(s) done, %d skipped\n",
					c.Category, c.Sessions, c.Completed, c.CompletionRate*100,
					logbook.FormatDurationLong(c.Seconds), c.ItemsDone, c.ItemsSkipped)
			}
			if len(report.TopItems) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Top items:")
				for i, item := range report.TopItems {
					fmt.Fprintf(out, "%d. %s x%d\n", i+1, item.Name, item.Count)
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&topFlag, "top", 5, "Number of top items to list")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the report as JSON")

	return cmd
}

func newExportCommand(ctx context.Context, a *app) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write indexed log entries as JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			ix, err := a.openIndex()
			if err != nil {
				return err
			}
			defer ix.Close()

			entries, err := ix.Entries(ctx, filter)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []index.Entry{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		},
	}

	flags.register(cmd)

	return cmd
}
