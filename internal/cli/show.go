package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faizmokh/lifelog/internal/logbook"
)

func newShowCommand(ctx context.Context, a *app) *cobra.Command {
	var categoryFlag string

	cmd := &cobra.Command{
		Use:   "show [document]",
		Short: "List log documents, or the blocks inside one.",
		Long:  "Without arguments show lists every Markdown document under the lifelog home. Given a document it prints each log block with its items.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				docs, err := a.manager.Documents()
				if err != nil {
					return err
				}
				if len(docs) == 0 {
					fmt.Fprintln(out, "No documents yet. Create one with `lifelog new`.")
					return nil
				}
				for _, doc := range docs {
					fmt.Fprintln(out, doc)
				}
				return nil
			}

			id, err := a.docID(args[0])
			if err != nil {
				return err
			}
			blocks, err := a.reader.Blocks(ctx, id)
			if err != nil {
				return err
			}
			if categoryFlag != "" {
				category, err := logbook.ParseCategory(categoryFlag)
				if err != nil {
					return err
				}
				blocks = filterBlocks(blocks, category)
			}
			printBlocks(cmd, id, blocks)
			return nil
		},
	}

	cmd.Flags().StringVar(&categoryFlag, "category", "", "Only show blocks of this category")

	return cmd
}

func filterBlocks(blocks []logbook.Block, category logbook.Category) []logbook.Block {
	var out []logbook.Block
	for _, block := range blocks {
		if block.Category == category {
			out = append(out, block)
		}
	}
	return out
}

func newTemplateCommand(ctx context.Context, a *app) *cobra.Command {
	var lineFlag int

	cmd := &cobra.Command{
		Use:   "template <document>",
		Short: "Print a workout block as a reusable template.",
		Long:  "template resets a workout to planned, drops recorded durations and duplicate exercises, and prints the fenced block ready to paste.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.docID(args[0])
			if err != nil {
				return err
			}

			var block logbook.Block
			if lineFlag >= 0 {
				block, err = a.reader.BlockAt(ctx, id, lineFlag)
			} else {
				block, err = a.reader.Latest(ctx, id, logbook.CategoryWorkout)
			}
			if err != nil {
				return err
			}
			w, ok := block.Record().(logbook.Workout)
			if !ok {
				return fmt.Errorf("block at line %d is a %s log, not a workout", block.Span.Start, block.Category)
			}

			fmt.Fprintln(cmd.OutOrStdout(), logbook.FencedBlock(logbook.CategoryWorkout, logbook.SerializeWorkoutTemplate(w)))
			return nil
		},
	}

	cmd.Flags().IntVar(&lineFlag, "line", -1, "Line of the block's opening fence (default: last workout)")

	return cmd
}
