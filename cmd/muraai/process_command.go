package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"muraai/internal/config"
	"muraai/internal/heritage"
	"muraai/internal/pipeline"
	"muraai/internal/services/gemini"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <id>",
		Short: "Run the processing pipeline for one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *heritage.Store) error {
				client := gemini.NewClient(gemini.Config(cfg.GetGemini()))
				pipe := pipeline.New(store, client, client, nil)

				outcome := pipe.Process(cmd.Context(), args[0])
				if !outcome.Succeeded() {
					return fmt.Errorf("processing failed at %s stage: %w", outcome.Failure.Stage, outcome.Failure.Err)
				}

				item := outcome.Item
				fmt.Fprintf(cmd.OutOrStdout(), "Processed %q: %s\n", item.Title, item.ProcessingStatus)
				if analysis, err := item.Analysis(); err == nil && analysis != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Summary: %s\n", analysis.Summary)
				}
				return nil
			})
		},
	}
}
