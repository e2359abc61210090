package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"muraai/internal/config"
	"muraai/internal/heritage"
	"muraai/internal/language"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var (
		itemType    string
		description string
		region      string
		lang        string
		tags        []string
		audioURL    string
		textContent string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a heritage item to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *heritage.Store) error {
				normalizedLang := ""
				if strings.TrimSpace(lang) != "" {
					normalized, err := language.Normalize(lang)
					if err != nil {
						return err
					}
					normalizedLang = normalized
				}

				item, err := store.NewItem(cmd.Context(), heritage.Draft{
					Type:        heritage.ItemType(itemType),
					Title:       args[0],
					Description: description,
					Region:      region,
					Language:    normalizedLang,
					Tags:        tags,
					AudioURL:    audioURL,
					TextContent: textContent,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q (%s)\n", item.Type, item.Title, item.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&itemType, "type", "t", "", "Item type: song, story, ritual or craft")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Item description")
	cmd.Flags().StringVar(&region, "region", "", "Region of origin")
	cmd.Flags().StringVar(&lang, "language", "", "Language code (kk, ru, en)")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Comma-separated tags")
	cmd.Flags().StringVar(&audioURL, "audio", "", "Audio recording URL")
	cmd.Flags().StringVar(&textContent, "text", "", "Full text content")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *heritage.Store) error {
				var statuses []heritage.Status
				if trimmed := strings.TrimSpace(statusFilter); trimmed != "" {
					status, ok := heritage.ParseStatus(trimmed)
					if !ok {
						return fmt.Errorf("unknown status %q", trimmed)
					}
					statuses = append(statuses, status)
				}

				items, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No items found.")
					return nil
				}

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						item.ID,
						string(item.Type),
						truncate(item.Title, 40),
						string(item.ProcessingStatus),
						language.DisplayName(item.Language),
						strconv.FormatInt(item.ViewsCount, 10),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Type", "Title", "Status", "Language", "Views"},
					rows,
					6,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Filter by status: pending, processing, completed or failed")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one item in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *heritage.Store) error {
				item, err := store.GetByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("item %s not found", args[0])
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:          %s\n", item.ID)
				fmt.Fprintf(out, "Type:        %s\n", item.Type)
				fmt.Fprintf(out, "Title:       %s\n", item.Title)
				fmt.Fprintf(out, "Status:      %s\n", item.ProcessingStatus)
				if item.Region != "" {
					fmt.Fprintf(out, "Region:      %s\n", item.Region)
				}
				if item.Language != "" {
					fmt.Fprintf(out, "Language:    %s\n", language.DisplayName(item.Language))
				}
				if len(item.Tags) > 0 {
					fmt.Fprintf(out, "Tags:        %s\n", strings.Join(item.Tags, ", "))
				}
				if item.AudioURL != "" {
					fmt.Fprintf(out, "Audio:       %s\n", item.AudioURL)
				}
				fmt.Fprintf(out, "Views:       %d\n", item.ViewsCount)
				if item.Description != "" {
					fmt.Fprintf(out, "Description: %s\n", item.Description)
				}
				if item.Transcription != "" {
					fmt.Fprintf(out, "Transcription:\n%s\n", item.Transcription)
				}
				if item.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:       %s\n", item.ErrorMessage)
				}
				if analysis, err := item.Analysis(); err == nil && analysis != nil {
					fmt.Fprintf(out, "Summary:     %s\n", analysis.Summary)
					if analysis.CulturalContext != "" {
						fmt.Fprintf(out, "Context:     %s\n", analysis.CulturalContext)
					}
					if analysis.HistoricalPeriod != "" {
						fmt.Fprintf(out, "Period:      %s\n", analysis.HistoricalPeriod)
					}
				}
				return nil
			})
		},
	}
}

func newRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id...]",
		Short: "Move failed items back to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *heritage.Store) error {
				count, err := store.RetryFailed(cmd.Context(), args...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d item(s).\n", count)
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an item from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *heritage.Store) error {
				removed, err := store.Remove(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("item %s not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.\n", args[0])
				return nil
			})
		},
	}
}

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show catalog processing counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *heritage.Store) error {
				summary, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				rows := [][]string{
					{"pending", strconv.Itoa(summary.Pending)},
					{"processing", strconv.Itoa(summary.Processing)},
					{"completed", strconv.Itoa(summary.Completed)},
					{"failed", strconv.Itoa(summary.Failed)},
					{"total", strconv.Itoa(summary.Total)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Status", "Items"}, rows, 2))
				return nil
			})
		},
	}
}
