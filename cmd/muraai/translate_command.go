package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"muraai/internal/kvstore"
	"muraai/internal/services/translate"
	"muraai/internal/translatecache"
)

func (c *commandContext) withCache(fn func(*translatecache.Cache) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := kvstore.Open(cfg.TranslationCache.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	client := translate.NewClient(translate.Config(cfg.GetTranslate()))
	cache := translatecache.New(context.Background(), client, store, nil)
	return fn(cache)
}

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var sourceLang string
	var targetLang string

	cmd := &cobra.Command{
		Use:   "translate <text>...",
		Short: "Translate text through the cached translation layer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(cache *translatecache.Cache) error {
				results := cache.TranslateBatch(cmd.Context(), args, sourceLang, targetLang)
				for i, result := range results {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t(%s)\t%s\n", args[i], result.Status, result.Text)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sourceLang, "source", "", "Source language code (empty for auto-detect)")
	cmd.Flags().StringVar(&targetLang, "target", "", "Target language code")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Administer the translation cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cached translation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(cache *translatecache.Cache) error {
				removed, err := cache.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached translation(s).\n", removed)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cache entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCache(func(cache *translatecache.Cache) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Cached translations: %d\n", cache.Size())
				return nil
			})
		},
	})

	return cmd
}
