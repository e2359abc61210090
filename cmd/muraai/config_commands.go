package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"muraai/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the muraai configuration",
	}

	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(*ctx.configFlag)
			if path == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = defaultPath
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists at %s", path)
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", path)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Data directory:    %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "Log directory:     %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "API bind:          %s\n", cfg.Paths.APIBind)
			fmt.Fprintf(out, "Catalog database:  %s\n", cfg.CatalogDBPath())
			fmt.Fprintf(out, "Translation cache: %s\n", cfg.TranslationCache.Path)
			fmt.Fprintf(out, "Gemini model:      %s\n", cfg.Gemini.Model)
			fmt.Fprintf(out, "Gemini key set:    %s\n", yesNo(strings.TrimSpace(cfg.Gemini.APIKey) != ""))
			fmt.Fprintf(out, "Translate key set: %s\n", yesNo(strings.TrimSpace(cfg.Translate.APIKey) != ""))
			fmt.Fprintf(out, "Poll interval:     %ds\n", cfg.Workflow.QueuePollInterval)
			fmt.Fprintf(out, "Log level:         %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)
			return nil
		},
	}

	cmd.AddCommand(initCmd)
	cmd.AddCommand(showCmd)
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
