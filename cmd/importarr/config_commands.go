package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"importarr/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigPathCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set the Whisparr api_key (or export WHISPARR_API_KEY) before running importarr.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, sectionHeading("General", colorize))
			fmt.Fprintln(out, formatCheckLine("Mode", stateInfo, cfg.General.Mode, colorize))
			fmt.Fprintln(out, formatCheckLine("Run mode", stateInfo, cfg.General.RunMode, colorize))
			if cfg.General.RunMode == config.RunModeInterval {
				fmt.Fprintln(out, formatCheckLine("Interval", stateInfo, cfg.Interval().String(), colorize))
			}
			fmt.Fprintln(out, formatCheckLine("Dry run", stateInfo, yesNo(cfg.General.DryRun), colorize))
			fmt.Fprintln(out, formatCheckLine("Data dir", stateInfo, cfg.Paths.DataDir, colorize))
			fmt.Fprintln(out, formatCheckLine("Log dir", stateInfo, cfg.Paths.LogDir, colorize))

			fmt.Fprintln(out, sectionHeading("Whisparr", colorize))
			fmt.Fprintln(out, formatCheckLine("URL", stateInfo, cfg.Whisparr.URL, colorize))
			fmt.Fprintln(out, formatCheckLine("API key", stateInfo, redactSecret(cfg.Whisparr.APIKey), colorize))
			fmt.Fprintln(out, formatCheckLine("Quality profile", stateInfo, fmt.Sprintf("%d", cfg.Whisparr.QualityProfileID), colorize))
			rootFolder := cfg.Whisparr.RootFolderPath
			if rootFolder == "" {
				rootFolder = "(first root folder)"
			}
			fmt.Fprintln(out, formatCheckLine("Root folder", stateInfo, rootFolder, colorize))

			if cfg.StashSyncEnabled() {
				fmt.Fprintln(out, sectionHeading("Stash", colorize))
				fmt.Fprintln(out, formatCheckLine("URL", stateInfo, cfg.Stash.URL, colorize))
				fmt.Fprintln(out, formatCheckLine("API key", stateInfo, redactSecret(cfg.Stash.APIKey), colorize))
				fmt.Fprintln(out, formatCheckLine("Batch size", stateInfo, fmt.Sprintf("%d", cfg.Stash.BatchSize), colorize))
				fmt.Fprintln(out, formatCheckLine("Batch delay", stateInfo, fmt.Sprintf("%ds", cfg.Stash.BatchDelay), colorize))
			}

			if cfg.FileImportEnabled() {
				fmt.Fprintln(out, sectionHeading("Import", colorize))
				fmt.Fprintln(out, formatCheckLine("Folder", stateInfo, cfg.Import.Folder, colorize))
				fmt.Fprintln(out, formatCheckLine("Operation", stateInfo, cfg.Import.Operation, colorize))
				fmt.Fprintln(out, formatCheckLine("Process root files", stateInfo, yesNo(cfg.Import.ProcessRootFiles), colorize))
			}

			fmt.Fprintln(out, sectionHeading("Notifications", colorize))
			topic := cfg.Notifications.NtfyTopic
			if topic == "" {
				topic = "(disabled)"
			}
			fmt.Fprintln(out, formatCheckLine("ntfy topic", stateInfo, topic, colorize))
			return nil
		},
	}
}

func newConfigPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the configuration file path in use",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			if path == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				path = defaultPath
			} else {
				expanded, err := config.ExpandPath(path)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				path = expanded
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(cmd.ErrOrStderr(), "(file does not exist; run \"importarr config init\" to create it)")
			}
			return nil
		},
	}
}

func redactSecret(value string) string {
	if value == "" {
		return "(not set)"
	}
	return "set"
}
