package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/clipr/pkg/clipr/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage clipr configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/clipr/config.yaml (if set)
  2. ~/.config/clipr/config.yaml

Environment variables can override config file settings using the CLIPR_ prefix:
  CLIPR_GENERAL_MAX_HISTORY=500
  CLIPR_IMAGES_CACHE_SIZE=50
  CLIPR_STORAGE_BACKEND=badger

A running TUI reloads the file when it changes.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configErr != nil {
		printError("Failed to load configuration: %v", configErr)
	}
	writeConfig(cmd.OutOrStdout(), appConfig)
	return nil
}

// writeConfig prints cfg followed by any CLIPR_ environment overrides.
func writeConfig(w io.Writer, cfg *config.Config) {
	if cfg.File != "" {
		fmt.Fprintf(w, "Config file: %s\n\n", cfg.File)
	} else {
		fmt.Fprintln(w, "Config file: (using defaults, no file found)")
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	fmt.Fprintf(w, "general.max_history:           %d\n", cfg.General.MaxHistory)
	fmt.Fprintf(w, "general.exit_on_select:        %t\n", cfg.General.ExitOnSelect)
	fmt.Fprintf(w, "general.view_mode:             %s\n", cfg.General.ViewMode)
	fmt.Fprintf(w, "general.show_preview_metadata: %t\n", cfg.General.ShowPreviewMetadata)
	fmt.Fprintf(w, "images.max_size:               %s\n", cfg.Images.MaxSize)
	fmt.Fprintf(w, "images.max_memory_size:        %s\n", cfg.Images.MaxMemorySize)
	fmt.Fprintf(w, "images.max_preview_size:       %s\n", cfg.Images.MaxPreviewSize)
	fmt.Fprintf(w, "images.cache_size:             %d\n", cfg.Images.CacheSize)
	fmt.Fprintf(w, "images.preview:                %dx%d\n", cfg.Images.PreviewWidth, cfg.Images.PreviewHeight)
	fmt.Fprintf(w, "storage.backend:               %s\n", cfg.Storage.Backend)
	fmt.Fprintf(w, "storage.path:                  %s\n", cfg.DataPath())
	fmt.Fprintf(w, "clipboard.backend:             %s\n", cfg.Clipboard.Backend)
	fmt.Fprintf(w, "logging.level:                 %s\n", cfg.Logging.Level)

	fmt.Fprintln(w, "\nPermanent Registers:")
	fmt.Fprintln(w, "--------------------")
	if len(cfg.PermanentRegisters) == 0 {
		fmt.Fprintln(w, "(none)")
	}
	for _, pr := range cfg.PermanentRegisters {
		source := pr.File
		if source == "" {
			source = fmt.Sprintf("%q", pr.Content)
		}
		label := ""
		if pr.Name != "" {
			label = " (" + pr.Name + ")"
		}
		fmt.Fprintf(w, "%s: %s%s\n", pr.Key, source, label)
	}

	fmt.Fprintln(w, "\nEnvironment Overrides:")
	fmt.Fprintln(w, "----------------------")
	anyOverrides := false
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "CLIPR_") {
			fmt.Fprintln(w, kv)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Fprintln(w, "(none)")
	}
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(_ *cobra.Command, _ []string) error {
	configPath, err := config.WriteDefault()
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	printVerbose("Opening %s with %s", configPath, editor)

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}

	if _, err := config.Load(configPath); err != nil {
		printError("The edited configuration is invalid: %v", err)
	}
	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(_ *cobra.Command, _ []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		printInfo("Use 'clipr config edit' to modify it.")
		return nil
	}

	if _, err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, _ []string) error {
	configPath := cfgFile
	if configPath == "" {
		var err error
		if configPath, err = config.ConfigPath(); err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), configPath)

	if _, err := os.Stat(configPath); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}
	return nil
}
