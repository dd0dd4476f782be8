package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/clipr/pkg/clipr/logging"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "clipr",
		Short: "Clipboard history manager with registers and image previews",
		Long: `clipr records your clipboard history and lets you search, pin and
re-copy past entries from an interactive TUI.

Entries can be bound to single-character registers. Temporary registers
last for one TUI session; permanent registers survive restarts and can be
preloaded from the config file.

Examples:
  clipr                        # Browse history in the TUI
  clipr listen                 # Start background clipboard watchers
  clipr history -l 5           # Show the five most recent entries
  clipr grab-perm-register e   # Copy permanent register 'e'
  clipr config edit            # Edit configuration`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: initializeLogging,
		PersistentPostRun: func(*cobra.Command, []string) { _ = logging.Close() },
		RunE:              runTUI,
		SilenceUsage:      true,
	}
)

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/clipr/config.yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Bind flags to viper
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
