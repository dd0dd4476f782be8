package main

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/clipr/pkg/clipr/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent clipboard entries",
	Long: `List the most recent clipboard history entries.

Pinned entries are marked with '*', temporary registers are shown in
parentheses and permanent registers in angle brackets.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show clipboard history statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var (
	historyLimit  int
	historyFormat string
	statsFormat   string
)

func init() {
	formats := strings.Join(output.Available(), ", ")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show (0 for all)")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "plain", "output format: "+formats)
	statsCmd.Flags().StringVarP(&statsFormat, "format", "f", "plain", "output format: "+formats)

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
}

// runHistory lists recent entries.
func runHistory(cmd *cobra.Command, _ []string) error {
	return report(cmd, historyFormat, func() (*output.Result, error) {
		cfg, err := requireConfig()
		if err != nil {
			return nil, err
		}
		store, l, err := loadHistory(cfg)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return output.History(l, historyLimit, time.Now()), nil
	})
}

// runStats prints entry counts.
func runStats(cmd *cobra.Command, _ []string) error {
	return report(cmd, statsFormat, func() (*output.Result, error) {
		cfg, err := requireConfig()
		if err != nil {
			return nil, err
		}
		store, l, err := loadHistory(cfg)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		l.SetMaxEntries(cfg.General.MaxHistory)
		return output.Stats(l), nil
	})
}

// report formats the result of build with the named formatter.
func report(cmd *cobra.Command, format string, build func() (*output.Result, error)) error {
	formatter, err := output.Get(format)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(output.Available(), ", "))
	}
	result, err := build()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(buf.Bytes())
	return err
}
