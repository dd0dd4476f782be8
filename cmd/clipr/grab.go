package main

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/clipr/pkg/clipr/clipboard"
	"github.com/jamesainslie/clipr/pkg/clipr/history"
	"github.com/jamesainslie/clipr/pkg/clipr/session"
)

var grabTempCmd = &cobra.Command{
	Use:   "grab-temp-register <key>",
	Short: "Copy a temporary register to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGrab(args[0], false)
	},
}

var grabPermCmd = &cobra.Command{
	Use:   "grab-perm-register <key>",
	Short: "Copy a permanent register to the clipboard",
	Long: `Copy the entry held by a permanent register to the clipboard.

Permanent registers defined in the config file are always available, even
if the history was cleared.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGrab(args[0], true)
	},
}

func init() {
	rootCmd.AddCommand(grabTempCmd)
	rootCmd.AddCommand(grabPermCmd)
}

// parseKey accepts exactly one register character.
func parseKey(s string) (rune, error) {
	key, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || !history.ValidKey(key) {
		return 0, fmt.Errorf("%w: %q (use one of 0-9, a-z, A-Z)", history.ErrInvalidKey, s)
	}
	return key, nil
}

func runGrab(arg string, permanent bool) error {
	key, err := parseKey(arg)
	if err != nil {
		return err
	}
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	store, l, err := loadHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if permanent {
		defs, err := cfg.PermanentDefs()
		if err != nil {
			printError("%v", err)
		}
		if err := l.Registers().LoadPermanent(defs); err != nil {
			printError("%v", err)
		}
	}

	sink, err := clipboard.New(cfg.Clipboard.Backend)
	if err != nil {
		return err
	}
	if err := session.Grab(l, sink, permanent, key); err != nil {
		if errors.Is(err, session.ErrRegisterNotFound) {
			return fmt.Errorf("register '%c' not found", key)
		}
		return err
	}
	printVerbose("Copied register '%c' using %s", key, sink.Name())
	return nil
}
