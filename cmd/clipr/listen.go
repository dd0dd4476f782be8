package main

import (
	"github.com/spf13/cobra"

	"github.com/jamesainslie/clipr/pkg/clipr/clipboard"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Start background clipboard watchers",
	Long: `Start detached wl-paste watchers that store every text and PNG
clipboard change with 'clipr store-text' and 'clipr store-image'.

Requires wl-clipboard. Add 'clipr listen' to your compositor's autostart.`,
	Args: cobra.NoArgs,
	RunE: runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)
}

func runListen(_ *cobra.Command, _ []string) error {
	pids, err := clipboard.StartWatchers("", clipboard.DefaultWatches)
	if err != nil {
		return err
	}
	for i, pid := range pids {
		printInfo("Started %s watcher (pid %d)", clipboard.DefaultWatches[i].MIME, pid)
	}
	printInfo("")
	printInfo("Use 'ps -ef | grep wl-paste' to see the watchers.")
	printInfo("Stop them with: pkill -f \"wl-paste.*clipr\"")
	return nil
}
