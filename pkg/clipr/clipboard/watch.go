package clipboard

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/jamesainslie/clipr/pkg/clipr/logging"
)

// Watch describes one detached wl-paste watcher.
type Watch struct {
	MIME       string
	Subcommand string
}

// DefaultWatches feed text and PNG captures into store-text and store-image.
var DefaultWatches = []Watch{
	{MIME: "text", Subcommand: "store-text"},
	{MIME: "image/png", Subcommand: "store-image"},
}

// watchCommand builds `wl-paste --type <mime> --watch <exe> <subcommand>`.
func watchCommand(exe string, w Watch) *exec.Cmd {
	cmd := exec.Command(wlPaste, "--type", w.MIME, "--watch", exe, w.Subcommand)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	detach(cmd)
	return cmd
}

// StartWatchers spawns detached wl-paste watchers that run exe's store
// subcommands on every clipboard change. It returns the started PIDs.
func StartWatchers(exe string, watches []Watch) ([]int, error) {
	if !hasCommand(wlPaste) {
		return nil, fmt.Errorf("%w: %s not found, install wl-clipboard", ErrNoBackend, wlPaste)
	}
	if exe == "" {
		var err error
		if exe, err = os.Executable(); err != nil {
			return nil, fmt.Errorf("locating clipr executable: %w", err)
		}
	}

	var pids []int
	for _, w := range watches {
		cmd := watchCommand(exe, w)
		if err := cmd.Start(); err != nil {
			return pids, fmt.Errorf("starting %s watcher: %w", w.MIME, err)
		}
		pids = append(pids, cmd.Process.Pid)
		logging.Get("clipboard").Info("started clipboard watcher", "type", w.MIME, "pid", cmd.Process.Pid)
		// The watcher outlives us; release it so it is not left as a zombie
		// reference in this process.
		_ = cmd.Process.Release()
	}
	return pids, nil
}
