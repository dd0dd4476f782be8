//go:build unix

package clipboard

import (
	"os/exec"
	"syscall"
)

// detach starts cmd in its own process group so it survives the terminal.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
