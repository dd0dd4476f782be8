//go:build !unix

package clipboard

import "os/exec"

// detach is a no-op where process groups are unavailable.
func detach(*exec.Cmd) {}
