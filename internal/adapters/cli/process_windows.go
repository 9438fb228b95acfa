//go:build windows

package cli

import (
	"os/exec"
	"time"
)

// configureCommand on Windows relies on the default Process.Kill cancel
// behavior (Setpgid is not supported).
func configureCommand(cmd *exec.Cmd) {
	cmd.WaitDelay = 5 * time.Second
}
