//go:build !windows

package cli

import (
	"os/exec"
	"syscall"
	"time"
)

// configureCommand sets up process group isolation so that cancelling the
// context kills the CLI and every child it spawned. Agent CLIs fork node
// helpers; killing only the leader would leave orphans behind.
func configureCommand(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		pgid, err := syscall.Getpgid(cmd.Process.Pid)
		if err != nil {
			// Process may already be gone; fall back to a direct kill.
			return cmd.Process.Kill()
		}
		if err := syscall.Kill(-pgid, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
			return err
		}
		return nil
	}
	cmd.WaitDelay = 5 * time.Second
}
