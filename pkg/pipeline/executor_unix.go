//go:build !windows

package pipeline

import (
	"context"
	"os/exec"

	"golang.org/x/sys/unix"
)

// createCommand wraps the command line in /bin/sh on Unix-like systems.
func (e *Executor) createCommand(ctx context.Context, line string) *exec.Cmd {
	cmd := e.commandContext(ctx, "/bin/sh", "-c", line)
	// Run the shell in its own process group so a canceled context can
	// terminate the whole pipeline and not just the shell.
	cmd.SysProcAttr = &unix.SysProcAttr{Setpgid: true}
	return cmd
}
