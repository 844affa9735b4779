//go:build windows

package pipeline

import (
	"context"
	"os/exec"

	"golang.org/x/sys/windows"
)

// createCommand wraps the command line in cmd /C on Windows.
func (e *Executor) createCommand(ctx context.Context, line string) *exec.Cmd {
	cmd := e.commandContext(ctx, "cmd", "/C", line)
	// A new process group lets a canceled context terminate the process tree.
	cmd.SysProcAttr = &windows.SysProcAttr{CreationFlags: windows.CREATE_NEW_PROCESS_GROUP}
	return cmd
}
