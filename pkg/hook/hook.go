// Package hook runs the shell commands configured to surround a backup, such
// as stopping a service before the source is captured and starting it again
// afterwards.
package hook

import (
	"context"
	"fmt"
	"strings"

	"github.com/paulschiretz/pgl-shipper/pkg/faults"
	"github.com/paulschiretz/pgl-shipper/pkg/hints"
	"github.com/paulschiretz/pgl-shipper/pkg/pipeline"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
)

var ErrNothingToExecute = hints.New("nothing to execute")

type HookExecutor struct {
	executor *pipeline.Executor
}

// NewHookExecutor creates a HookExecutor that runs commands with executor.
func NewHookExecutor(executor *pipeline.Executor) *HookExecutor {
	return &HookExecutor{
		executor: executor,
	}
}

func (e *HookExecutor) RunPreHook(ctx context.Context, hookName string, p *Plan) error {
	return e.run(ctx, "Pre-"+hookName, p.PreHookCommands, p)
}

func (e *HookExecutor) RunPostHook(ctx context.Context, hookName string, p *Plan) error {
	return e.run(ctx, "Post-"+hookName, p.PostHookCommands, p)
}

func (e *HookExecutor) run(ctx context.Context, hookName string, commands []string, p *Plan) error {
	if p == nil || len(commands) == 0 {
		return ErrNothingToExecute
	}

	plog.Info(fmt.Sprintf("Running %s hook commands", hookName))

	for _, hookCommand := range commands {
		if err := ctx.Err(); err != nil {
			return err
		}

		if p.Simulate {
			plog.Info("[SIMULATE] Executing command", "command", hookCommand)
			continue
		}
		plog.Info("Executing command", "command", hookCommand)

		res, err := e.executor.Run(ctx, pipeline.New(pipeline.NewCmd(hookCommand)))
		if err == nil {
			err = faults.CheckResult(res)
		}
		if out := strings.TrimSpace(res.Stdout); out != "" {
			plog.Debug("Hook output", "command", hookCommand, "stdout", out)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if p.FailFast {
				return fmt.Errorf("%s hook failed: %w", hookName, err)
			}
			plog.Warn("Hook command failed", "command", hookCommand, "error", err)
		}
	}
	return nil
}
