package source

import (
	"context"
	"strings"

	"github.com/paulschiretz/pgl-shipper/pkg/backend"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
	"github.com/paulschiretz/pgl-shipper/pkg/pipeline"
	"github.com/paulschiretz/pgl-shipper/pkg/restoreplan"
)

// fileToken is replaced with the escaped plain backup path in restore commands.
const fileToken = "{file}"

// Command captures the stdout of an arbitrary shell command.
type Command struct {
	env            backend.Env
	command        string
	restoreCommand string
}

var (
	_ backend.Source     = (*Command)(nil)
	_ backend.Simulator  = (*Command)(nil)
	_ backend.Restorable = (*Command)(nil)
)

// Setup reads the options "command" and "restoreCommand". The restore command
// may reference the plain backup file as {file}.
func (s *Command) Setup(env backend.Env, opts backend.Options) error {
	cmd, err := opts.Required("source command", "command")
	if err != nil {
		return err
	}
	s.env = env
	s.command = cmd
	s.restoreCommand = opts.String("restoreCommand", "")
	return nil
}

func (s *Command) pipeline() *pipeline.Pipeline {
	return pipeline.New(pipeline.NewCmd(s.command))
}

func (s *Command) Backup(ctx context.Context, t *pathtemplate.Target) error {
	return backend.Capture(ctx, s.env, s.pipeline(), t)
}

func (s *Command) Simulate(ctx context.Context, t *pathtemplate.Target) error {
	backend.SimulateCapture(s.env, s.pipeline(), t)
	return nil
}

func (s *Command) Restore(t *pathtemplate.Target, plan *restoreplan.Plan) error {
	if s.restoreCommand == "" {
		plan.MarkSourceAsUnsupported()
		return nil
	}
	cmd := strings.ReplaceAll(s.restoreCommand, fileToken, pipeline.Escape(t.PathPlain()))
	plan.AddRestoreCommand(cmd, "Feed the plain backup back into its source")
	return nil
}
