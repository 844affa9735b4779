package remotesync

import (
	"context"
	"strings"

	"github.com/paulschiretz/pgl-shipper/pkg/backend"
	"github.com/paulschiretz/pgl-shipper/pkg/faults"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
	"github.com/paulschiretz/pgl-shipper/pkg/pipeline"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
)

// Rsync copies the artifact with rsync, locally or over ssh.
type Rsync struct {
	env         backend.Env
	binary      string
	host        string
	user        string
	dirTemplate string
	args        []string
}

var (
	_ backend.Sync      = (*Rsync)(nil)
	_ backend.Simulator = (*Rsync)(nil)
)

// Setup reads "path" (required, may contain placeholders), "host", "user",
// "args" (comma separated extra options) and "pathToRsync".
func (s *Rsync) Setup(env backend.Env, opts backend.Options) error {
	const component = "sync rsync"
	dir, err := opts.Required(component, "path")
	if err != nil {
		return err
	}
	user := opts.String("user", "")
	host := opts.String("host", "")
	if user != "" && host == "" {
		return faults.NewConfigurationError(component, "user", "user requires a host")
	}
	bin, err := env.Locator.WithDir(opts.String("pathToRsync", "")).Lookup("rsync")
	if err != nil {
		return &faults.ConfigurationError{Component: component, Option: "pathToRsync", Err: err}
	}

	s.env = env
	s.binary = bin
	s.host = host
	s.user = user
	s.dirTemplate = dir
	s.args = opts.List("args")
	return nil
}

func (s *Rsync) destination(t *pathtemplate.Target) string {
	dir := strings.TrimSuffix(pathtemplate.Format(s.dirTemplate, t.ReferenceTime()), "/") + "/"
	switch {
	case s.host == "":
		return dir
	case s.user == "":
		return s.host + ":" + dir
	default:
		return s.user + "@" + s.host + ":" + dir
	}
}

func (s *Rsync) cmd(t *pathtemplate.Target) *pipeline.Cmd {
	cmd := pipeline.NewCmd(s.binary).AddOption("-a")
	// Creates missing parent directories of placeholder paths on the receiver.
	cmd.AddOption("--mkpath")
	for _, a := range s.args {
		cmd.AddOption(a)
	}
	return cmd.AddArgument(t.Path(), s.destination(t))
}

func (s *Rsync) Sync(ctx context.Context, t *pathtemplate.Target) error {
	res, err := s.env.Executor.Run(ctx, pipeline.New(s.cmd(t)))
	if err != nil {
		return err
	}
	if err := faults.CheckResult(res); err != nil {
		return err
	}
	plog.Info("Synced backup", "destination", s.destination(t))
	return nil
}

func (s *Rsync) Simulate(_ context.Context, t *pathtemplate.Target) error {
	plog.Info("[SIMULATE] Syncing backup", "command", s.cmd(t).String())
	return nil
}
