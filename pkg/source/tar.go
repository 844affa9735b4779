package source

import (
	"context"
	"os"
	"path/filepath"

	"github.com/paulschiretz/pgl-shipper/pkg/backend"
	"github.com/paulschiretz/pgl-shipper/pkg/faults"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
	"github.com/paulschiretz/pgl-shipper/pkg/pipeline"
	"github.com/paulschiretz/pgl-shipper/pkg/restoreplan"
)

// Tar archives a directory with the tar binary.
type Tar struct {
	env      backend.Env
	binary   string
	path     string
	excludes []string
	// ignoreFailedRead keeps going when files vanish or are unreadable.
	ignoreFailedRead bool
}

var (
	_ backend.Source     = (*Tar)(nil)
	_ backend.Simulator  = (*Tar)(nil)
	_ backend.Restorable = (*Tar)(nil)
)

// Setup reads "path" (required), "exclude" (comma separated), "ignoreFailedRead"
// and "pathToTar".
func (s *Tar) Setup(env backend.Env, opts backend.Options) error {
	const component = "source tar"
	path, err := opts.Required(component, "path")
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return &faults.ConfigurationError{Component: component, Option: "path", Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return &faults.ConfigurationError{Component: component, Option: "path", Err: err}
	}
	if !info.IsDir() {
		return faults.NewConfigurationError(component, "path", "%s is not a directory", abs)
	}
	ignore, err := opts.Bool(component, "ignoreFailedRead", false)
	if err != nil {
		return err
	}
	bin, err := env.Locator.WithDir(opts.String("pathToTar", "")).Lookup("tar")
	if err != nil {
		return &faults.ConfigurationError{Component: component, Option: "pathToTar", Err: err}
	}

	s.env = env
	s.binary = bin
	s.path = abs
	s.excludes = opts.List("exclude")
	s.ignoreFailedRead = ignore
	return nil
}

func (s *Tar) cmd() *pipeline.Cmd {
	cmd := pipeline.NewCmd(s.binary)
	cmd.AddOptionIf(s.ignoreFailedRead, "--ignore-failed-read")
	for _, ex := range s.excludes {
		cmd.AddOptionWithGlue("--exclude", "=", ex)
	}
	return cmd.AddOption("-cf", "-").
		AddOption("-C", filepath.Dir(s.path)).
		AddArgument(filepath.Base(s.path))
}

func (s *Tar) Backup(ctx context.Context, t *pathtemplate.Target) error {
	return backend.Capture(ctx, s.env, pipeline.New(s.cmd()), t)
}

func (s *Tar) Simulate(ctx context.Context, t *pathtemplate.Target) error {
	backend.SimulateCapture(s.env, pipeline.New(s.cmd()), t)
	return nil
}

func (s *Tar) Restore(t *pathtemplate.Target, plan *restoreplan.Plan) error {
	cmd := pipeline.NewCmd(s.binary).
		AddOption("-xf", t.PathPlain()).
		AddOption("-C", filepath.Dir(s.path))
	plan.AddRestoreCommand(cmd.String(), "Extract the archive into the parent of the original directory")
	return nil
}
