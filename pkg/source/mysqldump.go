package source

import (
	"context"

	"github.com/paulschiretz/pgl-shipper/pkg/backend"
	"github.com/paulschiretz/pgl-shipper/pkg/faults"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
	"github.com/paulschiretz/pgl-shipper/pkg/pipeline"
	"github.com/paulschiretz/pgl-shipper/pkg/restoreplan"
)

// Mysqldump dumps MySQL databases into a single SQL file.
type Mysqldump struct {
	env       backend.Env
	binary    string
	host      string
	port      string
	user      string
	password  string
	databases []string
	tables    []string
	// structureOnly dumps the schema without data.
	structureOnly bool
}

var (
	_ backend.Source     = (*Mysqldump)(nil)
	_ backend.Simulator  = (*Mysqldump)(nil)
	_ backend.Restorable = (*Mysqldump)(nil)
)

// Setup reads "host", "port", "user", "password", "databases", "tables",
// "structureOnly" and "pathToMysqldump".
func (s *Mysqldump) Setup(env backend.Env, opts backend.Options) error {
	const component = "source mysqldump"
	structureOnly, err := opts.Bool(component, "structureOnly", false)
	if err != nil {
		return err
	}
	s.databases = opts.List("databases")
	s.tables = opts.List("tables")
	if len(s.tables) > 0 && len(s.databases) != 1 {
		return faults.NewConfigurationError(component, "tables", "tables require exactly one database")
	}
	bin, err := env.Locator.WithDir(opts.String("pathToMysqldump", "")).Lookup("mysqldump")
	if err != nil {
		return &faults.ConfigurationError{Component: component, Option: "pathToMysqldump", Err: err}
	}

	s.env = env
	s.binary = bin
	s.host = opts.String("host", "")
	s.port = opts.String("port", "")
	s.user = opts.String("user", "")
	s.password = opts.String("password", "")
	s.structureOnly = structureOnly
	return nil
}

func (s *Mysqldump) cmd() *pipeline.Cmd {
	cmd := pipeline.NewCmd(s.binary)
	s.addConnection(cmd, s.password)
	cmd.AddOptionIf(s.structureOnly, "--no-data")
	switch {
	case len(s.tables) > 0:
		cmd.AddArgument(s.databases[0])
		cmd.AddArgument(s.tables...)
	case len(s.databases) > 0:
		cmd.AddOption("--databases", s.databases...)
	default:
		cmd.AddOption("--all-databases")
	}
	return cmd
}

func (s *Mysqldump) addConnection(cmd *pipeline.Cmd, password string) {
	if s.host != "" {
		cmd.AddOptionWithGlue("--host", "=", s.host)
	}
	if s.port != "" {
		cmd.AddOptionWithGlue("--port", "=", s.port)
	}
	if s.user != "" {
		cmd.AddOptionWithGlue("--user", "=", s.user)
	}
	if password != "" {
		cmd.AddOptionWithGlue("--password", "=", password)
	}
}

func (s *Mysqldump) Backup(ctx context.Context, t *pathtemplate.Target) error {
	return backend.Capture(ctx, s.env, pipeline.New(s.cmd()), t)
}

func (s *Mysqldump) Simulate(ctx context.Context, t *pathtemplate.Target) error {
	backend.SimulateCapture(s.env, pipeline.New(s.cmd()), t)
	return nil
}

func (s *Mysqldump) Restore(t *pathtemplate.Target, plan *restoreplan.Plan) error {
	cmd := pipeline.NewCmd("mysql")
	password := ""
	if s.password != "" {
		password = "********"
	}
	s.addConnection(cmd, password)
	if len(s.databases) == 1 {
		cmd.AddArgument(s.databases[0])
	}
	plan.AddRestoreCommand(cmd.String()+" < "+pipeline.Escape(t.PathPlain()), "Import the dump, replace ******** with the database password")
	return nil
}
