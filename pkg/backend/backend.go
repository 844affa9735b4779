// Package backend defines the capability contracts implemented by source,
// check, crypt and sync backends.
//
// Every backend is configured once through Setup before the run starts and
// performs one stage action. Simulator and Restorable are optional
// capabilities the orchestrator discovers with a type assertion.
package backend

import (
	"context"

	"github.com/paulschiretz/pgl-shipper/pkg/collector"
	"github.com/paulschiretz/pgl-shipper/pkg/pathcompression"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
	"github.com/paulschiretz/pgl-shipper/pkg/pipeline"
	"github.com/paulschiretz/pgl-shipper/pkg/restoreplan"
)

// Env is the shared environment handed to backends during setup.
type Env struct {
	Executor *pipeline.Executor
	Locator  pipeline.Locator
	// Compressor is the compression bound to the backup or nil.
	Compressor pathcompression.Compressor
	// Metrics enables the counters of work a backend runs on its own, such as remote cleanup.
	Metrics bool
}

// Configurable backends validate and store their options before the run.
// A returned error is a configuration error that aborts only its backup.
type Configurable interface {
	Setup(env Env, opts Options) error
}

// Source produces the backup artifact at the target's path.
type Source interface {
	Configurable
	Backup(ctx context.Context, t *pathtemplate.Target) error
}

// Check verifies the produced artifact. passed is false when the artifact
// does not meet the expectation given by value.
type Check interface {
	Configurable
	Check(ctx context.Context, t *pathtemplate.Target, value string, c collector.Collector) (passed bool, err error)
}

// Crypter encrypts the artifact in place and appends Suffix to its name.
type Crypter interface {
	Configurable
	Suffix() string
	Crypt(ctx context.Context, t *pathtemplate.Target) error
}

// Sync copies the artifact to a remote location.
type Sync interface {
	Configurable
	Sync(ctx context.Context, t *pathtemplate.Target) error
}

// Simulator backends can describe their action without side effects.
type Simulator interface {
	Simulate(ctx context.Context, t *pathtemplate.Target) error
}

// Restorable backends add the commands that reverse their step to a plan.
type Restorable interface {
	Restore(t *pathtemplate.Target, plan *restoreplan.Plan) error
}
