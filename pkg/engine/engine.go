// Package engine executes the plans produced by the planner.
//
// A run processes the planned backups one after another in declaration order.
// Each backup runs its stages in a fixed sequence: source, checks, crypt,
// syncs and cleanup. Failures never abort the process; they are recorded on
// the backup's runstate.State and steer the remaining stages through the
// stopOnFailure and skipOnFailure policies.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/paulschiretz/pgl-shipper/pkg/collector"
	"github.com/paulschiretz/pgl-shipper/pkg/hook"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
)

// Runner orchestrates runs, restore plans and listings.
type Runner struct {
	hooks *hook.HookExecutor

	// newRunID and now allow deterministic summaries in tests.
	newRunID func() string
	now      func() time.Time
}

// NewRunner creates a Runner that executes backup hooks with hooks.
func NewRunner(hooks *hook.HookExecutor) *Runner {
	return &Runner{
		hooks:    hooks,
		newRunID: uuid.NewString,
		now:      time.Now,
	}
}

// collectAll returns every artifact of t on disk, including the one
// resolved for the reference time, ordered oldest first.
func collectAll(ctx context.Context, t *pathtemplate.Target) ([]collector.Artifact, error) {
	c := collector.NewLocal(t)
	artifacts, err := c.BackupFiles(ctx)
	if err != nil {
		return nil, err
	}
	if current, ok, err := c.Current(ctx); err != nil {
		return nil, err
	} else if ok {
		artifacts = append(artifacts, current)
	}
	collector.Sort(artifacts)
	return artifacts, nil
}
