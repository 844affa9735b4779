package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/paulschiretz/pgl-shipper/pkg/backend"
	"github.com/paulschiretz/pgl-shipper/pkg/faults"
	"github.com/paulschiretz/pgl-shipper/pkg/planner"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
	"github.com/paulschiretz/pgl-shipper/pkg/restoreplan"
)

// Restore is the restore plan of one backup definition.
type Restore struct {
	Name string
	// Artifact is the newest artifact found on disk. When none exists the
	// plan refers to the path of the current run.
	Artifact string
	Plan     *restoreplan.Plan
	// Incomplete is a hint naming the steps the plan cannot reverse.
	Incomplete error
	Err        error
}

// ExecuteRestore builds the restore plan for every planned backup. Nothing is
// executed; the plans are meant to be printed.
func (r *Runner) ExecuteRestore(ctx context.Context, p *planner.RunPlan) ([]Restore, error) {
	var restores []Restore
	for _, b := range p.Backups {
		if err := ctx.Err(); err != nil {
			return restores, err
		}
		restores = append(restores, r.restoreBackup(ctx, b))
	}
	return restores, nil
}

func (r *Runner) restoreBackup(ctx context.Context, b *planner.BackupPlan) Restore {
	res := Restore{Name: b.Name}
	if b.SetupErr != nil {
		res.Err = b.SetupErr
		return res
	}

	t := b.Target
	artifacts, err := collectAll(ctx, b.Target)
	switch {
	case err != nil:
		plog.Warn("Cannot collect artifacts, using the current target", "backup", b.Name, "error", err)
	case len(artifacts) == 0:
		plog.Warn("No artifact found, using the current target", "backup", b.Name, "path", b.Target.Path())
	default:
		newest := artifacts[len(artifacts)-1]
		t = b.Target.At(newest.Path)
		res.Artifact = newest.Path
	}

	plan := restoreplan.New()
	var errs []error

	if b.Crypt != nil {
		if rc, ok := b.Crypt.Backend.(backend.Restorable); ok {
			errs = append(errs, rc.Restore(t, plan))
		} else {
			plan.MarkCryptAsUnsupported()
		}
	}

	if b.Env.Compressor != nil {
		plan.AddDecompressionCommand(b.Env.Compressor.DecompressCmd(t.PathUncrypted()).String(), "Decompress the backup")
	}

	if rs, ok := b.Source.Backend.(backend.Restorable); ok {
		errs = append(errs, rs.Restore(t, plan))
	} else {
		plan.MarkSourceAsUnsupported()
	}

	res.Plan = plan
	res.Err = errors.Join(errs...)
	if !plan.IsComplete() {
		var missing []string
		if !plan.IsCryptSupported() {
			missing = append(missing, "crypt "+b.Crypt.Type)
		}
		if !plan.IsSourceSupported() {
			missing = append(missing, "source "+b.Source.Type)
		}
		res.Incomplete = faults.PlanIncomplete(strings.Join(missing, ", "))
		plog.Warn("Restore plan is incomplete", "backup", b.Name, "reason", res.Incomplete)
	}
	return res
}
