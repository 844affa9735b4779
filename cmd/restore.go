package cmd

import (
	"context"
	"time"

	"github.com/paulschiretz/pgl-shipper/pkg/engine"
	"github.com/paulschiretz/pgl-shipper/pkg/flagparse"
	"github.com/paulschiretz/pgl-shipper/pkg/planner"
)

// RunRestore prints the restore plan of every selected backup.
func RunRestore(ctx context.Context, flagMap map[string]any) error {
	runConfig, err := loadRunConfig(flagparse.Restore, flagMap)
	if err != nil {
		return err
	}

	// The plan is only printed, the backends never need an executor.
	runPlan := planner.GenerateRunPlan(runConfig, nil, time.Now())
	restores, err := engine.NewRunner(nil).ExecuteRestore(ctx, runPlan)
	newPrinter(stdout).Restores(restores)
	return err
}
