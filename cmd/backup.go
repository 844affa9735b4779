package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/paulschiretz/pgl-shipper/pkg/buildinfo"
	"github.com/paulschiretz/pgl-shipper/pkg/engine"
	"github.com/paulschiretz/pgl-shipper/pkg/flagparse"
	"github.com/paulschiretz/pgl-shipper/pkg/hints"
	"github.com/paulschiretz/pgl-shipper/pkg/hook"
	"github.com/paulschiretz/pgl-shipper/pkg/metafile"
	"github.com/paulschiretz/pgl-shipper/pkg/pipeline"
	"github.com/paulschiretz/pgl-shipper/pkg/planner"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
	"github.com/paulschiretz/pgl-shipper/pkg/runstate"
)

// ErrRunDegraded is returned when every backup was produced but an extra
// stage was skipped or failed.
var ErrRunDegraded = hints.New("backup run finished with skipped or failed extras")

// RunBackup handles the logic for the main backup execution.
func RunBackup(ctx context.Context, flagMap map[string]any) error {
	runConfig, err := loadRunConfig(flagparse.Backup, flagMap)
	if err != nil {
		return err
	}

	// Log the Summary
	runConfig.LogSummary()

	executor := pipeline.NewExecutor(nil)
	runner := engine.NewRunner(hook.NewHookExecutor(executor))

	// Get the Plan
	runPlan := planner.GenerateRunPlan(runConfig, executor, time.Now())

	// Execute the plan
	summary, err := runner.ExecuteRun(ctx, runPlan)
	if summary != nil {
		newPrinter(stdout).Summary(summary)
		if !summary.Simulated {
			writeLastRun(filepath.Dir(runConfig.Runtime.Path), summary)
		}
	}
	if err != nil {
		return err // The error will be logged with full details by main()
	}
	return summaryErr(summary)
}

// summaryErr maps the run status to the error returned to main.
func summaryErr(summary *runstate.Summary) error {
	switch summary.Status() {
	case runstate.StatusOK:
		plog.Info(buildinfo.Name+" finished successfully.", "run", summary.RunID, "duration", summary.Duration().Round(time.Millisecond))
		return nil
	case runstate.StatusDegraded:
		return ErrRunDegraded
	}
	failed, notRun := 0, 0
	for _, b := range summary.Backups {
		switch b.Status() {
		case runstate.StatusFailed:
			failed++
		case runstate.StatusNotRun:
			notRun++
		}
	}
	if notRun > 0 {
		return fmt.Errorf("backup run failed: %d of %d backups failed, %d not run", failed, len(summary.Backups), notRun)
	}
	return fmt.Errorf("backup run failed: %d of %d backups failed", failed, len(summary.Backups))
}

// writeLastRun records the run next to the configuration file. A failure
// only warns, the backups themselves are not affected.
func writeLastRun(dir string, summary *runstate.Summary) {
	if err := metafile.Write(dir, metafile.FromSummary(buildinfo.Version, summary)); err != nil {
		plog.Warn("Could not write last run file", "dir", dir, "error", err)
	}
}
