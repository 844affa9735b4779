package engine

import (
	"context"
	"fmt"

	"github.com/paulschiretz/pgl-shipper/pkg/backend"
	"github.com/paulschiretz/pgl-shipper/pkg/collector"
	"github.com/paulschiretz/pgl-shipper/pkg/hints"
	"github.com/paulschiretz/pgl-shipper/pkg/metrics"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
	"github.com/paulschiretz/pgl-shipper/pkg/planner"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
	"github.com/paulschiretz/pgl-shipper/pkg/preflight"
	"github.com/paulschiretz/pgl-shipper/pkg/runstate"
)

// ExecuteRun runs every planned backup and returns the run summary. Backup
// failures are reported through the summary; the returned error is only set
// when ctx was canceled.
func (r *Runner) ExecuteRun(ctx context.Context, p *planner.RunPlan) (*runstate.Summary, error) {
	summary := &runstate.Summary{
		RunID:     r.newRunID(),
		Simulated: p.Simulate,
		Started:   r.now(),
	}

	var m metrics.Metrics
	if p.Metrics {
		m = &metrics.RunMetrics{}
	} else {
		m = &metrics.NoopMetrics{}
	}

	if p.Simulate {
		plog.Info("[SIMULATE] Starting run", "run", summary.RunID, "backups", len(p.Backups))
	} else {
		plog.Info("Starting run", "run", summary.RunID, "backups", len(p.Backups))
	}

	stopped := false
	var runErr error
	for _, b := range p.Backups {
		state := runstate.New(b.Name)
		switch {
		case b.SetupErr != nil:
			plog.Error("Backup is not set up, skipping", "backup", b.Name, "error", b.SetupErr)
			state.SetSetupError(b.SetupErr)
		case stopped || runErr != nil:
			markNotRun(state, b, runstate.StageSource)
		default:
			runErr = r.executeBackup(ctx, b, p.Simulate, state)
			if runErr == nil && b.StopOnFailure && !state.SourceSucceeded() {
				plog.Warn("Backup failed and stops the run", "backup", b.Name)
				stopped = true
			}
		}
		summary.Add(state)
		recordMetrics(m, b, state, p.Simulate)
		plog.Info("Backup finished", "backup", b.Name, "status", state.Status())
	}

	summary.Finished = r.now()
	m.LogSummary("Run finished", "run", summary.RunID, "status", summary.Status())
	return summary, runErr
}

func (r *Runner) executeBackup(ctx context.Context, b *planner.BackupPlan, simulate bool, state *runstate.State) error {
	plog.Info("Starting backup", "backup", b.Name, "source", b.Source.Type, "target", b.Target.Path())

	if err := preflight.Run(b.Target, b.Preflight); err != nil {
		plog.Error("Preflight failed", "backup", b.Name, "error", err)
		state.Record(runstate.StageSource, b.Source.Type, runstate.Failed, fmt.Errorf("preflight: %w", err))
		return r.afterSourceFailure(ctx, b, state, simulate)
	}

	if err := r.hooks.RunPreHook(ctx, "backup", b.Hooks); err != nil && !hints.IsHint(err) {
		plog.Error("Pre-backup hook failed", "backup", b.Name, "error", err)
		state.Record(runstate.StageSource, b.Source.Type, runstate.Failed, err)
		return r.afterSourceFailure(ctx, b, state, simulate)
	}
	defer func() {
		if err := r.hooks.RunPostHook(ctx, "backup", b.Hooks); err != nil && !hints.IsHint(err) {
			plog.Warn("Post-backup hook failed", "backup", b.Name, "error", err)
		}
	}()

	if runStage(ctx, state, runstate.StageSource, b.Source.Type, false, simulate, b.Source.Backend, b.Target, b.Source.Backend.Backup) == runstate.Failed {
		return r.afterSourceFailure(ctx, b, state, simulate)
	}
	return r.executeFollowUps(ctx, b, state, simulate)
}

// afterSourceFailure applies the stop policy of a backup whose source failed.
func (r *Runner) afterSourceFailure(ctx context.Context, b *planner.BackupPlan, state *runstate.State, simulate bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.StopOnFailure {
		markNotRun(state, b, runstate.StageCheck)
		return nil
	}
	return r.executeFollowUps(ctx, b, state, simulate)
}

// executeFollowUps runs the stages after the source.
func (r *Runner) executeFollowUps(ctx context.Context, b *planner.BackupPlan, state *runstate.State, simulate bool) error {
	for _, c := range b.Checks {
		if err := ctx.Err(); err != nil {
			return err
		}
		runStage(ctx, state, runstate.StageCheck, c.Type, false, simulate, c.Backend, b.Target, func(ctx context.Context, t *pathtemplate.Target) error {
			passed, err := c.Backend.Check(ctx, t, c.Value, collector.NewLocal(t))
			if err != nil {
				return err
			}
			if !passed {
				return fmt.Errorf("check %s did not pass for value %q", c.Type, c.Value)
			}
			return nil
		})
	}

	if b.Crypt != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		runStage(ctx, state, runstate.StageCrypt, b.Crypt.Type, b.Crypt.SkipOnFailure, simulate, b.Crypt.Backend, b.Target, b.Crypt.Backend.Crypt)
	}

	for _, s := range b.Syncs {
		if err := ctx.Err(); err != nil {
			return err
		}
		runStage(ctx, state, runstate.StageSync, s.Type, s.SkipOnFailure, simulate, s.Backend, b.Target, s.Backend.Sync)
	}

	if b.Cleanup != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		// The retention plan carries the simulate flag itself.
		runStage(ctx, state, runstate.StageCleanup, b.Cleanup.Type, b.Cleanup.SkipOnFailure, false, nil, b.Target, func(ctx context.Context, t *pathtemplate.Target) error {
			report, err := b.Cleanup.Backend.Cleanup(ctx, t, collector.NewLocal(t), b.Retention)
			plog.Debug("Cleanup report", "backup", b.Name, "policy", report.Policy, "candidates", report.Candidates,
				"deleted", len(report.Deleted), "failed", len(report.Failed), "simulated", report.Simulated)
			return err
		})
	}
	return ctx.Err()
}

// runStage executes one stage action and records its outcome. In simulate
// mode the backend's Simulator capability replaces the action; a backend
// without it succeeds without doing anything.
func runStage(ctx context.Context, state *runstate.State, stage runstate.Stage, typ string, skipOnFailure, simulate bool,
	b any, t *pathtemplate.Target, action func(context.Context, *pathtemplate.Target) error) runstate.Outcome {

	if skipOnFailure && state.HasFailure() {
		plog.Warn("Skipping stage after an earlier failure", "backup", state.Name, "stage", stage, "type", typ)
		state.Record(stage, typ, runstate.Skipped, nil)
		return runstate.Skipped
	}

	var err error
	if simulate {
		if s, ok := b.(backend.Simulator); ok {
			err = s.Simulate(ctx, t)
		} else {
			plog.Info("[SIMULATE] Executing stage", "backup", state.Name, "stage", stage, "type", typ)
		}
	} else {
		err = action(ctx, t)
	}

	if err != nil {
		plog.Error("Stage failed", "backup", state.Name, "stage", stage, "type", typ, "error", err)
		state.Record(stage, typ, runstate.Failed, err)
		return runstate.Failed
	}
	plog.Debug("Stage executed", "backup", state.Name, "stage", stage, "type", typ)
	state.Record(stage, typ, runstate.Executed, nil)
	return runstate.Executed
}

// markNotRun lists every configured stage from the given one onwards as never
// attempted.
func markNotRun(state *runstate.State, b *planner.BackupPlan, from runstate.Stage) {
	if from <= runstate.StageSource {
		state.MarkNotRun(runstate.StageSource, b.Source.Type)
	}
	if from <= runstate.StageCheck {
		for _, c := range b.Checks {
			state.MarkNotRun(runstate.StageCheck, c.Type)
		}
	}
	if from <= runstate.StageCrypt && b.Crypt != nil {
		state.MarkNotRun(runstate.StageCrypt, b.Crypt.Type)
	}
	if from <= runstate.StageSync {
		for _, s := range b.Syncs {
			state.MarkNotRun(runstate.StageSync, s.Type)
		}
	}
	if from <= runstate.StageCleanup && b.Cleanup != nil {
		state.MarkNotRun(runstate.StageCleanup, b.Cleanup.Type)
	}
}

func recordMetrics(m metrics.Metrics, b *planner.BackupPlan, state *runstate.State, simulate bool) {
	switch state.Status() {
	case runstate.StatusOK:
		m.AddBackupsOK(1)
	case runstate.StatusDegraded:
		m.AddBackupsDegraded(1)
	case runstate.StatusNotRun:
	default:
		m.AddBackupsFailed(1)
	}
	var skipped int
	for _, st := range runstate.Stages {
		skipped += state.Counter(st).Skipped
	}
	m.AddStagesSkipped(int64(skipped + len(state.NotRun())))
	if simulate || b.Target == nil || !state.SourceSucceeded() {
		return
	}
	if size, ok := b.Target.Size(); ok {
		m.AddBytesProduced(size)
	}
}
