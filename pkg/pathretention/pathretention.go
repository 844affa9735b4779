// Package pathretention retires old backup artifacts according to a retention policy.
//
// A policy only selects the artifacts to delete. The PathRetainer collects the
// artifacts, asks the policy for a delete set and removes every member one by
// one. A failed delete is recorded and never stops the remaining deletes. The
// same code path runs in simulate mode, where nothing is removed.
package pathretention

import (
	"context"
	"errors"
	"fmt"

	"github.com/paulschiretz/pgl-shipper/pkg/collector"
	"github.com/paulschiretz/pgl-shipper/pkg/faults"
	"github.com/paulschiretz/pgl-shipper/pkg/pathretentionmetrics"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
)

// Policy selects the artifacts that have to be deleted.
type Policy interface {
	// Name identifies the policy in logs.
	Name() string
	// SelectForDeletion returns the artifacts to delete in deletion order.
	// artifacts are ordered oldest first. current is the artifact produced by
	// the running backup or nil if it does not exist.
	SelectForDeletion(t *pathtemplate.Target, current *collector.Artifact, artifacts []collector.Artifact) ([]collector.Artifact, error)
}

// Report describes the outcome of one cleanup.
type Report struct {
	Policy     string
	Candidates int
	// Deleted holds removed artifacts, or the ones that would be removed when Simulated.
	Deleted    []collector.Artifact
	Failed     []collector.Artifact
	BytesFreed int64
	Simulated  bool
}

// PathRetainer applies a Policy to the artifacts of a Collector.
type PathRetainer struct {
	policy Policy
}

// NewPathRetainer creates a PathRetainer for the given policy.
func NewPathRetainer(policy Policy) *PathRetainer {
	return &PathRetainer{policy: policy}
}

// Policy returns the configured policy.
func (r *PathRetainer) Policy() Policy {
	return r.policy
}

// Cleanup deletes the artifacts selected by the policy. All deletes are
// attempted; their failures are joined into the returned error.
func (r *PathRetainer) Cleanup(ctx context.Context, t *pathtemplate.Target, c collector.Collector, p *Plan) (Report, error) {
	report := Report{Policy: r.policy.Name(), Simulated: p.Simulate}

	artifacts, err := c.BackupFiles(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to collect backup files: %w", err)
	}
	report.Candidates = len(artifacts)

	var current *collector.Artifact
	if a, ok, err := c.Current(ctx); err != nil {
		plog.Warn("Cannot inspect the current backup, ignoring it for cleanup", "error", err)
	} else if ok {
		current = &a
	}

	toDelete, err := r.policy.SelectForDeletion(t, current, artifacts)
	if err != nil {
		return report, fmt.Errorf("%s cleanup: %w", r.policy.Name(), err)
	}

	if len(toDelete) == 0 {
		if p.Simulate {
			plog.Debug("[SIMULATE] No backups need deletion", "policy", r.policy.Name())
		} else {
			plog.Debug("No backups need deletion", "policy", r.policy.Name())
		}
		return report, nil
	}

	var m pathretentionmetrics.Metrics
	if p.Metrics {
		m = &pathretentionmetrics.RetentionMetrics{}
	} else {
		m = &pathretentionmetrics.NoopMetrics{}
	}
	defer m.LogSummary("Cleanup finished", "policy", r.policy.Name())

	run := &task{ctx: ctx, simulate: p.Simulate, metrics: m, report: &report}
	err = run.execute(toDelete)
	return report, err
}

// Simulate computes the delete set without removing anything.
func (r *PathRetainer) Simulate(ctx context.Context, t *pathtemplate.Target, c collector.Collector) (Report, error) {
	return r.Cleanup(ctx, t, c, &Plan{Simulate: true})
}

// task holds the mutable state of a single cleanup.
type task struct {
	ctx      context.Context
	simulate bool
	metrics  pathretentionmetrics.Metrics
	report   *Report
}

func (t *task) execute(toDelete []collector.Artifact) error {
	if t.simulate {
		plog.Info("[SIMULATE] Deleting outdated backups", "count", len(toDelete), "policy", t.report.Policy)
	} else {
		plog.Info("Deleting outdated backups", "count", len(toDelete), "policy", t.report.Policy)
	}

	var errs []error
	for _, a := range toDelete {
		// Check for cancellation before each deletion.
		select {
		case <-t.ctx.Done():
			return errors.Join(append(errs, t.ctx.Err())...)
		default:
		}

		if t.simulate {
			plog.Notice("[SIMULATE] DELETE", "path", a.Path, "size", a.Size)
			t.report.Deleted = append(t.report.Deleted, a)
			t.report.BytesFreed += a.Size
			continue
		}

		plog.Notice("DELETE", "path", a.Path, "size", a.Size)
		if err := a.Delete(t.ctx); err != nil {
			t.metrics.AddArtifactsFailed(1)
			t.report.Failed = append(t.report.Failed, a)
			errs = append(errs, &faults.FileSystemError{Op: "delete", Path: a.Path, Err: err})
			plog.Warn("Failed to delete outdated backup", "path", a.Path, "error", err)
			continue
		}
		t.metrics.AddArtifactsDeleted(1)
		t.metrics.AddBytesFreed(a.Size)
		t.report.Deleted = append(t.report.Deleted, a)
		t.report.BytesFreed += a.Size
	}
	return errors.Join(errs...)
}
