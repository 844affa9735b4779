package metrics

import (
	"sync/atomic"

	"github.com/paulschiretz/pgl-shipper/pkg/plog"
)

// Metrics defines the interface for collecting and reporting run statistics.
type Metrics interface {
	AddBackupsOK(n int64)
	AddBackupsDegraded(n int64)
	AddBackupsFailed(n int64)
	AddBytesProduced(n int64)
	AddStagesSkipped(n int64)
	LogSummary(msg string, args ...any)
}

// RunMetrics holds the atomic counters for tracking a run's progress.
// It is the concrete implementation of the Metrics interface.
type RunMetrics struct {
	BackupsOK       atomic.Int64
	BackupsDegraded atomic.Int64
	BackupsFailed   atomic.Int64
	BytesProduced   atomic.Int64
	StagesSkipped   atomic.Int64
}

func (m *RunMetrics) AddBackupsOK(n int64)       { m.BackupsOK.Add(n) }
func (m *RunMetrics) AddBackupsDegraded(n int64) { m.BackupsDegraded.Add(n) }
func (m *RunMetrics) AddBackupsFailed(n int64)   { m.BackupsFailed.Add(n) }
func (m *RunMetrics) AddBytesProduced(n int64)   { m.BytesProduced.Add(n) }
func (m *RunMetrics) AddStagesSkipped(n int64)   { m.StagesSkipped.Add(n) }

// LogSummary prints a summary of the run.
func (m *RunMetrics) LogSummary(msg string, args ...any) {
	attrs := []any{
		"backups_ok", m.BackupsOK.Load(),
		"backups_degraded", m.BackupsDegraded.Load(),
		"backups_failed", m.BackupsFailed.Load(),
		"bytes_produced", m.BytesProduced.Load(),
		"stages_skipped", m.StagesSkipped.Load(),
	}
	plog.Info(msg, append(attrs, args...)...)
}

// NoopMetrics is an implementation of the Metrics interface that performs no operations.
// It can be used to disable metrics collection without changing the calling code.
type NoopMetrics struct{}

func (m *NoopMetrics) AddBackupsOK(n int64)               {}
func (m *NoopMetrics) AddBackupsDegraded(n int64)         {}
func (m *NoopMetrics) AddBackupsFailed(n int64)           {}
func (m *NoopMetrics) AddBytesProduced(n int64)           {}
func (m *NoopMetrics) AddStagesSkipped(n int64)           {}
func (m *NoopMetrics) LogSummary(msg string, args ...any) {}

// Statically assert that our types implement the interface.
var _ Metrics = (*RunMetrics)(nil)
var _ Metrics = (*NoopMetrics)(nil)
