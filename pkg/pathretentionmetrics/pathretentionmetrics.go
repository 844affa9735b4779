package pathretentionmetrics

import (
	"sync/atomic"

	"github.com/paulschiretz/pgl-shipper/pkg/plog"
)

// Metrics defines the interface for collecting and reporting retention statistics.
type Metrics interface {
	AddArtifactsDeleted(n int64)
	AddArtifactsFailed(n int64)
	AddBytesFreed(n int64)
	LogSummary(msg string, args ...any)
}

// RetentionMetrics holds the counters of a single cleanup.
type RetentionMetrics struct {
	ArtifactsDeleted atomic.Int64
	ArtifactsFailed  atomic.Int64
	BytesFreed       atomic.Int64
}

func (m *RetentionMetrics) AddArtifactsDeleted(n int64) { m.ArtifactsDeleted.Add(n) }
func (m *RetentionMetrics) AddArtifactsFailed(n int64)  { m.ArtifactsFailed.Add(n) }
func (m *RetentionMetrics) AddBytesFreed(n int64)       { m.BytesFreed.Add(n) }

// LogSummary logs the counters, extra args are appended as attributes.
func (m *RetentionMetrics) LogSummary(msg string, args ...any) {
	attrs := []any{
		"artifacts_deleted", m.ArtifactsDeleted.Load(),
		"artifacts_failed", m.ArtifactsFailed.Load(),
		"bytes_freed", m.BytesFreed.Load(),
	}
	plog.Info(msg, append(attrs, args...)...)
}

// NoopMetrics is an implementation of the Metrics interface that performs no operations.
type NoopMetrics struct{}

func (m *NoopMetrics) AddArtifactsDeleted(n int64)        {}
func (m *NoopMetrics) AddArtifactsFailed(n int64)         {}
func (m *NoopMetrics) AddBytesFreed(n int64)              {}
func (m *NoopMetrics) LogSummary(msg string, args ...any) {}

var _ Metrics = (*RetentionMetrics)(nil)
var _ Metrics = (*NoopMetrics)(nil)
