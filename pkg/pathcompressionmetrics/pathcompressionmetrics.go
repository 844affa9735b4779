package pathcompressionmetrics

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/paulschiretz/pgl-shipper/pkg/plog"
)

// Metrics defines the interface for collecting and reporting in-process compression statistics.
type Metrics interface {
	AddFilesCompressed(n int64)
	AddFilesFailed(n int64)
	AddOriginalBytes(n int64)
	AddCompressedBytes(n int64)
	LogSummary(msg string, args ...any)
	StartProgress(msg string, interval time.Duration, args ...any)
	StopProgress()
}

// CompressionMetrics holds the counters of one compressed artifact.
type CompressionMetrics struct {
	FilesCompressed atomic.Int64
	FilesFailed     atomic.Int64
	OriginalBytes   atomic.Int64
	CompressedBytes atomic.Int64

	stopChan chan struct{}
	doneChan chan struct{}
}

func (m *CompressionMetrics) AddFilesCompressed(n int64) { m.FilesCompressed.Add(n) }
func (m *CompressionMetrics) AddFilesFailed(n int64)     { m.FilesFailed.Add(n) }
func (m *CompressionMetrics) AddOriginalBytes(n int64)   { m.OriginalBytes.Add(n) }
func (m *CompressionMetrics) AddCompressedBytes(n int64) { m.CompressedBytes.Add(n) }

// StartProgress logs the counters every interval until StopProgress is called.
// Large dumps can take minutes to compress.
func (m *CompressionMetrics) StartProgress(msg string, interval time.Duration, args ...any) {
	m.stopChan = make(chan struct{})
	m.doneChan = make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer close(m.doneChan)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.LogSummary(msg, args...)
			case <-m.stopChan:
				return
			}
		}
	}()
}

// StopProgress stops the progress logging and waits for the last line to be written.
func (m *CompressionMetrics) StopProgress() {
	if m.stopChan != nil {
		close(m.stopChan)
		<-m.doneChan
		m.stopChan = nil
	}
}

// LogSummary logs the current state of the metrics, extra args are appended as attributes.
func (m *CompressionMetrics) LogSummary(msg string, args ...any) {
	orig := m.OriginalBytes.Load()
	comp := m.CompressedBytes.Load()

	var ratio float64
	if orig > 0 {
		ratio = float64(comp) / float64(orig) * 100.0
	}

	attrs := []any{
		"files_compressed", m.FilesCompressed.Load(),
		"files_failed", m.FilesFailed.Load(),
		"original_bytes", orig,
		"compressed_bytes", comp,
		"ratio_pct", fmt.Sprintf("%.2f%%", ratio),
	}
	plog.Info(msg, append(attrs, args...)...)
}

// NoopMetrics is an implementation of the Metrics interface that performs no operations.
type NoopMetrics struct{}

func (m *NoopMetrics) AddFilesCompressed(n int64)                                    {}
func (m *NoopMetrics) AddFilesFailed(n int64)                                        {}
func (m *NoopMetrics) AddOriginalBytes(n int64)                                      {}
func (m *NoopMetrics) AddCompressedBytes(n int64)                                    {}
func (m *NoopMetrics) LogSummary(msg string, args ...any)                            {}
func (m *NoopMetrics) StartProgress(msg string, interval time.Duration, args ...any) {}
func (m *NoopMetrics) StopProgress()                                                 {}

// Statically assert that our types implement the interface.
var _ Metrics = (*CompressionMetrics)(nil)
var _ Metrics = (*NoopMetrics)(nil)
