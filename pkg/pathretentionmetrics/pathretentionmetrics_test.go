package pathretentionmetrics

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/paulschiretz/pgl-shipper/pkg/plog"
)

func TestRetentionMetrics_Adders(t *testing.T) {
	t.Run("correctly increments all counters", func(t *testing.T) {
		m := &RetentionMetrics{}

		m.AddArtifactsDeleted(5)
		m.AddArtifactsFailed(2)
		m.AddBytesFreed(4096)

		if got := m.ArtifactsDeleted.Load(); got != 5 {
			t.Errorf("expected ArtifactsDeleted to be 5, got %d", got)
		}
		if got := m.ArtifactsFailed.Load(); got != 2 {
			t.Errorf("expected ArtifactsFailed to be 2, got %d", got)
		}
		if got := m.BytesFreed.Load(); got != 4096 {
			t.Errorf("expected BytesFreed to be 4096, got %d", got)
		}
	})
}

func TestRetentionMetrics_Log(t *testing.T) {
	t.Run("logs the correct summary values", func(t *testing.T) {
		// --- Setup: Redirect plog output to capture log output ---
		var logBuf bytes.Buffer
		plog.SetOutput(&logBuf)
		t.Cleanup(func() { plog.SetOutput(os.Stderr) }) // Restore original output after test.

		// --- Act ---
		m := &RetentionMetrics{}
		m.AddArtifactsDeleted(10)
		m.AddArtifactsFailed(3)
		m.LogSummary("Test Retention Summary", "policy", "quantity")

		// --- Assert ---
		output := logBuf.String()

		for _, want := range []string{
			"msg=\"Test Retention Summary\"",
			"artifacts_deleted=10",
			"artifacts_failed=3",
			"bytes_freed=0",
			"policy=quantity",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected log output to contain %q, but it didn't. Got: %s", want, output)
			}
		}
	})
}

func TestNoopMetrics(t *testing.T) {
	t.Run("all methods execute without panicking", func(t *testing.T) {
		m := &NoopMetrics{}

		defer func() {
			if r := recover(); r != nil {
				t.Errorf("NoopMetrics method panicked: %v", r)
			}
		}()

		m.AddArtifactsDeleted(1)
		m.AddArtifactsFailed(1)
		m.AddBytesFreed(1)
		m.LogSummary("noop test")
	})
}
