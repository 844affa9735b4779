package check

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paulschiretz/pgl-shipper/pkg/backend"
	"github.com/paulschiretz/pgl-shipper/pkg/collector"
	"github.com/paulschiretz/pgl-shipper/pkg/faults"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
	"github.com/paulschiretz/pgl-shipper/pkg/util"
)

// artifactSize returns the size of the artifact before encryption, which is
// what exists on disk while checks run.
func artifactSize(t *pathtemplate.Target) (int64, error) {
	info, err := os.Stat(t.PathUncrypted())
	if err != nil {
		return 0, &faults.FileSystemError{Op: "stat", Path: t.PathUncrypted(), Err: err}
	}
	return info.Size(), nil
}

// SizeMin fails when the artifact is smaller than a given size, e.g. "10M".
type SizeMin struct{}

var _ backend.Check = (*SizeMin)(nil)

func (c *SizeMin) Setup(backend.Env, backend.Options) error { return nil }

func (c *SizeMin) Check(_ context.Context, t *pathtemplate.Target, value string, _ collector.Collector) (bool, error) {
	minSize, err := util.ParseSize(value)
	if err != nil {
		return false, &faults.ConfigurationError{Component: "check sizemin", Option: "value", Err: err}
	}
	size, err := artifactSize(t)
	if err != nil {
		return false, err
	}
	passed := size >= minSize
	plog.Debug("Checked minimum size", "path", t.PathUncrypted(), "size", size, "min", minSize, "passed", passed)
	return passed, nil
}

// SizeDiffPrevious fails when the artifact size deviates from the newest
// previous artifact by more than the given percentage, e.g. "20" or "20%".
// The first backup always passes.
type SizeDiffPrevious struct{}

var _ backend.Check = (*SizeDiffPrevious)(nil)

func (c *SizeDiffPrevious) Setup(backend.Env, backend.Options) error { return nil }

func parsePercent(value string) (float64, error) {
	raw := strings.TrimSuffix(strings.TrimSpace(value), "%")
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil || p < 0 {
		return 0, fmt.Errorf("invalid percentage %q", value)
	}
	return p, nil
}

func (c *SizeDiffPrevious) Check(ctx context.Context, t *pathtemplate.Target, value string, coll collector.Collector) (bool, error) {
	percent, err := parsePercent(value)
	if err != nil {
		return false, &faults.ConfigurationError{Component: "check sizediffprevious", Option: "value", Err: err}
	}
	size, err := artifactSize(t)
	if err != nil {
		return false, err
	}
	artifacts, err := coll.BackupFiles(ctx)
	if err != nil {
		return false, err
	}
	if len(artifacts) == 0 {
		plog.Debug("No previous backup to compare with", "path", t.PathUncrypted())
		return true, nil
	}
	collector.Sort(artifacts)
	previous := artifacts[len(artifacts)-1]
	if previous.Size == 0 {
		return size == 0, nil
	}

	diff := math.Abs(float64(size-previous.Size)) / float64(previous.Size) * 100
	passed := diff <= percent
	plog.Debug("Checked size difference", "path", t.PathUncrypted(), "previous", previous.Path,
		"diff_percent", fmt.Sprintf("%.2f", diff), "allowed_percent", percent, "passed", passed)
	return passed, nil
}
