package cmd

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/paulschiretz/pgl-shipper/pkg/engine"
	"github.com/paulschiretz/pgl-shipper/pkg/flagparse"
	"github.com/paulschiretz/pgl-shipper/pkg/metafile"
	"github.com/paulschiretz/pgl-shipper/pkg/planner"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
)

// RunList prints the existing artifacts of every selected backup.
func RunList(ctx context.Context, flagMap map[string]any) error {
	order := planner.Desc
	if s, ok := flagMap["sort"].(string); ok {
		var err error
		if order, err = planner.ParseSortOrder(s); err != nil {
			return err
		}
	}

	runConfig, err := loadRunConfig(flagparse.List, flagMap)
	if err != nil {
		return err
	}

	p := newPrinter(stdout)
	lastRun, err := metafile.Read(filepath.Dir(runConfig.Runtime.Path))
	switch {
	case err == nil:
		p.LastRun(lastRun)
	case !os.IsNotExist(err):
		plog.Warn("Could not read last run file", "error", err)
	}

	listPlan := planner.GenerateListPlan(runConfig, order, time.Now())
	listings, err := engine.NewRunner(nil).ExecuteList(ctx, listPlan)
	p.Listings(listings)
	return err
}
