package engine

import (
	"context"

	"github.com/paulschiretz/pgl-shipper/pkg/collector"
	"github.com/paulschiretz/pgl-shipper/pkg/planner"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
)

// Listing holds the artifacts found for one backup definition.
type Listing struct {
	Name      string
	Artifacts []collector.Artifact
	Err       error
}

// ExecuteList collects the existing artifacts of every planned backup in the
// plan's sort order.
func (r *Runner) ExecuteList(ctx context.Context, p *planner.ListPlan) ([]Listing, error) {
	var listings []Listing
	for _, b := range p.Backups {
		if err := ctx.Err(); err != nil {
			return listings, err
		}
		l := Listing{Name: b.Name}
		if b.SetupErr != nil {
			l.Err = b.SetupErr
			listings = append(listings, l)
			continue
		}
		artifacts, err := collectAll(ctx, b.Target)
		if err != nil {
			l.Err = err
		} else {
			p.Order.Apply(artifacts)
			l.Artifacts = artifacts
		}
		plog.Debug("Listed artifacts", "backup", b.Name, "count", len(l.Artifacts))
		listings = append(listings, l)
	}
	return listings, nil
}
