package pathretention

import (
	"time"

	"github.com/paulschiretz/pgl-shipper/pkg/collector"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
)

// Outdated deletes every artifact older than OlderThan, measured from the
// target's reference time.
type Outdated struct {
	OlderThan time.Duration
}

var _ Policy = (*Outdated)(nil)

func (p *Outdated) Name() string { return "outdated" }

func (p *Outdated) SelectForDeletion(t *pathtemplate.Target, _ *collector.Artifact, artifacts []collector.Artifact) ([]collector.Artifact, error) {
	ref := t.ReferenceTime()
	var toDelete []collector.Artifact
	for _, a := range artifacts {
		if ref.Sub(a.MTime) > p.OlderThan {
			toDelete = append(toDelete, a)
		}
	}
	return toDelete, nil
}
