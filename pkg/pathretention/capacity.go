package pathretention

import (
	"github.com/paulschiretz/pgl-shipper/pkg/collector"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
)

// Capacity keeps the total size of all artifacts within Limit bytes by
// deleting the oldest artifacts first.
type Capacity struct {
	Limit int64
	// DeleteTarget deletes the current artifact first when it alone exceeds Limit.
	DeleteTarget bool
}

var _ Policy = (*Capacity)(nil)

func (p *Capacity) Name() string { return "capacity" }

// SelectForDeletion deletes the oldest artifacts while the total size, including
// the current artifact, is above the limit. Nothing is deleted while the total
// is within the limit.
func (p *Capacity) SelectForDeletion(_ *pathtemplate.Target, current *collector.Artifact, artifacts []collector.Artifact) ([]collector.Artifact, error) {
	total := collector.TotalSize(artifacts)
	var toDelete []collector.Artifact

	if current != nil {
		total += current.Size
		if p.DeleteTarget && current.Size > p.Limit {
			toDelete = append(toDelete, *current)
			total -= current.Size
		}
	}

	for i := 0; total > p.Limit && i < len(artifacts); i++ {
		toDelete = append(toDelete, artifacts[i])
		total -= artifacts[i].Size
	}
	return toDelete, nil
}
