package pathretention

import (
	"github.com/paulschiretz/pgl-shipper/pkg/collector"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
)

// Quantity keeps at most Amount artifacts, counting the current one.
type Quantity struct {
	Amount int
}

var _ Policy = (*Quantity)(nil)

func (p *Quantity) Name() string { return "quantity" }

// SelectForDeletion deletes the oldest artifacts until Amount remain.
func (p *Quantity) SelectForDeletion(_ *pathtemplate.Target, current *collector.Artifact, artifacts []collector.Artifact) ([]collector.Artifact, error) {
	count := len(artifacts)
	if current != nil {
		count++
	}

	var toDelete []collector.Artifact
	for i := 0; count > p.Amount && i < len(artifacts); i++ {
		toDelete = append(toDelete, artifacts[i])
		count--
	}
	return toDelete, nil
}
