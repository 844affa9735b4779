// Package check contains the backends that validate a freshly created artifact.
//
// A check never modifies the artifact. It reports passed=false when the
// artifact does not meet the expectation and an error only when the check
// itself could not be evaluated.
package check

import (
	"sort"
	"strings"

	"github.com/paulschiretz/pgl-shipper/pkg/backend"
	"github.com/paulschiretz/pgl-shipper/pkg/faults"
)

var registry = map[string]func() backend.Check{
	"sizemin":          func() backend.Check { return &SizeMin{} },
	"sizediffprevious": func() backend.Check { return &SizeDiffPrevious{} },
}

// Types returns the supported check types, sorted.
func Types() []string {
	types := make([]string, 0, len(registry))
	for k := range registry {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}

// New returns an unconfigured check of the given type.
func New(kind string) (backend.Check, error) {
	factory, ok := registry[strings.ToLower(kind)]
	if !ok {
		return nil, faults.NewConfigurationError("check", "type", "unknown check type %q, valid types are %s", kind, strings.Join(Types(), ", "))
	}
	return factory(), nil
}
