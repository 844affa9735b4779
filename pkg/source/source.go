// Package source contains the backends that capture data into a backup artifact.
package source

import (
	"sort"
	"strings"

	"github.com/paulschiretz/pgl-shipper/pkg/backend"
	"github.com/paulschiretz/pgl-shipper/pkg/faults"
)

var registry = map[string]func() backend.Source{
	"command":   func() backend.Source { return &Command{} },
	"tar":       func() backend.Source { return &Tar{} },
	"mysqldump": func() backend.Source { return &Mysqldump{} },
}

// Types returns the supported source types, sorted.
func Types() []string {
	types := make([]string, 0, len(registry))
	for k := range registry {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}

// New returns an unconfigured source of the given type.
func New(kind string) (backend.Source, error) {
	factory, ok := registry[strings.ToLower(kind)]
	if !ok {
		return nil, faults.NewConfigurationError("source", "type", "unknown source type %q, valid types are %s", kind, strings.Join(Types(), ", "))
	}
	return factory(), nil
}
