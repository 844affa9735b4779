// Package crypt contains the backends that encrypt an artifact after it was
// captured and checked.
package crypt

import (
	"sort"
	"strings"

	"github.com/paulschiretz/pgl-shipper/pkg/backend"
	"github.com/paulschiretz/pgl-shipper/pkg/faults"
)

var registry = map[string]func() backend.Crypter{
	"openssl": func() backend.Crypter { return &OpenSSL{} },
}

// Types returns the supported crypt types, sorted.
func Types() []string {
	types := make([]string, 0, len(registry))
	for k := range registry {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}

// New returns an unconfigured crypter of the given type.
func New(kind string) (backend.Crypter, error) {
	factory, ok := registry[strings.ToLower(kind)]
	if !ok {
		return nil, faults.NewConfigurationError("crypt", "type", "unknown crypt type %q, valid types are %s", kind, strings.Join(Types(), ", "))
	}
	return factory(), nil
}
