// Package remotesync contains the backends that copy a finished artifact to
// another location and optionally apply a retention policy there.
package remotesync

import (
	"sort"
	"strings"

	"github.com/paulschiretz/pgl-shipper/pkg/backend"
	"github.com/paulschiretz/pgl-shipper/pkg/faults"
	"github.com/paulschiretz/pgl-shipper/pkg/pathretention"
)

var registry = map[string]func() backend.Sync{
	"s3":    func() backend.Sync { return &S3{} },
	"rsync": func() backend.Sync { return &Rsync{} },
}

// Types returns the supported sync types, sorted.
func Types() []string {
	types := make([]string, 0, len(registry))
	for k := range registry {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}

// New returns an unconfigured sync of the given type.
func New(kind string) (backend.Sync, error) {
	factory, ok := registry[strings.ToLower(kind)]
	if !ok {
		return nil, faults.NewConfigurationError("sync", "type", "unknown sync type %q, valid types are %s", kind, strings.Join(Types(), ", "))
	}
	return factory(), nil
}

const cleanupPrefix = "cleanup."

// remoteCleanup builds the retention policy from the options prefixed with
// "cleanup.", e.g. "cleanup.type: quantity" and "cleanup.amount: 7".
// It returns nil when no remote cleanup is configured.
func remoteCleanup(component string, opts backend.Options) (pathretention.Policy, error) {
	kind := opts.String(cleanupPrefix+"type", "")
	if kind == "" {
		return nil, nil
	}
	policyOpts := make(map[string]string)
	for k, v := range opts {
		if name, ok := strings.CutPrefix(k, cleanupPrefix); ok && name != "type" {
			policyOpts[name] = v
		}
	}
	policy, err := pathretention.New(kind, policyOpts)
	if err != nil {
		return nil, &faults.ConfigurationError{Component: component, Option: cleanupPrefix + "type", Err: err}
	}
	return policy, nil
}
