package backend

import (
	"strconv"
	"strings"

	"github.com/paulschiretz/pgl-shipper/pkg/faults"
)

// Options are the string key/value settings of a backend.
type Options map[string]string

// String returns the option or def when it is missing or blank.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// Required returns the option or a configuration error naming component.
func (o Options) Required(component, key string) (string, error) {
	v := o.String(key, "")
	if v == "" {
		return "", faults.NewConfigurationError(component, key, "option is required")
	}
	return v, nil
}

// Bool parses a boolean option.
func (o Options) Bool(component, key string, def bool) (bool, error) {
	raw := strings.TrimSpace(o.String(key, ""))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, faults.NewConfigurationError(component, key, "invalid boolean %q", raw)
	}
	return v, nil
}

// List splits a comma separated option into trimmed, non-empty values.
func (o Options) List(key string) []string {
	var out []string
	for _, v := range strings.Split(o.String(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
