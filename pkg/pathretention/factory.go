package pathretention

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/paulschiretz/pgl-shipper/pkg/faults"
	"github.com/paulschiretz/pgl-shipper/pkg/util"
)

// Kind names a retention policy in the configuration.
type Kind string

const (
	KindCapacity Kind = "capacity"
	KindQuantity Kind = "quantity"
	KindOutdated Kind = "outdated"
	KindStepwise Kind = "stepwise"
)

// Kinds returns all supported policy kinds, sorted.
func Kinds() []string {
	kinds := []string{string(KindCapacity), string(KindQuantity), string(KindOutdated), string(KindStepwise)}
	sort.Strings(kinds)
	return kinds
}

// New builds the policy named by kind from its string options.
func New(kind string, options map[string]string) (Policy, error) {
	component := "cleanup " + kind
	switch Kind(strings.ToLower(strings.TrimSpace(kind))) {
	case KindCapacity:
		raw, ok := options["size"]
		if !ok {
			return nil, faults.NewConfigurationError(component, "size", "option is required")
		}
		limit, err := util.ParseSize(raw)
		if err != nil {
			return nil, &faults.ConfigurationError{Component: component, Option: "size", Err: err}
		}
		deleteTarget, err := optionalBool(options, "deleteTarget")
		if err != nil {
			return nil, &faults.ConfigurationError{Component: component, Option: "deleteTarget", Err: err}
		}
		return &Capacity{Limit: limit, DeleteTarget: deleteTarget}, nil

	case KindQuantity:
		amount, err := optionalInt(options, "amount", -1)
		if err != nil {
			return nil, &faults.ConfigurationError{Component: component, Option: "amount", Err: err}
		}
		if amount < 1 {
			return nil, faults.NewConfigurationError(component, "amount", "amount must be at least 1")
		}
		return &Quantity{Amount: amount}, nil

	case KindOutdated:
		raw, ok := options["older"]
		if !ok {
			return nil, faults.NewConfigurationError(component, "older", "option is required")
		}
		age, err := util.ParseAge(raw)
		if err != nil {
			return nil, &faults.ConfigurationError{Component: component, Option: "older", Err: err}
		}
		if age <= 0 {
			return nil, faults.NewConfigurationError(component, "older", "age must be greater than zero")
		}
		return &Outdated{OlderThan: age}, nil

	case KindStepwise:
		p := &Stepwise{}
		fields := []struct {
			option string
			dst    *int
		}{
			{"daysToKeepAll", &p.DaysAll},
			{"daysToKeepDaily", &p.DaysDaily},
			{"weeksToKeepWeekly", &p.WeeksWeekly},
			{"monthsToKeepMonthly", &p.MonthsMonthly},
			{"yearsToKeepYearly", &p.YearsYearly},
		}
		for _, f := range fields {
			v, err := optionalInt(options, f.option, 0)
			if err != nil {
				return nil, &faults.ConfigurationError{Component: component, Option: f.option, Err: err}
			}
			if v < 0 {
				return nil, faults.NewConfigurationError(component, f.option, "value must not be negative")
			}
			*f.dst = v
		}
		return p, nil

	default:
		return nil, faults.NewConfigurationError("cleanup", "type", "unknown cleanup type %q, valid types are %s", kind, strings.Join(Kinds(), ", "))
	}
}

func optionalBool(options map[string]string, key string) (bool, error) {
	raw, ok := options[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", raw)
	}
	return v, nil
}

func optionalInt(options map[string]string, key string, def int) (int, error) {
	raw, ok := options[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}
