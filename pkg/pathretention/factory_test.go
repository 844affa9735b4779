package pathretention

import (
	"testing"
	"time"

	"github.com/paulschiretz/pgl-shipper/pkg/faults"
)

func TestNew(t *testing.T) {
	t.Run("Valid policies", func(t *testing.T) {
		p, err := New("capacity", map[string]string{"size": "10M", "deleteTarget": "true"})
		if err != nil {
			t.Fatal(err)
		}
		if c := p.(*Capacity); c.Limit != 10<<20 || !c.DeleteTarget {
			t.Errorf("unexpected capacity policy %+v", c)
		}

		p, err = New("Quantity", map[string]string{"amount": "7"})
		if err != nil {
			t.Fatal(err)
		}
		if q := p.(*Quantity); q.Amount != 7 {
			t.Errorf("unexpected quantity policy %+v", q)
		}

		p, err = New("outdated", map[string]string{"older": "2w"})
		if err != nil {
			t.Fatal(err)
		}
		if o := p.(*Outdated); o.OlderThan != 14*24*time.Hour {
			t.Errorf("unexpected outdated policy %+v", o)
		}

		p, err = New("stepwise", map[string]string{"daysToKeepAll": "2", "yearsToKeepYearly": "3"})
		if err != nil {
			t.Fatal(err)
		}
		if s := p.(*Stepwise); s.DaysAll != 2 || s.YearsYearly != 3 || s.DaysDaily != 0 {
			t.Errorf("unexpected stepwise policy %+v", s)
		}
	})

	t.Run("Invalid options are configuration errors", func(t *testing.T) {
		testCases := []struct {
			kind    string
			options map[string]string
		}{
			{"capacity", map[string]string{}},
			{"capacity", map[string]string{"size": "lots"}},
			{"capacity", map[string]string{"size": "1M", "deleteTarget": "maybe"}},
			{"quantity", map[string]string{}},
			{"quantity", map[string]string{"amount": "0"}},
			{"outdated", map[string]string{"older": "soon"}},
			{"outdated", map[string]string{"older": "0d"}},
			{"stepwise", map[string]string{"daysToKeepAll": "-1"}},
			{"unknown", nil},
		}
		for _, tc := range testCases {
			t.Run(tc.kind, func(t *testing.T) {
				_, err := New(tc.kind, tc.options)
				if !faults.IsConfiguration(err) {
					t.Errorf("expected configuration error, got %v", err)
				}
			})
		}
	})
}
