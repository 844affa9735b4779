package pathretention

import (
	"fmt"
	"time"

	"github.com/paulschiretz/pgl-shipper/pkg/collector"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
)

// Stepwise implements a grandfather-father-son schedule. Going back from the
// reference time, the zones follow each other: keep everything for DaysAll days,
// then one artifact per day for DaysDaily days, one per ISO week for WeeksWeekly
// weeks, one per month for MonthsMonthly months and one per year for YearsYearly
// years. Anything older is deleted.
type Stepwise struct {
	DaysAll       int
	DaysDaily     int
	WeeksWeekly   int
	MonthsMonthly int
	YearsYearly   int
}

var _ Policy = (*Stepwise)(nil)

func (p *Stepwise) Name() string { return "stepwise" }

type zone int

const (
	zoneAll zone = iota
	zoneDaily
	zoneWeekly
	zoneMonthly
	zoneYearly
	zoneExpired
)

// boundaries holds the oldest instant that still belongs to each zone.
type boundaries struct {
	all, daily, weekly, monthly, yearly time.Time
}

func (p *Stepwise) boundaries(ref time.Time) boundaries {
	var b boundaries
	b.all = ref.AddDate(0, 0, -p.DaysAll)
	b.daily = b.all.AddDate(0, 0, -p.DaysDaily)
	b.weekly = b.daily.AddDate(0, 0, -7*p.WeeksWeekly)
	b.monthly = b.weekly.AddDate(0, -p.MonthsMonthly, 0)
	b.yearly = b.monthly.AddDate(-p.YearsYearly, 0, 0)
	return b
}

func (b boundaries) zoneOf(mtime time.Time) zone {
	switch {
	case !mtime.Before(b.all):
		return zoneAll
	case !mtime.Before(b.daily):
		return zoneDaily
	case !mtime.Before(b.weekly):
		return zoneWeekly
	case !mtime.Before(b.monthly):
		return zoneMonthly
	case !mtime.Before(b.yearly):
		return zoneYearly
	default:
		return zoneExpired
	}
}

// bucketKey identifies the calendar period an artifact belongs to within its zone.
func bucketKey(z zone, mtime time.Time) string {
	switch z {
	case zoneDaily:
		return "d" + mtime.Format("2006-01-02")
	case zoneWeekly:
		year, week := mtime.ISOWeek()
		return fmt.Sprintf("w%d-%02d", year, week)
	case zoneMonthly:
		return "m" + mtime.Format("2006-01")
	case zoneYearly:
		return "y" + mtime.Format("2006")
	default:
		return ""
	}
}

// SelectForDeletion keeps the earliest artifact of every bucket. Applying it
// again to the surviving artifacts selects nothing. An artifact newer than the
// reference time fits no zone and is reported as an error.
func (p *Stepwise) SelectForDeletion(t *pathtemplate.Target, _ *collector.Artifact, artifacts []collector.Artifact) ([]collector.Artifact, error) {
	ref := t.ReferenceTime()
	b := p.boundaries(ref)

	kept := make(map[string]bool)
	var toDelete []collector.Artifact
	for _, a := range artifacts {
		if a.MTime.After(ref) {
			return nil, fmt.Errorf("artifact %s is newer than the reference time %s", a.Path, ref.Format(time.RFC3339))
		}

		mtime := a.MTime.In(ref.Location())
		z := b.zoneOf(mtime)
		switch z {
		case zoneAll:
			continue
		case zoneExpired:
			toDelete = append(toDelete, a)
			continue
		}

		key := bucketKey(z, mtime)
		if kept[key] {
			toDelete = append(toDelete, a)
			continue
		}
		kept[key] = true
	}
	return toDelete, nil
}
