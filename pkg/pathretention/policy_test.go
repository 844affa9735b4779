package pathretention

import (
	"fmt"
	"testing"
	"time"

	"github.com/paulschiretz/pgl-shipper/pkg/collector"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
)

var testRef = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func testTarget(t *testing.T) *pathtemplate.Target {
	t.Helper()
	target, err := pathtemplate.New(t.TempDir(), "dump-%Y%m%d.sql", testRef)
	if err != nil {
		t.Fatal(err)
	}
	return target
}

// artifactsEvery creates n artifacts of the given size, the newest one `step` before ref.
func artifactsEvery(n int, size int64, step time.Duration) []collector.Artifact {
	artifacts := make([]collector.Artifact, n)
	for i := 0; i < n; i++ {
		mtime := testRef.Add(-time.Duration(n-i) * step)
		name := fmt.Sprintf("a%03d", i)
		artifacts[i] = collector.NewArtifact("/b/"+name, name, size, mtime, nil)
	}
	return artifacts
}

func names(artifacts []collector.Artifact) map[string]bool {
	m := make(map[string]bool, len(artifacts))
	for _, a := range artifacts {
		m[a.Name] = true
	}
	return m
}

func survivors(all, deleted []collector.Artifact) []collector.Artifact {
	gone := names(deleted)
	var out []collector.Artifact
	for _, a := range all {
		if !gone[a.Name] {
			out = append(out, a)
		}
	}
	return out
}

func TestCapacity(t *testing.T) {
	target := testTarget(t)

	t.Run("Survivors are floor(L/S) newest", func(t *testing.T) {
		testCases := []struct{ n, size, limit int }{
			{10, 100, 350},
			{10, 100, 1000},
			{10, 100, 5000},
			{5, 7, 6},
			{1, 10, 10},
		}
		for _, tc := range testCases {
			t.Run(fmt.Sprintf("N=%d S=%d L=%d", tc.n, tc.size, tc.limit), func(t *testing.T) {
				all := artifactsEvery(tc.n, int64(tc.size), time.Hour)
				p := &Capacity{Limit: int64(tc.limit)}
				deleted, err := p.SelectForDeletion(target, nil, all)
				if err != nil {
					t.Fatal(err)
				}
				want := min(tc.limit/tc.size, tc.n)
				left := survivors(all, deleted)
				if len(left) != want {
					t.Fatalf("expected %d survivors, got %d", want, len(left))
				}
				for i, a := range left {
					if a.Name != all[tc.n-want+i].Name {
						t.Errorf("expected newest artifacts to survive, got %s at %d", a.Name, i)
					}
				}
			})
		}
	})

	t.Run("Current artifact counts towards the limit", func(t *testing.T) {
		all := artifactsEvery(3, 100, time.Hour)
		current := collector.NewArtifact("/b/current", "current", 100, testRef, nil)
		p := &Capacity{Limit: 300}
		deleted, _ := p.SelectForDeletion(target, &current, all)
		if len(deleted) != 1 || deleted[0].Name != "a000" {
			t.Errorf("expected only the oldest to be deleted, got %v", names(deleted))
		}
	})

	t.Run("Oversized current artifact is deleted first with deleteTarget", func(t *testing.T) {
		all := artifactsEvery(3, 100, time.Hour)
		current := collector.NewArtifact("/b/current", "current", 500, testRef, nil)
		p := &Capacity{Limit: 400, DeleteTarget: true}
		deleted, _ := p.SelectForDeletion(target, &current, all)
		if len(deleted) != 1 || deleted[0].Name != "current" {
			t.Errorf("expected only the current artifact to be deleted, got %v", names(deleted))
		}
	})

	t.Run("Oversized current artifact without deleteTarget removes all older", func(t *testing.T) {
		all := artifactsEvery(3, 100, time.Hour)
		current := collector.NewArtifact("/b/current", "current", 500, testRef, nil)
		p := &Capacity{Limit: 400}
		deleted, _ := p.SelectForDeletion(target, &current, all)
		if len(deleted) != 3 || names(deleted)["current"] {
			t.Errorf("expected all older artifacts to be deleted, got %v", names(deleted))
		}
	})

	t.Run("Nothing deleted within limit", func(t *testing.T) {
		all := artifactsEvery(4, 100, time.Hour)
		deleted, _ := (&Capacity{Limit: 400}).SelectForDeletion(target, nil, all)
		if len(deleted) != 0 {
			t.Errorf("expected no deletions, got %d", len(deleted))
		}
	})
}

func TestQuantity(t *testing.T) {
	target := testTarget(t)

	testCases := []struct{ n, amount, want int }{
		{10, 3, 7},
		{10, 10, 0},
		{3, 10, 0},
		{5, 1, 4},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("N=%d A=%d", tc.n, tc.amount), func(t *testing.T) {
			all := artifactsEvery(tc.n, 1, time.Hour)
			deleted, err := (&Quantity{Amount: tc.amount}).SelectForDeletion(target, nil, all)
			if err != nil {
				t.Fatal(err)
			}
			if len(deleted) != tc.want {
				t.Fatalf("expected %d deletions, got %d", tc.want, len(deleted))
			}
			for i, a := range deleted {
				if a.Name != all[i].Name {
					t.Errorf("expected oldest to be deleted first, got %s at %d", a.Name, i)
				}
			}
		})
	}

	t.Run("Current artifact is counted", func(t *testing.T) {
		all := artifactsEvery(3, 1, time.Hour)
		current := collector.NewArtifact("/b/current", "current", 1, testRef, nil)
		deleted, _ := (&Quantity{Amount: 3}).SelectForDeletion(target, &current, all)
		if len(deleted) != 1 || deleted[0].Name != "a000" {
			t.Errorf("expected the oldest to be deleted, got %v", names(deleted))
		}
	})
}

func TestOutdated(t *testing.T) {
	target := testTarget(t)
	all := artifactsEvery(10, 1, 24*time.Hour) // 10 days back, one per day

	deleted, err := (&Outdated{OlderThan: 5 * 24 * time.Hour}).SelectForDeletion(target, nil, all)
	if err != nil {
		t.Fatal(err)
	}
	// Ages are 10..1 days, strictly older than 5 days are 10,9,8,7,6.
	if len(deleted) != 5 {
		t.Errorf("expected 5 deletions, got %d", len(deleted))
	}
	for _, a := range deleted {
		if testRef.Sub(a.MTime) <= 5*24*time.Hour {
			t.Errorf("artifact %s is not outdated", a.Name)
		}
	}
}

func TestStepwise(t *testing.T) {
	target := testTarget(t)

	configs := []*Stepwise{
		{DaysAll: 2, DaysDaily: 5, WeeksWeekly: 3, MonthsMonthly: 6, YearsYearly: 2},
		{DaysAll: 0, DaysDaily: 7, WeeksWeekly: 0, MonthsMonthly: 12, YearsYearly: 0},
		{DaysAll: 30},
		{DaysAll: 1, DaysDaily: 1, WeeksWeekly: 1, MonthsMonthly: 1, YearsYearly: 1},
		{},
	}
	// Several artifacts per day for ~3 years.
	all := artifactsEvery(3*365*3, 1, 8*time.Hour)

	for _, p := range configs {
		t.Run(fmt.Sprintf("%+v", *p), func(t *testing.T) {
			deleted, err := p.SelectForDeletion(target, nil, all)
			if err != nil {
				t.Fatal(err)
			}

			keepAllBoundary := testRef.AddDate(0, 0, -p.DaysAll)
			for _, a := range deleted {
				if !a.MTime.Before(keepAllBoundary) {
					t.Errorf("artifact %s within keep-all zone was deleted", a.Name)
				}
			}

			left := survivors(all, deleted)
			again, err := p.SelectForDeletion(target, nil, left)
			if err != nil {
				t.Fatal(err)
			}
			if len(again) != 0 {
				t.Errorf("expected idempotent second pass, got %d deletions", len(again))
			}
		})
	}

	t.Run("One per bucket in each zone", func(t *testing.T) {
		p := &Stepwise{DaysAll: 1, DaysDaily: 3}
		deleted, _ := p.SelectForDeletion(target, nil, artifactsEvery(6*4, 1, 6*time.Hour))
		left := survivors(artifactsEvery(6*4, 1, 6*time.Hour), deleted)
		days := map[string]int{}
		for _, a := range left {
			if a.MTime.Before(testRef.AddDate(0, 0, -1)) {
				days[a.MTime.Format("2006-01-02")]++
			}
		}
		for day, n := range days {
			if n > 1 {
				t.Errorf("expected at most one artifact for %s in the daily zone, got %d", day, n)
			}
		}
	})

	t.Run("Artifact newer than reference is an error", func(t *testing.T) {
		future := []collector.Artifact{collector.NewArtifact("/b/f", "f", 1, testRef.Add(time.Hour), nil)}
		if _, err := (&Stepwise{DaysAll: 1}).SelectForDeletion(target, nil, future); err == nil {
			t.Error("expected error for artifact newer than the reference time")
		}
	})
}
