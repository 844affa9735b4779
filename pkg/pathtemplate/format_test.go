package pathtemplate

import (
	"regexp"
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	ref := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

	testCases := []struct {
		template string
		expected string
	}{
		{"dump-%Y%m%d-%H%M%S.sql", "dump-20240305-140709.sql"},
		{"%y/%j", "24/065"},
		{"%a-%A-%b-%B", "Tue-Tuesday-Mar-March"},
		{"%I%p", "02PM"},
		{"%u%w", "22"},
		{"%G-W%V", "2024-W10"},
		{"%s", "1709647629"},
		{"100%%", "100%"},
		{"%%Y", "%Y"},
		{"plain", "plain"},
		{"trailing%", "trailing%"},
		{"%Q", "%Q"},
		{"dump-%e.sql", "dump-%e.sql"},
		{"%z%Z", "%z%Z"},
	}

	for _, tc := range testCases {
		t.Run(tc.template, func(t *testing.T) {
			if got := Format(tc.template, ref); got != tc.expected {
				t.Errorf("Format(%q) = %q, want %q", tc.template, got, tc.expected)
			}
		})
	}
}

func TestToRegex(t *testing.T) {
	testCases := []struct {
		segment string
		matches []string
		rejects []string
	}{
		{
			segment: "%Y",
			matches: []string{"2024", "1999", "abc"},
			rejects: []string{"", "20-24", "2024.tmp"},
		},
		{
			segment: "dump-%Y%m%d.sql",
			matches: []string{"dump-20240305.sql", "dump-2024.sql"},
			rejects: []string{"dump-20240305.sql.gz", "dumpX20240305.sql", "dump-.sql"},
		},
		{
			segment: "db.%d",
			matches: []string{"db.01"},
			rejects: []string{"dbx01"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.segment, func(t *testing.T) {
			re := regexp.MustCompile(ToRegex(tc.segment))
			for _, m := range tc.matches {
				if !re.MatchString(m) {
					t.Errorf("expected %q to match %q", m, re.String())
				}
			}
			for _, r := range tc.rejects {
				if re.MatchString(r) {
					t.Errorf("expected %q not to match %q", r, re.String())
				}
			}
		})
	}
}

func TestFormatMatchesToRegex(t *testing.T) {
	times := []time.Time{
		time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC),
		time.Date(1999, time.December, 31, 23, 59, 59, 0, time.FixedZone("", 3*3600)),
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.FixedZone("", -5*3600)),
	}

	for letter := range placeholders {
		segment := "dump-%" + string(letter) + ".sql"
		re := regexp.MustCompile(ToRegex(segment))
		for _, ts := range times {
			name := Format(segment, ts)
			if !re.MatchString(name) {
				t.Errorf("%q rendered %q which does not match %q", segment, name, re.String())
			}
		}
	}

	t.Run("Unsupported letters stay literal on both sides", func(t *testing.T) {
		for _, segment := range []string{"dump-%e.sql", "dump-%Y%m%d%z.sql", "dump-%Z.sql", "%Q"} {
			if !regexp.MustCompile(ToRegex(segment)).MatchString(Format(segment, times[1])) {
				t.Errorf("%q does not match its own regex", segment)
			}
		}
	})
}

func TestCountChangingPathElements(t *testing.T) {
	testCases := []struct {
		template string
		expected int
	}{
		{"/backups", 0},
		{"/backups/%Y", 1},
		{"/backups/%Y/%m/%d", 3},
		{"/backups/%Y/db/%m", 2},
		{"/backups/%Y-%m", 1},
		{"/backups/100%%", 0},
		{`C:\backups\%Y\%m`, 2},
		{"relative/%Y/", 1},
		{"/backups/%e/%Y", 1},
	}

	for _, tc := range testCases {
		t.Run(tc.template, func(t *testing.T) {
			if got := CountChangingPathElements(tc.template); got != tc.expected {
				t.Errorf("CountChangingPathElements(%q) = %d, want %d", tc.template, got, tc.expected)
			}
		})
	}
}

func TestSplitLayout(t *testing.T) {
	testCases := []struct {
		template string
		root     string
		levels   int
	}{
		{"/backups", "/backups", 0},
		{"/backups/%Y/%m", "/backups", 2},
		{"/backups/%Y/db/%m", "/backups", 3},
		{"/%Y", "/", 1},
		{"%Y/%m", ".", 2},
		{"data/mysql", "data/mysql", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.template, func(t *testing.T) {
			layout, err := SplitLayout(tc.template)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if layout.Root != tc.root {
				t.Errorf("expected root %q, got %q", tc.root, layout.Root)
			}
			if len(layout.Levels) != tc.levels {
				t.Errorf("expected %d levels, got %d", tc.levels, len(layout.Levels))
			}
		})
	}
}
