package collector_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/paulschiretz/pgl-shipper/pkg/collector"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
)

// touch creates a file with the given size and modification time.
func touch(t *testing.T, path string, size int, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestLocalStaticDirectory(t *testing.T) {
	base := t.TempDir()
	ref := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= 4; i++ {
		touch(t, filepath.Join(base, "dump-2024050"+string(rune('0'+i))+".sql"), 10, ref.AddDate(0, 0, -10+i))
	}
	// Non-matching files and a matching directory name are ignored.
	touch(t, filepath.Join(base, "notes.txt"), 1, ref)
	touch(t, filepath.Join(base, "dump-20240501.sql.tmp"), 1, ref)
	touch(t, filepath.Join(base, "other-20240501.sql"), 1, ref)
	if err := os.Mkdir(filepath.Join(base, "dump-20240509.sql"), 0755); err != nil {
		t.Fatal(err)
	}

	target, err := pathtemplate.New(base, "dump-%Y%m%d.sql", ref)
	if err != nil {
		t.Fatal(err)
	}

	files, err := collector.NewLocal(target).BackupFiles(context.Background())
	if err != nil {
		t.Fatalf("BackupFiles failed: %v", err)
	}
	if len(files) != 4 {
		t.Fatalf("expected 4 artifacts, got %d", len(files))
	}
	for i := 1; i < len(files); i++ {
		if !files[i-1].MTime.Before(files[i].MTime) {
			t.Errorf("expected oldest first ordering, got %v before %v", files[i-1].MTime, files[i].MTime)
		}
	}
}

func TestLocalDynamicDirectoryExcludesCurrent(t *testing.T) {
	base := t.TempDir()
	ref := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)

	days := []int{7, 8, 9, 10}
	for _, d := range days {
		at := time.Date(2024, time.May, d, 12, 0, 0, 0, time.UTC)
		touch(t, filepath.Join(base, at.Format("20060102"), "dump.sql"), 10, at)
	}
	// A directory that does not match the level pattern is never entered.
	touch(t, filepath.Join(base, "2024-05-06", "dump.sql"), 10, ref)

	target, err := pathtemplate.New(filepath.Join(base, "%Y%m%d"), "dump.sql", ref)
	if err != nil {
		t.Fatal(err)
	}

	c := collector.NewLocal(target)
	files, err := c.BackupFiles(context.Background())
	if err != nil {
		t.Fatalf("BackupFiles failed: %v", err)
	}
	if len(files) != len(days)-1 {
		t.Fatalf("expected %d artifacts, got %d", len(days)-1, len(files))
	}
	for _, f := range files {
		if f.Path == target.Path() {
			t.Errorf("current artifact %s must be excluded", f.Path)
		}
	}

	current, ok, err := c.Current(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected current artifact, got ok=%v err=%v", ok, err)
	}
	if current.Path != target.Path() {
		t.Errorf("expected current %s, got %s", target.Path(), current.Path)
	}
}

func TestLocalFindsArtifactsOfEveryPlaceholder(t *testing.T) {
	base := t.TempDir()
	zone := time.FixedZone("", 3*3600)
	dirTemplate := filepath.Join(base, "%Y", "%B-%V")
	fileTemplate := "dump-%y%m%d%H%M%S-%I%p-%a%A%b%h-%j%u%w%G-%s.sql"

	var previous []time.Time
	for d := 1; d <= 3; d++ {
		previous = append(previous, time.Date(2026, time.October, d, 9, 5, 0, 0, zone))
	}
	for _, at := range previous {
		earlier, err := pathtemplate.New(dirTemplate, fileTemplate, at)
		if err != nil {
			t.Fatal(err)
		}
		touch(t, earlier.Path(), 10, at)
	}

	target, err := pathtemplate.New(dirTemplate, fileTemplate, time.Date(2026, time.October, 5, 9, 5, 0, 0, zone))
	if err != nil {
		t.Fatal(err)
	}
	files, err := collector.NewLocal(target).BackupFiles(context.Background())
	if err != nil {
		t.Fatalf("BackupFiles failed: %v", err)
	}
	if len(files) != len(previous) {
		t.Errorf("expected %d artifacts, got %d", len(previous), len(files))
	}
}

func TestLocalNestedLevels(t *testing.T) {
	base := t.TempDir()
	ref := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)

	touch(t, filepath.Join(base, "2023", "db", "12", "dump.sql"), 1, ref.AddDate(0, -5, 0))
	touch(t, filepath.Join(base, "2024", "db", "01", "dump.sql"), 1, ref.AddDate(0, -4, 0))
	touch(t, filepath.Join(base, "2024", "web", "01", "dump.sql"), 1, ref.AddDate(0, -4, 0))
	touch(t, filepath.Join(base, "2024", "db", "01", "extra", "dump.sql"), 1, ref)

	target, err := pathtemplate.New(filepath.Join(base, "%Y", "db", "%m"), "dump.sql", ref)
	if err != nil {
		t.Fatal(err)
	}
	files, err := collector.NewLocal(target).BackupFiles(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 artifacts, got %d", len(files))
	}
}

func TestLocalMissingAndUnreadable(t *testing.T) {
	ref := time.Now()

	t.Run("Missing root", func(t *testing.T) {
		target, err := pathtemplate.New(filepath.Join(t.TempDir(), "missing", "%Y"), "dump.sql", ref)
		if err != nil {
			t.Fatal(err)
		}
		files, err := collector.NewLocal(target).BackupFiles(context.Background())
		if err != nil || len(files) != 0 {
			t.Errorf("expected no artifacts and no error, got %d (err %v)", len(files), err)
		}
	})

	t.Run("Unreadable directory", func(t *testing.T) {
		if runtime.GOOS == "windows" || os.Getuid() == 0 {
			t.Skip("permission based test requires a non-root unix user")
		}
		base := t.TempDir()
		locked := filepath.Join(base, "2024")
		touch(t, filepath.Join(locked, "dump.sql"), 1, ref)
		if err := os.Chmod(locked, 0000); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { os.Chmod(locked, 0755) })

		target, err := pathtemplate.New(filepath.Join(base, "%Y"), "dump.sql", ref)
		if err != nil {
			t.Fatal(err)
		}
		files, err := collector.NewLocal(target).BackupFiles(context.Background())
		if err != nil || len(files) != 0 {
			t.Errorf("expected no artifacts and no error, got %d (err %v)", len(files), err)
		}
	})
}

func TestArtifactKeyOrdering(t *testing.T) {
	at := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)
	a := collector.NewArtifact("/b/a.sql", "a.sql", 1, at, nil)
	b := collector.NewArtifact("/b/b.sql", "b.sql", 1, at, nil)
	c := collector.NewArtifact("/b/c.sql", "c.sql", 1, at.Add(-time.Nanosecond), nil)

	files := []collector.Artifact{b, a, c}
	collector.Sort(files)
	if files[0].Path != "/b/c.sql" || files[1].Path != "/b/a.sql" || files[2].Path != "/b/b.sql" {
		t.Errorf("unexpected order: %s %s %s", files[0].Path, files[1].Path, files[2].Path)
	}
	if err := a.Delete(context.Background()); err != collector.ErrNotDeletable {
		t.Errorf("expected ErrNotDeletable, got %v", err)
	}
}
