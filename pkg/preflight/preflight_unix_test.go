//go:build !windows

package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/sys/unix"
)

func TestCheckTargetAccessible_Unix(t *testing.T) {
	t.Run("Error - No Permission on Deepest Existing Ancestor", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permission checks do not apply to root")
		}
		grandparent := t.TempDir()
		unreadableAncestor := filepath.Join(grandparent, "unreadable_ancestor")
		if err := os.Mkdir(unreadableAncestor, 0000); err != nil {
			t.Fatalf("failed to create unreadable ancestor dir: %v", err)
		}
		t.Cleanup(func() { os.Chmod(unreadableAncestor, 0755) })

		targetDir := filepath.Join(unreadableAncestor, "non_existent_child", "target")
		err := CheckTargetAccessible(targetDir, false)
		if err == nil {
			t.Fatal("expected a permission error, but got nil")
		}
		if !strings.Contains(err.Error(), "cannot access ancestor directory") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("Ghost Directory Check", func(t *testing.T) {
		dir := t.TempDir()
		var rootStat, dirStat unix.Stat_t
		if unix.Stat("/", &rootStat) != nil || unix.Stat(dir, &dirStat) != nil {
			t.Skip("cannot stat devices")
		}
		if home, _ := os.UserHomeDir(); home != "" && strings.HasPrefix(dir, home) {
			t.Skip("temp dir is inside the home directory")
		}

		err := CheckTargetAccessible(dir, true)
		if rootStat.Dev == dirStat.Dev {
			if err == nil || !strings.Contains(err.Error(), "is on the root filesystem (system disk)") {
				t.Errorf("expected ghost directory error, got %v", err)
			}
		} else if err != nil {
			t.Errorf("expected mounted temp dir to pass, got %v", err)
		}
	})
}

func TestCheckTargetWritable_Unix(t *testing.T) {
	t.Run("Error - Destination not writable", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permission checks do not apply to root")
		}
		unwritableDir := filepath.Join(t.TempDir(), "unwritable")
		if err := os.Mkdir(unwritableDir, 0555); err != nil {
			t.Fatalf("failed to create unwritable dir: %v", err)
		}
		t.Cleanup(func() { os.Chmod(unwritableDir, 0755) })

		err := CheckTargetWritable(unwritableDir)
		if err == nil {
			t.Fatal("expected an error for unwritable destination, but got nil")
		}
		if !strings.Contains(err.Error(), "not writable") {
			t.Errorf("expected error about 'not writable', but got: %v", err)
		}
	})
}
