// Package preflight provides checks that run before a backup definition
// starts capturing. They are stateless with one exception: the writable
// check creates the fixed part of the target directory so it can write a
// probe file.
package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
	"github.com/paulschiretz/pgl-shipper/pkg/util"
)

// Run executes the checks enabled in p against the fixed root of the target's
// directory template. Directories below the first placeholder are created at
// capture time.
func Run(t *pathtemplate.Target, p *Plan) error {
	layout, err := t.DirLayout()
	if err != nil {
		return err
	}
	root := filepath.FromSlash(layout.Root)

	if p.TargetAccessible {
		if err := CheckTargetAccessible(root, p.RequireMount); err != nil {
			return err
		}
	}
	if p.TargetWritable {
		if p.Simulate {
			plog.Debug("[SIMULATE] Skipping write check", "path", root)
			return nil
		}
		if err := CheckTargetWritable(root); err != nil {
			return err
		}
	}
	return nil
}

// deepestExistingAncestor walks up from path until it finds a directory that exists.
func deepestExistingAncestor(path string) string {
	ancestor := path
	for {
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			return ancestor
		}
		if _, err := os.Stat(parent); err == nil {
			return parent
		}
		ancestor = parent
	}
}

// CheckTargetAccessible ensures the target directory is usable and gives
// friendlier errors than letting os.MkdirAll fail.
//
// If the target exists it must be a directory. If it does not exist, its
// deepest existing ancestor must be accessible. With requireMount the
// directory must not live on the system disk, which catches backups into a
// "ghost" directory of an unmounted drive.
func CheckTargetAccessible(targetPath string, requireMount bool) error {
	info, err := os.Stat(targetPath)
	checkPath := targetPath
	switch {
	case os.IsNotExist(err):
		checkPath = deepestExistingAncestor(targetPath)
		if _, err := os.ReadDir(checkPath); err != nil {
			return fmt.Errorf("cannot access ancestor directory %s: %w", checkPath, err)
		}
	case err != nil:
		return fmt.Errorf("cannot access target path: %w", err)
	case !info.IsDir():
		return fmt.Errorf("target path exists but is not a directory: %s", targetPath)
	}

	if requireMount {
		return validateMountPoint(checkPath)
	}
	return nil
}

// CheckTargetWritable creates the target directory if needed and writes and
// removes a probe file.
func CheckTargetWritable(targetPath string) error {
	if err := os.MkdirAll(targetPath, util.UserWritableDirPerms); err != nil {
		return fmt.Errorf("failed to create target directory %s: %w", targetPath, err)
	}

	probe := filepath.Join(targetPath, ".pgl-shipper-writetest.tmp")
	f, err := os.Create(probe)
	if err != nil {
		return fmt.Errorf("target directory %s is not writable: %w", targetPath, err)
	}
	f.Close()
	_ = os.Remove(probe)
	return nil
}
