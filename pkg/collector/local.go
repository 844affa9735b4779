package collector

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
)

// Local collects artifacts from the local file system.
type Local struct {
	target *pathtemplate.Target
}

var _ Collector = (*Local)(nil)

// NewLocal creates a collector for the target's directory layout.
func NewLocal(target *pathtemplate.Target) *Local {
	return &Local{target: target}
}

// walkItem is a directory waiting to be listed at the given depth below the root.
type walkItem struct {
	dir   string
	depth int
}

// BackupFiles walks the directory template level by level from its fixed root.
// The walk uses an explicit worklist so deep layouts do not grow the stack.
// Directories that cannot be read are logged and contribute no artifacts.
func (c *Local) BackupFiles(ctx context.Context) ([]Artifact, error) {
	layout, err := c.target.DirLayout()
	if err != nil {
		return nil, err
	}
	fileRegex, err := c.target.FileRegex()
	if err != nil {
		return nil, err
	}

	var artifacts []Artifact
	queue := []walkItem{{dir: filepath.FromSlash(layout.Root), depth: 0}}
	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		item := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(item.dir)
		if err != nil {
			if os.IsNotExist(err) {
				plog.Debug("Backup directory does not exist yet", "path", item.dir)
			} else {
				plog.Warn("Cannot read backup directory, skipping", "path", item.dir, "error", err)
			}
			continue
		}

		if item.depth < len(layout.Levels) {
			queue = append(queue, c.matchingDirs(item, entries, layout.Levels[item.depth])...)
			continue
		}
		artifacts = append(artifacts, c.matchingFiles(item.dir, entries, fileRegex)...)
	}

	Sort(artifacts)
	plog.Debug("Collected backup files", "count", len(artifacts), "root", layout.Root)
	return artifacts, nil
}

func (c *Local) matchingDirs(item walkItem, entries []os.DirEntry, re *regexp.Regexp) []walkItem {
	var next []walkItem
	for _, entry := range entries {
		if entry.IsDir() && re.MatchString(entry.Name()) {
			next = append(next, walkItem{dir: filepath.Join(item.dir, entry.Name()), depth: item.depth + 1})
		}
	}
	return next
}

func (c *Local) matchingFiles(dir string, entries []os.DirEntry, re *regexp.Regexp) []Artifact {
	var found []Artifact
	for _, entry := range entries {
		if entry.IsDir() || !re.MatchString(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if c.isCurrent(path) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			plog.Warn("Cannot stat backup file, skipping", "path", path, "error", err)
			continue
		}
		found = append(found, localArtifact(path, info))
	}
	return found
}

// isCurrent reports whether path is one of the files produced by the running backup.
func (c *Local) isCurrent(path string) bool {
	return samePath(path, c.target.Path()) ||
		samePath(path, c.target.PathUncrypted()) ||
		samePath(path, c.target.PathPlain())
}

// Current returns the target's final artifact if it exists on disk.
func (c *Local) Current(ctx context.Context) (Artifact, bool, error) {
	a, err := LocalArtifact(c.target.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return Artifact{}, false, nil
		}
		return Artifact{}, false, err
	}
	return a, true, nil
}
