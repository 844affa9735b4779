package collector

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
)

// ObjectInfo describes one object in a remote store.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore is the part of a remote storage API needed to collect and delete artifacts.
type ObjectStore interface {
	// List returns every object whose key starts with prefix, recursively.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// Remove deletes the object with the given key.
	Remove(ctx context.Context, key string) error
}

// Remote collects artifacts from an object store. Remote keys are laid out as
// the resolved remote directory template followed by the target's file name.
type Remote struct {
	store       ObjectStore
	target      *pathtemplate.Target
	dirTemplate string
}

var _ Collector = (*Remote)(nil)

// NewRemote creates a collector for objects below dirTemplate, which may
// contain placeholders like a local directory template.
func NewRemote(store ObjectStore, target *pathtemplate.Target, dirTemplate string) *Remote {
	return &Remote{
		store:       store,
		target:      target,
		dirTemplate: strings.Trim(dirTemplate, "/"),
	}
}

// CurrentKey is the object key of the artifact produced by the current run.
func (c *Remote) CurrentKey() string {
	dir := pathtemplate.Format(c.dirTemplate, c.target.ReferenceTime())
	return path.Join(dir, c.target.FileName())
}

// BackupFiles lists the fixed prefix of the remote layout and filters keys
// segment by segment. A listing failure yields no artifacts and is only logged.
func (c *Remote) BackupFiles(ctx context.Context) ([]Artifact, error) {
	layout, err := pathtemplate.SplitLayout(c.dirTemplate)
	if err != nil {
		return nil, err
	}
	fileRegex, err := c.target.FileRegex()
	if err != nil {
		return nil, err
	}

	prefix := remotePrefix(layout.Root)
	objects, err := c.store.List(ctx, prefix)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		plog.Warn("Cannot list remote backups, skipping", "prefix", prefix, "error", err)
		return nil, nil
	}

	current := c.CurrentKey()
	var artifacts []Artifact
	for _, obj := range objects {
		if obj.Key == current {
			continue
		}
		segments := strings.Split(strings.TrimPrefix(obj.Key, prefix), "/")
		if len(segments) != len(layout.Levels)+1 {
			continue
		}
		matches := true
		for i, re := range layout.Levels {
			if !re.MatchString(segments[i]) {
				matches = false
				break
			}
		}
		if !matches || !fileRegex.MatchString(segments[len(segments)-1]) {
			continue
		}
		artifacts = append(artifacts, c.artifact(obj))
	}

	Sort(artifacts)
	plog.Debug("Collected remote backup files", "count", len(artifacts), "prefix", prefix)
	return artifacts, nil
}

// Current returns the object of the current run if it was already uploaded.
func (c *Remote) Current(ctx context.Context) (Artifact, bool, error) {
	key := c.CurrentKey()
	objects, err := c.store.List(ctx, key)
	if err != nil {
		return Artifact{}, false, fmt.Errorf("failed to look up %s: %w", key, err)
	}
	for _, obj := range objects {
		if obj.Key == key {
			return c.artifact(obj), true, nil
		}
	}
	return Artifact{}, false, nil
}

func (c *Remote) artifact(obj ObjectInfo) Artifact {
	key := obj.Key
	return NewArtifact(key, path.Base(key), obj.Size, obj.LastModified, func(ctx context.Context) error {
		return c.store.Remove(ctx, key)
	})
}

// remotePrefix turns a layout root into a listing prefix ending in "/".
func remotePrefix(root string) string {
	root = strings.Trim(root, "/")
	if root == "" || root == "." {
		return ""
	}
	return root + "/"
}
