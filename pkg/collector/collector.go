// Package collector discovers previously produced backup artifacts that match
// a Target's path template, on the local disk or in a remote object store.
package collector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// keyTimeFormat orders artifacts chronologically when compared as strings.
const keyTimeFormat = "20060102150405.000000000"

// Artifact is a backup file found by a Collector.
type Artifact struct {
	// Path is a local file path or a remote object key.
	Path  string
	Name  string
	Size  int64
	MTime time.Time

	remove func(ctx context.Context) error
}

// NewArtifact creates an artifact that is deleted through remove.
func NewArtifact(path, name string, size int64, mtime time.Time, remove func(ctx context.Context) error) Artifact {
	return Artifact{Path: path, Name: name, Size: size, MTime: mtime, remove: remove}
}

// LocalArtifact stats path and returns an artifact that deletes the local file.
func LocalArtifact(path string) (Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, err
	}
	if info.IsDir() {
		return Artifact{}, fmt.Errorf("%s is a directory", path)
	}
	return localArtifact(path, info), nil
}

func localArtifact(path string, info os.FileInfo) Artifact {
	return NewArtifact(path, info.Name(), info.Size(), info.ModTime(), func(context.Context) error {
		return os.Remove(path)
	})
}

// Key is a sortable identifier: the modification time followed by the path,
// which keeps artifacts written in the same second in a stable order.
func (a Artifact) Key() string {
	return a.MTime.UTC().Format(keyTimeFormat) + "-" + a.Path
}

// ErrNotDeletable is returned by Delete for artifacts without a delete capability.
var ErrNotDeletable = errors.New("artifact cannot be deleted")

// Delete removes the artifact from its storage.
func (a Artifact) Delete(ctx context.Context) error {
	if a.remove == nil {
		return ErrNotDeletable
	}
	return a.remove(ctx)
}

// Collector finds the artifacts belonging to one backup definition.
type Collector interface {
	// BackupFiles returns all matching artifacts except the one produced by the
	// current run, ordered oldest first.
	BackupFiles(ctx context.Context) ([]Artifact, error)
	// Current returns the artifact produced by the current run, if it exists.
	Current(ctx context.Context) (Artifact, bool, error)
}

// Sort orders artifacts oldest first by Key.
func Sort(artifacts []Artifact) {
	sort.SliceStable(artifacts, func(i, j int) bool {
		return artifacts[i].Key() < artifacts[j].Key()
	})
}

// TotalSize sums the size of all artifacts.
func TotalSize(artifacts []Artifact) int64 {
	var total int64
	for _, a := range artifacts {
		total += a.Size
	}
	return total
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
