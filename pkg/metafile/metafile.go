// Package metafile persists the outcome of the last backup run next to the
// configuration file, so that monitoring and the list command can report it
// without parsing logs.
package metafile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/paulschiretz/pgl-shipper/pkg/plog"
	"github.com/paulschiretz/pgl-shipper/pkg/runstate"
	"github.com/paulschiretz/pgl-shipper/pkg/util"
)

// MetaFileName is the name of the last run file.
const MetaFileName = ".pgl-shipper.last-run.json"

// StageEntry is one recorded stage.
type StageEntry struct {
	Stage   string `json:"stage"`
	Type    string `json:"type"`
	Outcome string `json:"outcome,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BackupEntry is the outcome of one backup definition.
type BackupEntry struct {
	Name       string       `json:"name"`
	Status     string       `json:"status"`
	SetupError string       `json:"setupError,omitempty"`
	Stages     []StageEntry `json:"stages,omitempty"`
	NotRun     []StageEntry `json:"notRun,omitempty"`
}

// MetafileContent holds the contents of the metafile.
type MetafileContent struct {
	Version     string        `json:"version"`
	RunID       string        `json:"runID"`
	StartedUTC  time.Time     `json:"startedUTC"`
	FinishedUTC time.Time     `json:"finishedUTC"`
	Status      string        `json:"status"`
	Backups     []BackupEntry `json:"backups"`
}

// FromSummary converts a run summary into metafile content.
func FromSummary(version string, s *runstate.Summary) *MetafileContent {
	content := &MetafileContent{
		Version:     version,
		RunID:       s.RunID,
		StartedUTC:  s.Started.UTC(),
		FinishedUTC: s.Finished.UTC(),
		Status:      s.Status().String(),
	}
	for _, b := range s.Backups {
		entry := BackupEntry{Name: b.Name, Status: b.Status().String()}
		if err := b.SetupError(); err != nil {
			entry.SetupError = err.Error()
		}
		for _, r := range b.Results() {
			se := StageEntry{Stage: r.Stage.String(), Type: r.Type, Outcome: r.Outcome.String()}
			if r.Err != nil {
				se.Error = r.Err.Error()
			}
			entry.Stages = append(entry.Stages, se)
		}
		for _, r := range b.NotRun() {
			entry.NotRun = append(entry.NotRun, StageEntry{Stage: r.Stage.String(), Type: r.Type})
		}
		content.Backups = append(content.Backups, entry)
	}
	return content
}

// Write stores content as the last run file in dirPath. The file is replaced
// atomically so a concurrent reader never sees a partial file.
func Write(dirPath string, content *MetafileContent) error {
	metaFilePath := filepath.Join(dirPath, MetaFileName)
	jsonData, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal meta data: %w", err)
	}

	tmpF, err := os.CreateTemp(dirPath, MetaFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temp meta file: %w", err)
	}
	defer func() {
		if err := os.Remove(tmpF.Name()); err != nil && !os.IsNotExist(err) {
			plog.Warn("Failed to remove temporary meta file", "path", tmpF.Name(), "error", err)
		}
	}()

	if _, err := tmpF.Write(jsonData); err != nil {
		tmpF.Close()
		return fmt.Errorf("could not write meta file %s: %w", metaFilePath, err)
	}
	if err := tmpF.Chmod(util.UserWritableFilePerms); err != nil {
		tmpF.Close()
		return fmt.Errorf("could not set meta file permissions: %w", err)
	}
	// Must close the file before renaming (mandatory on Windows).
	if err := tmpF.Close(); err != nil {
		return fmt.Errorf("could not close temp meta file: %w", err)
	}
	if err := os.Rename(tmpF.Name(), metaFilePath); err != nil {
		return fmt.Errorf("could not write meta file %s: %w", metaFilePath, err)
	}
	return nil
}

// Read opens and parses the last run file in a given directory.
// It returns the parsed metadata or an error if the file cannot be read or parsed.
func Read(dirPath string) (MetafileContent, error) {
	metaFilePath := filepath.Join(dirPath, MetaFileName)
	metaFile, err := os.Open(metaFilePath)
	if err != nil {
		// Note: os.IsNotExist errors are handled by the caller.
		return MetafileContent{}, err
	}
	defer metaFile.Close()

	var content MetafileContent
	decoder := json.NewDecoder(metaFile)
	if err := decoder.Decode(&content); err != nil {
		return MetafileContent{}, fmt.Errorf("could not parse metafile %s: %w. It may be corrupt", metaFilePath, err)
	}

	return content, nil
}
