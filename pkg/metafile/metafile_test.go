package metafile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paulschiretz/pgl-shipper/pkg/runstate"
)

func newSummary() *runstate.Summary {
	started := time.Date(2024, 5, 17, 3, 0, 0, 0, time.UTC)
	s := &runstate.Summary{RunID: "run-1", Started: started, Finished: started.Add(time.Minute)}

	db := runstate.New("db")
	db.Record(runstate.StageSource, "mysqldump", runstate.Executed, nil)
	db.Record(runstate.StageSync, "s3", runstate.Failed, errors.New("bucket not found"))
	s.Add(db)

	broken := runstate.New("broken")
	broken.SetSetupError(errors.New("unknown source type"))
	s.Add(broken)

	stopped := runstate.New("files")
	stopped.MarkNotRun(runstate.StageSource, "tar")
	s.Add(stopped)
	return s
}

func TestFromSummary(t *testing.T) {
	content := FromSummary("1.0.0", newSummary())

	if content.RunID != "run-1" || content.Version != "1.0.0" {
		t.Errorf("unexpected header %+v", content)
	}
	if content.Status != runstate.StatusFailed.String() {
		t.Errorf("expected failed run status, got %q", content.Status)
	}
	if len(content.Backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(content.Backups))
	}

	db := content.Backups[0]
	if db.Status != runstate.StatusDegraded.String() {
		t.Errorf("expected degraded db, got %q", db.Status)
	}
	if len(db.Stages) != 2 || db.Stages[1].Error != "bucket not found" || db.Stages[1].Outcome != "failed" {
		t.Errorf("unexpected stages %+v", db.Stages)
	}
	if content.Backups[1].SetupError != "unknown source type" {
		t.Errorf("expected setup error, got %+v", content.Backups[1])
	}
	if n := content.Backups[2].NotRun; len(n) != 1 || n[0].Stage != "source" {
		t.Errorf("expected not-run source stage, got %+v", n)
	}
}

func TestWriteAndReadMetafile(t *testing.T) {
	tempDir := t.TempDir()
	content := FromSummary("1.0.0", newSummary())

	if err := Write(tempDir, content); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	// Overwriting must replace the file and leave no temp files behind.
	if err := Write(tempDir, content); err != nil {
		t.Fatalf("second Write() failed: %v", err)
	}
	entries, _ := os.ReadDir(tempDir)
	if len(entries) != 1 || entries[0].Name() != MetaFileName {
		t.Errorf("expected only %s, got %v", MetaFileName, entries)
	}

	readContent, err := Read(tempDir)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if readContent.RunID != content.RunID {
		t.Errorf("expected run id %q, got %q", content.RunID, readContent.RunID)
	}
	if !readContent.StartedUTC.Equal(content.StartedUTC) {
		t.Errorf("expected start %v, got %v", content.StartedUTC, readContent.StartedUTC)
	}
	if len(readContent.Backups) != 3 {
		t.Errorf("expected 3 backups, got %d", len(readContent.Backups))
	}
}

func TestReadMetafile_Errors(t *testing.T) {
	t.Run("Missing file", func(t *testing.T) {
		_, err := Read(t.TempDir())
		if !os.IsNotExist(err) {
			t.Errorf("expected not-exist error, got %v", err)
		}
	})

	t.Run("Corrupt file", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, MetaFileName), []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := Read(dir)
		if err == nil || !strings.Contains(err.Error(), "may be corrupt") {
			t.Errorf("expected corrupt file error, got %v", err)
		}
	})
}
