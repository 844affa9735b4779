package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulschiretz/pgl-shipper/pkg/hints"
)

func TestExitCode(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{"Success", nil, exitOK},
		{"Degraded run", hints.New("extras failed"), exitDegraded},
		{"Failed run", errors.New("1 of 2 backups failed"), exitFailed},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := exitCode(tc.err); got != tc.want {
				t.Errorf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestRun(t *testing.T) {
	t.Run("Help", func(t *testing.T) {
		if err := run(context.Background(), []string{"backup", "-help"}); err != nil {
			t.Errorf("expected help to succeed, got %v", err)
		}
	})

	t.Run("Unknown command", func(t *testing.T) {
		if err := run(context.Background(), []string{"prune"}); err == nil {
			t.Error("expected error for unknown command")
		}
	})

	t.Run("Init then restore", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pgl-shipper.config.json")
		if err := run(context.Background(), []string{"init", "-config", path, "-no-color"}); err != nil {
			t.Fatalf("init failed: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected config file: %v", err)
		}
		if err := run(context.Background(), []string{"restore", "-config", path, "-quiet"}); err != nil {
			t.Errorf("restore failed: %v", err)
		}
	})
}
