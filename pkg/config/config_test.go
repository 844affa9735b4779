package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/paulschiretz/pgl-shipper/pkg/flagparse"
	"github.com/paulschiretz/pgl-shipper/pkg/pathcompression"
)

const jsonConfig = `{
  "logLevel": "debug",
  "backups": [
    {
      "name": "shop",
      "stopOnFailure": true,
      "source": {"type": "mysqldump", "options": {"databases": "shop", "port": 3306, "structureOnly": false}},
      "target": {"dirname": "/backups/%Y", "filename": "shop-%Y%m%d.sql", "compress": "gzip", "compressLevel": "best"},
      "cleanup": {"type": "quantity", "options": {"amount": 7}}
    }
  ]
}`

const yamlConfig = `
logLevel: warn
binaries:
  dirs: [/opt/bin]
backups:
  - name: files
    source:
      type: tar
      options:
        path: /srv/files
        ignoreFailedRead: true
    target:
      dirname: /backups/files
      filename: files-%Y%m%d.tar
    syncs:
      - type: s3
        skipOnFailure: true
        options:
          endpoint: s3.example.com
          cleanup.amount: 14
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		cfg, err := Load(writeFile(t, "c.json", jsonConfig))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.LogLevel != "debug" || !cfg.Metrics {
			t.Errorf("expected file values merged with defaults, got %+v", cfg)
		}
		b := cfg.Backups[0]
		if b.Source.Options["port"] != "3306" || b.Source.Options["structureOnly"] != "false" {
			t.Errorf("expected scalar options as strings, got %v", b.Source.Options)
		}
		if b.Target.CompressLevel != pathcompression.Best {
			t.Errorf("expected compress level best, got %q", b.Target.CompressLevel)
		}
		if b.Cleanup == nil || b.Cleanup.Options["amount"] != "7" {
			t.Errorf("unexpected cleanup %+v", b.Cleanup)
		}
		if b.Crypt != nil {
			t.Errorf("expected no crypt stage, got %+v", b.Crypt)
		}
	})

	t.Run("YAML", func(t *testing.T) {
		cfg, err := Load(writeFile(t, "c.yaml", yamlConfig))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.LogLevel != "warn" {
			t.Errorf("expected log level warn, got %q", cfg.LogLevel)
		}
		if !reflect.DeepEqual(cfg.Binaries.Dirs, []string{"/opt/bin"}) {
			t.Errorf("unexpected binary dirs %v", cfg.Binaries.Dirs)
		}
		b := cfg.Backups[0]
		if b.Source.Options["ignoreFailedRead"] != "true" {
			t.Errorf("unexpected source options %v", b.Source.Options)
		}
		if len(b.Syncs) != 1 || !b.Syncs[0].SkipOnFailure || b.Syncs[0].Options["cleanup.amount"] != "14" {
			t.Errorf("unexpected syncs %+v", b.Syncs)
		}
	})

	t.Run("Missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "none.json")); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("Nested option value", func(t *testing.T) {
		bad := `{"backups":[{"name":"x","source":{"type":"tar","options":{"path":["a"]}}}]}`
		if _, err := Load(writeFile(t, "bad.json", bad)); err == nil {
			t.Error("expected error for a list option value")
		}
	})
}

func TestGenerateRoundTrip(t *testing.T) {
	for _, name := range []string{"example.json", "example.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			example := NewExample()
			if err := Generate(path, example); err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if perm := info.Mode().Perm(); perm&0077 != 0 && os.PathSeparator == '/' {
				t.Errorf("expected owner-only permissions, got %o", perm)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if !reflect.DeepEqual(loaded.Backups, example.Backups) {
				t.Errorf("backups differ after round trip:\n got %+v\nwant %+v", loaded.Backups, example.Backups)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	newValidConfig := func() Config {
		cfg := NewExample()
		cfg.Backups = append(cfg.Backups, BackupConfig{Name: "second"})
		return cfg
	}

	t.Run("Valid Config", func(t *testing.T) {
		cfg := newValidConfig()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid config to pass validation, but got error: %v", err)
		}
	})

	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "No backups", mutate: func(c *Config) { c.Backups = nil }},
		{name: "Empty name", mutate: func(c *Config) { c.Backups[1].Name = " " }},
		{name: "Duplicate name", mutate: func(c *Config) { c.Backups[1].Name = c.Backups[0].Name }},
		{name: "Invalid log level", mutate: func(c *Config) { c.LogLevel = "loud" }},
		{name: "Unknown selected backup", mutate: func(c *Config) { c.Runtime.Only = []string{"nope"} }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newValidConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, but got nil")
			}
		})
	}
}

func TestSelectedBackups(t *testing.T) {
	cfg := NewDefault()
	cfg.Backups = []BackupConfig{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	if got := cfg.SelectedBackups(); len(got) != 3 {
		t.Errorf("expected all backups without filter, got %d", len(got))
	}
	cfg.Runtime.Only = []string{"c", "a"}
	got := cfg.SelectedBackups()
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Errorf("expected configuration order a, c, got %+v", got)
	}
}

func TestMergeConfigWithFlags(t *testing.T) {
	base := NewDefault()
	flags := map[string]any{
		"log-level": "debug",
		"simulate":  true,
		"metrics":   false,
		"only":      []string{"db"},
	}

	merged := MergeConfigWithFlags(flagparse.Backup, base, flags)
	if merged.LogLevel != "debug" || !merged.Runtime.Simulate || merged.Metrics {
		t.Errorf("flags not merged: %+v", merged)
	}
	if !reflect.DeepEqual(merged.Runtime.Only, []string{"db"}) {
		t.Errorf("unexpected only %v", merged.Runtime.Only)
	}

	restore := MergeConfigWithFlags(flagparse.Restore, base, flags)
	if restore.Runtime.Simulate {
		t.Error("simulate must only apply to the backup command")
	}
}
