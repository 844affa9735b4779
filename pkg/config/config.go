package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/paulschiretz/pgl-shipper/pkg/buildinfo"
	"github.com/paulschiretz/pgl-shipper/pkg/flagparse"
	"github.com/paulschiretz/pgl-shipper/pkg/pathcompression"
	"github.com/paulschiretz/pgl-shipper/pkg/pipeline"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
	"github.com/paulschiretz/pgl-shipper/pkg/util"
)

// ConfigFileName is the name of the configuration file used when no path is given.
const ConfigFileName = "pgl-shipper.config.json"

type BinariesConfig struct {
	// Dirs are searched for binaries before PATH.
	Dirs []string `json:"dirs" yaml:"dirs"`
	// Paths pins single binaries, e.g. {"mysqldump": "/opt/mysql/bin/mysqldump"}.
	Paths map[string]string `json:"paths" yaml:"paths"`
}

type SourceConfig struct {
	Type    string  `json:"type" yaml:"type"`
	Options Options `json:"options" yaml:"options"`
}

type TargetConfig struct {
	// Dirname and Filename may contain strftime placeholders such as %Y or %d.
	Dirname       string                `json:"dirname" yaml:"dirname"`
	Filename      string                `json:"filename" yaml:"filename"`
	Compress      string                `json:"compress,omitempty" yaml:"compress,omitempty"`
	CompressLevel pathcompression.Level `json:"compressLevel,omitempty" yaml:"compressLevel,omitempty"`
	RequireMount  bool                  `json:"requireMount,omitempty" yaml:"requireMount,omitempty"`
}

type CheckConfig struct {
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
}

// StageConfig configures a crypt, sync or cleanup stage.
type StageConfig struct {
	Type string `json:"type" yaml:"type"`
	// SkipOnFailure skips the stage when an earlier stage of the same backup failed.
	SkipOnFailure bool    `json:"skipOnFailure" yaml:"skipOnFailure"`
	Options       Options `json:"options" yaml:"options"`
}

// HookConfig lists shell commands run around a backup.
type HookConfig struct {
	PreBackup  []string `json:"preBackup,omitempty" yaml:"preBackup,omitempty"`
	PostBackup []string `json:"postBackup,omitempty" yaml:"postBackup,omitempty"`
}

type BackupConfig struct {
	Name string `json:"name" yaml:"name"`
	// StopOnFailure stops the whole run when this backup's source fails.
	StopOnFailure bool          `json:"stopOnFailure" yaml:"stopOnFailure"`
	Source        SourceConfig  `json:"source" yaml:"source"`
	Target        TargetConfig  `json:"target" yaml:"target"`
	Checks        []CheckConfig `json:"checks" yaml:"checks"`
	Crypt         *StageConfig  `json:"crypt,omitempty" yaml:"crypt,omitempty"`
	Syncs         []StageConfig `json:"syncs" yaml:"syncs"`
	Cleanup       *StageConfig  `json:"cleanup,omitempty" yaml:"cleanup,omitempty"`
	Hooks         HookConfig    `json:"hooks,omitempty" yaml:"hooks,omitempty"`
}

type RuntimeConfig struct {
	// Path is the file the configuration was loaded from.
	Path     string
	Simulate bool
	// Only restricts the run to the named backups.
	Only []string
}

type Config struct {
	Version  string         `json:"version" yaml:"version"`
	LogLevel string         `json:"logLevel" yaml:"logLevel"`
	Metrics  bool           `json:"metrics" yaml:"metrics"`
	Binaries BinariesConfig `json:"binaries" yaml:"binaries"`
	Backups  []BackupConfig `json:"backups" yaml:"backups"`
	Runtime  RuntimeConfig  `json:"-" yaml:"-"` // Never added to config file
}

// NewDefault creates a Config with sensible defaults and no backups.
func NewDefault() Config {
	return Config{
		Version:  buildinfo.Version,
		LogLevel: "info",
		Metrics:  true,
		Binaries: BinariesConfig{
			Dirs:  []string{},
			Paths: map[string]string{},
		},
		Backups: []BackupConfig{},
	}
}

// NewExample returns the default configuration with one illustrative backup,
// used by the init command.
func NewExample() Config {
	cfg := NewDefault()
	cfg.Backups = []BackupConfig{
		{
			Name:          "documents",
			StopOnFailure: false,
			Source: SourceConfig{
				Type:    "tar",
				Options: Options{"path": "~/Documents", "exclude": "*.tmp,.cache"},
			},
			Target: TargetConfig{
				Dirname:  "/var/backups/pgl-shipper/documents/%Y/%m",
				Filename: "documents-%Y%m%d-%H%M.tar",
				Compress: "zstd-native",
			},
			Checks: []CheckConfig{
				{Type: "sizemin", Value: "1K"},
				{Type: "sizediffprevious", Value: "50%"},
			},
			Syncs: []StageConfig{},
			Cleanup: &StageConfig{
				Type:          "stepwise",
				SkipOnFailure: true,
				Options: Options{
					"daysToKeepAll":       "2",
					"daysToKeepDaily":     "14",
					"weeksToKeepWeekly":   "8",
					"monthsToKeepMonthly": "12",
					"yearsToKeepYearly":   "3",
				},
			},
		},
	}
	return cfg
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads the configuration at path. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON. Missing fields keep their defaults.
func Load(path string) (Config, error) {
	if path == "" {
		path = ConfigFileName
	}
	expanded, err := util.ExpandPath(path)
	if err != nil {
		return Config{}, err
	}
	absPath, err := filepath.Abs(expanded)
	if err != nil {
		return Config{}, fmt.Errorf("could not determine absolute path for config file %s: %w", path, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return Config{}, fmt.Errorf("error reading config file %s: %w", absPath, err)
	}

	plog.Info("Loading configuration", "path", absPath)
	config := NewDefault()
	if isYAML(absPath) {
		err = yaml.Unmarshal(data, &config)
	} else {
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return Config{}, fmt.Errorf("error parsing config file %s: %w", absPath, err)
	}

	// NOTE: if config.Version differs from the app version a migration step goes here.
	if config.Version != buildinfo.Version {
		config.Version = buildinfo.Version
	}
	config.Runtime.Path = absPath
	return config, nil
}

// Generate writes cfg to path, as YAML or JSON depending on the extension.
// The file is readable by the owner only, as backend options may carry secrets.
func Generate(path string, cfg Config) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, util.UserOnlyFilePerms); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	plog.Info("Successfully saved config file", "path", path)
	return nil
}

// Validate checks the configuration as a whole. Problems inside a single
// backup definition are reported when its plan is built, so that they only
// abort that backup.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "notice", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid logLevel %q", c.LogLevel)
	}
	if len(c.Backups) == 0 {
		return fmt.Errorf("no backups configured")
	}

	seen := make(map[string]struct{}, len(c.Backups))
	for i, b := range c.Backups {
		name := strings.TrimSpace(b.Name)
		if name == "" {
			return fmt.Errorf("backups[%d].name cannot be empty", i)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("backup name %q is used more than once", name)
		}
		seen[name] = struct{}{}
	}

	for _, name := range c.Runtime.Only {
		if _, ok := seen[name]; !ok {
			return fmt.Errorf("unknown backup %q", name)
		}
	}

	for i, dir := range c.Binaries.Dirs {
		expanded, err := util.ExpandPath(dir)
		if err != nil {
			return fmt.Errorf("could not expand binaries.dirs[%d]: %w", i, err)
		}
		c.Binaries.Dirs[i] = filepath.Clean(expanded)
	}
	return nil
}

// Locator returns the binary locator described by the binaries section.
func (c *Config) Locator() pipeline.Locator {
	return pipeline.Locator{Dirs: c.Binaries.Dirs, Paths: c.Binaries.Paths}
}

// SelectedBackups returns the backups to run, in configuration order.
func (c *Config) SelectedBackups() []BackupConfig {
	if len(c.Runtime.Only) == 0 {
		return c.Backups
	}
	only := make(map[string]struct{}, len(c.Runtime.Only))
	for _, n := range c.Runtime.Only {
		only[n] = struct{}{}
	}
	var selected []BackupConfig
	for _, b := range c.Backups {
		if _, ok := only[b.Name]; ok {
			selected = append(selected, b)
		}
	}
	return selected
}

// LogSummary logs a short summary of the configuration.
func (c *Config) LogSummary() {
	names := make([]string, 0, len(c.Backups))
	for _, b := range c.SelectedBackups() {
		names = append(names, b.Name)
	}
	logArgs := []any{
		"config", c.Runtime.Path,
		"log_level", c.LogLevel,
		"simulate", c.Runtime.Simulate,
		"metrics", c.Metrics,
		"backups", strings.Join(names, ", "),
	}
	if len(c.Binaries.Dirs) > 0 {
		logArgs = append(logArgs, "binary_dirs", strings.Join(c.Binaries.Dirs, ", "))
	}
	plog.Info("Configuration loaded", logArgs...)
}

// MergeConfigWithFlags overlays the configuration values from flags on top of a base
// configuration. setFlags contains only the flags explicitly provided by the user.
func MergeConfigWithFlags(command flagparse.Command, base Config, setFlags map[string]any) Config {
	merged := base

	for name, value := range setFlags {
		switch name {
		case "log-level":
			merged.LogLevel = value.(string)
		case "metrics":
			merged.Metrics = value.(bool)
		case "simulate":
			switch command {
			case flagparse.Backup:
				merged.Runtime.Simulate = value.(bool)
			default:
			}
		case "only":
			merged.Runtime.Only = value.([]string)
		case "config", "force", "quiet", "no-color", "sort":
			// Consumed by the command layer.
		default:
			plog.Debug("unhandled flag in MergeConfigWithFlags", "flag", name)
		}
	}
	return merged
}
