// Package planner turns the configuration into executable plans. Backends
// are instantiated and set up here, so that a broken backup definition is
// detected before anything runs and only disables that backup.
package planner

import (
	"fmt"
	"time"

	"github.com/paulschiretz/pgl-shipper/pkg/backend"
	"github.com/paulschiretz/pgl-shipper/pkg/check"
	"github.com/paulschiretz/pgl-shipper/pkg/config"
	"github.com/paulschiretz/pgl-shipper/pkg/crypt"
	"github.com/paulschiretz/pgl-shipper/pkg/faults"
	"github.com/paulschiretz/pgl-shipper/pkg/hook"
	"github.com/paulschiretz/pgl-shipper/pkg/pathcompression"
	"github.com/paulschiretz/pgl-shipper/pkg/pathretention"
	"github.com/paulschiretz/pgl-shipper/pkg/pathtemplate"
	"github.com/paulschiretz/pgl-shipper/pkg/pipeline"
	"github.com/paulschiretz/pgl-shipper/pkg/preflight"
	"github.com/paulschiretz/pgl-shipper/pkg/remotesync"
	"github.com/paulschiretz/pgl-shipper/pkg/source"
)

// Step is a configured backend together with its failure policy.
type Step[T any] struct {
	Type          string
	SkipOnFailure bool
	Backend       T
}

// CheckStep is a configured check and the value it verifies.
type CheckStep struct {
	Type    string
	Value   string
	Backend backend.Check
}

// BackupPlan is one backup definition, ready to run.
type BackupPlan struct {
	Name          string
	StopOnFailure bool
	Env           backend.Env
	Target        *pathtemplate.Target

	Source  Step[backend.Source]
	Checks  []CheckStep
	Crypt   *Step[backend.Crypter]
	Syncs   []Step[backend.Sync]
	Cleanup *Step[*pathretention.PathRetainer]

	Preflight *preflight.Plan
	Retention *pathretention.Plan
	Hooks     *hook.Plan

	// SetupErr holds the configuration error that prevents this backup from
	// running. The remaining fields are only partially populated then.
	SetupErr error
}

type RunPlan struct {
	Simulate bool
	Metrics  bool
	// ReferenceTime resolves every placeholder of this run.
	ReferenceTime time.Time
	Backups       []*BackupPlan
}

type ListPlan struct {
	Order   SortOrder
	Backups []*BackupPlan
}

// GenerateRunPlan builds a plan for every selected backup. It never fails as
// a whole: setup errors are attached to the affected BackupPlan.
func GenerateRunPlan(cfg config.Config, executor *pipeline.Executor, referenceTime time.Time) *RunPlan {
	plan := &RunPlan{
		Simulate:      cfg.Runtime.Simulate,
		Metrics:       cfg.Metrics,
		ReferenceTime: referenceTime,
	}
	for _, b := range cfg.SelectedBackups() {
		plan.Backups = append(plan.Backups, generateBackupPlan(cfg, b, executor, referenceTime))
	}
	return plan
}

// GenerateListPlan builds the plans used to inspect existing artifacts.
func GenerateListPlan(cfg config.Config, order SortOrder, referenceTime time.Time) *ListPlan {
	plan := &ListPlan{Order: order}
	for _, b := range cfg.SelectedBackups() {
		plan.Backups = append(plan.Backups, generateBackupPlan(cfg, b, nil, referenceTime))
	}
	return plan
}

func generateBackupPlan(cfg config.Config, b config.BackupConfig, executor *pipeline.Executor, referenceTime time.Time) *BackupPlan {
	simulate := cfg.Runtime.Simulate
	plan := &BackupPlan{
		Name:          b.Name,
		StopOnFailure: b.StopOnFailure,
		Env: backend.Env{
			Executor: executor,
			Locator:  cfg.Locator(),
			Metrics:  cfg.Metrics,
		},
		Preflight: &preflight.Plan{
			TargetAccessible: true,
			TargetWritable:   true,
			RequireMount:     b.Target.RequireMount,
			// Global Flags
			Simulate: simulate,
		},
		Retention: &pathretention.Plan{
			// Global Flags
			Simulate: simulate,
			Metrics:  cfg.Metrics,
		},
		Hooks: &hook.Plan{
			PreHookCommands:  b.Hooks.PreBackup,
			PostHookCommands: b.Hooks.PostBackup,
			// Global Flags
			Simulate: simulate,
			FailFast: b.StopOnFailure,
		},
	}
	if err := setupBackup(plan, b, referenceTime); err != nil {
		plan.SetupErr = fmt.Errorf("backup %s: %w", b.Name, err)
	}
	return plan
}

// setupBackup instantiates the backends in stage order. The compression and
// crypt suffixes are applied to the target before any backend sees it, so
// collectors match the final artifact names.
func setupBackup(plan *BackupPlan, b config.BackupConfig, referenceTime time.Time) error {
	target, err := pathtemplate.New(b.Target.Dirname, b.Target.Filename, referenceTime)
	if err != nil {
		return err
	}
	plan.Target = target

	if b.Target.Compress != "" {
		comp, err := pathcompression.New(b.Target.Compress, b.Target.CompressLevel, plan.Env.Locator)
		if err != nil {
			return &faults.ConfigurationError{Component: "target", Option: "compress", Err: err}
		}
		if native, ok := comp.(*pathcompression.NativeCompressor); ok {
			native.SetMetrics(plan.Env.Metrics)
		}
		plan.Env.Compressor = comp
		target.SetCompressionSuffix(comp.Suffix())
	}

	src, err := source.New(b.Source.Type)
	if err != nil {
		return err
	}
	if err := src.Setup(plan.Env, backend.Options(b.Source.Options)); err != nil {
		return err
	}
	plan.Source = Step[backend.Source]{Type: b.Source.Type, Backend: src}

	for _, c := range b.Checks {
		chk, err := check.New(c.Type)
		if err != nil {
			return err
		}
		if err := chk.Setup(plan.Env, nil); err != nil {
			return err
		}
		plan.Checks = append(plan.Checks, CheckStep{Type: c.Type, Value: c.Value, Backend: chk})
	}

	if b.Crypt != nil {
		crypter, err := crypt.New(b.Crypt.Type)
		if err != nil {
			return err
		}
		if err := crypter.Setup(plan.Env, backend.Options(b.Crypt.Options)); err != nil {
			return err
		}
		target.SetCryptSuffix(crypter.Suffix())
		plan.Crypt = &Step[backend.Crypter]{Type: b.Crypt.Type, SkipOnFailure: b.Crypt.SkipOnFailure, Backend: crypter}
	}

	for _, s := range b.Syncs {
		syncer, err := remotesync.New(s.Type)
		if err != nil {
			return err
		}
		if err := syncer.Setup(plan.Env, backend.Options(s.Options)); err != nil {
			return err
		}
		plan.Syncs = append(plan.Syncs, Step[backend.Sync]{Type: s.Type, SkipOnFailure: s.SkipOnFailure, Backend: syncer})
	}

	if b.Cleanup != nil {
		policy, err := pathretention.New(b.Cleanup.Type, b.Cleanup.Options)
		if err != nil {
			return err
		}
		plan.Cleanup = &Step[*pathretention.PathRetainer]{
			Type:          b.Cleanup.Type,
			SkipOnFailure: b.Cleanup.SkipOnFailure,
			Backend:       pathretention.NewPathRetainer(policy),
		}
	}
	return nil
}
