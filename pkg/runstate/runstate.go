// Package runstate records what happened to each stage of a backup run and
// derives the overall status from it.
package runstate

import (
	"errors"
	"time"
)

// Status is the overall verdict for a backup or a run.
type Status int

const (
	// StatusOK means every attempted stage succeeded and nothing was skipped.
	StatusOK Status = iota
	// StatusDegraded means the source succeeded but an extra stage was skipped or failed.
	StatusDegraded
	// StatusNotRun means the backup was never started because an earlier
	// backup stopped the run.
	StatusNotRun
	// StatusFailed means the backup could not be produced or did not pass its checks.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusDegraded:
		return "OK, but skipped or failed extras"
	case StatusNotRun:
		return "NOT RUN"
	default:
		return "FAILED"
	}
}

// StageResult is one recorded stage execution.
type StageResult struct {
	Stage   Stage   `json:"stage"`
	Type    string  `json:"type"`
	Outcome Outcome `json:"outcome"`
	Err     error   `json:"-"`
}

// Counter holds the per-stage outcome counts.
type Counter struct {
	Executed int `json:"executed"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// State tracks a single backup definition during a run.
type State struct {
	Name string

	setupErr error
	results  []StageResult
	notRun   []StageResult
	counters map[Stage]*Counter
}

// New creates the state for the named backup.
func New(name string) *State {
	s := &State{Name: name, counters: make(map[Stage]*Counter)}
	for _, st := range Stages {
		s.counters[st] = &Counter{}
	}
	return s
}

// SetSetupError records that the backup could not be set up. No stage runs afterwards.
func (s *State) SetSetupError(err error) {
	s.setupErr = err
}

// SetupError returns the setup error or nil.
func (s *State) SetupError() error { return s.setupErr }

// Record stores the outcome of one stage execution.
func (s *State) Record(stage Stage, typ string, outcome Outcome, err error) {
	s.results = append(s.results, StageResult{Stage: stage, Type: typ, Outcome: outcome, Err: err})
	c := s.counters[stage]
	switch outcome {
	case Executed:
		c.Executed++
	case Skipped:
		c.Skipped++
	case Failed:
		c.Failed++
	}
}

// MarkNotRun lists a stage that was never attempted because the run stopped.
// It does not change the counters.
func (s *State) MarkNotRun(stage Stage, typ string) {
	s.notRun = append(s.notRun, StageResult{Stage: stage, Type: typ, Outcome: Skipped})
}

// Results returns every recorded stage execution in order.
func (s *State) Results() []StageResult { return s.results }

// NotRun returns the stages that were never attempted.
func (s *State) NotRun() []StageResult { return s.notRun }

// Counter returns the outcome counts of one stage.
func (s *State) Counter(stage Stage) Counter {
	return *s.counters[stage]
}

// SourceSucceeded reports whether the source stage executed successfully.
func (s *State) SourceSucceeded() bool {
	c := s.counters[StageSource]
	return s.setupErr == nil && c.Executed > 0 && c.Failed == 0
}

// HasFailure reports whether any stage failed so far, which makes later
// stages with skipOnFailure skip.
func (s *State) HasFailure() bool {
	if s.setupErr != nil {
		return true
	}
	for _, c := range s.counters {
		if c.Failed > 0 {
			return true
		}
	}
	return false
}

// IsSuccessful reports whether the source succeeded and no check, crypt,
// sync or cleanup failed.
func (s *State) IsSuccessful() bool {
	if !s.SourceSucceeded() {
		return false
	}
	for _, st := range []Stage{StageCheck, StageCrypt, StageSync, StageCleanup} {
		if s.counters[st].Failed > 0 {
			return false
		}
	}
	return true
}

// Status derives the overall verdict for the backup.
func (s *State) Status() Status {
	if s.setupErr == nil && len(s.results) == 0 && len(s.notRun) > 0 {
		return StatusNotRun
	}
	if !s.SourceSucceeded() || s.counters[StageCheck].Failed > 0 {
		return StatusFailed
	}
	if !s.IsSuccessful() || len(s.notRun) > 0 {
		return StatusDegraded
	}
	for _, c := range s.counters {
		if c.Skipped > 0 {
			return StatusDegraded
		}
	}
	return StatusOK
}

// Err joins the setup error and all stage errors.
func (s *State) Err() error {
	errs := []error{s.setupErr}
	for _, r := range s.results {
		errs = append(errs, r.Err)
	}
	return errors.Join(errs...)
}

// Summary aggregates the states of all backups of one run.
type Summary struct {
	RunID     string
	Simulated bool
	Started   time.Time
	Finished  time.Time
	Backups   []*State
}

// Add appends the state of a finished backup.
func (s *Summary) Add(st *State) {
	s.Backups = append(s.Backups, st)
}

// Status returns the worst status of all backups.
func (s *Summary) Status() Status {
	worst := StatusOK
	for _, b := range s.Backups {
		if st := b.Status(); st > worst {
			worst = st
		}
	}
	return worst
}

// Totals sums the stage counters of all backups.
func (s *Summary) Totals() map[Stage]Counter {
	totals := make(map[Stage]Counter, len(Stages))
	for _, st := range Stages {
		var sum Counter
		for _, b := range s.Backups {
			c := b.Counter(st)
			sum.Executed += c.Executed
			sum.Skipped += c.Skipped
			sum.Failed += c.Failed
		}
		totals[st] = sum
	}
	return totals
}

// Duration returns the wall time of the run.
func (s *Summary) Duration() time.Duration {
	return s.Finished.Sub(s.Started)
}
