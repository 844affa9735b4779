// Package faults defines the error types used to decide how far a failure
// propagates during a run.
//
// A ConfigurationError aborts the backup definition it belongs to before any
// command is executed. A CommandError carries the result of an external process
// that ran and exited non-zero; it is inspected by the orchestrator to apply the
// stop and skip policy. A FileSystemError reports a single failed file system
// operation and never blocks sibling operations. An incomplete restore plan is
// a hint and only informational.
package faults

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulschiretz/pgl-shipper/pkg/hints"
	"github.com/paulschiretz/pgl-shipper/pkg/pipeline"
)

// ConfigurationError is returned when a component is set up with an invalid option.
type ConfigurationError struct {
	Component string
	Option    string
	Err       error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	if e.Component != "" {
		b.WriteString(" in ")
		b.WriteString(e.Component)
	}
	if e.Option != "" {
		fmt.Fprintf(&b, " (option %q)", e.Option)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NewConfigurationError is a shorthand for building a ConfigurationError from a message.
func NewConfigurationError(component, option, format string, args ...any) error {
	return &ConfigurationError{Component: component, Option: option, Err: fmt.Errorf(format, args...)}
}

// CommandError reports an external command that executed and exited non-zero.
type CommandError struct {
	Result pipeline.Result
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command failed with exit code %d: %s", e.Result.Code, e.Result.Cmd)
	if stderr := strings.TrimSpace(e.Result.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// CheckResult returns a CommandError for unsuccessful results and nil otherwise.
func CheckResult(res pipeline.Result) error {
	if res.IsSuccessful() {
		return nil
	}
	return &CommandError{Result: res}
}

// FileSystemError reports a failed file system operation on a single path.
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error { return e.Err }

// ErrPlanIncomplete marks a restore plan that cannot fully reverse a backup.
var ErrPlanIncomplete = errors.New("restore plan incomplete")

// PlanIncomplete returns an informational hint naming what cannot be restored.
func PlanIncomplete(what string) error {
	return hints.Newf("%w: %s", ErrPlanIncomplete, what)
}

// IsConfiguration reports whether err contains a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsCommand reports whether err contains a CommandError.
func IsCommand(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce)
}
