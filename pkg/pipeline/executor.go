package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/paulschiretz/pgl-shipper/pkg/plog"
)

// Result is the outcome of one executed pipeline.
type Result struct {
	Code   int
	Cmd    string
	Stdout string
	Stderr string
}

// IsSuccessful reports whether the process exited with code 0.
func (r Result) IsSuccessful() bool {
	return r.Code == 0
}

// Combine appends next to r. Exit codes add up, so a non-zero code means
// at least one of the stages failed.
func (r Result) Combine(next Result) Result {
	cmd := r.Cmd
	if next.Cmd != "" {
		if cmd != "" {
			cmd += "\n"
		}
		cmd += next.Cmd
	}
	return Result{
		Code:   r.Code + next.Code,
		Cmd:    cmd,
		Stdout: r.Stdout + next.Stdout,
		Stderr: r.Stderr + next.Stderr,
	}
}

// Compressor compresses a file produced by a pipeline.
type Compressor interface {
	// Name identifies the compressor in logs and configuration.
	Name() string
	// Suffix is the file extension appended to the compressed file, without dot.
	Suffix() string
	// Compress replaces path with path + "." + Suffix().
	Compress(ctx context.Context, e *Executor, path string) (Result, error)
}

// Executor runs pipelines through the platform shell, one process at a time.
type Executor struct {
	// commandContext allows mocking os/exec for testing.
	commandContext func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

// NewExecutor creates an Executor. A nil commandContext falls back to exec.CommandContext.
func NewExecutor(commandContext func(ctx context.Context, name string, arg ...string) *exec.Cmd) *Executor {
	if commandContext == nil {
		commandContext = exec.CommandContext
	}
	return &Executor{commandContext: commandContext}
}

// Run executes the pipeline and blocks until it exits. A non-zero exit code is
// reported through the Result, the error is only set when the process could not
// be started or the context was canceled.
func (e *Executor) Run(ctx context.Context, p *Pipeline) (Result, error) {
	line := p.String()
	res := Result{Cmd: line}

	select {
	case <-ctx.Done():
		res.Code = -1
		return res, ctx.Err()
	default:
	}

	var stdout, stderr bytes.Buffer
	cmd := e.createCommand(ctx, line)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	plog.Debug("Executing command", "command", line)
	err := cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	if err == nil {
		return res, nil
	}

	// Check if the context was canceled, which can cause cmd.Wait() to return an error.
	if ctx.Err() != nil {
		res.Code = -1
		return res, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.Code = exitErr.ExitCode()
		return res, nil
	}
	res.Code = -1
	return res, fmt.Errorf("failed to start command %q: %w", line, err)
}

// RunCompressed redirects the pipeline's output to plainPath and compresses the
// file afterwards when c is set. If the pipeline fails its partial output is
// removed and the compressor never runs. If the compressor fails its partial
// output is removed while plainPath is left in place.
func (e *Executor) RunCompressed(ctx context.Context, p *Pipeline, plainPath string, c Compressor) (Result, error) {
	p.RedirectTo(plainPath)
	res, err := e.Run(ctx, p)
	if err != nil || !res.IsSuccessful() {
		removePartial(plainPath)
		return res, err
	}
	if c == nil {
		return res, nil
	}

	cres, err := c.Compress(ctx, e, plainPath)
	combined := res.Combine(cres)
	if err != nil || !cres.IsSuccessful() {
		removePartial(plainPath + "." + c.Suffix())
		return combined, err
	}
	return combined, nil
}

func removePartial(path string) {
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			plog.Warn("Failed to remove partial output", "path", path, "error", err)
		}
		return
	}
	plog.Debug("Removed partial output", "path", path)
}
