// Package execx executes external command-line tools (yt-dlp, ffmpeg,
// ffprobe) with output capture and a hard timeout. It owns no policy:
// retries and fallbacks belong to callers.
package execx

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

// Result is the outcome of one tool invocation.
// OK is true only for a clean zero exit before the timeout.
type Result struct {
	OK       bool
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner runs an external tool to completion.
type Runner interface {
	Run(ctx context.Context, bin string, args []string, timeout time.Duration) Result
}

// RunnerFunc adapts a function to the Runner interface (for tests).
type RunnerFunc func(ctx context.Context, bin string, args []string, timeout time.Duration) Result

func (f RunnerFunc) Run(ctx context.Context, bin string, args []string, timeout time.Duration) Result {
	return f(ctx, bin, args, timeout)
}

// Compile-time interface compliance checks.
var (
	_ Runner = (*ProcessRunner)(nil)
	_ Runner = RunnerFunc(nil)
)

// ProcessRunner is the production Runner backed by os/exec.
type ProcessRunner struct{}

// NewProcessRunner creates a ProcessRunner.
func NewProcessRunner() *ProcessRunner { return &ProcessRunner{} }

// Run spawns bin with args, stdin closed and stdout/stderr captured as text.
// A timeout <= 0 means no additional deadline beyond ctx. On timeout the
// child is killed and stderr is annotated "<bin> timed out"; a spawn
// failure (binary missing, permission denied) yields exit code 1 with the
// error text as stderr.
func (r *ProcessRunner) Run(ctx context.Context, bin string, args []string, timeout time.Duration) Result {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		res.Stderr = annotateTimeout(res.Stderr, bin)
		res.ExitCode = exitCodeOf(cmd, 1)
		return res
	}

	if err != nil {
		if exit, ok := err.(*exec.ExitError); ok {
			res.ExitCode = exit.ExitCode()
		} else {
			// Spawn failure: the process never ran.
			res.ExitCode = 1
			res.Stderr = err.Error()
		}
		return res
	}

	res.OK = true
	res.ExitCode = 0
	return res
}

func exitCodeOf(cmd *exec.Cmd, fallback int) int {
	if cmd.ProcessState != nil {
		if code := cmd.ProcessState.ExitCode(); code >= 0 {
			return code
		}
	}
	return fallback
}

func annotateTimeout(stderr, bin string) string {
	note := bin + " timed out"
	if strings.TrimSpace(stderr) == "" {
		return note
	}
	return stderr + "\n" + note
}
