package mirror

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// Runner invokes the version-control executable. A nil error means exit code
// 0. Otherwise the error is a *ProcessError (ran, exited non-zero) or an
// *InvocationError (could not run at all).
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) error
}

// ProcessError is a non-zero exit of the version-control executable.
type ProcessError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("git %s: exit status %d", strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// InvocationError means the executable could not be started or was
// interrupted before it could report an exit status.
type InvocationError struct {
	Args []string
	Err  error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// ExecRunner runs git as a child process. Stdout is discarded and stderr is
// captured for error reporting.
type ExecRunner struct {
	// Binary defaults to "git".
	Binary string

	// Log receives one line per invocation when non-nil (verbose mode).
	Log io.Writer

	logMu sync.Mutex
}

func (r *ExecRunner) Run(ctx context.Context, dir string, args ...string) error {
	bin := r.Binary
	if bin == "" {
		bin = "git"
	}
	r.logf(dir, args)

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	// Never prompt for credentials; an SSH auth problem must fail, not hang.
	cmd.Env = append(cmd.Environ(), "GIT_TERMINAL_PROMPT=0")
	cmd.Stdout = io.Discard
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return &InvocationError{Args: args, Err: ctx.Err()}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ProcessError{
			Args:     args,
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(stderr.String()),
		}
	}
	return &InvocationError{Args: args, Err: err}
}

func (r *ExecRunner) logf(dir string, args []string) {
	if r.Log == nil {
		return
	}
	r.logMu.Lock()
	defer r.logMu.Unlock()
	if dir == "" {
		_, _ = fmt.Fprintf(r.Log, "[verbose] git: %s\n", strings.Join(args, " "))
		return
	}
	_, _ = fmt.Fprintf(r.Log, "[verbose] git: %s (in %s)\n", strings.Join(args, " "), dir)
}
