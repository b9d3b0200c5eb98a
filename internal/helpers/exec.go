package helpers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// CommandRunner defines an interface for executing system commands
// This allows for mocking in tests and dependency injection
type CommandRunner interface {
	// CommandExists checks if a command is available in PATH
	CommandExists(name string) bool

	// RequireCommand ensures a command exists or returns error
	RequireCommand(name string) error

	// RunCommand executes a command and returns stdout
	RunCommand(ctx context.Context, name string, args ...string) (string, error)

	// RunCommandWithOutput runs a command and returns both stdout and stderr
	RunCommandWithOutput(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)

	// GetExitCode extracts the exit code from a command error
	GetExitCode(err error) int

	// RunCommandStreaming executes a command and streams output to provided writers
	RunCommandStreaming(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error

	// PrepareCommand prepares a command but does not execute it
	PrepareCommand(ctx context.Context, name string, args ...string) *exec.Cmd
}

// CommandError describes a failed subprocess. Stderr is kept verbatim so it
// can be surfaced to the user unchanged.
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed: %v", e.Name, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\nstderr: " + s
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err was caused by a missing executable.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}

// OSCommandRunner is the default implementation using os/exec
type OSCommandRunner struct {
	commandCache sync.Map // map[string]bool
}

// NewOSCommandRunner creates a new OSCommandRunner instance
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// CommandExists checks if a command is available in PATH
func (r *OSCommandRunner) CommandExists(name string) bool {
	if cached, ok := r.commandCache.Load(name); ok {
		if exists, ok := cached.(bool); ok {
			return exists
		}
		r.commandCache.Delete(name)
	}

	_, err := exec.LookPath(name)
	exists := err == nil
	r.commandCache.Store(name, exists)
	return exists
}

// RequireCommand ensures a command exists or returns error
func (r *OSCommandRunner) RequireCommand(name string) error {
	if !r.CommandExists(name) {
		return fmt.Errorf("required command %q not found in PATH: %w", name, exec.ErrNotFound)
	}
	return nil
}

// RunCommand executes a command and returns stdout
// SECURITY: Uses exec.CommandContext with separate arguments to prevent command injection
func (r *OSCommandRunner) RunCommand(ctx context.Context, name string, args ...string) (string, error) {
	stdout, _, err := r.RunCommandWithOutput(ctx, name, args...)
	if err != nil {
		return "", err
	}
	return stdout, nil
}

// RunCommandWithOutput runs a command and returns both stdout and stderr.
// Output collected before a failure is returned alongside the error.
func (r *OSCommandRunner) RunCommandWithOutput(ctx context.Context, name string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()

	if err != nil {
		err = &CommandError{
			Name:     name,
			Args:     args,
			ExitCode: r.GetExitCode(err),
			Stderr:   stderr,
			Err:      err,
		}
	}

	return stdout, stderr, err
}

// GetExitCode extracts the exit code from a command error
func (r *OSCommandRunner) GetExitCode(err error) int {
	return ExitCode(err)
}

// ExitCode extracts the exit code from a command error: 0 for nil, -1 when
// the process never ran.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode != 0 {
		return cmdErr.ExitCode
	}

	return -1
}

// RunCommandStreaming executes a command and streams output to provided writers
// Passing the same writer for stdout and stderr merges both channels in order.
// Pass nil for stdout/stderr to discard output (equivalent to > /dev/null)
// SECURITY: Uses exec.CommandContext with separate arguments to prevent command injection
func (r *OSCommandRunner) RunCommandStreaming(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	// Bounds how long Wait blocks on open pipes after the context kills the process.
	cmd.WaitDelay = 500 * time.Millisecond

	if stdout != nil {
		cmd.Stdout = stdout
	}
	if stderr != nil {
		cmd.Stderr = stderr
	}

	if err := cmd.Run(); err != nil {
		return &CommandError{
			Name:     name,
			Args:     args,
			ExitCode: r.GetExitCode(err),
			Err:      err,
		}
	}

	return nil
}

// PrepareCommand prepares a command but does not execute it
// Callers can configure Stdout/Stderr/Stdin and other settings before calling Run() or Start()
// SECURITY: Uses exec.CommandContext with separate arguments to prevent command injection
func (r *OSCommandRunner) PrepareCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}
