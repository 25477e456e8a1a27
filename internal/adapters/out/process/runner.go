// Package process runs external command-line tools.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Command is a tool invocation. Stdin is never logged.
type Command struct {
	Name  string
	Args  []string
	Stdin string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner executes a command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// CommandError is returned when a command exits unsuccessfully.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// ExecRunner runs commands as subprocesses.
type ExecRunner struct {
	timeout time.Duration
	log     *log.Logger
}

// NewExecRunner creates a runner. A zero timeout disables the per-command deadline.
func NewExecRunner(timeout time.Duration, logger *log.Logger) *ExecRunner {
	return &ExecRunner{
		timeout: timeout,
		log:     logger.WithPrefix("process"),
	}
}

// Run executes cmd and returns its trimmed stdout.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}

	r.log.Debug("running command", "cmd", cmd.String())

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), &CommandError{
				Command:  cmd.String(),
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return "", fmt.Errorf("failed to execute %s: %w", cmd.Name, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}
