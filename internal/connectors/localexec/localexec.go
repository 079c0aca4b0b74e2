// Package localexec provides a local command executor with an allowlist.
package localexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fentz26/ganttline/internal/connectors"
)

// DefaultAllowed is the allowlist used when none is configured.
var DefaultAllowed = []string{"manim"}

// LocalExec implements the Connector interface for local command execution.
type LocalExec struct {
	workDir string
	allowed map[string]bool
	env     []string
}

// Option configures a LocalExec.
type Option func(*LocalExec)

// WithAllowed replaces the command allowlist.
func WithAllowed(cmds ...string) Option {
	return func(l *LocalExec) {
		l.allowed = make(map[string]bool, len(cmds))
		for _, c := range cmds {
			l.allowed[c] = true
		}
	}
}

// WithEnv adds KEY=VALUE pairs to the child environment.
func WithEnv(kv ...string) Option {
	return func(l *LocalExec) {
		l.env = append(l.env, kv...)
	}
}

// New creates a new LocalExec connector.
func New(workDir string, opts ...Option) *LocalExec {
	l := &LocalExec{workDir: workDir}
	WithAllowed(DefaultAllowed...)(l)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns the connector identifier.
func (l *LocalExec) Name() string {
	return "localexec"
}

// IsAllowed checks if a command is in the allowlist. Only bare command names
// resolved through PATH are accepted, and a command needs at least one argument.
func (l *LocalExec) IsAllowed(cmd string, args []string) bool {
	if cmd == "" || filepath.Base(cmd) != cmd {
		return false
	}
	if !l.allowed[cmd] {
		return false
	}
	return len(args) > 0
}

// Execute runs a command if it's in the allowlist.
func (l *LocalExec) Execute(ctx context.Context, cmd string, args []string) (*connectors.ExecResult, error) {
	if !l.IsAllowed(cmd, args) {
		return nil, fmt.Errorf("%w: %s %s", connectors.ErrCommandNotAllowed, cmd, strings.Join(args, " "))
	}

	execCmd := exec.CommandContext(ctx, cmd, args...)
	if l.workDir != "" {
		execCmd.Dir = l.workDir
	}
	if len(l.env) > 0 {
		execCmd.Env = append(os.Environ(), l.env...)
	}

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	err := execCmd.Run()

	exitCode := 0
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			exitCode = exitError.ExitCode()
		} else {
			return nil, fmt.Errorf("exec error: %w", err)
		}
	}

	return &connectors.ExecResult{
		Command:  cmd,
		Args:     args,
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}
