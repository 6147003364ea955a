package mux

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Tmux implements Multiplexer for tmux.
type Tmux struct {
	// Binary is the tmux executable; empty means "tmux" from $PATH.
	Binary string
}

// NewTmux creates a new tmux multiplexer.
func NewTmux() *Tmux {
	return &Tmux{Binary: "tmux"}
}

// Name returns "tmux".
func (t *Tmux) Name() string {
	return "tmux"
}

// ListSessions returns the names of all tmux sessions. A tmux without a
// running server has no sessions; that is not an error.
func (t *Tmux) ListSessions(ctx context.Context) ([]string, error) {
	out, err := run(ctx, t.binary(), "list-sessions", "-F", "#{session_name}")
	if err != nil {
		if isNoServer(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("tmux list-sessions: %w", err)
	}
	return parseSessions(out), nil
}

func (t *Tmux) binary() string {
	if t.Binary == "" {
		return "tmux"
	}
	return t.Binary
}

// parseSessions reads one session name per line.
func parseSessions(out string) []string {
	var sessions []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		sessions = append(sessions, line)
	}
	return sessions
}

// stderrError carries what a failed command printed on stderr.
type stderrError struct {
	err    error
	stderr string
}

func (e *stderrError) Error() string {
	return fmt.Sprintf("%v: %s", e.err, strings.TrimSpace(e.stderr))
}

func (e *stderrError) Unwrap() error { return e.err }

// isNoServer reports whether tmux failed only because no server is running.
func isNoServer(err error) bool {
	var se *stderrError
	if !errors.As(err, &se) {
		return false
	}
	return strings.Contains(se.stderr, "no server running") ||
		strings.Contains(se.stderr, "error connecting to")
}

// run executes a command and returns its stdout.
func run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", &stderrError{err: err, stderr: string(exitErr.Stderr)}
		}
		return "", err
	}
	return string(out), nil
}
