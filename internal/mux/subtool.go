package mux

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrSubtoolNotInstalled is returned when the session manager binary is not
// on $PATH. Callers treat it as "no projects" for the cycle.
var ErrSubtoolNotInstalled = errors.New("session manager not installed")

// Subtool lists projects of a tmuxinator-compatible session manager.
type Subtool struct {
	Binary string
}

// NewSubtool creates a lister for binary.
func NewSubtool(binary string) *Subtool {
	return &Subtool{Binary: binary}
}

// ListProjects runs "<binary> ls".
func (s *Subtool) ListProjects(ctx context.Context) ([]string, error) {
	if s.Binary == "" {
		return nil, ErrSubtoolNotInstalled
	}
	path, err := exec.LookPath(s.Binary)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Binary, ErrSubtoolNotInstalled)
	}
	out, err := run(ctx, path, "ls")
	if err != nil {
		return nil, fmt.Errorf("%s ls: %w", s.Binary, err)
	}
	return parseProjects(out), nil
}

// parseProjects reads "<binary> ls" output: a header line followed by
// whitespace separated project names.
func parseProjects(out string) []string {
	lines := strings.Split(out, "\n")
	if len(lines) < 2 {
		return nil
	}
	var projects []string
	for _, line := range lines[1:] {
		projects = append(projects, strings.Fields(line)...)
	}
	return projects
}
