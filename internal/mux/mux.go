// Package mux talks to the terminal multiplexer and to the session manager
// layered on top of it.
//
// This package is pure transport: it reports what exists (session names,
// project names) and leaves every decision about them to the caller.
package mux

import (
	"context"
)

// SessionLister returns the names of running sessions.
type SessionLister interface {
	ListSessions(ctx context.Context) ([]string, error)
}

// ProjectLister returns the names of session manager projects.
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]string, error)
}

// Multiplexer abstracts terminal multiplexer operations.
// Only tmux is implemented.
type Multiplexer interface {
	SessionLister

	// Name returns the multiplexer name (e.g., "tmux").
	Name() string
}
