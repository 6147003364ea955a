// Package paths expands the start directory typed after a session name.
package paths

import (
	"strings"

	"github.com/timvw/tmux-runner/internal/config"
)

// Resolver expands user paths. It never touches the filesystem.
type Resolver struct {
	Home      string
	Shortcuts []config.Shortcut
}

// NewResolver returns a Resolver for the given snapshot.
func NewResolver(snap config.Snapshot) Resolver {
	return Resolver{Home: snap.Home, Shortcuts: snap.Shortcuts}
}

// Resolve turns raw into an absolute path:
//   - "" is the home directory
//   - each shortcut key is replaced (first occurrence) in configured order
//   - a leading "~" becomes the home directory
//   - anything else that is not absolute is taken relative to home
func (r Resolver) Resolve(raw string) string {
	if raw == "" {
		return r.Home
	}
	p := raw
	for _, s := range r.Shortcuts {
		p = strings.Replace(p, s.Key, s.Value, 1)
	}
	switch {
	case strings.HasPrefix(p, "~"):
		return r.Home + p[1:]
	case !strings.HasPrefix(p, "/"):
		return r.Home + "/" + p
	}
	return p
}
