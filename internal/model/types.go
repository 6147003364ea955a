package model

import (
	"fmt"
	"sort"
)

// Action is what a match does when it is launched.
type Action int

const (
	// ActionAttach attaches a terminal to an existing session.
	ActionAttach Action = iota
	// ActionNewSession creates a new tmux session.
	ActionNewSession
	// ActionNewViaSubtool starts a project through the session manager (tmuxinator).
	ActionNewViaSubtool
)

// String returns the wire name of the action ("attach", "new", "subtool").
func (a Action) String() string {
	switch a {
	case ActionAttach:
		return "attach"
	case ActionNewSession:
		return "new"
	case ActionNewViaSubtool:
		return "subtool"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// MarshalText implements encoding.TextMarshaler so matches serialize with
// readable action names.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(b []byte) error {
	switch string(b) {
	case "attach":
		*a = ActionAttach
	case "new":
		*a = ActionNewSession
	case "subtool":
		*a = ActionNewViaSubtool
	default:
		return fmt.Errorf("unknown action %q", string(b))
	}
	return nil
}

// Match is one candidate shown to the user for a query.
type Match struct {
	// Text is the display line, e.g. "Attach to work in konsole".
	Text string `json:"text"`
	// Relevance is the ranking hint in (0,1]; 1.0 is most relevant.
	Relevance float64 `json:"relevance"`
	// Action selects which command gets synthesized on launch.
	Action Action `json:"action"`
	// Target is the session or project name. Empty for an unnamed new session.
	Target string `json:"target"`
	// Program is the terminal emulator identifier (e.g., "konsole", "custom").
	Program string `json:"program"`
	// Path is the already resolved start directory for a new session.
	// Empty means the home directory.
	Path string `json:"path,omitempty"`
	// SubtoolArgs are extra arguments passed verbatim to the session manager.
	SubtoolArgs string `json:"subtool_args,omitempty"`
}

// SortByRelevance orders matches by descending relevance. The sort is stable,
// so ties keep the order the match engine produced them in.
func SortByRelevance(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Relevance > matches[j].Relevance
	})
}
