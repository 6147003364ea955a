// Package command builds the program and argument vector that opens a tmux
// session in a terminal emulator.
package command

import (
	"slices"
	"strings"

	"github.com/timvw/tmux-runner/internal/config"
	"github.com/timvw/tmux-runner/internal/model"
	"github.com/timvw/tmux-runner/internal/paths"
)

// Command is a program and its arguments, ready to be spawned.
type Command struct {
	Program string   `json:"program"`
	Args    []string `json:"args"`
}

// String renders the command for display. It does not quote arguments.
func (c Command) String() string {
	return strings.TrimSpace(c.Program + " " + strings.Join(c.Args, " "))
}

// Attach builds the command that attaches target in the given terminal.
func Attach(programID, target string, snap config.Snapshot) Command {
	kind := KindOf(programID)
	if kind == KindCustom {
		args := customArgs(snap.Custom.AttachParams, target, snap.Home)
		return Command{Program: snap.Custom.Program, Args: dropEmpty(args)}
	}
	return Command{Program: programID, Args: dropEmpty(expand(templates[kind].attach, target))}
}

// Create builds the command that starts a new session. path must already be
// resolved; empty means the home directory. action selects between a plain
// tmux session and a session manager project; subtoolArgs only apply to the
// latter.
func Create(programID, target string, action model.Action, path, subtoolArgs string, snap config.Snapshot) Command {
	if path == "" {
		path = snap.Home
	}

	kind := KindOf(programID)
	program := programID
	var args []string
	if kind == KindCustom {
		program = snap.Custom.Program
		args = customArgs(snap.Custom.NewParams, target, path)
	} else {
		args = append(expand(templates[kind].create, target), "-c", path)
	}

	if action == model.ActionNewViaSubtool {
		if i := slices.Index(args, "tmux"); i >= 0 {
			args = args[:i]
		}
		args = append(args, snap.Subtool.Binary, target)
		args = append(args, strings.Fields(subtoolArgs)...)
	}

	if target == "" {
		args = removeFirst(args, "-s")
		args = removeFirst(args, "-t")
	}
	return Command{Program: program, Args: dropEmpty(args)}
}

// ForMatch builds the command for a selected match. An empty match program
// falls back to the configured default.
func ForMatch(m model.Match, snap config.Snapshot) Command {
	program := m.Program
	if program == "" {
		program = snap.DefaultProgram
	}
	if m.Action == model.ActionAttach {
		return Attach(program, m.Target, snap)
	}
	return Create(program, m.Target, m.Action, m.Path, m.SubtoolArgs, snap)
}

// ResolvePath is a convenience for callers holding an unresolved path.
func ResolvePath(raw string, snap config.Snapshot) string {
	return paths.NewResolver(snap).Resolve(raw)
}

func customArgs(tmpl, target, path string) []string {
	s := strings.ReplaceAll(tmpl, "%name", target)
	s = strings.ReplaceAll(s, "%path", path)
	return strings.Split(s, " ")
}

func removeFirst(args []string, tok string) []string {
	if i := slices.Index(args, tok); i >= 0 {
		return slices.Delete(args, i, i+1)
	}
	return args
}

func dropEmpty(args []string) []string {
	return slices.DeleteFunc(args, func(a string) bool { return a == "" })
}
