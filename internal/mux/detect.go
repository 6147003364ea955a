package mux

import (
	"fmt"
	"os/exec"
)

// Detect returns the multiplexer to use. A running server is not required:
// with no server there are simply no sessions to attach to.
func Detect() (Multiplexer, error) {
	if path, err := exec.LookPath("tmux"); err == nil && path != "" {
		return NewTmux(), nil
	}
	return nil, fmt.Errorf("no supported terminal multiplexer detected (install tmux)")
}

// FromName creates a Multiplexer by name.
func FromName(name string) (Multiplexer, error) {
	switch name {
	case "", "tmux":
		return NewTmux(), nil
	case "zellij":
		return nil, fmt.Errorf("zellij support is not yet implemented")
	default:
		return nil, fmt.Errorf("unknown multiplexer: %q (supported: tmux)", name)
	}
}
