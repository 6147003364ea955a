package main

import "github.com/timvw/tmux-runner/cmd"

func main() {
	cmd.Execute()
}
