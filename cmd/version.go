package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is injected at build time:
//
//	go build -ldflags "-X github.com/timvw/tmux-runner/cmd.Version=v1.2.3"
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
