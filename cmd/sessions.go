package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List running tmux sessions",
	Long: `List the names of running tmux sessions, one per line.

No running tmux server is not an error: the list is simply empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		if a.runner.Sessions == nil {
			return errors.New("no supported terminal multiplexer found")
		}
		sessions, err := a.runner.Sessions.ListSessions(ctx)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		for _, s := range sessions {
			fmt.Println(s)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
