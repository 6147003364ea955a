package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timvw/tmux-runner/internal/mux"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List tmuxinator projects",
	Long: `List the projects known to the session manager (tmuxinator by default),
one per line. The binary is taken from tmuxinator.binary in the config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		snap := a.store.Load()
		projects, err := mux.NewSubtool(snap.Subtool.Binary).ListProjects(ctx)
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		for _, p := range projects {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}
