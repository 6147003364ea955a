package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/timvw/tmux-runner/internal/command"
	"github.com/timvw/tmux-runner/internal/model"
)

var (
	flagAction      string
	flagPath        string
	flagSubtoolArgs string
)

var commandCmd = &cobra.Command{
	Use:   "command <target>",
	Short: "Print the terminal command for an action",
	Long: `Synthesize the argument vector that would be spawned for an action on a
target, without matching a query and without starting anything.

--action is one of attach, new, subtool. --path accepts the same shortcuts
and ~ expansion as a query. An empty target creates an unnamed session.`,
	Example: `  tmux-runner command --action attach work
  tmux-runner command --action new --path @src/api --program terminator api
  tmux-runner command --action subtool --args "-p 1" blog`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		var action model.Action
		if err := action.UnmarshalText([]byte(flagAction)); err != nil {
			return fmt.Errorf("--action: %w", err)
		}
		var target string
		if len(args) == 1 {
			target = args[0]
		}

		snap := a.store.Load()
		program := snap.DefaultProgram
		var c command.Command
		switch action {
		case model.ActionAttach:
			c = command.Attach(program, target, snap)
		default:
			path := ""
			if flagPath != "" {
				path = command.ResolvePath(flagPath, snap)
			}
			c = command.Create(program, target, action, path, flagSubtoolArgs, snap)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	},
}

func init() {
	commandCmd.Flags().StringVar(&flagAction, "action", "attach", "attach, new or subtool")
	commandCmd.Flags().StringVar(&flagPath, "path", "", "start directory for a new session")
	commandCmd.Flags().StringVar(&flagSubtoolArgs, "args", "", "extra arguments for the session manager")
	rootCmd.AddCommand(commandCmd)
}
