package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	flagIndex  int
	flagDryRun bool
)

var runCmd = &cobra.Command{
	Use:   "run <query>...",
	Short: "Launch the best candidate for a query",
	Long: `Match a query like "match" does and launch the selected candidate in a
new terminal window. The most relevant candidate is used unless --index
picks another one from the sorted list.

With --dry-run the command is printed as JSON and nothing is started.`,
	Example: `  tmux-runner run tmux work
  tmux-runner run --index 1 tmux wor
  tmux-runner run --dry-run tmux inator blog`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		res := a.matchQuery(ctx, args)
		if len(res.Matches) == 0 {
			return fmt.Errorf("no candidates for %q", strings.Join(args, " "))
		}
		if flagIndex < 0 || flagIndex >= len(res.Matches) {
			return fmt.Errorf("index %d out of range (%d candidates)", flagIndex, len(res.Matches))
		}
		sel := res.Matches[flagIndex]

		if flagDryRun {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(a.runner.Command(sel))
		}

		c, err := a.runner.Launch(ctx, sel)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s\n", sel.Text)
		fmt.Println(c.String())
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&flagIndex, "index", 0, "candidate to launch, 0 is the most relevant")
	runCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "print the command instead of launching it")
	rootCmd.AddCommand(runCmd)
}
