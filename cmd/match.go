package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/timvw/tmux-runner/internal/match"
	"github.com/timvw/tmux-runner/internal/model"
)

var flagPlain bool

var matchCmd = &cobra.Command{
	Use:   "match <query>...",
	Short: "Show the candidates for a query",
	Long: `Match a query against running tmux sessions and tmuxinator projects and
print the candidates, most relevant first, as JSON.

The query starts with the trigger keyword ("tmux" by default) unless
--no-trigger is given. With --plain, one display line is printed per
candidate instead.`,
	Example: `  tmux-runner match tmux work
  tmux-runner match --no-trigger "api ~/src/api -t"
  tmux-runner match tmux inator blog -p 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		res := a.matchQuery(ctx, args)

		if flagPlain {
			for _, m := range res.Matches {
				fmt.Println(m.Text)
			}
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Matches)
	},
}

func init() {
	matchCmd.Flags().BoolVar(&flagPlain, "plain", false, "print display lines instead of JSON")
	rootCmd.AddCommand(matchCmd)
}

// matchQuery refreshes live state and returns the candidates for the query
// in args, sorted by relevance. A query without the trigger has none.
func (a *app) matchQuery(ctx context.Context, args []string) match.Result {
	term, ok := a.term(args)
	if !ok {
		a.logger.Debug("query does not start with the trigger")
		return match.Result{Matches: []model.Match{}}
	}

	state := a.runner.Prepare(ctx)
	res := a.runner.Match(ctx, term, state)
	res.Matches = slices.Clone(res.Matches)
	if res.Matches == nil {
		res.Matches = []model.Match{}
	}
	model.SortByRelevance(res.Matches)
	return res
}
