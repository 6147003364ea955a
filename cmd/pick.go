package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/timvw/tmux-runner/internal/config"
	"github.com/timvw/tmux-runner/internal/launcher"
)

var (
	flagTheme   string
	flagNoWatch bool
)

var pickCmd = &cobra.Command{
	Use:   "pick [query]...",
	Short: "Interactive launcher",
	Long: `Open an interactive picker. Type a query (without the trigger keyword),
move through the candidates with the arrow keys and press Enter to open a
terminal on the selection.

Running sessions and tmuxinator projects are refreshed in the background.
Changes to the config file are picked up while the picker is open unless
--no-watch is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPick(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	pickCmd.Flags().StringVar(&flagTheme, "theme", "dark", "Color theme: dark, light")
	pickCmd.Flags().BoolVar(&flagNoWatch, "no-watch", false, "do not reload the config file when it changes")
	rootCmd.AddCommand(pickCmd)
}

func runPick(parent context.Context, initial string) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel() // stops the watcher and in-flight refreshes when the picker exits

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if !flagNoWatch {
		if w := a.watchConfig(ctx); w != nil {
			defer w.Stop()
		}
	}

	p := &launcher.Picker{
		Engine:          a.runner,
		RefreshInterval: a.cfg.RefreshDuration,
		Theme:           launcher.ThemeByName(flagTheme),
		Query:           initial,
	}
	res, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("picker: %w", err)
	}
	if res.Launched != nil {
		fmt.Println(res.Launched.String())
	}
	return nil
}

// watchConfig starts reloading the config file into the runner's store. It
// returns nil when there is nothing to watch.
func (a *app) watchConfig(ctx context.Context) *config.Watcher {
	path := a.cfg.ConfigFile
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil
		}
		path = p
	}

	w := config.NewWatcher(path, a.home, a.store, a.logger)
	w.OnReload = a.runner.OnReload
	if err := w.Start(ctx); err != nil {
		a.logger.Warn("config watch disabled", zap.Error(err))
		return nil
	}
	return w
}
