// Package runner ties the launcher together: it refreshes live tmux state,
// matches queries against it, and launches the selected candidate.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/timvw/tmux-runner/internal/command"
	"github.com/timvw/tmux-runner/internal/config"
	"github.com/timvw/tmux-runner/internal/logging"
	"github.com/timvw/tmux-runner/internal/match"
	"github.com/timvw/tmux-runner/internal/model"
	"github.com/timvw/tmux-runner/internal/mux"
	trotel "github.com/timvw/tmux-runner/internal/otel"
	"github.com/timvw/tmux-runner/internal/query"
	"github.com/timvw/tmux-runner/internal/spawn"
)

// DefaultTimeout bounds one live-state refresh.
const DefaultTimeout = time.Second

// LiveState is the session and project snapshot one match cycle works on.
type LiveState struct {
	Sessions  []string  `json:"sessions"`
	Projects  []string  `json:"projects"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Runner wires the matching core to its collaborators.
type Runner struct {
	Config   *config.Store
	Sessions mux.SessionLister
	// Projects overrides the project lister. nil runs the session manager
	// binary named in the current config.
	Projects mux.ProjectLister
	Spawner  spawn.Spawner
	Cache    *ProjectCache   // nil disables caching
	Metrics  *trotel.Metrics // OTEL metric counters; nil-safe
	// Tracer records prepare, match and launch spans. nil uses the global
	// provider.
	Tracer trace.Tracer
	Logger *zap.Logger
	// Timeout bounds Prepare; 0 means DefaultTimeout.
	Timeout time.Duration
	// SessionID groups the spans of one launcher process.
	SessionID string
}

func (r *Runner) logger() *zap.Logger {
	return logging.OrNop(r.Logger)
}

func (r *Runner) tracer() trace.Tracer {
	if r.Tracer == nil {
		return otel.Tracer("tmux-runner")
	}
	return r.Tracer
}

// Prepare lists sessions and projects concurrently. A failed listing is
// logged and yields an empty list; Prepare itself never fails.
func (r *Runner) Prepare(ctx context.Context) LiveState {
	ctx, span := r.tracer().Start(ctx, "prepare",
		trace.WithAttributes(attribute.String("launcher.session.id", r.SessionID)))
	defer span.End()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	snap := r.Config.Load()
	var state LiveState

	// Listing errors are handled per source, so the group never cancels.
	var g errgroup.Group
	g.Go(func() error {
		state.Sessions = r.listSessions(ctx)
		return nil
	})
	if snap.EnableSubtool {
		g.Go(func() error {
			state.Projects = r.listProjects(ctx, r.projectLister(snap))
			return nil
		})
	}
	_ = g.Wait()
	state.FetchedAt = time.Now()

	span.SetAttributes(
		attribute.Int("sessions.total", len(state.Sessions)),
		attribute.Int("projects.total", len(state.Projects)),
	)
	return state
}

func (r *Runner) listSessions(ctx context.Context) []string {
	if r.Sessions == nil {
		return nil
	}
	sessions, err := r.Sessions.ListSessions(ctx)
	if err != nil {
		r.logger().Warn("listing sessions failed", zap.Error(err))
		r.Metrics.RecordRefreshError(ctx, "sessions")
		return nil
	}
	return sessions
}

func (r *Runner) projectLister(snap config.Snapshot) mux.ProjectLister {
	if r.Projects != nil {
		return r.Projects
	}
	return mux.NewSubtool(snap.Subtool.Binary)
}

func (r *Runner) listProjects(ctx context.Context, lister mux.ProjectLister) []string {
	if cached, ok := r.Cache.Lookup(); ok {
		r.Metrics.RecordCacheHit(ctx)
		return cached
	}
	r.Metrics.RecordCacheMiss(ctx)

	projects, err := lister.ListProjects(ctx)
	if errors.Is(err, mux.ErrSubtoolNotInstalled) {
		r.logger().Debug("session manager not installed, project matches disabled", zap.Error(err))
		r.Cache.Store(nil)
		return nil
	}
	if err != nil {
		r.logger().Warn("listing projects failed", zap.Error(err))
		r.Metrics.RecordRefreshError(ctx, "projects")
		return nil
	}
	r.Cache.Store(projects)
	return projects
}

// Match parses term and computes candidates against state using the current
// configuration. term must already have the launcher trigger removed.
// Project mode is off for this cycle when state holds no projects.
func (r *Runner) Match(ctx context.Context, term string, state LiveState) match.Result {
	ctx, span := r.tracer().Start(ctx, "match",
		trace.WithAttributes(
			attribute.String("launcher.session.id", r.SessionID),
			attribute.String("query", term),
		))
	defer span.End()

	snap := r.Config.Load()
	p := query.Parse(term, match.QueryOptions(snap, state.Projects))
	res := match.Compute(p, state.Sessions, state.Projects, snap)

	byAction := make(map[string]int64)
	for _, m := range res.Matches {
		byAction[m.Action.String()]++
	}
	r.Metrics.RecordMatch(ctx, p.SubtoolMode, byAction)

	span.SetAttributes(
		attribute.Int("candidates.total", len(res.Matches)),
		attribute.Bool("exact_match", res.ExactMatch),
	)
	r.logger().Debug("matched",
		zap.String("query", term),
		zap.Int("candidates", len(res.Matches)),
		zap.Bool("exact", res.ExactMatch))
	return res
}

// Command returns what Launch would run for m, without running it.
func (r *Runner) Command(m model.Match) command.Command {
	return command.ForMatch(m, r.Config.Load())
}

// Launch spawns the terminal for m and returns the command it ran.
func (r *Runner) Launch(ctx context.Context, m model.Match) (command.Command, error) {
	ctx, span := r.tracer().Start(ctx, "launch",
		trace.WithAttributes(
			attribute.String("launcher.session.id", r.SessionID),
			attribute.String("launch.action", m.Action.String()),
			attribute.String("launch.target", m.Target),
		))
	defer span.End()

	cmd := r.Command(m)
	span.SetAttributes(attribute.String("launch.program", cmd.Program))

	err := r.Spawner.Spawn(ctx, cmd.Program, cmd.Args)
	r.Metrics.RecordLaunch(ctx, m.Action.String(), cmd.Program, err)
	if err != nil {
		span.RecordError(err)
		return cmd, fmt.Errorf("launch %s %q: %w", m.Action, m.Target, err)
	}

	r.logger().Info("launched",
		zap.String("action", m.Action.String()),
		zap.String("target", m.Target),
		zap.String("command", cmd.String()))
	return cmd, nil
}

// OnReload is the config watcher callback: projects may come from a
// different binary now, so the cache is dropped.
func (r *Runner) OnReload(config.Snapshot) {
	r.Cache.Invalidate()
	r.logger().Debug("project cache invalidated after config reload")
}
