package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "tmux-runner"

// Metrics holds all OTEL metric instruments for tmux-runner.
// All counters are cumulative (monotonic) and safe for concurrent use.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Match cycles (partitioned by whether project mode was active)
	MatchCycles metric.Int64Counter
	// Candidates produced (partitioned by action)
	MatchCandidates metric.Int64Counter

	// Launches (partitioned by action + program)
	Launches     metric.Int64Counter
	LaunchErrors metric.Int64Counter

	// Live-state listing failures (partitioned by source: sessions, projects)
	RefreshErrors metric.Int64Counter

	// Project list cache counters
	ProjectCacheHits   metric.Int64Counter
	ProjectCacheMisses metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	// --- Matching ---

	m.MatchCycles, err = meter.Int64Counter("match.cycles",
		metric.WithDescription("Number of queries matched against live state"))
	if err != nil {
		return nil, err
	}

	m.MatchCandidates, err = meter.Int64Counter("match.candidates",
		metric.WithDescription("Number of candidates produced, partitioned by action"),
		metric.WithUnit("{candidate}"))
	if err != nil {
		return nil, err
	}

	// --- Launching ---

	m.Launches, err = meter.Int64Counter("launch.total",
		metric.WithDescription("Number of terminal launches, partitioned by action and program"))
	if err != nil {
		return nil, err
	}

	m.LaunchErrors, err = meter.Int64Counter("launch.errors",
		metric.WithDescription("Number of launches that failed to start"))
	if err != nil {
		return nil, err
	}

	// --- Live state ---

	m.RefreshErrors, err = meter.Int64Counter("livestate.refresh_errors",
		metric.WithDescription("Number of failed session or project listings"))
	if err != nil {
		return nil, err
	}

	m.ProjectCacheHits, err = meter.Int64Counter("projects_cache.hits",
		metric.WithDescription("Number of project listings served from cache"))
	if err != nil {
		return nil, err
	}

	m.ProjectCacheMisses, err = meter.Int64Counter("projects_cache.misses",
		metric.WithDescription("Number of project listings that ran the session manager"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordMatch records one match cycle and its candidates per action.
func (m *Metrics) RecordMatch(ctx context.Context, subtool bool, byAction map[string]int64) {
	if m == nil {
		return
	}
	m.MatchCycles.Add(ctx, 1, metric.WithAttributes(attribute.Bool("match.subtool", subtool)))
	for action, n := range byAction {
		m.MatchCandidates.Add(ctx, n, metric.WithAttributes(attribute.String("match.action", action)))
	}
}

// RecordLaunch records a launch attempt. err is the spawn result.
func (m *Metrics) RecordLaunch(ctx context.Context, action, program string, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("launch.action", action),
		attribute.String("launch.program", program),
	)
	m.Launches.Add(ctx, 1, attrs)
	if err != nil {
		m.LaunchErrors.Add(ctx, 1, attrs)
	}
}

// RecordRefreshError records a failed live-state listing.
func (m *Metrics) RecordRefreshError(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.RefreshErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("livestate.source", source),
	))
}

// RecordCacheHit records a project cache hit.
func (m *Metrics) RecordCacheHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.ProjectCacheHits.Add(ctx, 1)
}

// RecordCacheMiss records a project cache miss.
func (m *Metrics) RecordCacheMiss(ctx context.Context) {
	if m == nil {
		return
	}
	m.ProjectCacheMisses.Add(ctx, 1)
}
