package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"

	"github.com/timvw/tmux-runner/internal/config"
	"github.com/timvw/tmux-runner/internal/model"
	"github.com/timvw/tmux-runner/internal/mux"
	"github.com/timvw/tmux-runner/internal/spawn"
)

// fakeSessions implements mux.SessionLister for testing.
type fakeSessions struct {
	sessions []string
	err      error
	block    bool // wait for ctx to expire
}

func (f *fakeSessions) ListSessions(ctx context.Context) ([]string, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.sessions, f.err
}

// fakeProjects implements mux.ProjectLister for testing.
type fakeProjects struct {
	projects []string
	err      error
	calls    int64 // accessed atomically, Prepare lists concurrently
}

func (f *fakeProjects) ListProjects(context.Context) ([]string, error) {
	atomic.AddInt64(&f.calls, 1)
	return f.projects, f.err
}

func newTestRunner(sessions *fakeSessions, projects *fakeProjects) (*Runner, *spawn.Recorder) {
	rec := &spawn.Recorder{}
	snap := config.Defaults().Snapshot("/home/u")
	snap.Subtool.Binary = "mytool"
	r := &Runner{
		Config:   config.NewStore(snap),
		Sessions: sessions,
		Projects: projects,
		Spawner:  rec,
		Cache:    NewProjectCache(time.Minute),
	}
	return r, rec
}

func TestPrepare(t *testing.T) {
	defer goleak.VerifyNone(t)

	r, _ := newTestRunner(
		&fakeSessions{sessions: []string{"work", "blog"}},
		&fakeProjects{projects: []string{"blog", "api"}},
	)
	state := r.Prepare(context.Background())

	assert.Equal(t, []string{"work", "blog"}, state.Sessions)
	assert.Equal(t, []string{"blog", "api"}, state.Projects)
	assert.False(t, state.FetchedAt.IsZero())
}

func TestPrepare_ErrorsDegradeToEmpty(t *testing.T) {
	defer goleak.VerifyNone(t)

	r, _ := newTestRunner(
		&fakeSessions{err: errors.New("tmux exploded")},
		&fakeProjects{err: errors.New("ruby exploded")},
	)
	state := r.Prepare(context.Background())

	assert.Empty(t, state.Sessions)
	assert.Empty(t, state.Projects)
}

func TestPrepare_Timeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	r, _ := newTestRunner(&fakeSessions{block: true}, &fakeProjects{projects: []string{"api"}})
	r.Timeout = 20 * time.Millisecond

	start := time.Now()
	state := r.Prepare(context.Background())

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Empty(t, state.Sessions)
	assert.Equal(t, []string{"api"}, state.Projects)
}

func TestPrepare_ProjectCache(t *testing.T) {
	projects := &fakeProjects{projects: []string{"api"}}
	r, _ := newTestRunner(&fakeSessions{}, projects)

	r.Prepare(context.Background())
	r.Prepare(context.Background())
	assert.Equal(t, int64(1), atomic.LoadInt64(&projects.calls), "second Prepare should hit the cache")

	r.OnReload(r.Config.Load())
	r.Prepare(context.Background())
	assert.Equal(t, int64(2), atomic.LoadInt64(&projects.calls), "reload should invalidate the cache")
}

func TestPrepare_SubtoolNotInstalled(t *testing.T) {
	projects := &fakeProjects{err: mux.ErrSubtoolNotInstalled}
	r, _ := newTestRunner(&fakeSessions{}, projects)

	assert.Empty(t, r.Prepare(context.Background()).Projects)
	r.Prepare(context.Background())
	assert.Equal(t, int64(1), atomic.LoadInt64(&projects.calls), "a missing binary is cached as no projects")
}

func TestPrepare_SubtoolDisabled(t *testing.T) {
	projects := &fakeProjects{projects: []string{"api"}}
	r, _ := newTestRunner(&fakeSessions{}, projects)
	snap := r.Config.Load()
	snap.EnableSubtool = false
	r.Config.Publish(snap)

	state := r.Prepare(context.Background())
	assert.Empty(t, state.Projects)
	assert.Zero(t, atomic.LoadInt64(&projects.calls))
}

func TestMatch(t *testing.T) {
	r, _ := newTestRunner(&fakeSessions{}, &fakeProjects{})
	state := LiveState{Sessions: []string{"work", "workspace"}}

	res := r.Match(context.Background(), "work", state)

	require.True(t, res.ExactMatch)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, "work", res.Matches[0].Target)
	assert.Equal(t, 1.0, res.Matches[0].Relevance)
	assert.Equal(t, "workspace", res.Matches[1].Target)
}

func TestMatch_UsesCurrentSnapshot(t *testing.T) {
	r, _ := newTestRunner(&fakeSessions{}, &fakeProjects{})
	state := LiveState{Sessions: []string{"work"}}

	res := r.Match(context.Background(), "work -t", state)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "terminator", res.Matches[0].Program)

	snap := r.Config.Load()
	snap.EnableFlags = false
	r.Config.Publish(snap)

	res = r.Match(context.Background(), "work -t", state)
	require.NotEmpty(t, res.Matches)
	assert.Equal(t, "konsole", res.Matches[0].Program)
}

func TestMatch_NoProjectsParsesTriggerAsName(t *testing.T) {
	r, _ := newTestRunner(&fakeSessions{}, &fakeProjects{})
	state := LiveState{Sessions: []string{"work"}}

	res := r.Match(context.Background(), "inator foo", state)

	require.Len(t, res.Matches, 1)
	assert.Equal(t, model.ActionNewSession, res.Matches[0].Action)
	assert.Equal(t, "inator", res.Matches[0].Target)
	assert.Equal(t, "/home/u/foo", res.Matches[0].Path)

	state.Projects = []string{"foo"}
	res = r.Match(context.Background(), "inator foo", state)
	require.NotEmpty(t, res.Matches)
	assert.Equal(t, model.ActionNewViaSubtool, res.Matches[0].Action)
	assert.Equal(t, "foo", res.Matches[0].Target)
}

func TestTracer_RecordsSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	r, _ := newTestRunner(&fakeSessions{sessions: []string{"work"}}, &fakeProjects{})
	r.Tracer = tp.Tracer("test")
	r.SessionID = "sid"

	state := r.Prepare(context.Background())
	r.Match(context.Background(), "work", state)
	_, err := r.Launch(context.Background(), model.Match{Action: model.ActionAttach, Target: "work"})
	require.NoError(t, err)

	var names []string
	for _, s := range sr.Ended() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"prepare", "match", "launch"}, names)
}

func TestLaunch(t *testing.T) {
	r, rec := newTestRunner(&fakeSessions{}, &fakeProjects{})

	m := model.Match{Action: model.ActionNewViaSubtool, Target: "proj", Program: "terminator", SubtoolArgs: "-p 1"}
	cmd, err := r.Launch(context.Background(), m)
	require.NoError(t, err)

	want := spawn.Call{Program: "terminator", Args: []string{"-x", "mytool", "proj", "-p", "1"}}
	require.Len(t, rec.Calls, 1)
	assert.Equal(t, want, rec.Calls[0])
	assert.Equal(t, want.Program, cmd.Program)
	assert.Equal(t, want.Args, cmd.Args)
}

func TestLaunch_EmptyCustomProgram(t *testing.T) {
	r, rec := newTestRunner(&fakeSessions{}, &fakeProjects{})

	_, err := r.Launch(context.Background(), model.Match{Action: model.ActionAttach, Target: "w", Program: "custom"})
	require.ErrorIs(t, err, spawn.ErrNoProgram)
	assert.Empty(t, rec.Calls)
}

func TestLaunch_SpawnError(t *testing.T) {
	r, rec := newTestRunner(&fakeSessions{}, &fakeProjects{})
	rec.Err = errors.New("exec format error")

	_, err := r.Launch(context.Background(), model.Match{Action: model.ActionAttach, Target: "w"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exec format error")
}

func TestCommand_DoesNotSpawn(t *testing.T) {
	r, rec := newTestRunner(&fakeSessions{}, &fakeProjects{})

	cmd := r.Command(model.Match{Action: model.ActionNewSession, Target: "api", Path: "/srv/api"})
	assert.Equal(t, "konsole", cmd.Program)
	assert.Equal(t, []string{"-e", "tmux", "new-session", "-s", "api", "-c", "/srv/api"}, cmd.Args)
	assert.Empty(t, rec.Calls)
}
