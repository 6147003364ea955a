package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// waitForProgram polls the store until DefaultProgram equals want.
func waitForProgram(t *testing.T, st *Store, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if st.Load().DefaultProgram == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("DefaultProgram: got %q, want %q after reload", st.Load().DefaultProgram, want)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "program: konsole\n")

	st := NewStore(Defaults().Snapshot("/home/u"))
	reloaded := make(chan Snapshot, 4)
	w := NewWatcher(path, "/home/u", st, nil)
	w.Debounce = 20 * time.Millisecond
	w.OnReload = func(s Snapshot) {
		select {
		case reloaded <- s:
		default:
		}
	}

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop()

	writeFile(t, path, "program: terminator\n")
	waitForProgram(t, st, "terminator")

	select {
	case s := <-reloaded:
		if s.Home != "/home/u" {
			t.Errorf("reloaded snapshot Home: got %q", s.Home)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("OnReload was not called")
	}
}

func TestWatcher_SurvivesReplaceByRename(t *testing.T) {
	defer goleak.VerifyNone(t)
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "program: konsole\n")

	st := NewStore(Defaults().Snapshot("/home/u"))
	w := NewWatcher(path, "/home/u", st, nil)
	w.Debounce = 20 * time.Millisecond
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop()

	// Save the way editors do: write elsewhere, rename over the original.
	for _, program := range []string{"st", "terminator"} {
		tmp := filepath.Join(dir, "config.yaml.swp")
		writeFile(t, tmp, "program: "+program+"\n")
		if err := os.Rename(tmp, path); err != nil {
			t.Fatal(err)
		}
		waitForProgram(t, st, program)
	}
}

func TestWatcher_BrokenFileKeepsSnapshot(t *testing.T) {
	defer goleak.VerifyNone(t)
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "program: konsole\n")

	st := NewStore(Snapshot{DefaultProgram: "konsole"})
	w := NewWatcher(path, "/home/u", st, nil)
	w.Debounce = 20 * time.Millisecond
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop()

	writeFile(t, path, "program: [unterminated\n")
	time.Sleep(200 * time.Millisecond)
	if got := st.Load().DefaultProgram; got != "konsole" {
		t.Errorf("DefaultProgram: got %q, want previous %q", got, "konsole")
	}

	writeFile(t, path, "program: st\n")
	waitForProgram(t, st, "st")
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "program: konsole\n")

	w := NewWatcher(path, "/home/u", NewStore(Snapshot{}), nil)
	w.Stop() // not started

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	w.Stop()
	w.Stop()
}

func TestWatcher_StartMissingDirectory(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing", "config.yaml"), "/home/u", NewStore(Snapshot{}), nil)
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Error("expected error when the config directory does not exist")
	}
}
