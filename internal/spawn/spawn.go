// Package spawn starts terminal emulators detached from the launcher.
package spawn

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// ErrNoProgram is returned when a command has no program to run, e.g. the
// "custom" terminal without a configured program.
var ErrNoProgram = errors.New("no program to spawn")

// Spawner starts a program without waiting for it.
type Spawner interface {
	Spawn(ctx context.Context, program string, args []string) error
}

// Detached starts processes in their own session so they outlive the
// launcher. The exit status is only logged.
type Detached struct {
	Logger *zap.Logger
	// Dir is the working directory of spawned processes; empty inherits ours.
	Dir string

	// LookPath and Start are replaceable for tests.
	LookPath func(file string) (string, error)
	Start    func(cmd *exec.Cmd) error
	// Wait is called in a goroutine after a successful Start.
	Wait func(cmd *exec.Cmd) error
}

// NewDetached returns a Detached spawner using os/exec.
func NewDetached(logger *zap.Logger) *Detached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detached{
		Logger:   logger,
		LookPath: exec.LookPath,
		Start:    (*exec.Cmd).Start,
		Wait:     (*exec.Cmd).Wait,
	}
}

// Spawn resolves program on $PATH and starts it with args. It returns once
// the process has started. ctx only bounds the lookup: a terminal must keep
// running after the launcher exits.
func (d *Detached) Spawn(ctx context.Context, program string, args []string) error {
	if program == "" {
		return ErrNoProgram
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := d.LookPath(program)
	if err != nil {
		return fmt.Errorf("find %s: %w", program, err)
	}

	cmd := exec.Command(path, args...)
	cmd.Dir = d.Dir
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = detachAttr()

	if err := d.Start(cmd); err != nil {
		return fmt.Errorf("start %s: %w", program, err)
	}
	d.Logger.Info("spawned",
		zap.String("program", program),
		zap.Strings("args", args),
		zap.Int("pid", pid(cmd)))

	go func() {
		if err := d.Wait(cmd); err != nil {
			d.Logger.Warn("spawned process exited with error",
				zap.String("program", program),
				zap.Error(err))
		}
	}()
	return nil
}

func pid(cmd *exec.Cmd) int {
	if cmd.Process == nil {
		return 0
	}
	return cmd.Process.Pid
}

// Recorder collects spawn requests instead of running them. It backs dry
// runs and tests.
type Recorder struct {
	Calls []Call
	Err   error
}

// Call is one recorded Spawn.
type Call struct {
	Program string
	Args    []string
}

// Spawn records the call and returns r.Err.
func (r *Recorder) Spawn(_ context.Context, program string, args []string) error {
	if program == "" {
		return ErrNoProgram
	}
	r.Calls = append(r.Calls, Call{Program: program, Args: append([]string(nil), args...)})
	return r.Err
}
