// Package launcher spawns the stages of a parsed pipeline as operating
// system processes. It wires each stage's standard input and output to the
// shell's streams, to redirection files or to the pipes connecting adjacent
// stages, and guarantees that every descriptor it opens on the shell side is
// closed exactly once, on every path, including a stage that fails to
// start.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"Supershell/internal/builtin"
	"Supershell/internal/parser"
)

// HostCommand is the subcommand of the shell executable that runs a single
// builtin inside a child process.
const HostCommand = "builtin"

// ErrPipe is returned by Launch when a pipe between two stages cannot be
// created.
var ErrPipe = errors.New("failed to create pipe")

// Launcher starts pipeline stages. The zero value is not usable; create one
// with New.
type Launcher struct {
	Stdin  *os.File // Shell input, read by the first stage
	Stdout *os.File // Shell output, written by the last stage
	Stderr *os.File // Diagnostic stream shared by every stage

	// Self is the executable that hosts builtins running in a pipeline. It
	// is invoked as: Self builtin -- ARGS...
	Self string

	// Report receives stage start failures. It defaults to writing an
	// "ERROR: '...'" line on Stderr.
	Report func(error)

	Logger *slog.Logger
}

// New returns a Launcher bound to the process's standard streams that hosts
// pipeline builtins in the running executable.
func New(logger *slog.Logger) (*Launcher, error) {

	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate shell executable: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Launcher{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Self:   self,
		Logger: logger,
	}, nil

}

// Launch starts every stage of p from left to right. Stage i writes into a
// fresh pipe read by stage i+1; the pipe exists before stage i+1 is started.
// The shell's copies of each pipe end and redirection file are closed as
// soon as the stage that uses them has been started, or has failed to
// start.
//
// A stage that cannot be started (missing program, unreadable input file)
// is returned as a Process carrying a *StartError; the other stages still
// run and the stage after it reads end-of-file. Launch only returns an
// error when a pipe cannot be created, in which case the processes already
// started are returned so the caller can reap them.
//
// Foreground stages are bound to ctx. Background stages are placed in a
// process group of their own, led by the first stage that started.
func (l *Launcher) Launch(ctx context.Context, p parser.Pipeline) ([]*Process, error) {

	procs := make([]*Process, 0, len(p.Stages))

	var upstream *os.File
	var pgid int

	for i, stage := range p.Stages {

		fds := &descriptors{}

		stdin, stdout := l.Stdin, l.Stdout
		if upstream != nil {
			stdin = fds.add(upstream)
			upstream = nil
		}

		if i < len(p.Stages)-1 {
			reader, writer, err := os.Pipe()
			if err != nil {
				_ = fds.closeAll()
				l.Logger.Error("pipe creation failed", slog.Int("stage", i), slog.String("error", err.Error()))
				return procs, fmt.Errorf("%w: %v", ErrPipe, err)
			}
			upstream = reader
			stdout = fds.add(writer)
		}

		proc := l.start(ctx, stage, stdin, stdout, fds, p.Background, pgid)
		if err := fds.closeAll(); err != nil {
			l.Logger.Warn("closing stage descriptors", slog.String("program", stage.Name()), slog.String("error", err.Error()))
		}

		if p.Background && pgid == 0 {
			pgid = proc.Pid()
		}

		procs = append(procs, proc)

	}

	return procs, nil

}

// start opens the redirections of one stage, binds its streams and starts
// it. Every descriptor it opens is recorded in fds for the caller to
// release.
func (l *Launcher) start(ctx context.Context, stage parser.Stage, stdin, stdout *os.File, fds *descriptors, background bool, pgid int) *Process {

	proc := &Process{Stage: stage}

	if stage.Input != "" {
		file, err := openInput(stage.Input)
		if err != nil {
			return l.fail(proc, &StartError{Name: stage.Input, Redirect: true, Err: err})
		}
		stdin = fds.add(file)
	}

	if stage.Output != "" {
		file, err := openOutput(stage.Output)
		if err != nil {
			return l.fail(proc, &StartError{Name: stage.Output, Redirect: true, Err: err})
		}
		stdout = fds.add(file)
	}

	cmd := l.command(ctx, stage, background)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = l.Stderr

	if background {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: pgid}
	}

	if err := cmd.Start(); err != nil {
		return l.fail(proc, &StartError{Name: stage.Name(), Err: err})
	}

	proc.Cmd = cmd

	l.Logger.Debug("stage started",
		slog.String("program", stage.Name()),
		slog.Int("pid", cmd.Process.Pid),
		slog.Bool("background", background),
	)

	return proc

}

// command builds the exec.Cmd for a stage. Builtins are run through the
// host subcommand of Self so that they own a process.
func (l *Launcher) command(ctx context.Context, stage parser.Stage, background bool) *exec.Cmd {

	name, args := stage.Args[0], stage.Args[1:]
	if builtin.IsBuiltin(name) {
		name, args = l.Self, append([]string{HostCommand, "--"}, stage.Args...)
	}

	if background || ctx == nil {
		return exec.Command(name, args...)
	}

	return exec.CommandContext(ctx, name, args...)

}

func (l *Launcher) fail(proc *Process, err *StartError) *Process {

	proc.Err = err

	l.Logger.Info("stage failed to start", slog.String("program", proc.Stage.Name()), slog.String("error", err.Error()))

	if l.Report != nil {
		l.Report(proc.Err)
	} else {
		fmt.Fprintf(l.Stderr, "ERROR: '%v' \n", proc.Err)
	}

	return proc

}

// RunBuiltin runs a builtin stage inside the shell process, so that cd
// changes the shell's own working directory. The stage's redirections are
// opened for the duration of the call and closed before it returns.
func (l *Launcher) RunBuiltin(stage parser.Stage) (err error) {

	fds := &descriptors{}
	defer func() {
		if closeErr := fds.closeAll(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	var writer io.Writer = l.Stdout

	if stage.Input != "" {
		file, err := openInput(stage.Input)
		if err != nil {
			return &StartError{Name: stage.Input, Redirect: true, Err: err}
		}
		fds.add(file)
	}

	if stage.Output != "" {
		file, err := openOutput(stage.Output)
		if err != nil {
			return &StartError{Name: stage.Output, Redirect: true, Err: err}
		}
		writer = fds.add(file)
	}

	return builtin.Execute(stage.Args, writer)

}
