package launcher

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"Supershell/internal/parser"
)

// Exit statuses reported for stages that never ran.
const (
	ExitNotFound      = 127
	ExitNotExecutable = 126
)

// StartError describes a stage that could not be started: its program was
// not found or not executable, or one of its redirection files could not
// be opened.
type StartError struct {
	Name     string // Program or file that failed
	Redirect bool   // True when Name is a redirection file
	Err      error
}

func (e *StartError) Error() string {
	if errors.Is(e.Err, exec.ErrNotFound) {
		return e.Name + ": command not found"
	}
	var pathErr *os.PathError
	if errors.As(e.Err, &pathErr) {
		return e.Name + ": " + pathErr.Err.Error()
	}
	return e.Name + ": " + e.Err.Error()
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// ExitCode returns the status a shell reports for the failed stage.
func (e *StartError) ExitCode() int {
	switch {
	case e.Redirect:
		return 1
	case errors.Is(e.Err, exec.ErrNotFound), errors.Is(e.Err, os.ErrNotExist):
		return ExitNotFound
	case errors.Is(e.Err, os.ErrPermission):
		return ExitNotExecutable
	default:
		return 1
	}
}

// Process is the handle of one launched stage.
type Process struct {
	Stage parser.Stage
	Cmd   *exec.Cmd // Nil when the stage failed to start
	Err   error     // Start failure, a *StartError
}

// Pid returns the process identifier, or 0 when the stage never started.
func (p *Process) Pid() int {
	if p.Cmd == nil || p.Cmd.Process == nil {
		return 0
	}
	return p.Cmd.Process.Pid
}

// Wait blocks until the stage's process terminates and returns its exit
// status. A process killed by a signal reports 128 plus the signal number.
// A stage that never started returns its StartError status immediately.
func (p *Process) Wait() int {
	if p.Cmd == nil {
		return ExitCode(p.Err)
	}
	return ExitCode(p.Cmd.Wait())
}

// ExitCode maps an error returned by Wait or Start to a shell exit status.
func ExitCode(err error) int {

	if err == nil {
		return 0
	}

	var startErr *StartError
	if errors.As(err, &startErr) {
		return startErr.ExitCode()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return 128 + int(status.Signal())
		}
		return exitErr.ExitCode()
	}

	return 1

}
