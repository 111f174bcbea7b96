// Package builtin implements the shell builtin commands: cd, pwd, ps and
// kill. Builtins run inside the shell process when they form a whole
// foreground pipeline, and inside a child process (see RunChild) when they
// are one stage of a larger or backgrounded pipeline.
package builtin

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	ps "github.com/mitchellh/go-ps"
	"golang.org/x/sys/unix"
)

// ErrUnknown is returned by Execute for a name that is not a builtin.
var ErrUnknown = errors.New("not a builtin")

var names = map[string]struct{}{
	"cd":   {},
	"pwd":  {},
	"ps":   {},
	"kill": {},
}

// IsBuiltin reports whether name is handled by the shell itself.
func IsBuiltin(name string) bool {
	_, ok := names[name]
	return ok
}

// Names returns the builtin names in sorted order.
func Names() []string {
	list := make([]string, 0, len(names))
	for name := range names {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// Execute runs the builtin named by command[0] with the remaining
// arguments, writing any output to writer. It returns an error when the
// builtin reports failure, or ErrUnknown for a name IsBuiltin rejects.
func Execute(command []string, writer io.Writer) error {

	if len(command) == 0 {
		return ErrUnknown
	}

	switch command[0] {
	case "cd":
		return changeDirectory(command)
	case "pwd":
		return printWorkingDirectory(writer)
	case "ps":
		return processStatus(writer)
	case "kill":
		return kill(command)
	}

	return fmt.Errorf("%s: %w", command[0], ErrUnknown)

}

// RunChild executes a builtin in a process of its own and returns the exit
// status for that process. Output goes to stdout and failures are reported
// on stderr.
func RunChild(command []string, stdout, stderr io.Writer) int {
	if err := Execute(command, stdout); err != nil {
		fmt.Fprintf(stderr, "ERROR: '%v' \n", err)
		return 1
	}
	return 0
}

// changeDirectory changes the working directory to the single path
// argument. Returns a usage error for a missing or extra argument, and a
// wrapped error when the path is not a usable directory.
func changeDirectory(command []string) error {

	switch {
	case len(command) < 2:
		return errors.New("Not enough arguments. Usage: 'cd [path]'")
	case len(command) > 2:
		return errors.New("cd: too many arguments")
	}

	if err := os.Chdir(command[1]); err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			err = pathErr.Err
		}
		return fmt.Errorf("cd failed: %s: %w", command[1], err)
	}

	return nil

}

// printWorkingDirectory writes the current working directory path to the
// provided writer.
func printWorkingDirectory(writer io.Writer) error {
	dir, err := os.Getwd()
	if err != nil {
		if errors.Is(err, unix.ENAMETOOLONG) {
			return errors.New("Working directory too long to store.")
		}
		return fmt.Errorf("pwd: %w", err)
	}
	if _, err := fmt.Fprintln(writer, dir); err != nil {
		return fmt.Errorf("pwd: write operation failed: %w", err)
	}
	return nil
}

// kill sends SIGTERM to each PID given as an argument.
func kill(command []string) error {

	if len(command) < 2 {
		return errors.New("kill: usage: kill pid ...")
	}

	for _, arg := range command[1:] {
		pid, err := strconv.Atoi(arg)
		if err != nil || pid <= 0 {
			return fmt.Errorf("kill: %s: arguments must be process IDs", arg)
		}
		if err := unix.Kill(pid, unix.SIGTERM); err != nil {
			return fmt.Errorf("kill: (%d) - %w", pid, err)
		}
	}

	return nil

}

// processStatus prints a ps-like listing of the processes attached to the
// same terminal as the shell. When the shell has no terminal every process
// owned by the shell's session is listed instead.
func processStatus(writer io.Writer) error {

	processes, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("ps: failed to get process list: %w", err)
	}

	if _, err := fmt.Fprintln(writer, "    PID TTY          TIME CMD"); err != nil {
		return fmt.Errorf("ps: write operation failed: %w", err)
	}

	tty, re := terminal()
	sid, _ := unix.Getsid(0)

	for _, process := range processes {

		pid := process.Pid()

		if re != nil {
			link, err := os.Readlink(fmt.Sprintf("/proc/%d/fd/0", pid))
			if err != nil || !re.MatchString(link) {
				continue
			}
		} else if s, err := unix.Getsid(pid); err != nil || s != sid {
			continue
		}

		if _, err := fmt.Fprintf(writer, "%7d %-12s 00:00:00 %s\n", pid, tty, process.Executable()); err != nil {
			return fmt.Errorf("ps: write operation failed: %w", err)
		}

	}

	return nil

}

// terminal returns the name of the shell's controlling pseudo terminal and
// a pattern matching descriptors attached to it, or "?" and nil when stdin
// is not a pseudo terminal.
func terminal() (string, *regexp.Regexp) {
	path, err := os.Readlink("/proc/self/fd/0")
	if err != nil {
		return "?", nil
	}
	if matched, _ := filepath.Match("/dev/pts/*", path); !matched {
		return "?", nil
	}
	name := filepath.Base(path)
	return "pts/" + name, regexp.MustCompile(fmt.Sprintf(`^/dev/pts/%s$`, regexp.QuoteMeta(name)))
}
