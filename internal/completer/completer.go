// Package completer provides filesystem- and process-aware tab completion
// for the shell. Suggestions are rebuilt before each prompt from the
// current directory contents and the running processes.
package completer

import (
	"os"
	"sort"
	"strconv"

	"github.com/chzyer/readline"
	ps "github.com/mitchellh/go-ps"

	"Supershell/internal/builtin"
)

// fileCommands are external programs whose arguments are completed with
// file names.
var fileCommands = []string{"cat", "ls", "grep", "head", "tail", "wc", "sort", "echo"}

// Completer adapts the shell's environment to the readline.AutoCompleter
// interface.
type Completer struct {
	readlineCompleter *readline.PrefixCompleter
}

// NewCompleter returns a new Completer instance with an empty
// underlying PrefixCompleter.
func NewCompleter() *Completer {
	return &Completer{readlineCompleter: readline.NewPrefixCompleter()}
}

// Update rebuilds the completion tree: cd completes directories, kill
// completes process IDs, the other builtins take no completion and the
// common file commands complete file names.
func (c *Completer) Update() {

	entries, err := os.ReadDir(".")
	if err != nil {
		return
	}

	var onlyDirs []readline.PrefixCompleterInterface
	var fileNames []readline.PrefixCompleterInterface

	for _, entry := range entries {
		if entry.IsDir() {
			fileNames = append(fileNames, readline.PcItem(entry.Name()+"/"))
			onlyDirs = append(onlyDirs, readline.PcItem(entry.Name()+"/"))
		} else {
			fileNames = append(fileNames, readline.PcItem(entry.Name()))
		}
	}

	var pids []readline.PrefixCompleterInterface
	for _, pid := range getPIDs() {
		pids = append(pids, readline.PcItem(pid))
	}

	var items []readline.PrefixCompleterInterface

	for _, name := range builtin.Names() {
		switch name {
		case "cd":
			items = append(items, readline.PcItem(name, onlyDirs...))
		case "kill":
			items = append(items, readline.PcItem(name, pids...))
		default:
			items = append(items, readline.PcItem(name))
		}
	}

	for _, name := range fileCommands {
		items = append(items, readline.PcItem(name, fileNames...))
	}

	items = append(items, readline.PcItem("exit"), readline.PcItem("quit"))

	c.readlineCompleter = readline.NewPrefixCompleter(items...)

}

// Do delegates the completion logic to the underlying PrefixCompleter.
// It satisfies the readline.AutoCompleter interface.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	return c.readlineCompleter.Do(line, pos)
}

// getPIDs returns the IDs of the running processes in ascending order, or
// nothing when the process table cannot be read.
func getPIDs() []string {

	processes, err := ps.Processes()
	if err != nil {
		return nil
	}

	ids := make([]int, 0, len(processes))
	for _, process := range processes {
		ids = append(ids, process.Pid())
	}
	sort.Ints(ids)

	pids := make([]string, len(ids))
	for i, id := range ids {
		pids[i] = strconv.Itoa(id)
	}

	return pids

}
