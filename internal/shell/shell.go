// Package shell contains the interactive loop and the orchestration logic
// of the shell. It wires together configuration, the readline-based
// terminal, the parser, the job controller and signal handling: each line
// is tokenized, checked for the quit keywords, stripped of its background
// marker, built into a pipeline and handed to the job controller. Every
// error is reported as a diagnostic and the loop continues.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chzyer/readline"

	"Supershell/internal/completer"
	"Supershell/internal/config"
	"Supershell/internal/job"
	"Supershell/internal/launcher"
	"Supershell/internal/painter"
	"Supershell/internal/parser"
	"Supershell/internal/prompt"
	"Supershell/internal/signals"
)

// Shell holds the runtime state of the shell.
type Shell struct {
	cfg      *config.Config
	logger   *slog.Logger
	painter  painter.Painter
	launcher *launcher.Launcher
	jobs     *job.Controller
	signals  *signals.Handler

	terminal  *readline.Instance   // nil outside the interactive loop
	completer *completer.Completer // tab completion for the terminal

	pipelines uint // pipelines run since start, drives descriptor checks
	baseline  int  // descriptor count after the first checked pipeline
}

// New returns a Shell that launches stages with l. Diagnostics from the
// launcher are painted and written to l.Stderr.
func New(cfg *config.Config, logger *slog.Logger, l *launcher.Launcher) *Shell {

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	shell := &Shell{
		cfg:       cfg,
		logger:    logger,
		painter:   painter.NewPainter(cfg.Prompt),
		launcher:  l,
		completer: completer.NewCompleter(),
	}

	l.Report = shell.reportErrors
	shell.jobs = job.NewController(l, l.Stdout, logger)
	shell.signals = signals.New(cfg.Shell.ProductName, l.Stdout,
		signals.WithExit(shell.terminate),
		signals.WithResume(shell.resume),
	)

	return shell

}

// Run starts the interactive loop. It repeatedly reads a line from the
// terminal and executes it. Run returns when EOF is received or the user
// types quit or exit.
func (shell *Shell) Run(ctx context.Context) error {

	terminal, err := readline.NewEx(shell.terminalConfig())
	if err != nil {
		return fmt.Errorf("failed to create new terminal instance: %w", err)
	}

	shell.terminal = terminal
	shell.signals.Start()
	defer shell.exit()

	shell.greet()

	for {

		shell.completer.Update()
		terminal.SetPrompt(prompt.Update(shell.painter, shell.cfg.Prompt))

		line, err := terminal.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				// Raw mode turns Ctrl-C into input rather than SIGINT.
				shell.signals.Handle(os.Interrupt)
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read line: %w", err)
		}

		if _, quit := shell.Execute(ctx, line); quit {
			return nil
		}

	}

}

// terminalConfig returns the readline configuration for the loop. Input
// other than the process's stdin is wrapped so that closing the terminal
// cancels a pending read; readline wraps os.Stdin itself.
func (shell *Shell) terminalConfig() *readline.Config {

	cfg := &readline.Config{
		Prompt:          prompt.Update(shell.painter, shell.cfg.Prompt),
		HistoryFile:     shell.cfg.Terminal.HistoryFile,
		HistoryLimit:    shell.cfg.Terminal.HistoryLimit,
		InterruptPrompt: shell.cfg.Terminal.InterruptPrompt,
		EOFPrompt:       "\n" + shell.cfg.Terminal.EOFPrompt,
		AutoComplete:    shell.completer,
		Stdout:          shell.launcher.Stdout,
		Stderr:          shell.launcher.Stderr,
	}

	if stdin := shell.launcher.Stdin; stdin != nil && stdin != os.Stdin {
		cfg.Stdin = readline.NewCancelableStdin(stdin)
	}

	return cfg

}

// RunLine executes a single line outside the interactive loop and returns
// its exit status.
func (shell *Shell) RunLine(ctx context.Context, line string) int {

	shell.signals.Start()
	defer shell.exit()

	code, _ := shell.Execute(ctx, line)

	return code

}

// Execute processes one line: it returns the exit status of the line and
// whether the user asked to leave the shell. Input-shape errors are
// reported before any process is created.
func (shell *Shell) Execute(ctx context.Context, line string) (int, bool) {

	tokens, err := parser.Tokenize(line, shell.cfg.Shell.MaxArgs)
	if err != nil {
		shell.reportErrors(fmt.Errorf("%w. Ignored.", err))
		return 1, false
	}

	if len(tokens) == 0 {
		return 0, false
	}

	if tokens[0] == "quit" || tokens[0] == "exit" {
		fmt.Fprintln(shell.launcher.Stdout, "Goodbye.")
		return 0, true
	}

	tokens, background := job.StripBackground(tokens)

	pipeline, err := parser.Build(tokens)
	if err != nil {
		shell.reportErrors(err)
		return 1, false
	}
	pipeline.Background = background

	status, err := shell.jobs.Run(ctx, pipeline, line)
	shell.reportErrors(err)

	shell.checkDescriptors()

	return status.Code, false

}

// checkDescriptors compares the number of open descriptors with the count
// observed after the first checked pipeline, every check_interval
// pipelines, and logs a warning when it has grown.
func (shell *Shell) checkDescriptors() {

	interval := shell.cfg.Shell.CheckInterval
	if interval == 0 {
		return
	}

	shell.pipelines++
	if shell.pipelines%interval != 1 && interval != 1 {
		return
	}

	count, err := launcher.OpenDescriptors()
	if err != nil {
		shell.logger.Debug("descriptor check skipped", slog.String("error", err.Error()))
		return
	}

	if shell.baseline == 0 {
		shell.baseline = count
		return
	}

	if count > shell.baseline {
		shell.logger.Warn("open descriptors grew",
			slog.Int("baseline", shell.baseline),
			slog.Int("current", count),
			slog.Uint64("pipelines", uint64(shell.pipelines)),
		)
	}

}

// greet prints the startup banner.
func (shell *Shell) greet() {
	fmt.Fprintf(shell.launcher.Stdout, "Welcome to %s!\n", shell.cfg.Shell.ProductName)
}

// terminate restores the terminal and exits the shell process.
func (shell *Shell) terminate(code int) {
	if shell.terminal != nil {
		_ = shell.terminal.Close()
	}
	os.Exit(code)
}

// resume re-displays the prompt after the shell was continued.
func (shell *Shell) resume() {
	if shell.terminal != nil {
		shell.terminal.Refresh()
		return
	}
	fmt.Fprint(shell.launcher.Stdout, prompt.Update(shell.painter, shell.cfg.Prompt))
}

// exit performs cleanup of the shell runtime: it stops signal delivery,
// closes the terminal and records the background jobs still running.
func (shell *Shell) exit() {

	shell.signals.Stop()

	if shell.terminal != nil {
		_ = shell.terminal.Close()
		shell.terminal = nil
	}

	for _, j := range shell.jobs.Jobs() {
		shell.logger.Info("leaving background job running", slog.Int("job", j.ID), slog.String("line", j.Line))
	}

}

// reportErrors prints the provided error to standard error if it is non-nil.
func (shell *Shell) reportErrors(err error) {
	if err != nil {
		shell.painter.Error(shell.launcher.Stderr, err)
	}
}
