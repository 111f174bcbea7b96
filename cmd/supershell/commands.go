package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"Supershell/internal/builtin"
	"Supershell/internal/config"
	"Supershell/internal/launcher"
	"Supershell/internal/logging"
	"Supershell/internal/shell"
)

var (
	configPath  string
	commandLine string

	// exitCode is the status main exits with once the command returns.
	exitCode int

	rootCmd = &cobra.Command{
		Use:   "supershell",
		Short: "An interactive shell with pipelines, redirection and background jobs",
		Long: `Super-Shell reads command lines from the terminal and runs them as
pipelines of programs connected by pipes, with < and > redirection and
background execution with a trailing &.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runShell,
	}

	// builtinCmd hosts a builtin that runs inside a pipeline or in the
	// background: the launcher re-executes the shell as
	// supershell builtin -- NAME ARGS...
	builtinCmd = &cobra.Command{
		Use:                launcher.HostCommand + " -- NAME [ARGS...]",
		Hidden:             true,
		DisableFlagParsing: true,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 0 && args[0] == "--" {
				args = args[1:]
			}
			exitCode = builtin.RunChild(args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Configuration file (default ./supershell.yaml or ~/.config/supershell/supershell.yaml)")
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "",
		"Run a single command line and exit with its status")

	rootCmd.AddCommand(builtinCmd)
}

// runShell loads the configuration and starts either the interactive loop
// or the single command line given with -c.
func runShell(cmd *cobra.Command, args []string) error {

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "supershell: %v, using defaults\n", err)
		cfg = config.Default()
	}

	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "supershell: %v\n", err)
	}

	l, err := launcher.New(logger)
	if err != nil {
		return err
	}

	sh := shell.New(cfg, logger, l)
	ctx := context.Background()

	if cmd.Flags().Changed("command") {
		if strings.TrimSpace(commandLine) == "" {
			return nil
		}
		exitCode = sh.RunLine(ctx, commandLine)
		return nil
	}

	return sh.Run(ctx)

}
