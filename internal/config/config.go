// Package config provides functionality for loading shell configuration
// parameters using the Viper library. Settings come from built-in defaults,
// an optional config file and SUPERSHELL_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configurable settings for the shell.
type Config struct {
	Shell    Shell    `mapstructure:"shell"`    // Pipeline engine settings
	Terminal Terminal `mapstructure:"terminal"` // Terminal-related settings
	Prompt   Prompt   `mapstructure:"prompt"`   // Prompt appearance settings
	Log      Log      `mapstructure:"log"`      // Diagnostic logging settings
}

// Shell defines settings of the pipeline engine.
type Shell struct {
	ProductName   string `mapstructure:"product_name"`   // Name used in signal notices
	MaxArgs       int    `mapstructure:"max_args"`       // Maximum number of tokens per line
	CheckInterval uint   `mapstructure:"check_interval"` // Number of pipelines between FD checks, 0 disables
}

// Terminal defines settings related to terminal behavior, such as history
// file, history limit and the interrupt and exit prompts.
type Terminal struct {
	HistoryFile     string `mapstructure:"history_file"`     // Path to shell history file
	HistoryLimit    int    `mapstructure:"history_limit"`    // Maximum number of history entries
	InterruptPrompt string `mapstructure:"interrupt_prompt"` // Text shown on Ctrl-C
	EOFPrompt       string `mapstructure:"exit_message"`     // Text shown on EOF/exit
}

// Prompt defines settings related to the shell prompt appearance.
type Prompt struct {
	Text       string `mapstructure:"text"`        // Prompt text
	ShowPath   bool   `mapstructure:"show_path"`   // Prefix the prompt with the working directory
	Colour     string `mapstructure:"colour"`      // Prompt colour name
	ColourBold bool   `mapstructure:"colour_bold"` // Bold style for the prompt
}

// Log defines where diagnostic log records go and how verbose they are.
type Log struct {
	Level  string `mapstructure:"level"`  // debug, info, warn or error
	Format string `mapstructure:"format"` // text or json
}

// EnvPrefix is the prefix of environment variables overriding settings,
// e.g. SUPERSHELL_SHELL_MAX_ARGS.
const EnvPrefix = "SUPERSHELL"

// Load reads the configuration. When path is empty a file named
// "supershell" (any format Viper supports) is looked up in the current
// directory and in $HOME/.config/supershell; a missing file is not an
// error. When path is set the file must exist. Returns a partial Config and
// an error if loading or unmarshaling fails.
func Load(path string) (*Config, error) {

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("supershell")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "supershell"))
		}
	}

	cfg := Default()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Shell.MaxArgs <= 0 {
		return cfg, fmt.Errorf("invalid config: shell.max_args must be positive, got %d", cfg.Shell.MaxArgs)
	}

	return cfg, nil
}

// Default returns a Config with sensible default settings. It is used
// as a fallback when loading a configuration file fails.
func Default() *Config {

	cfg := new(Config)

	cfg.Shell.ProductName = "Super-Shell"
	cfg.Shell.MaxArgs = 30
	cfg.Shell.CheckInterval = 5

	cfg.Terminal.HistoryFile = filepath.Join(os.Getenv("HOME"), ".supershell_history")
	cfg.Terminal.HistoryLimit = 1000
	cfg.Terminal.InterruptPrompt = "^C"
	cfg.Terminal.EOFPrompt = "exit"

	cfg.Prompt.Text = " > "
	cfg.Prompt.ShowPath = false
	cfg.Prompt.Colour = "default"
	cfg.Prompt.ColourBold = false

	cfg.Log.Level = "warn"
	cfg.Log.Format = "text"

	return cfg
}

// setDefaults registers every field of cfg with v, so that environment
// variables can override keys absent from the config file.
func setDefaults(v *viper.Viper, cfg *Config) {

	v.SetDefault("shell.product_name", cfg.Shell.ProductName)
	v.SetDefault("shell.max_args", cfg.Shell.MaxArgs)
	v.SetDefault("shell.check_interval", cfg.Shell.CheckInterval)

	v.SetDefault("terminal.history_file", cfg.Terminal.HistoryFile)
	v.SetDefault("terminal.history_limit", cfg.Terminal.HistoryLimit)
	v.SetDefault("terminal.interrupt_prompt", cfg.Terminal.InterruptPrompt)
	v.SetDefault("terminal.exit_message", cfg.Terminal.EOFPrompt)

	v.SetDefault("prompt.text", cfg.Prompt.Text)
	v.SetDefault("prompt.show_path", cfg.Prompt.ShowPath)
	v.SetDefault("prompt.colour", cfg.Prompt.Colour)
	v.SetDefault("prompt.colour_bold", cfg.Prompt.ColourBold)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)

}
