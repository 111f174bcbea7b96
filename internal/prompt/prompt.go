// Package prompt builds the interactive shell prompt: the configured prompt
// text, optionally preceded by the current working directory with the
// user's home directory abbreviated as "~".
package prompt

import (
	"fmt"
	"os"
	"strings"

	"Supershell/internal/config"
	"Supershell/internal/painter"
)

// DefaultPrompt is used when the configuration leaves the text empty.
const DefaultPrompt = " > "

// Update constructs and returns the prompt string for the shell. When
// cfg.ShowPath is set the prompt starts with the current working directory,
// abbreviated with ~ for the home directory; paths deeper than three levels
// are shortened to ~/.../parent/child. If the working directory cannot be
// determined only the prompt text is shown.
func Update(p painter.Painter, cfg config.Prompt) string {

	text := cfg.Text
	if text == "" {
		text = DefaultPrompt
	}

	if !cfg.ShowPath {
		return p.Prompt(text)
	}

	currPath, err := os.Getwd()
	if err != nil {
		return p.Prompt(text)
	}

	return p.Prompt(shorten(currPath, os.Getenv("HOME")) + text)

}

// shorten abbreviates path relative to home.
func shorten(path, home string) string {

	if home != "" && (path == home || strings.HasPrefix(path, home+"/")) {
		path = "~" + strings.TrimPrefix(path, home)
	}

	parts := strings.Split(path, "/")
	if len(parts) > 3 {
		path = fmt.Sprintf("%s/.../%s/%s", parts[0], parts[len(parts)-2], parts[len(parts)-1])
	}

	return path

}
