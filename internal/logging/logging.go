// Package logging builds the structured logger shared by the shell's
// components from the log section of the configuration.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"Supershell/internal/config"
)

// New returns a logger writing to w in the configured format and at the
// configured level. Unknown levels or formats are reported as an error
// together with a usable text logger at warn level.
func New(cfg config.Log, w io.Writer) (*slog.Logger, error) {

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn})),
			fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	return slog.New(slog.NewTextHandler(w, opts)), fmt.Errorf("invalid log format %q", cfg.Format)

}
