package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Supershell/internal/config"
)

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.Log{Level: "info", Format: "text"}, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("job started", slog.Int("job", 1))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=\"job started\" job=1")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.Log{Level: "DEBUG", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Debug("stage started", slog.String("program", "ls"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "stage started", record["msg"])
	assert.Equal(t, "ls", record["program"])
}

func TestNewInvalid(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(config.Log{Level: "loud"}, &buf)
	assert.ErrorContains(t, err, "invalid log level")
	require.NotNil(t, logger)

	logger, err = New(config.Log{Level: "warn", Format: "xml"}, &buf)
	assert.ErrorContains(t, err, "invalid log format")
	require.NotNil(t, logger)
}
