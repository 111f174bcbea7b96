package builtin

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestIsBuiltin(t *testing.T) {
	for _, name := range []string{"cd", "pwd", "ps", "kill"} {
		assert.True(t, IsBuiltin(name), name)
	}
	for _, name := range []string{"ls", "echo", "", "CD"} {
		assert.False(t, IsBuiltin(name), name)
	}
	assert.Equal(t, []string{"cd", "kill", "ps", "pwd"}, Names())
}

func TestPrintWorkingDirectory(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	chdir(t, dir)

	var out bytes.Buffer
	require.NoError(t, Execute([]string{"pwd"}, &out))
	assert.Equal(t, dir+"\n", out.String())
}

func TestChangeDirectory(t *testing.T) {
	start := t.TempDir()
	chdir(t, start)

	target, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, Execute([]string{"cd", target}, nil))

	got, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

func TestChangeDirectoryErrors(t *testing.T) {
	chdir(t, t.TempDir())
	before, err := os.Getwd()
	require.NoError(t, err)

	err = Execute([]string{"cd"}, nil)
	assert.ErrorContains(t, err, "Not enough arguments")

	err = Execute([]string{"cd", "a", "b"}, nil)
	assert.ErrorContains(t, err, "too many arguments")

	err = Execute([]string{"cd", "does-not-exist"}, nil)
	assert.ErrorContains(t, err, "cd failed")
	assert.ErrorIs(t, err, os.ErrNotExist)

	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestKillErrors(t *testing.T) {
	assert.ErrorContains(t, Execute([]string{"kill"}, nil), "usage")
	assert.ErrorContains(t, Execute([]string{"kill", "abc"}, nil), "must be process IDs")
	assert.ErrorContains(t, Execute([]string{"kill", "-3"}, nil), "must be process IDs")
}

func TestProcessStatusListsHeader(t *testing.T) {
	if _, err := os.Stat("/proc/self"); err != nil {
		t.Skip("no /proc filesystem")
	}

	var out bytes.Buffer
	require.NoError(t, Execute([]string{"ps"}, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "PID")
	assert.Contains(t, lines[0], "CMD")
}

func TestExecuteUnknown(t *testing.T) {
	assert.ErrorIs(t, Execute([]string{"ls"}, nil), ErrUnknown)
	assert.ErrorIs(t, Execute(nil, nil), ErrUnknown)
}
