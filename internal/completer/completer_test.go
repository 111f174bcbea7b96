package completer

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func complete(c *Completer, line string) []string {
	candidates, _ := c.Do([]rune(line), len([]rune(line)))
	out := make([]string, len(candidates))
	for i, candidate := range candidates {
		out[i] = string(candidate)
	}
	return out
}

func TestCompleteDirectoriesForCd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "projects"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })

	c := NewCompleter()
	c.Update()

	assert.Equal(t, []string{"rojects/ "}, complete(c, "cd p"))
	assert.Empty(t, complete(c, "cd n"))
	assert.Equal(t, []string{"otes.txt "}, complete(c, "cat n"))
	assert.Equal(t, []string{"d "}, complete(c, "pw"))
}

func TestGetPIDsIncludesSelf(t *testing.T) {
	if _, err := os.Stat("/proc/self"); err != nil {
		t.Skip("no /proc filesystem")
	}
	assert.Contains(t, getPIDs(), strconv.Itoa(os.Getpid()))
}
