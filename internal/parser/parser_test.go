package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		line string
		want []string
	}{
		{"ls -l\n", []string{"ls", "-l"}},
		{"  cat\tfile.txt   |  wc -l\r\n", []string{"cat", "file.txt", "|", "wc", "-l"}},
		{"echo hi > out.txt", []string{"echo", "hi", ">", "out.txt"}},
		{"sleep 5 &", []string{"sleep", "5", "&"}},
	}

	for _, tc := range cases {
		got, err := Tokenize(tc.line, DefaultMaxArgs)
		require.NoError(t, err, tc.line)
		assert.Equal(t, tc.want, got, tc.line)
		assert.Equal(t, strings.Join(strings.Fields(tc.line), " "), strings.Join(got, " "))
		for _, token := range got {
			assert.NotEmpty(t, token)
		}
	}
}

func TestTokenizeEmpty(t *testing.T) {
	for _, line := range []string{"", "\n", "   \t \r\n"} {
		got, err := Tokenize(line, DefaultMaxArgs)
		assert.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestTokenizeOverflow(t *testing.T) {
	line := strings.TrimSpace(strings.Repeat("x ", 4))

	got, err := Tokenize(line, 4)
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = Tokenize(line+" y", 4)
	assert.ErrorIs(t, err, ErrArgumentOverflow)
	assert.Nil(t, got)

	_, err = Tokenize(strings.Repeat("a ", DefaultMaxArgs+1), 0)
	assert.ErrorIs(t, err, ErrArgumentOverflow)
}

func TestResolve(t *testing.T) {
	cases := []struct {
		tokens []string
		want   Stage
	}{
		{
			tokens: []string{"ls", "-l", ">", "out.txt"},
			want:   Stage{Args: []string{"ls", "-l"}, Output: "out.txt"},
		},
		{
			tokens: []string{"sort", "<", "in.txt"},
			want:   Stage{Args: []string{"sort"}, Input: "in.txt"},
		},
		{
			tokens: []string{"sort", "<", "in.txt", ">", "out.txt"},
			want:   Stage{Args: []string{"sort"}, Input: "in.txt", Output: "out.txt"},
		},
		{
			tokens: []string{"sort", "-r", ">", "out.txt", "<", "in.txt"},
			want:   Stage{Args: []string{"sort", "-r"}, Input: "in.txt", Output: "out.txt"},
		},
		{
			// Markers away from the tail are plain arguments.
			tokens: []string{"grep", ">", "file", "-n"},
			want:   Stage{Args: []string{"grep", ">", "file", "-n"}},
		},
		{
			tokens: []string{"pwd"},
			want:   Stage{Args: []string{"pwd"}},
		},
	}

	for _, tc := range cases {
		got, err := Resolve(tc.tokens)
		require.NoError(t, err, tc.tokens)
		assert.Equal(t, tc.want, got, tc.tokens)
	}
}

func TestResolveIdempotent(t *testing.T) {
	first, err := Resolve([]string{"ls", "-l", "<", "in", ">", "out.txt"})
	require.NoError(t, err)

	second, err := Resolve(first.Args)
	require.NoError(t, err)

	assert.Equal(t, first.Args, second.Args)
	assert.Empty(t, second.Input)
	assert.Empty(t, second.Output)
}

func TestResolveDoesNotAliasInput(t *testing.T) {
	tokens := []string{"ls", ">", "out"}
	stage, err := Resolve(tokens)
	require.NoError(t, err)

	stage.Args[0] = "changed"
	assert.Equal(t, "ls", tokens[0])
}

func TestResolveErrors(t *testing.T) {
	cases := []struct {
		tokens []string
		want   error
	}{
		{[]string{"ls", ">"}, ErrMissingTarget},
		{[]string{"ls", "<"}, ErrMissingTarget},
		{[]string{"ls", "<", "in", ">"}, ErrMissingTarget},
		{[]string{"<"}, ErrMissingTarget},
		{[]string{">", "out"}, ErrMissingCommand},
		{[]string{"<", "in", ">", "out"}, ErrMissingCommand},
		{[]string{"ls", ">", "a", ">", "b"}, ErrDuplicateRedirect},
		{[]string{"cat", "<", "a", "<", "b"}, ErrDuplicateRedirect},
		{[]string{"cat", "<", "a", ">", "b", "<", "c"}, ErrDuplicateRedirect},
		{nil, ErrMissingCommand},
	}

	for _, tc := range cases {
		_, err := Resolve(tc.tokens)
		assert.ErrorIs(t, err, tc.want, fmt.Sprint(tc.tokens))
	}
}

func TestBuildSingleStage(t *testing.T) {
	p, err := Build([]string{"ls", "-l", ">", "out.txt"})
	require.NoError(t, err)
	require.Len(t, p.Stages, 1)

	assert.Equal(t, []string{"ls", "-l"}, p.Stages[0].Args)
	assert.Equal(t, "out.txt", p.Stages[0].Output)
	assert.Empty(t, p.Stages[0].Input)
	assert.False(t, p.Background)
}

func TestBuildPipeline(t *testing.T) {
	p, err := Build([]string{"a", "|", "b", "|", "c"})
	require.NoError(t, err)
	require.Len(t, p.Stages, 3)

	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, name, p.Stages[i].Name())
		assert.Empty(t, p.Stages[i].Input)
		assert.Empty(t, p.Stages[i].Output)
	}
}

func TestBuildPipelineWithRedirections(t *testing.T) {
	tokens, err := Tokenize("sort < in.txt | uniq -c | head -5 > top.txt", DefaultMaxArgs)
	require.NoError(t, err)

	p, err := Build(tokens)
	require.NoError(t, err)
	require.Len(t, p.Stages, 3)

	assert.Equal(t, Stage{Args: []string{"sort"}, Input: "in.txt"}, p.Stages[0])
	assert.Equal(t, Stage{Args: []string{"uniq", "-c"}}, p.Stages[1])
	assert.Equal(t, Stage{Args: []string{"head", "-5"}, Output: "top.txt"}, p.Stages[2])
}

func TestBuildInvalidPiping(t *testing.T) {
	cases := [][]string{
		{"a", "|"},
		{"|", "a"},
		{"|"},
		{"a", "|", "|", "b"},
		{"a", "|", "b", "|"},
	}

	for _, tokens := range cases {
		_, err := Build(tokens)
		assert.ErrorIs(t, err, ErrInvalidPiping, fmt.Sprint(tokens))
	}
}

func TestBuildStageErrors(t *testing.T) {
	_, err := Build([]string{"a", ">", "|", "b"})
	assert.ErrorIs(t, err, ErrMissingTarget)
	assert.Contains(t, err.Error(), "stage 1")

	_, err = Build([]string{"a", "|", "b", "<"})
	assert.ErrorIs(t, err, ErrMissingTarget)
	assert.Contains(t, err.Error(), "stage 2")

	_, err = Build(nil)
	assert.ErrorIs(t, err, ErrMissingCommand)
}
