package parser

import "strings"

// DefaultMaxArgs is the token limit used when the configuration does not
// provide one.
const DefaultMaxArgs = 30

// Tokenize splits line on runs of whitespace (including a trailing newline
// or carriage return) and returns the resulting tokens. A line without
// tokens yields a nil slice and a nil error, which callers treat as a no-op.
// When the line holds more than max tokens Tokenize returns
// ErrArgumentOverflow and no tokens. A non-positive max selects
// DefaultMaxArgs.
func Tokenize(line string, max int) ([]string, error) {

	if max <= 0 {
		max = DefaultMaxArgs
	}

	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil, nil
	}

	if len(tokens) > max {
		return nil, ErrArgumentOverflow
	}

	return tokens, nil

}
