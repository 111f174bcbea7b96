// Package parser turns a line of shell input into a Pipeline of Stage
// values. It splits the line into whitespace-delimited tokens, partitions
// the tokens on pipe markers (|) and resolves the tail redirections (<, >)
// of every stage. The parser never touches the filesystem: redirection
// targets are recorded as paths and opened later by the launcher.
package parser

import (
	"errors"
	"fmt"
)

// Markers recognized by the parser and the job controller.
const (
	PipeMarker       = "|"
	InputMarker      = "<"
	OutputMarker     = ">"
	BackgroundMarker = "&"
)

var (
	// ErrArgumentOverflow is returned by Tokenize when a line holds more
	// tokens than allowed. No truncated sequence is ever returned with it.
	ErrArgumentOverflow = errors.New("the number of arguments entered exceeds the limit")
	// ErrInvalidPiping is returned when a pipe marker has no command on one
	// of its sides.
	ErrInvalidPiping = errors.New("invalid piping")
	// ErrMissingTarget is returned when a redirection marker is not followed
	// by a file name.
	ErrMissingTarget = errors.New("missing redirection target")
	// ErrDuplicateRedirect is returned when a stage redirects the same
	// stream more than once.
	ErrDuplicateRedirect = errors.New("multiple redirections of the same stream")
	// ErrMissingCommand is returned when a stage holds no program name.
	ErrMissingCommand = errors.New("missing command")
)

// Stage is a single program invocation within a pipeline.
type Stage struct {
	Args   []string // Program name followed by its arguments, never empty
	Input  string   // Optional input redirection path
	Output string   // Optional output redirection path
}

// Name returns the program name of the stage.
func (s Stage) Name() string {
	return s.Args[0]
}

// Pipeline is an ordered, non-empty chain of stages. Stage i writes into
// stage i+1 through exactly one pipe.
type Pipeline struct {
	Stages     []Stage // Stages in left-to-right program order
	Background bool    // True when the shell must not wait for the pipeline
}

// Build partitions tokens on pipe markers from left to right and resolves
// the redirections of every resulting stage. The tokens must not contain
// the trailing background marker; the job controller strips it first.
// Build returns ErrInvalidPiping when a pipe marker has nothing before or
// after it, and any error reported by Resolve for an individual stage.
func Build(tokens []string) (Pipeline, error) {

	var pipeline Pipeline

	if len(tokens) == 0 {
		return pipeline, ErrMissingCommand
	}

	start := 0

	for i, token := range tokens {

		if token != PipeMarker {
			continue
		}

		if i == start {
			return Pipeline{}, ErrInvalidPiping
		}

		stage, err := Resolve(tokens[start:i])
		if err != nil {
			return Pipeline{}, fmt.Errorf("stage %d: %w", len(pipeline.Stages)+1, err)
		}

		pipeline.Stages = append(pipeline.Stages, stage)
		start = i + 1

	}

	if start == len(tokens) {
		return Pipeline{}, fmt.Errorf("%w: missing command after %s", ErrInvalidPiping, PipeMarker)
	}

	stage, err := Resolve(tokens[start:])
	if err != nil {
		if len(pipeline.Stages) == 0 {
			return Pipeline{}, err
		}
		return Pipeline{}, fmt.Errorf("stage %d: %w", len(pipeline.Stages)+1, err)
	}

	pipeline.Stages = append(pipeline.Stages, stage)

	return pipeline, nil

}
