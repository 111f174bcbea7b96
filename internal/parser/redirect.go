package parser

import "fmt"

// maxRedirects bounds how many tail redirections a stage may carry: one for
// input and one for output.
const maxRedirects = 2

// Resolve inspects the tail of a single stage's tokens for the patterns
// "... < FILE" and "... > FILE", in either order or combined, strips them
// and records the paths on the returned Stage. Markers are only recognized
// within the last four tokens; anywhere else they are ordinary arguments.
//
// Resolve reports ErrMissingTarget for a trailing marker with no file name,
// ErrDuplicateRedirect when the same stream is redirected twice (or a third
// marker sits at the tail), and ErrMissingCommand when no program name is
// left. Resolving the Args of an already resolved Stage is a no-op.
func Resolve(tokens []string) (Stage, error) {

	var stage Stage
	residual := tokens

	for i := 0; i < maxRedirects; i++ {

		n := len(residual)
		if n > 0 && isRedirect(residual[n-1]) {
			return Stage{}, fmt.Errorf("%w after %s", ErrMissingTarget, residual[n-1])
		}
		if n < 2 {
			break
		}

		marker, target := residual[n-2], residual[n-1]
		if !isRedirect(marker) {
			break
		}

		if marker == InputMarker {
			if stage.Input != "" {
				return Stage{}, fmt.Errorf("%w: %s %s", ErrDuplicateRedirect, marker, target)
			}
			stage.Input = target
		} else {
			if stage.Output != "" {
				return Stage{}, fmt.Errorf("%w: %s %s", ErrDuplicateRedirect, marker, target)
			}
			stage.Output = target
		}

		residual = residual[:n-2]

	}

	if n := len(residual); n >= 2 && isRedirect(residual[n-2]) {
		return Stage{}, fmt.Errorf("%w: %s %s", ErrDuplicateRedirect, residual[n-2], residual[n-1])
	}
	if n := len(residual); n == 1 && isRedirect(residual[0]) {
		return Stage{}, fmt.Errorf("%w after %s", ErrMissingTarget, residual[0])
	}

	if len(residual) == 0 {
		return Stage{}, ErrMissingCommand
	}

	stage.Args = append([]string(nil), residual...)

	return stage, nil

}

func isRedirect(token string) bool {
	return token == InputMarker || token == OutputMarker
}
