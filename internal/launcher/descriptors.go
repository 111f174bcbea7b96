package launcher

import (
	"errors"
	"fmt"
	"os"
)

// descriptors is the set of parent-side descriptors acquired while one
// stage is wired up. Every descriptor added to the set is closed exactly
// once by closeAll, whatever path the launch took.
type descriptors struct {
	files []*os.File
}

// add records f for release and returns it unchanged.
func (d *descriptors) add(f *os.File) *os.File {
	d.files = append(d.files, f)
	return f
}

// closeAll closes each recorded descriptor that is not one of the standard
// streams and empties the set, so a second call is a no-op. It returns the
// first close error.
func (d *descriptors) closeAll() error {

	var first error

	for _, f := range d.files {
		if f == nil || f == os.Stdin || f == os.Stdout || f == os.Stderr {
			continue
		}
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) && first == nil {
			first = err
		}
	}

	d.files = nil

	return first

}

// openInput opens path for reading as a stage's standard input.
func openInput(path string) (*os.File, error) {
	return os.Open(path)
}

// openOutput creates or truncates path as a stage's standard output.
func openOutput(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
}

// OpenDescriptors returns the number of descriptors currently open in the
// calling process, as listed by /proc/self/fd. The descriptor used for the
// listing itself is not counted.
func OpenDescriptors() (int, error) {
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		return 0, fmt.Errorf("failed to list open descriptors: %w", err)
	}
	return len(entries) - 1, nil
}
