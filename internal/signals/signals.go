// Package signals handles the interactive interrupt (SIGINT) and suspend
// (SIGTSTP) signals delivered to the shell process itself. Signals are
// received on a channel by a dedicated goroutine, so no handler code runs
// in an asynchronous interrupt context. Spawned children are unaffected:
// they start with the default dispositions.
package signals

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Notice verbs.
const (
	Terminating = "Terminating"
	Suspending  = "Suspending"
)

// Layouts of the time and date in a notice, e.g.
// "at 03:04:05 PM on October 18, 2026".
const (
	timeLayout = "03:04:05 PM"
	dateLayout = "January 02, 2006"
)

// Notice formats the message written when the shell is terminated or
// suspended by a signal.
func Notice(verb, product string, t time.Time) string {
	return fmt.Sprintf("\n%s %s at %s on %s.\n", verb, product, t.Format(timeLayout), t.Format(dateLayout))
}

// Handler reacts to interrupt and suspend signals sent to the shell.
type Handler struct {
	product string
	out     io.Writer

	now     func() time.Time
	exit    func(code int)
	suspend func() error
	resumed func()

	mu     sync.Mutex // serializes notices and the actions that follow
	sigCh  chan os.Signal
	stopCh chan struct{}
	doneCh chan struct{}
}

// Option customizes a Handler.
type Option func(*Handler)

// WithClock replaces the wall clock used in notices.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// WithExit replaces the function that terminates the shell, os.Exit by
// default.
func WithExit(exit func(code int)) Option {
	return func(h *Handler) { h.exit = exit }
}

// WithSuspend replaces the function that stops the shell process. The
// default sends SIGSTOP to the shell's own pid and returns once the process
// has been continued.
func WithSuspend(suspend func() error) Option {
	return func(h *Handler) { h.suspend = suspend }
}

// WithResume registers the callback run after the shell is continued, used
// to re-display the prompt.
func WithResume(resumed func()) Option {
	return func(h *Handler) { h.resumed = resumed }
}

// New returns a Handler that names product in its notices and writes them
// to out.
func New(product string, out io.Writer, opts ...Option) *Handler {

	h := &Handler{
		product: product,
		out:     out,
		now:     time.Now,
		exit:    os.Exit,
		suspend: stopSelf,
		resumed: func() {},
	}

	for _, opt := range opts {
		opt(h)
	}

	return h

}

// Start subscribes to SIGINT and SIGTSTP and handles them on a goroutine
// until Stop is called.
func (h *Handler) Start() {

	h.sigCh = make(chan os.Signal, 1)
	h.stopCh = make(chan struct{})
	h.doneCh = make(chan struct{})

	signal.Notify(h.sigCh, unix.SIGINT, unix.SIGTSTP)

	go h.watch()

}

// Stop unsubscribes from the signals and waits for the watching goroutine
// to return. It is a no-op for a Handler that was never started.
func (h *Handler) Stop() {
	if h.sigCh == nil {
		return
	}
	signal.Stop(h.sigCh)
	close(h.stopCh)
	<-h.doneCh
	h.sigCh = nil
}

func (h *Handler) watch() {
	defer close(h.doneCh)
	for {
		select {
		case <-h.stopCh:
			return
		case sig := <-h.sigCh:
			h.Handle(sig)
		}
	}
}

// Handle reacts to sig as if it had been delivered to the shell. The shell
// loop calls it directly when the terminal, in raw mode, reports Ctrl-C as
// input instead of raising SIGINT.
//
// An interrupt writes a termination notice and exits with status 1; it is
// never ignored. A suspend writes a suspension notice, stops the process
// and, once it is continued, runs the resume callback. Other signals are
// ignored.
func (h *Handler) Handle(sig os.Signal) {

	h.mu.Lock()
	defer h.mu.Unlock()

	switch sig {
	case unix.SIGINT:
		fmt.Fprint(h.out, Notice(Terminating, h.product, h.now()))
		h.exit(1)
	case unix.SIGTSTP:
		fmt.Fprint(h.out, Notice(Suspending, h.product, h.now()))
		if err := h.suspend(); err != nil {
			fmt.Fprintf(h.out, "ERROR: 'failed to suspend: %v' \n", err)
			return
		}
		h.resumed()
	}

}

// stopSelf stops the calling process. SIGSTOP cannot be caught, so the
// call returns only after another process sends SIGCONT.
func stopSelf() error {
	return unix.Kill(unix.Getpid(), unix.SIGSTOP)
}
