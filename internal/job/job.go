// Package job decides how the shell waits for a pipeline. Foreground
// pipelines block the shell until every one of their processes has
// terminated; background pipelines are detached and reaped by a goroutine
// while the shell returns to prompting.
package job

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"Supershell/internal/builtin"
	"Supershell/internal/launcher"
	"Supershell/internal/parser"
)

// StripBackground removes a trailing background marker from tokens and
// reports whether it was present. The marker is only honoured as the final
// token; anywhere else it is an ordinary argument.
func StripBackground(tokens []string) ([]string, bool) {
	n := len(tokens)
	if n > 0 && tokens[n-1] == parser.BackgroundMarker {
		return tokens[:n-1], true
	}
	return tokens, false
}

// Starter launches the stages of a pipeline. *launcher.Launcher implements
// it.
type Starter interface {
	Launch(ctx context.Context, p parser.Pipeline) ([]*launcher.Process, error)
	RunBuiltin(stage parser.Stage) error
}

// Job is a pipeline running in the background.
type Job struct {
	ID    int                 // Shell-local job number, starting at 1
	Trace string              // Correlation id used in log records
	Line  string              // Source line, for display
	Procs []*launcher.Process // One handle per stage

	done   chan struct{}
	status int
}

// Done is closed once every process of the job has been reaped.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Status returns the exit status of the job's last stage. It is only
// meaningful once Done is closed.
func (j *Job) Status() int {
	<-j.done
	return j.status
}

// Status is the outcome of running a pipeline.
type Status struct {
	Job        int  // Job number, or 0 for a foreground pipeline
	Code       int  // Exit status of the last stage; 0 for a background job
	Background bool // True when the shell did not wait
}

// Controller runs pipelines and keeps the table of background jobs.
type Controller struct {
	starter Starter
	out     io.Writer
	logger  *slog.Logger

	mu     sync.Mutex
	nextID int
	jobs   map[int]*Job
}

// NewController returns a Controller that starts stages with starter and
// announces background jobs on out.
func NewController(starter Starter, out io.Writer, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		starter: starter,
		out:     out,
		logger:  logger,
		jobs:    make(map[int]*Job),
	}
}

// Run executes p. A foreground pipeline consisting of a single builtin runs
// inside the shell process. Any other foreground pipeline blocks until each
// of its own processes has terminated and yields the last stage's exit
// status. A background pipeline is registered as a Job, announced as
// "[id] pid", and Run returns without waiting.
//
// The returned error reports a failed builtin or a pipe that could not be
// created; in the latter case every process that did start is still
// reaped (foreground) or tracked (background).
func (c *Controller) Run(ctx context.Context, p parser.Pipeline, line string) (Status, error) {

	if !p.Background && len(p.Stages) == 1 && builtin.IsBuiltin(p.Stages[0].Name()) {
		if err := c.starter.RunBuiltin(p.Stages[0]); err != nil {
			return Status{Code: launcher.ExitCode(err)}, err
		}
		return Status{}, nil
	}

	procs, err := c.starter.Launch(ctx, p)

	if p.Background {
		job := c.detach(procs, line)
		return Status{Job: job.ID, Background: true}, err
	}

	code := wait(procs)

	c.logger.Debug("pipeline finished", slog.String("line", line), slog.Int("status", code))

	if err != nil {
		return Status{Code: 1}, err
	}

	return Status{Code: code}, nil

}

// wait reaps every process and returns the exit status of the last one.
func wait(procs []*launcher.Process) int {
	code := 0
	for _, proc := range procs {
		code = proc.Wait()
	}
	return code
}

// detach registers procs as a background job, announces it and reaps it in
// a goroutine.
func (c *Controller) detach(procs []*launcher.Process, line string) *Job {

	c.mu.Lock()
	c.nextID++
	job := &Job{
		ID:    c.nextID,
		Trace: uuid.NewString(),
		Line:  line,
		Procs: procs,
		done:  make(chan struct{}),
	}
	c.jobs[job.ID] = job
	c.mu.Unlock()

	pid := 0
	for _, proc := range procs {
		if pid = proc.Pid(); pid != 0 {
			break
		}
	}

	// Stages that failed to start have already been reported.
	if c.out != nil && pid != 0 {
		fmt.Fprintf(c.out, "[%d] %d\n", job.ID, pid)
	}

	c.logger.Info("job started",
		slog.Int("job", job.ID),
		slog.String("trace", job.Trace),
		slog.Int("pid", pid),
		slog.String("line", line),
	)

	go c.reap(job)

	return job

}

func (c *Controller) reap(job *Job) {

	job.status = wait(job.Procs)

	c.mu.Lock()
	delete(c.jobs, job.ID)
	c.mu.Unlock()

	c.logger.Info("job finished",
		slog.Int("job", job.ID),
		slog.String("trace", job.Trace),
		slog.Int("status", job.status),
	)

	close(job.done)

}

// Jobs returns the background jobs that are still running, ordered by job
// number.
func (c *Controller) Jobs() []*Job {

	c.mu.Lock()
	defer c.mu.Unlock()

	jobs := make([]*Job, 0, len(c.jobs))
	for _, job := range c.jobs {
		jobs = append(jobs, job)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })

	return jobs

}

// Job returns the running background job with the given number.
func (c *Controller) Job(id int) (*Job, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	job, ok := c.jobs[id]
	return job, ok
}
