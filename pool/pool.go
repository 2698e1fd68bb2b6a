// Package pool implements a bounded, single-threaded cooperative worker
// pool: jobs are admitted up to a fixed concurrency limit and advanced one
// poll at a time in round-robin order, with no goroutines of its own.
package pool

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/trivago/boerewors/common/logger"
	"github.com/trivago/boerewors/job"
)

// DefaultSize mirrors boerewors' historical default pool size.
const DefaultSize = 10

// defaultBackoff is slept once per sweep that admits nothing new and
// finishes nothing, so an idle pool doesn't spin a CPU core. This is a
// refinement over a pure busy loop, not a change to scheduling order.
const defaultBackoff = 2 * time.Millisecond

// Pool runs a bounded number of jobs concurrently (as "concurrently" as a
// single-threaded poll loop allows: by interleaving Poll calls, not by
// spawning goroutines).
type Pool struct {
	size    int
	clk     clock.Clock
	backoff time.Duration
	log     logger.Log

	pending  []job.Job
	running  []job.Job
	finished []job.Job
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithClock overrides the clock used for backoff sleeps; tests inject a
// clock.NewMock() to assert on idle behaviour without wall-clock cost.
func WithClock(clk clock.Clock) Option {
	return func(p *Pool) { p.clk = clk }
}

// WithBackoff overrides the idle-sweep backoff duration.
func WithBackoff(d time.Duration) Option {
	return func(p *Pool) { p.backoff = d }
}

// WithLogFactory names this pool's logger.
func WithLogFactory(name string, factory logger.LogFactory) Option {
	return func(p *Pool) {
		if factory == nil {
			factory = logger.NoOpLogFactory
		}
		p.log = factory(name)
	}
}

// New builds a Pool with the given concurrency limit. size <= 0 is
// treated as DefaultSize.
func New(size int, opts ...Option) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	p := &Pool{
		size:    size,
		clk:     clock.New(),
		backoff: defaultBackoff,
		log:     logger.NewNoOpLog(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Add queues a job to run once pool capacity allows it.
func (p *Pool) Add(j job.Job) {
	p.pending = append(p.pending, j)
}

// Len reports how many jobs have been queued in total (pending + running +
// finished).
func (p *Pool) Len() int {
	return len(p.pending) + len(p.running) + len(p.finished)
}

func (p *Pool) admit() int {
	admitted := 0
	for len(p.pending) > 0 && len(p.running) < p.size {
		j := p.pending[0]
		p.pending = p.pending[1:]
		j.Start()
		p.running = append(p.running, j)
		admitted++
	}
	return admitted
}

// Run drains the pool: it admits queued jobs up to capacity and polls
// every running job once per sweep until nothing is pending or running.
func (p *Pool) Run() {
	for len(p.running) > 0 || len(p.pending) > 0 {
		admitted := p.admit()

		next := make([]job.Job, 0, len(p.running))
		progressed := 0
		for _, j := range p.running {
			if j.Poll() {
				p.finished = append(p.finished, j)
				progressed++
			} else {
				next = append(next, j)
			}
		}
		p.running = next

		if admitted == 0 && progressed == 0 && (len(p.running) > 0 || len(p.pending) > 0) {
			p.clk.Sleep(p.backoff)
		}
	}
}

// Results reports, for every job that ran through this pool in the order
// they finished, whether it succeeded. Go's error-returning GetResult
// never panics the way Python's could, so unlike the original
// implementation there is no need to special-case a captured exception
// before asking WasSuccessful — it is always safe to call.
func (p *Pool) Results() []bool {
	out := make([]bool, len(p.finished))
	for i, j := range p.finished {
		out[i] = j.WasSuccessful()
	}
	return out
}

// AllSucceeded reports whether every finished job in this pool succeeded.
func (p *Pool) AllSucceeded() bool {
	for _, ok := range p.Results() {
		if !ok {
			return false
		}
	}
	return true
}

// Jobs returns every job that has finished running, in completion order.
func (p *Pool) Jobs() []job.Job {
	return p.finished
}
