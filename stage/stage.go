// Package stage groups a sequence of jobs under a shared execution policy:
// whether a canary job gates the rest, whether the remainder run through a
// pool or sequentially, and whether a failure here stops the whole run.
package stage

import (
	"strconv"

	"github.com/trivago/boerewors/common/logger"
	"github.com/trivago/boerewors/job"
)

// JobIterFunc yields one job per call, or (nil, false) once exhausted. It
// is the per-stage analogue of job.StepFunc: a lazily-advanced producer,
// so that a configured --limit can stop pulling jobs from the underlying
// provider without ever constructing the jobs beyond the cap.
type JobIterFunc func() (job.Job, bool)

// JobProvider builds a fresh JobIterFunc for one run of the stage.
type JobProvider func() JobIterFunc

// FromSlice adapts a pre-built slice of jobs into a JobProvider, for
// stages whose job list doesn't need to be computed lazily.
func FromSlice(jobs []job.Job) JobProvider {
	return func() JobIterFunc {
		i := 0
		return func() (job.Job, bool) {
			if i >= len(jobs) {
				return nil, false
			}
			j := jobs[i]
			i++
			return j, true
		}
	}
}

// Summary tallies how a stage's jobs concluded. Skipped jobs are tracked
// apart from Succeeded even though both coerce truthy for aggregation,
// per the resolution that Skip is stage-level success but reported
// distinctly.
type Summary struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// Stage groups jobs under an execution policy.
type Stage struct {
	name string

	// IsCanary, when true, runs the first job from Jobs alone; if it
	// fails the remaining jobs in this stage are never started.
	IsCanary bool
	// AllowParallelExecution runs the (post-canary) jobs through a pool
	// instead of one at a time.
	AllowParallelExecution bool
	// CanFail means a failure in this stage never stops the overall run.
	CanFail bool
	// PoolSize bounds concurrency when AllowParallelExecution is set. 0
	// defers to pool.DefaultSize.
	PoolSize int

	getJobs    JobProvider
	logFactory logger.LogFactory
	log        logger.Log

	joblist []job.Job
}

// Option configures a Stage at construction time.
type Option func(*Stage)

func WithCanary(v bool) Option   { return func(s *Stage) { s.IsCanary = v } }
func WithParallel(v bool) Option { return func(s *Stage) { s.AllowParallelExecution = v } }
func WithCanFail(v bool) Option  { return func(s *Stage) { s.CanFail = v } }
func WithPoolSize(n int) Option  { return func(s *Stage) { s.PoolSize = n } }
func WithLogFactory(f logger.LogFactory) Option {
	return func(s *Stage) {
		if f == nil {
			f = logger.NoOpLogFactory
		}
		s.logFactory = f
	}
}

// New builds a Stage named name, whose jobs are produced by getJobs.
// Defaults match boerewors: canary on, parallel on, can-fail off.
func New(name string, getJobs JobProvider, opts ...Option) *Stage {
	s := &Stage{
		name:                   name,
		IsCanary:               true,
		AllowParallelExecution: true,
		getJobs:                getJobs,
		logFactory:             logger.NoOpLogFactory,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.logFactory(s.name)
	return s
}

// Name returns this stage's current hierarchical logger name.
func (s *Stage) Name() string { return s.name }

// SetLoggingInfo places this stage at parent.index in the logger name
// tree.
func (s *Stage) SetLoggingInfo(parent string, index int) {
	s.name = parent + "." + strconv.Itoa(index)
	s.log = s.logFactory(s.name)
}

// Jobs returns a lazy iterator over this stage's jobs. Each job is given a
// hierarchical logger name as it is produced, and recorded for
// CollectSummary. If limit > 0, at most limit jobs are ever pulled from
// the underlying provider.
func (s *Stage) Jobs(limit int) JobIterFunc {
	underlying := s.getJobs()
	idx := 0
	return func() (job.Job, bool) {
		if limit > 0 && idx >= limit {
			return nil, false
		}
		j, ok := underlying()
		if !ok {
			return nil, false
		}
		j.SetLoggingInfo(s.name, idx)
		s.joblist = append(s.joblist, j)
		idx++
		return j, true
	}
}

// ShouldContinue decides whether the executor should move on to the next
// stage given whether this stage recorded any errors.
func (s *Stage) ShouldContinue(errors bool) bool {
	if s.CanFail {
		return true
	}
	return !errors
}

// Setup announces the stage is starting.
func (s *Stage) Setup() {
	s.log.Notice("stage start")
}

// Cleanup announces the stage has finished.
func (s *Stage) Cleanup(errors bool) {
	if errors {
		s.log.Notice("stage finish (errors occurred)")
	} else {
		s.log.Notice("stage finish")
	}
}

// CollectSummary tallies outcomes across every job this stage has
// produced so far.
func (s *Stage) CollectSummary() Summary {
	var sum Summary
	for _, j := range s.joblist {
		if !j.WasSuccessful() {
			sum.Failed++
			continue
		}
		if kind, ok := j.ResultKind(); ok && kind == job.KindSkip {
			sum.Skipped++
		} else {
			sum.Succeeded++
		}
	}
	return sum
}
