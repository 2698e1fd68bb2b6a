package job

import (
	"fmt"

	"github.com/trivago/boerewors/common/logger"
)

// Job is the cooperative unit of work the scheduler advances. Every
// implementation must be safe to Poll repeatedly from a single goroutine
// at a time; nothing here is safe for concurrent use by multiple
// goroutines on the same Job.
type Job interface {
	// Poll advances the job by at most one step and reports whether it has
	// reached a terminal state (success or final failure). Poll never
	// blocks on external I/O; callers drive it from a tight or
	// backoff-paced loop.
	Poll() bool
	// Start is an optional convenience that primes the job's first
	// attempt. Calling it is never required: a cold Poll() call performs
	// the same lazy initialisation. Calling it more than once is a no-op.
	Start()
	// GetResult blocks (busy-polling) until the job is terminal and
	// returns its outcome. If the job ended in failure and canFail is
	// false, the failure is also returned as a Go error.
	GetResult(canFail bool) (Result, error)
	// WasSuccessful reports whether the job has completed and its
	// terminal Result is truthy. Returns false for a job that has not
	// finished yet.
	WasSuccessful() bool
	// ResultKind returns the terminal Result's Kind and true, or a zero
	// Kind and false if the job has not reached a terminal state yet.
	// Used by reporting code that must distinguish Skip from Ok, since
	// WasSuccessful treats both as truthy.
	ResultKind() (Kind, bool)
	// SetLoggingInfo assigns this job's place in the hierarchical logger
	// name tree: "parent.index". Called by whatever is enumerating this
	// job (a Stage, or a parent job producing it as a sub-job step).
	SetLoggingInfo(parent string, index int)
	// Name returns the current hierarchical logger name.
	Name() string
}

// DefaultMaxRetries is the retry count used when a job is constructed
// without an explicit override, matching a single attempt with no retry.
const DefaultMaxRetries = 1

// BaseJob implements the generic retry/step-iterator machinery described
// by the cooperative job protocol. Concrete job kinds are built by
// supplying a ProduceFunc (see NewFuncJob) rather than by embedding:
// BaseJob has no virtual methods to override, so composition stays
// explicit instead of relying on Go's limited embedding-based dispatch.
type BaseJob struct {
	name       string
	maxRetries int
	produce    ProduceFunc
	logFactory logger.LogFactory
	log        logger.Log

	attempt       int
	step          StepFunc
	current       Job
	result        *Result
	attemptErr    error
	failedFinally bool
}

// NewBaseJob constructs the shared bookkeeping for a cooperative job.
// maxRetries <= 0 is treated as DefaultMaxRetries.
func NewBaseJob(name string, maxRetries int, produce ProduceFunc, logFactory logger.LogFactory) *BaseJob {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if logFactory == nil {
		logFactory = logger.NoOpLogFactory
	}
	return &BaseJob{
		name:       name,
		maxRetries: maxRetries,
		produce:    produce,
		logFactory: logFactory,
		log:        logFactory(name),
	}
}

func (j *BaseJob) Name() string { return j.name }

func (j *BaseJob) SetLoggingInfo(parent string, index int) {
	j.name = fmt.Sprintf("%s.%d", parent, index)
	j.log = j.logFactory(j.name)
}

func (j *BaseJob) Start() {
	j.ensureAttempt()
}

func (j *BaseJob) ensureAttempt() {
	if j.step == nil && !j.failedFinally && j.result == nil {
		j.attempt++
		j.attemptErr = nil
		j.step = j.produce(j.attempt)
	}
}

// Poll implements Job.Poll. Each tick makes at most one producer call;
// while a sub-job is running the tick first delegates one Poll to it, and
// the producer is only called in that same tick once the sub-job has
// become terminal.
func (j *BaseJob) Poll() bool {
	if j.failedFinally || j.result != nil {
		return true
	}

	if j.current != nil {
		if !j.current.Poll() {
			return false
		}
		_, err := j.current.GetResult(true)
		j.current = nil
		if err != nil {
			j.log.Debugf("sub-job failed: %v", err)
		}
	}

	j.ensureAttempt()
	step, err, ok := j.step()
	if !ok {
		j.step = nil
		if err != nil {
			j.attemptErr = err
		}
		if j.attempt >= j.maxRetries {
			j.failedFinally = true
			return true
		}
		return false
	}

	switch {
	case step.Job != nil:
		j.current = step.Job
		j.current.Start()
		return false
	case step.Result != nil:
		if step.Result.Truthy() {
			j.result = step.Result
			return true
		}
		// An explicit Err result consumes a retry budget exactly like an
		// exhausted iterator: it never ends the job on its own.
		j.step = nil
		j.attemptErr = step.Result.Error()
		if j.attempt >= j.maxRetries {
			j.failedFinally = true
			return true
		}
		return false
	default:
		return false
	}
}

func (j *BaseJob) GetResult(canFail bool) (Result, error) {
	for !j.Poll() {
	}
	if j.result != nil {
		if j.result.Kind() == KindErr && !canFail {
			return *j.result, j.result.Error()
		}
		return *j.result, nil
	}
	// Exhausted every retry without ever producing a terminal Result.
	if canFail {
		return Result{}, nil
	}
	if j.attemptErr != nil {
		return Result{}, j.attemptErr
	}
	return Result{}, fmt.Errorf("%s: exhausted %d attempt(s) without a result", j.name, j.maxRetries)
}

func (j *BaseJob) WasSuccessful() bool {
	return j.result != nil && j.result.Truthy()
}

func (j *BaseJob) ResultKind() (Kind, bool) {
	if j.result == nil {
		return 0, false
	}
	return j.result.Kind(), true
}

// FuncJob is a BaseJob whose body is supplied directly as a ProduceFunc,
// for jobs simple enough not to warrant their own named type.
type FuncJob struct {
	*BaseJob
}

// NewFuncJob builds a Job from a raw step producer.
func NewFuncJob(name string, maxRetries int, produce ProduceFunc, logFactory logger.LogFactory) *FuncJob {
	return &FuncJob{BaseJob: NewBaseJob(name, maxRetries, produce, logFactory)}
}
