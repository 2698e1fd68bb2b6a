// Package executor drives an ordered set of stages to completion: for
// each stage it optionally runs a canary job alone, then runs the rest in
// a pool or sequentially, and decides whether to continue to the next
// stage based on the stage's can-fail policy.
package executor

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/trivago/boerewors/common/logger"
	"github.com/trivago/boerewors/pool"
	"github.com/trivago/boerewors/runner"
	"github.com/trivago/boerewors/stage"
)

// Progress receives stage start/finish notifications as an Executor runs,
// for a caller that wants to show live progress (e.g. a spinner per
// stage) without coupling the executor to any particular display.
type Progress interface {
	StageStarted(name string)
	StageFinished(name string, errored bool)
}

// Executor owns zero or more named StageProviders and runs one of them to
// completion on request.
type Executor struct {
	title      string
	runners    map[string]runner.StageProvider
	order      []string
	logFactory logger.LogFactory
	log        logger.Log
	progress   Progress
	lastErrors error
}

// SetProgress registers a Progress sink to notify as stages start and
// finish. Passing nil disables notifications.
func (e *Executor) SetProgress(p Progress) { e.progress = p }

// Errors returns every failed job's error from the most recent Run call,
// aggregated with hashicorp/go-multierror, or nil if that run had no job
// failures. Run's own returned error stays reserved for Setup failure, so
// a caller that wants per-job detail on a plain job failure reads this
// instead.
func (e *Executor) Errors() error { return e.lastErrors }

// New builds an Executor titled title (used only for logging/reporting),
// registering every provider given. Providers must have unique Name()s.
func New(title string, logFactory logger.LogFactory, providers ...runner.StageProvider) (*Executor, error) {
	if logFactory == nil {
		logFactory = logger.NoOpLogFactory
	}
	e := &Executor{
		title:      title,
		runners:    make(map[string]runner.StageProvider, len(providers)),
		logFactory: logFactory,
		log:        logFactory("root"),
	}
	for _, p := range providers {
		if _, exists := e.runners[p.Name()]; exists {
			return nil, fmt.Errorf("executor: duplicate runner name %q", p.Name())
		}
		e.runners[p.Name()] = p
		e.order = append(e.order, p.Name())
	}
	return e, nil
}

// RunnerNames lists registered providers in registration order.
func (e *Executor) RunnerNames() []string {
	return append([]string(nil), e.order...)
}

// SoleRunnerName returns the single registered provider's name, and true,
// when exactly one provider is registered, and "" and false otherwise.
func (e *Executor) SoleRunnerName() (string, bool) {
	if len(e.order) == 1 {
		return e.order[0], true
	}
	return "", false
}

// RunByName looks up a registered provider by name and runs it.
func (e *Executor) RunByName(name string, args runner.RunArgs) (bool, error) {
	p, ok := e.runners[name]
	if !ok {
		return false, fmt.Errorf("executor: no runner registered with name %q", name)
	}
	return e.Run(p, args)
}

// Run drives provider through Setup, every stage it returns, and
// Cleanup. It returns whether the run succeeded overall; a non-nil error
// is returned only when Setup itself failed, mirroring a stage failure in
// that it never panics the process. Per-job failure detail from a run
// that got past Setup is available afterward via Errors().
func (e *Executor) Run(provider runner.StageProvider, args runner.RunArgs) (bool, error) {
	e.lastErrors = nil
	if err := provider.Setup(args); err != nil {
		e.log.Errorf("setup failed for runner %q: %v", provider.Name(), err)
		return false, errors.Wrapf(err, "setup failed for runner %q", provider.Name())
	}
	defer provider.Cleanup()

	runnerRoot := "root." + provider.Name()
	anyErrors := false
	var results *multierror.Error
	for idx, st := range provider.Stages() {
		st.SetLoggingInfo(runnerRoot, idx)
		st.Setup()
		if e.progress != nil {
			e.progress.StageStarted(st.Name())
		}
		stageErrored, stageErr := e.runStage(st, args.Limit)
		st.Cleanup(stageErrored)
		if e.progress != nil {
			e.progress.StageFinished(st.Name(), stageErrored)
		}
		if stageErrored {
			anyErrors = true
			results = multierror.Append(results, stageErr)
		}
		if !st.ShouldContinue(stageErrored) {
			break
		}
	}
	e.lastErrors = results.ErrorOrNil()
	return !anyErrors, nil
}

// runStage runs a single stage's jobs per its policy flags and reports
// whether any failure was observed, plus an aggregated error describing
// every job that failed.
func (e *Executor) runStage(st *stage.Stage, limit int) (bool, error) {
	it := st.Jobs(limit)

	if st.IsCanary {
		canaryJob, ok := it()
		if !ok {
			return false, nil
		}
		canaryJob.GetResult(true)
		if !canaryJob.WasSuccessful() {
			_, err := canaryJob.GetResult(false)
			return true, errors.Wrapf(err, "canary job %q failed", canaryJob.Name())
		}
	}

	var results *multierror.Error

	if st.AllowParallelExecution {
		p := pool.New(st.PoolSize)
		for {
			j, ok := it()
			if !ok {
				break
			}
			p.Add(j)
		}
		p.Run()
		for _, j := range p.Jobs() {
			if !j.WasSuccessful() {
				_, err := j.GetResult(false)
				results = multierror.Append(results, errors.Wrapf(err, "job %q failed", j.Name()))
			}
		}
		return !p.AllSucceeded(), results.ErrorOrNil()
	}

	errored := false
	for {
		j, ok := it()
		if !ok {
			break
		}
		j.GetResult(true)
		if !j.WasSuccessful() {
			errored = true
			_, err := j.GetResult(false)
			results = multierror.Append(results, errors.Wrapf(err, "job %q failed", j.Name()))
		}
	}
	return errored, results.ErrorOrNil()
}
