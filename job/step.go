package job

// Step is one element produced while a job's body runs. At most one of
// Job or Result is set; a Step with neither set is a bare progress marker
// (the Go analogue of yielding a plain value that is neither a Result nor
// a sub-job).
type Step struct {
	// Job, if non-nil, delegates control to a nested job. The parent polls
	// it to completion (one poll per parent tick) before resuming its own
	// producer.
	Job Job
	// Result, if non-nil, ends the current attempt with this outcome.
	Result *Result
}

// SubJob builds a Step that delegates to a nested job.
func SubJob(j Job) Step { return Step{Job: j} }

// Terminal builds a Step that ends the attempt with r.
func Terminal(r Result) Step { return Step{Result: &r} }

// StepFunc is produced fresh for every retry attempt and invoked once per
// tick to advance that attempt. It returns:
//   - (step, nil, true)  — step produced normally, more may follow
//   - (Step{}, err, false) — the attempt failed with err (the Go analogue
//     of an exception escaping the job body)
//   - (Step{}, nil, false) — the attempt's body is exhausted; if no
//     Result step was ever produced this counts as an unsuccessful
//     attempt (the empty-iterator edge case)
type StepFunc func() (Step, error, bool)

// ProduceFunc builds a fresh StepFunc for the given attempt number
// (1-based). Concrete job types supply one of these; BaseJob calls it
// once per retry so that per-attempt state never leaks across retries.
type ProduceFunc func(attempt int) StepFunc
