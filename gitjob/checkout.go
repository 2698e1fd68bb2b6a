// Package gitjob provides a cooperative Job that checks out a git ref into
// a working directory using go-git, so a pipeline stage can fetch source
// code without shelling out to the git binary.
package gitjob

import (
	"context"
	"fmt"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/trivago/boerewors/common/logger"
	"github.com/trivago/boerewors/job"
)

// CheckoutSpec describes what to clone and where.
type CheckoutSpec struct {
	URL string
	Ref string // branch, tag, or full ref name; "" defaults to the remote's HEAD
	Dir string
}

// CheckoutJob clones spec.URL at spec.Ref into spec.Dir. Cloning runs on a
// background goroutine (go-git's Clone is blocking and has no
// cooperative-poll API of its own) so that Poll never blocks the
// scheduler; this is the same "drain in the background, poll a channel in
// front" shape job.OSProcessAdapter uses for subprocess output.
func CheckoutJob(name string, spec CheckoutSpec, logFactory logger.LogFactory) job.Job {
	return job.NewFuncJob(name, 1, func(attempt int) job.StepFunc {
		done := make(chan error, 1)
		started := false
		return func() (job.Step, error, bool) {
			if !started {
				started = true
				go func() {
					done <- clone(spec)
				}()
				return job.Step{}, nil, true
			}
			select {
			case err := <-done:
				if err != nil {
					return job.Step{}, err, false
				}
				return job.Terminal(job.Ok(spec.Dir)), nil, true
			default:
				return job.Step{}, nil, true
			}
		}
	}, logFactory)
}

func clone(spec CheckoutSpec) error {
	opts := &git.CloneOptions{URL: spec.URL}
	if spec.Ref != "" {
		opts.ReferenceName = plumbing.ReferenceName(spec.Ref)
	}
	_, err := git.PlainCloneContext(context.Background(), spec.Dir, false, opts)
	if err != nil {
		return fmt.Errorf("gitjob: cloning %s: %w", spec.URL, err)
	}
	return nil
}
