package job

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// countingStep yields `pending` plain progress steps before a terminal
// Result, never failing. It proves a multi-tick attempt drains in exactly
// the expected number of ticks.
func countingStep(pending int, result Result) ProduceFunc {
	return func(attempt int) StepFunc {
		remaining := pending
		return func() (Step, error, bool) {
			if remaining > 0 {
				remaining--
				return Step{}, nil, true
			}
			return Terminal(result), nil, true
		}
	}
}

func TestBaseJobSimpleSuccess(t *testing.T) {
	j := NewFuncJob("root.test", 1, countingStep(2, Ok("done")), nil)
	require.False(t, j.Poll())
	require.False(t, j.Poll())
	require.True(t, j.Poll())
	require.True(t, j.WasSuccessful())
	res, err := j.GetResult(false)
	require.NoError(t, err)
	require.Equal(t, "done", res.Value())
}

func TestBaseJobRetriesThenSucceeds(t *testing.T) {
	calls := 0
	produce := func(attempt int) StepFunc {
		calls++
		thisAttempt := attempt
		return func() (Step, error, bool) {
			if thisAttempt < 3 {
				return Step{}, errors.New("transient"), false
			}
			return Terminal(Ok("ok")), nil, true
		}
	}
	j := NewFuncJob("root.retry", 5, produce, nil)
	res, err := j.GetResult(false)
	require.NoError(t, err)
	require.Equal(t, "ok", res.Value())
	require.Equal(t, 3, calls)
}

func TestBaseJobExplicitErrResultRetriesLikeAnyOtherFailedAttempt(t *testing.T) {
	wantErr := errors.New("x")
	entries := 0
	produce := func(attempt int) StepFunc {
		entries++
		thisAttempt := attempt
		return func() (Step, error, bool) {
			if thisAttempt < 2 {
				return Terminal(Err(wantErr)), nil, true
			}
			return Terminal(Ok(nil)), nil, true
		}
	}
	j := NewFuncJob("root.err-retry", 3, produce, nil)
	res, err := j.GetResult(false)
	require.NoError(t, err)
	require.NoError(t, res.Error())
	require.True(t, j.WasSuccessful())
	require.Equal(t, 2, entries, "the iterator must be entered once per attempt, including the one that returned an Err result")
}

func TestBaseJobExhaustsRetriesAndFails(t *testing.T) {
	wantErr := errors.New("boom")
	produce := func(attempt int) StepFunc {
		return func() (Step, error, bool) {
			return Step{}, wantErr, false
		}
	}
	j := NewFuncJob("root.fail", 3, produce, nil)
	_, err := j.GetResult(false)
	require.ErrorIs(t, err, wantErr)
	require.False(t, j.WasSuccessful())

	j2 := NewFuncJob("root.fail2", 3, produce, nil)
	res, err := j2.GetResult(true)
	require.NoError(t, err)
	require.Equal(t, Result{}, res)
}

func TestBaseJobExhaustsRetriesOnRepeatedErrResult(t *testing.T) {
	wantErr := errors.New("always fails")
	entries := 0
	produce := func(attempt int) StepFunc {
		entries++
		return func() (Step, error, bool) {
			return Terminal(Err(wantErr)), nil, true
		}
	}
	j := NewFuncJob("root.err-fail", 3, produce, nil)
	_, err := j.GetResult(false)
	require.ErrorIs(t, err, wantErr)
	require.False(t, j.WasSuccessful())
	require.Equal(t, 3, entries, "every attempt's Err result must consume a retry, not terminate immediately")
}

func TestBaseJobEmptyIteratorIsUnsuccessfulAttempt(t *testing.T) {
	calls := 0
	produce := func(attempt int) StepFunc {
		calls++
		return func() (Step, error, bool) {
			return Step{}, nil, false // exhausted immediately, no Result ever produced
		}
	}
	j := NewFuncJob("root.empty", 2, produce, nil)
	_, err := j.GetResult(false)
	require.Error(t, err)
	require.Equal(t, 2, calls, "an empty iterator should still be retried like any other failed attempt")
}

func TestBaseJobExplicitStartThenPollMatchesColdPoll(t *testing.T) {
	cold := NewFuncJob("root.cold", 1, countingStep(1, Ok("v")), nil)
	require.False(t, cold.Poll())
	require.True(t, cold.Poll())

	warm := NewFuncJob("root.warm", 1, countingStep(1, Ok("v")), nil)
	warm.Start()
	require.False(t, warm.Poll())
	require.True(t, warm.Poll())
}

func TestBaseJobSubJobComposition(t *testing.T) {
	child := NewFuncJob("child", 1, countingStep(1, Ok("child-done")), nil)
	produce := func(attempt int) StepFunc {
		yieldedChild := false
		return func() (Step, error, bool) {
			if !yieldedChild {
				yieldedChild = true
				return SubJob(child), nil, true
			}
			return Terminal(Ok("parent-done")), nil, true
		}
	}
	parent := NewFuncJob("root.parent", 1, produce, nil)

	// tick 1: parent produces the sub-job step, delegates Start to it.
	require.False(t, parent.Poll())
	// tick 2: parent polls the child; child needs one more tick to finish.
	require.False(t, parent.Poll())
	// tick 3: child is terminal, parent advances to its own terminal step.
	require.True(t, parent.Poll())
	require.True(t, parent.WasSuccessful())
}

func TestSetLoggingInfoBuildsHierarchicalName(t *testing.T) {
	j := NewFuncJob("root", 1, countingStep(0, Ok(nil)), nil)
	j.SetLoggingInfo("root.build", 3)
	require.Equal(t, "root.build.3", j.Name())
}
