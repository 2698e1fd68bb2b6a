package job

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProcessJobCapturesStdoutOnSuccess(t *testing.T) {
	p := NewProcessJob("root.echo", []string{"echo", "hello"}, nil, "", nil, nil)
	res, err := p.GetResult(false)
	require.NoError(t, err)
	require.True(t, p.WasSuccessful())
	require.Equal(t, 0, res.Value())
	require.Equal(t, "hello\n", p.Stdout())
	code, exited := p.ExitCode()
	require.True(t, exited)
	require.Equal(t, 0, code)
}

func TestProcessJobFailingCommandReturnsProcessError(t *testing.T) {
	p := NewProcessJob("root.false", []string{"false"}, nil, "", nil, nil)
	_, err := p.GetResult(false)
	require.Error(t, err)

	var procErr *ProcessError
	require.ErrorAs(t, err, &procErr)
	require.NotEqual(t, 0, procErr.ExitCode)
	require.False(t, p.WasSuccessful())
}

func TestProcessJobCanFailSuppressesError(t *testing.T) {
	p := NewProcessJob("root.false", []string{"false"}, nil, "", nil, nil)
	_, err := p.GetResult(true)
	require.NoError(t, err)
	require.False(t, p.WasSuccessful())
}

func TestProcessJobBeforeStartIsNotSuccessful(t *testing.T) {
	p := NewProcessJob("root.echo", []string{"echo", "lol"}, nil, "", nil, nil)
	require.False(t, p.WasSuccessful())
}

func TestProcessJobPollBusyLoop(t *testing.T) {
	p := NewProcessJob("root.echo", []string{"echo", "lol"}, nil, "", nil, nil)
	for !p.Poll() {
	}
	require.True(t, p.WasSuccessful())
}

func TestProcessJobHugeOutputDoesNotDeadlock(t *testing.T) {
	// A command producing far more output than the drain chunk size must
	// still complete: the draining goroutines must never block on pipe
	// backpressure while the cooperative poll loop is ticking.
	p := NewProcessJob("root.bigoutput", []string{"bash", "-c", "for i in $(seq 1 10000); do echo line-$i; done"}, nil, "", nil, nil)
	ticks := 0
	for !p.Poll() {
		ticks++
		if ticks > 1_000_000 {
			t.Fatal("process job appears to have deadlocked")
		}
	}
	require.True(t, p.WasSuccessful())
	require.Contains(t, p.Stdout(), "line-10000")
}

func TestProcessJobSetCallback(t *testing.T) {
	var called *ProcessJob
	p := NewProcessJob("root.echo", []string{"echo", "hi"}, nil, "", nil, nil)
	p.SetCallback(func(finished *ProcessJob) { called = finished })
	_, err := p.GetResult(false)
	require.NoError(t, err)
	require.Same(t, p, called)
}
