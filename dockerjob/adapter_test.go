package dockerjob

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trivago/boerewors/job"
)

// requireDocker skips the test unless a Docker daemon is actually
// reachable; these are integration tests, not unit tests, and the
// surrounding suite must stay green on machines without Docker installed.
func requireDocker(t *testing.T) *Adapter {
	t.Helper()
	a, err := New("busybox:latest")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := a.cli.Ping(ctx); err != nil {
		t.Skipf("docker daemon unreachable: %v", err)
	}
	return a
}

func TestDockerProcessAdapterRunsCommand(t *testing.T) {
	adapter := requireDocker(t)
	p := job.NewProcessJob("root.docker", []string{"echo", "hi"}, nil, "", adapter, nil)
	res, err := p.GetResult(false)
	require.NoError(t, err)
	require.Equal(t, 0, res.Value())
	require.Contains(t, p.Stdout(), "hi")
}
