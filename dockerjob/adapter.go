// Package dockerjob implements job.ProcessAdapter against the Docker
// Engine API, so a ProcessJob can run its command inside a container
// instead of as a local OS process without any other code needing to
// know the difference.
package dockerjob

import (
	"bytes"
	"context"
	"sync"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/pkg/errors"
	"github.com/trivago/boerewors/job"
)

// Adapter runs commands in ephemeral containers of a fixed image.
type Adapter struct {
	cli   *client.Client
	image string
}

// New builds a Docker-backed ProcessAdapter running every command in a
// fresh container of image, using the Docker client configured from the
// environment (DOCKER_HOST and friends), matching how the docker CLI
// itself picks a daemon.
func New(image string) (*Adapter, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, errors.Wrap(err, "dockerjob: creating docker client")
	}
	return &Adapter{cli: cli, image: image}, nil
}

func (a *Adapter) Start(argv []string, env []string, dir string) (job.ProcessHandle, error) {
	ctx := context.Background()
	resp, err := a.cli.ContainerCreate(ctx, &container.Config{
		Image:      a.image,
		Cmd:        argv,
		Env:        env,
		WorkingDir: dir,
		Tty:        false,
	}, nil, nil, nil, "")
	if err != nil {
		return nil, errors.Wrap(err, "dockerjob: creating container")
	}
	if err := a.cli.ContainerStart(ctx, resp.ID, types.ContainerStartOptions{}); err != nil {
		return nil, errors.Wrap(err, "dockerjob: starting container")
	}

	h := &handle{cli: a.cli, containerID: resp.ID, done: make(chan struct{})}
	go h.waitAndDrain(ctx)
	return h, nil
}

type handle struct {
	cli         *client.Client
	containerID string

	mu     sync.Mutex
	stdout bytes.Buffer
	stderr bytes.Buffer

	done     chan struct{}
	exitCode int
	waitErr  error
}

func (h *handle) waitAndDrain(ctx context.Context) {
	defer close(h.done)

	logs, err := h.cli.ContainerLogs(ctx, h.containerID, types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err == nil {
		defer logs.Close()
		h.mu.Lock()
		_, _ = stdcopy.StdCopy(&h.stdout, &h.stderr, logs)
		h.mu.Unlock()
	}

	statusCh, errCh := h.cli.ContainerWait(ctx, h.containerID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		h.waitErr = err
	case status := <-statusCh:
		h.exitCode = int(status.StatusCode)
	}
	_ = h.cli.ContainerRemove(ctx, h.containerID, types.ContainerRemoveOptions{Force: true})
}

func (h *handle) Drain() (stdout, stderr []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	stdout = append([]byte(nil), h.stdout.Bytes()...)
	h.stdout.Reset()
	stderr = append([]byte(nil), h.stderr.Bytes()...)
	h.stderr.Reset()
	return stdout, stderr
}

func (h *handle) TryWait() (int, bool, error) {
	select {
	case <-h.done:
		return h.exitCode, true, h.waitErr
	default:
		return 0, false, nil
	}
}

func (h *handle) Kill() error {
	return h.cli.ContainerKill(context.Background(), h.containerID, "SIGKILL")
}
