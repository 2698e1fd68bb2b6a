package job

import (
	"bytes"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/trivago/boerewors/common/logger"
)

// readChunkSize bounds each drain read, matching the chunking a
// cooperative scheduler needs to stay non-blocking under heavy process
// output.
const readChunkSize = 10240

// ProcessAdapter starts an external command and hands back a handle the
// scheduler can poll without blocking. The default implementation runs a
// local OS process; dockerjob.Adapter implements the same
// interface against the Docker Engine API so ProcessJob never needs to
// know which backend it is driving.
type ProcessAdapter interface {
	Start(argv []string, env []string, dir string) (ProcessHandle, error)
}

// ProcessHandle is a running (or just-started) process as seen by the
// scheduler: every method must return immediately.
type ProcessHandle interface {
	// Drain returns any output collected since the last call and clears
	// the internal buffers. Safe to call whether or not the process has
	// exited.
	Drain() (stdout, stderr []byte)
	// TryWait reports whether the process has exited. exitCode is only
	// meaningful when exited is true.
	TryWait() (exitCode int, exited bool, err error)
	// Kill forcibly terminates the process.
	Kill() error
}

// OSProcessAdapter runs commands as local OS processes via os/exec,
// draining stdout/stderr on background goroutines so the cooperative poll
// loop never blocks on pipe backpressure.
type OSProcessAdapter struct{}

func (OSProcessAdapter) Start(argv []string, env []string, dir string) (ProcessHandle, error) {
	if len(argv) == 0 {
		return nil, errors.New("process: empty argv")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = env
	cmd.Dir = dir

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "opening stdout pipe")
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrap(err, "opening stderr pipe")
	}

	h := &osProcessHandle{cmd: cmd, done: make(chan struct{})}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "starting %v", argv)
	}

	h.wg.Add(2)
	go h.drainInto(stdoutPipe, &h.stdout, &h.stdoutMu)
	go h.drainInto(stderrPipe, &h.stderr, &h.stderrMu)
	go func() {
		h.wg.Wait()
		h.waitErr = cmd.Wait()
		close(h.done)
	}()
	return h, nil
}

type osProcessHandle struct {
	cmd *exec.Cmd

	wg sync.WaitGroup

	stdoutMu sync.Mutex
	stdout   bytes.Buffer
	stderrMu sync.Mutex
	stderr   bytes.Buffer

	done    chan struct{}
	waitErr error
}

func (h *osProcessHandle) drainInto(r interface{ Read([]byte) (int, error) }, buf *bytes.Buffer, mu *sync.Mutex) {
	defer h.wg.Done()
	chunk := make([]byte, readChunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			mu.Lock()
			buf.Write(chunk[:n])
			mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (h *osProcessHandle) Drain() (stdout, stderr []byte) {
	h.stdoutMu.Lock()
	stdout = append([]byte(nil), h.stdout.Bytes()...)
	h.stdout.Reset()
	h.stdoutMu.Unlock()

	h.stderrMu.Lock()
	stderr = append([]byte(nil), h.stderr.Bytes()...)
	h.stderr.Reset()
	h.stderrMu.Unlock()
	return stdout, stderr
}

func (h *osProcessHandle) TryWait() (int, bool, error) {
	select {
	case <-h.done:
		if exitErr, ok := h.waitErr.(*exec.ExitError); ok {
			return exitErr.ExitCode(), true, nil
		}
		if h.waitErr != nil {
			return 0, true, h.waitErr
		}
		return 0, true, nil
	default:
		return 0, false, nil
	}
}

func (h *osProcessHandle) Kill() error {
	if h.cmd.Process == nil {
		return nil
	}
	return h.cmd.Process.Kill()
}

// ProcessJob wraps an external command as a cooperative Job. Unlike
// BaseJob-derived jobs it does not use the generic retry/step iterator:
// a process either runs to completion or fails, and retrying a process
// that mutated external state is the caller's decision, not this type's.
type ProcessJob struct {
	name       string
	argv       []string
	env        []string
	dir        string
	adapter    ProcessAdapter
	logFactory logger.LogFactory
	log        logger.Log

	handle      ProcessHandle
	stdout      strings.Builder
	stderr      strings.Builder
	exitCode    int
	exited      bool
	startErr    error
	result      *Result
	callback    func(*ProcessJob)
}

// NewProcessJob builds a ProcessJob. adapter may be nil, defaulting to
// OSProcessAdapter{}.
func NewProcessJob(name string, argv []string, env []string, dir string, adapter ProcessAdapter, logFactory logger.LogFactory) *ProcessJob {
	if adapter == nil {
		adapter = OSProcessAdapter{}
	}
	if logFactory == nil {
		logFactory = logger.NoOpLogFactory
	}
	return &ProcessJob{
		name:       name,
		argv:       argv,
		env:        env,
		dir:        dir,
		adapter:    adapter,
		logFactory: logFactory,
		log:        logFactory(name),
	}
}

// SetCallback registers a function invoked once, after the process
// reaches a terminal state, with the finished job.
func (p *ProcessJob) SetCallback(cb func(*ProcessJob)) { p.callback = cb }

func (p *ProcessJob) Name() string { return p.name }

// Argv returns the exact command line this job runs (or ran).
func (p *ProcessJob) Argv() []string { return append([]string(nil), p.argv...) }

func (p *ProcessJob) SetLoggingInfo(parent string, index int) {
	p.name = parent + "." + strconv.Itoa(index)
	p.log = p.logFactory(p.name)
}

func (p *ProcessJob) Start() {
	if p.handle != nil || p.result != nil {
		return
	}
	p.log.Notice("starting: ", strings.Join(p.argv, " "))
	h, err := p.adapter.Start(p.argv, p.env, p.dir)
	if err != nil {
		p.startErr = err
		p.result = resultPtr(Err(err))
		return
	}
	p.handle = h
}

func (p *ProcessJob) Poll() bool {
	if p.result != nil {
		return true
	}
	if p.handle == nil {
		p.Start()
		if p.result != nil {
			return true
		}
		return false
	}

	out, errOut := p.handle.Drain()
	p.stdout.WriteString(strings.ToValidUTF8(string(out), "�"))
	p.stderr.WriteString(strings.ToValidUTF8(string(errOut), "�"))

	code, exited, err := p.handle.TryWait()
	if !exited {
		return false
	}
	// Final drain in case output landed between the last Drain and exit.
	out, errOut = p.handle.Drain()
	p.stdout.WriteString(strings.ToValidUTF8(string(out), "�"))
	p.stderr.WriteString(strings.ToValidUTF8(string(errOut), "�"))

	p.exitCode = code
	p.exited = true
	if err != nil {
		p.result = resultPtr(Err(err))
	} else if code != 0 {
		p.result = resultPtr(Err(&ProcessError{Argv: p.argv, ExitCode: code, Stdout: p.stdout.String()}))
	} else {
		p.result = resultPtr(Ok(code))
	}
	if p.callback != nil {
		p.callback(p)
	}
	return true
}

func (p *ProcessJob) GetResult(canFail bool) (Result, error) {
	for !p.Poll() {
	}
	if p.result.Kind() == KindErr && !canFail {
		return *p.result, p.result.Error()
	}
	return *p.result, nil
}

func (p *ProcessJob) WasSuccessful() bool {
	return p.result != nil && p.result.Truthy()
}

func (p *ProcessJob) ResultKind() (Kind, bool) {
	if p.result == nil {
		return 0, false
	}
	return p.result.Kind(), true
}

// Stdout returns everything captured on stdout so far (or in total, once
// the process has exited).
func (p *ProcessJob) Stdout() string { return p.stdout.String() }

// Stderr returns everything captured on stderr so far.
func (p *ProcessJob) Stderr() string { return p.stderr.String() }

// ExitCode returns the process exit code and whether it has exited yet.
func (p *ProcessJob) ExitCode() (int, bool) { return p.exitCode, p.exited }

func resultPtr(r Result) *Result { return &r }
