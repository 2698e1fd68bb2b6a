package app

import (
	"github.com/google/uuid"

	"github.com/trivago/boerewors/common/logger"
	"github.com/trivago/boerewors/executor"
	"github.com/trivago/boerewors/hclpipeline"
	"github.com/trivago/boerewors/job"
	"github.com/trivago/boerewors/report"
	"github.com/trivago/boerewors/runner"
	"github.com/trivago/boerewors/statusserver"
)

// LoadPipeline parses the configured HCL pipeline file into a
// runner.StageProvider, ready to hand to an Executor.
func LoadPipeline(config *Config, logFactory logger.LogFactory) (runner.StageProvider, error) {
	return hclpipeline.Load(config.PipelineFile, config.WorkDir, job.OSProcessAdapter{}, logFactory)
}

// NewStatusServer builds the status server when --status-addr was given,
// and nil otherwise so App.Run can skip serving entirely.
func NewStatusServer(config *Config) *statusserver.Server {
	if config.StatusAddr == "" {
		return nil
	}
	return statusserver.New()
}

// App ties a parsed pipeline, an executor and the optional status server
// together into one runnable unit.
type App struct {
	runID    string
	config   *Config
	executor *executor.Executor
	provider runner.StageProvider
	status   *statusserver.Server
}

// newApp wires an App from its already-constructed dependencies. It is
// unexported because the public entry point is the generated New in
// wire_gen.go, which resolves those dependencies from a Config.
func newApp(config *Config, provider runner.StageProvider, logFactory logger.LogFactory, status *statusserver.Server) (*App, error) {
	ex, err := executor.New("boerewors", logFactory, provider)
	if err != nil {
		return nil, err
	}
	return &App{
		runID:    uuid.New().String(),
		config:   config,
		executor: ex,
		provider: provider,
		status:   status,
	}, nil
}

// runProgress fans a stage start/finish notification out to both the
// terminal spinner and, when configured, the status server's listeners.
type runProgress struct {
	runID      string
	runnerName string
	spinner    *spinnerProgress
	status     *statusserver.Server
}

func (p *runProgress) StageStarted(name string) {
	p.spinner.StageStarted(name)
	p.publish(name)
}

func (p *runProgress) StageFinished(name string, errored bool) {
	p.spinner.StageFinished(name, errored)
	p.publish(name)
}

func (p *runProgress) publish(stageName string) {
	if p.status == nil {
		return
	}
	p.status.Publish(statusserver.Snapshot{
		RunID:  p.runID,
		Runner: p.runnerName,
		Stage:  stageName,
	})
}

// Run executes the pipeline to completion, serving status updates if
// configured and writing a report file afterward if one was requested.
// It returns whether every stage succeeded.
func (a *App) Run() (bool, error) {
	if a.status != nil {
		go a.status.ListenAndServe(a.config.StatusAddr)
	}

	spinner := newSpinnerProgress()
	spinner.Start()
	defer spinner.Stop()

	a.executor.SetProgress(&runProgress{
		runID:      a.runID,
		runnerName: a.provider.Name(),
		spinner:    spinner,
		status:     a.status,
	})

	ok, err := a.executor.RunByName(a.provider.Name(), runner.RunArgs{
		Limit:   a.config.Limit,
		Verbose: a.config.Verbose,
	})
	if err != nil {
		return false, err
	}

	if a.config.ReportFile != "" {
		summary := report.FromStages(a.runID, a.provider.Name(), ok, a.provider.Stages())
		if err := report.Write(a.config.ReportFile, summary); err != nil {
			return ok, err
		}
	}
	return ok, nil
}
