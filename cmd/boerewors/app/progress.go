package app

import (
	"fmt"
	"sync"

	"github.com/chelnak/ysmrr"
)

// spinnerProgress shows one spinner per stage, grounded on the spinner
// manager bb uses to track build jobs: a name to spinner map guarded by a
// mutex, started once up front and stopped once the run concludes.
type spinnerProgress struct {
	manager ysmrr.SpinnerManager

	mu       sync.Mutex
	spinners map[string]*ysmrr.Spinner
}

func newSpinnerProgress() *spinnerProgress {
	return &spinnerProgress{
		manager:  ysmrr.NewSpinnerManager(),
		spinners: map[string]*ysmrr.Spinner{},
	}
}

func (p *spinnerProgress) Start() { p.manager.Start() }
func (p *spinnerProgress) Stop()  { p.manager.Stop() }

func (p *spinnerProgress) StageStarted(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	spinner := p.manager.AddSpinner(fmt.Sprintf("%s: running", name))
	p.spinners[name] = spinner
}

func (p *spinnerProgress) StageFinished(name string, errored bool) {
	p.mu.Lock()
	spinner, ok := p.spinners[name]
	p.mu.Unlock()
	if !ok {
		return
	}
	if errored {
		spinner.UpdateMessage(fmt.Sprintf("%s: failed", name))
		spinner.Error()
		return
	}
	spinner.UpdateMessage(fmt.Sprintf("%s: done", name))
	spinner.Complete()
}
