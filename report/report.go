// Package report writes an end-of-run YAML summary of how every stage's
// jobs concluded. It is a one-way process artifact: nothing in this
// module ever reads a report back in, so producing one never contradicts
// running without persisted state across invocations.
package report

import (
	"os"

	"github.com/fatih/structs"
	"gopkg.in/yaml.v2"

	"github.com/trivago/boerewors/stage"
)

// StageSummary is one stage's tallied outcome. Skipped is counted apart
// from Succeeded, even though a Skip result counts as success for the
// executor's continue/stop decision.
type StageSummary struct {
	Name      string `structs:"name"`
	Succeeded int    `structs:"succeeded"`
	Skipped   int    `structs:"skipped"`
	Failed    int    `structs:"failed"`
}

// Summary is the whole run's outcome, one entry per stage in run order.
type Summary struct {
	RunID   string         `structs:"run_id"`
	Runner  string         `structs:"runner"`
	Success bool           `structs:"success"`
	Stages  []StageSummary `structs:"stages"`
}

// FromStages builds a Summary from the stages an executor ran, in order.
func FromStages(runID, runnerName string, success bool, stages []*stage.Stage) Summary {
	s := Summary{RunID: runID, Runner: runnerName, Success: success}
	for _, st := range stages {
		sum := st.CollectSummary()
		s.Stages = append(s.Stages, StageSummary{
			Name:      st.Name(),
			Succeeded: sum.Succeeded,
			Skipped:   sum.Skipped,
			Failed:    sum.Failed,
		})
	}
	return s
}

// Write renders summary as YAML to path. Flattening through
// fatih/structs first (rather than relying on yaml struct tags directly)
// keeps the on-disk shape decoupled from this package's internal types.
func Write(path string, summary Summary) error {
	data, err := yaml.Marshal(structs.Map(summary))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
