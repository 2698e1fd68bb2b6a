// Package runner defines the collaborator interface an Executor drives:
// something that knows how to set itself up, produce an ordered list of
// stages, and tear itself down once every stage has run.
package runner

import "github.com/trivago/boerewors/stage"

// RunArgs carries the parsed CLI arguments a StageProvider's Setup may
// need, plus the limit/verbosity knobs the executor itself consumes.
type RunArgs struct {
	// Limit caps how many jobs are pulled from each stage, 0 meaning
	// unlimited.
	Limit int
	// Verbose is the repeat count of -v/--verbose on the command line.
	Verbose int
	// Extra carries provider-specific flags, keyed by flag name.
	Extra map[string]string
}

// StageProvider is the external collaborator an Executor runs. An
// Executor can register more than one StageProvider and run any of them
// by name. The cmd/boerewors CLI registers exactly one, loaded from the
// HCL pipeline file, and has no per-provider subcommands.
type StageProvider interface {
	// Name identifies this provider for Executor.RunByName and forms the
	// root of the hierarchical logger name tree.
	Name() string
	// Setup prepares the provider to run, returning an error if it
	// cannot proceed (e.g. missing configuration). Setup failure is
	// reported the same way a stage failure is: the overall run fails,
	// nothing panics.
	Setup(args RunArgs) error
	// Stages returns the ordered list of stages to run. Called once per
	// run, after a successful Setup.
	Stages() []*stage.Stage
	// Cleanup runs after every stage has finished (or the run was
	// aborted partway through), regardless of outcome.
	Cleanup()
}
