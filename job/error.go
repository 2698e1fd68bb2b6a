package job

import (
	"fmt"
	"strings"
)

// ProcessError is returned by a ProcessJob that exits non-zero. It carries
// enough context (the exact command line, the exit code, and whatever
// stdout was captured) for a caller to report a useful failure without
// re-running the command.
type ProcessError struct {
	Argv     []string
	ExitCode int
	Stdout   string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("command %q exited with status %d", strings.Join(e.Argv, " "), e.ExitCode)
}
