package app

import (
	"github.com/trivago/boerewors/common/logger"
)

// LogSafeFlags lists flags whose values are safe to echo back in a
// startup banner (no secrets, no paths that vary per-machine in a way
// worth hiding).
var LogSafeFlags = []string{
	"pipeline",
	"limit",
	"log_levels",
	"status_addr",
}

// Config holds everything a run needs. Its fields are bound directly to
// cobra flags in cmd/boerewors/commands, so building one never requires
// going through a parsed os.Args.
type Config struct {
	PipelineFile string
	WorkDir      string
	Limit        int
	Verbose      int
	ReportFile   string
	StatusAddr   string
	LogLevels    logger.LogLevelConfig
}
