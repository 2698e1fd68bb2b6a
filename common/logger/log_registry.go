package logger

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const defaultLogLevel = NoticeLevel

var levelMap = map[string]logrus.Level{
	"trace":   logrus.TraceLevel,
	"debug":   logrus.DebugLevel,
	"info":    logrus.InfoLevel,
	"notice":  NoticeLevel,
	"warning": logrus.WarnLevel,
	"error":   logrus.ErrorLevel,
	"fatal":   logrus.FatalLevel,
	"panic":   logrus.PanicLevel,
}

type LogLevelConfig string

// LogRegistry tracks the configured log level per logger name and the
// concrete logrus.Logger instances that were created for each name.
type LogRegistry struct {
	loggerByName map[string]*logrus.Logger
	levelByName  map[string]logrus.Level
	mu           sync.Mutex
}

// ListLogLevels returns a comma separated string listing valid log levels.
func ListLogLevels() string {
	str := ""
	for k := range levelMap {
		if str != "" {
			str += ", "
		}
		str += fmt.Sprintf("%q", k)
	}
	return str
}

func NewLogRegistry(config LogLevelConfig) (*LogRegistry, error) {
	r := &LogRegistry{
		loggerByName: make(map[string]*logrus.Logger),
		levelByName:  make(map[string]logrus.Level),
	}
	if config != "" {
		pairs := strings.Split(string(config), ",")
		for _, pair := range pairs {
			parts := strings.Split(pair, "=")
			if len(parts) != 2 {
				return nil, fmt.Errorf("invalid log level format: %v", pair)
			}
			level, ok := levelMap[parts[1]]
			if !ok {
				return nil, fmt.Errorf("invalid log level for %q: %v", parts[0], parts[1])
			}
			r.levelByName[parts[0]] = level
		}
	}
	return r, nil
}

// NewLogRegistryFromVerbosity builds a registry with a single root level
// derived from a repeatable -v/--verbose count: each occurrence reveals
// one more standard level below the default NOTICE threshold — the first
// reveals INFO, the second DEBUG — and any further occurrence floors at
// TRACE, the most verbose level this package defines.
func NewLogRegistryFromVerbosity(verbose int) *LogRegistry {
	var level logrus.Level
	switch {
	case verbose <= 0:
		level = NoticeLevel
	case verbose == 1:
		level = logrus.InfoLevel
	case verbose == 2:
		level = logrus.DebugLevel
	default:
		level = logrus.TraceLevel
	}
	r := &LogRegistry{
		loggerByName: make(map[string]*logrus.Logger),
		levelByName:  make(map[string]logrus.Level),
	}
	r.levelByName[""] = level
	return r
}

// GetLogLevel returns the configured level for name, falling back to the
// root ("") level if set, else the package default.
func (r *LogRegistry) GetLogLevel(name string) logrus.Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	if level, ok := r.levelByName[name]; ok {
		return level
	}
	if level, ok := r.levelByName[""]; ok {
		return level
	}
	return defaultLogLevel
}

// RegisterLogger records the concrete logger created for name.
func (r *LogRegistry) RegisterLogger(name string, logger *logrus.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loggerByName[name] = logger
}
