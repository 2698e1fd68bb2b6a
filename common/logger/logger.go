package logger

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// NoticeLevel sits between Info and Warning, mirroring the severity a
// pipeline uses to announce stage/job lifecycle transitions without the
// connotation of a warning. Its numeric value only tags messages and
// formatter lookups; logrus's own level filtering never sees it directly
// (see severity/enabled below), since logrus's native scale has no
// integer between WarnLevel and InfoLevel to place it at.
const NoticeLevel logrus.Level = 25

// severity ranks every level this package emits at, from least to most
// severe, independent of logrus's own fixed native values. This is what
// actually decides whether a call reaches logrus at all: logrus's own
// Logger.level is always left permissive (see MakeLogrusLogFactory*)
// since its built-in comparison can't express NOTICE sitting strictly
// between INFO and WARNING.
var severity = map[logrus.Level]int{
	logrus.TraceLevel: 0,
	logrus.DebugLevel: 1,
	logrus.InfoLevel:  2,
	NoticeLevel:       3,
	logrus.WarnLevel:  4,
	logrus.ErrorLevel: 5,
	logrus.FatalLevel: 6,
	logrus.PanicLevel: 7,
}

// enabled reports whether a message at level should be emitted given a
// configured threshold, both expressed as one of this package's level
// constants.
func enabled(threshold, level logrus.Level) bool {
	return severity[level] >= severity[threshold]
}

// Log is the logging surface every package in this module talks to. It
// never exposes the underlying logrus.Entry so that call sites can't reach
// past the hierarchical-name and level-registry conventions below.
type Log interface {
	WithField(name string, value interface{}) Log
	WithFields(fields Fields) Log
	Trace(args ...interface{})
	Tracef(msg string, args ...interface{})
	Debug(args ...interface{})
	Debugf(msg string, args ...interface{})
	Info(args ...interface{})
	Infof(msg string, args ...interface{})
	Notice(args ...interface{})
	Noticef(msg string, args ...interface{})
	Warn(args ...interface{})
	Warnf(msg string, args ...interface{})
	Error(args ...interface{})
	Errorf(msg string, args ...interface{})
}

// Fields is a set of keys/values to include in a structured log message.
type Fields map[string]interface{}

type LogFilePath string

// LogFactory produces a logger named for the given path. Names are always
// explicit path strings built by the caller (e.g. "root.build.compile.2"),
// never inferred by walking an object graph.
type LogFactory func(name string) Log

// LogrusLogger is a Log implementation backed by logrus. threshold is the
// configured level for this logger's name; every method below gates on
// it itself rather than leaning on logrus's own (too coarse) SetLevel.
type LogrusLogger struct {
	*logrus.Entry
	threshold logrus.Level
}

func (l *LogrusLogger) WithField(name string, value interface{}) Log {
	return &LogrusLogger{Entry: l.Entry.WithField(name, value), threshold: l.threshold}
}

func (l *LogrusLogger) WithFields(fields Fields) Log {
	return &LogrusLogger{Entry: l.Entry.WithFields(logrus.Fields(fields)), threshold: l.threshold}
}

func (l *LogrusLogger) Trace(args ...interface{}) {
	if enabled(l.threshold, logrus.TraceLevel) {
		l.Entry.Trace(args...)
	}
}

func (l *LogrusLogger) Tracef(msg string, args ...interface{}) {
	if enabled(l.threshold, logrus.TraceLevel) {
		l.Entry.Tracef(msg, args...)
	}
}

func (l *LogrusLogger) Debug(args ...interface{}) {
	if enabled(l.threshold, logrus.DebugLevel) {
		l.Entry.Debug(args...)
	}
}

func (l *LogrusLogger) Debugf(msg string, args ...interface{}) {
	if enabled(l.threshold, logrus.DebugLevel) {
		l.Entry.Debugf(msg, args...)
	}
}

func (l *LogrusLogger) Info(args ...interface{}) {
	if enabled(l.threshold, logrus.InfoLevel) {
		l.Entry.Info(args...)
	}
}

func (l *LogrusLogger) Infof(msg string, args ...interface{}) {
	if enabled(l.threshold, logrus.InfoLevel) {
		l.Entry.Infof(msg, args...)
	}
}

func (l *LogrusLogger) Notice(args ...interface{}) {
	if enabled(l.threshold, NoticeLevel) {
		l.Entry.Log(NoticeLevel, args...)
	}
}

func (l *LogrusLogger) Noticef(msg string, args ...interface{}) {
	if enabled(l.threshold, NoticeLevel) {
		l.Entry.Logf(NoticeLevel, msg, args...)
	}
}

func (l *LogrusLogger) Warn(args ...interface{}) {
	if enabled(l.threshold, logrus.WarnLevel) {
		l.Entry.Warn(args...)
	}
}

func (l *LogrusLogger) Warnf(msg string, args ...interface{}) {
	if enabled(l.threshold, logrus.WarnLevel) {
		l.Entry.Warnf(msg, args...)
	}
}

func (l *LogrusLogger) Error(args ...interface{}) {
	if enabled(l.threshold, logrus.ErrorLevel) {
		l.Entry.Error(args...)
	}
}

func (l *LogrusLogger) Errorf(msg string, args ...interface{}) {
	if enabled(l.threshold, logrus.ErrorLevel) {
		l.Entry.Errorf(msg, args...)
	}
}

// pipelineFormatter renders "LEVEL:\t[name]\tmessage", with any extra
// fields appended as key=value pairs. Colours the level token when writing
// to a terminal.
type pipelineFormatter struct {
	colors bool
}

var levelNames = map[logrus.Level]string{
	logrus.TraceLevel: "TRACE",
	logrus.DebugLevel: "DEBUG",
	logrus.InfoLevel:  "INFO",
	NoticeLevel:       "NOTICE",
	logrus.WarnLevel:  "WARNING",
	logrus.ErrorLevel: "ERROR",
	logrus.FatalLevel: "FATAL",
	logrus.PanicLevel: "PANIC",
}

var levelColors = map[logrus.Level]int{
	logrus.TraceLevel: 37,
	logrus.DebugLevel: 36,
	logrus.InfoLevel:  34,
	NoticeLevel:       32,
	logrus.WarnLevel:  33,
	logrus.ErrorLevel: 31,
	logrus.FatalLevel: 31,
	logrus.PanicLevel: 31,
}

func (f *pipelineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	name, _ := entry.Data["name"].(string)
	levelName, ok := levelNames[entry.Level]
	if !ok {
		levelName = entry.Level.String()
	}
	levelToken := levelName
	if f.colors {
		levelToken = fmt.Sprintf("\x1b[%dm%s\x1b[0m", levelColors[entry.Level], levelName)
	}
	line := fmt.Sprintf("%s:\t[%s]\t%s", levelToken, name, entry.Message)
	for k, v := range entry.Data {
		if k == "name" {
			continue
		}
		line += fmt.Sprintf("\t%s=%v", k, v)
	}
	return []byte(line + "\n"), nil
}

// MakeLogrusLogFactoryStdOut creates a LogFactory that writes to stdout,
// consulting logRegistry for the per-name level and colouring output when
// stdout is a terminal.
func MakeLogrusLogFactoryStdOut(logRegistry *LogRegistry) LogFactory {
	return func(name string) Log {
		log := logrus.New()
		log.SetLevel(NoticeLevel)
		log.SetOutput(os.Stdout)
		log.SetFormatter(&pipelineFormatter{colors: isatty.IsTerminal(os.Stdout.Fd())})
		entry := log.WithField("name", name)
		logRegistry.RegisterLogger(name, log)
		return &LogrusLogger{Entry: entry, threshold: logRegistry.GetLogLevel(name)}
	}
}

// MakeLogrusLogFactoryToFile is the same as MakeLogrusLogFactoryStdOut but
// writes to the given file instead, never colouring output.
func MakeLogrusLogFactoryToFile(logRegistry *LogRegistry, logFile LogFilePath) (LogFactory, error) {
	file, err := os.OpenFile(string(logFile), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening log file: %s", logFile)
	}
	return func(name string) Log {
		log := logrus.New()
		log.SetLevel(NoticeLevel)
		log.SetOutput(file)
		log.SetFormatter(&pipelineFormatter{})
		entry := log.WithField("name", name)
		logRegistry.RegisterLogger(name, log)
		return &LogrusLogger{Entry: entry, threshold: logRegistry.GetLogLevel(name)}
	}, nil
}

// NoOpLog implements Log without performing any logging.
type NoOpLog struct{}

func NewNoOpLog() *NoOpLog { return &NoOpLog{} }

// NoOpLogFactory is a LogFactory that always returns a NoOpLog.
func NoOpLogFactory(name string) Log { return NewNoOpLog() }

func (l *NoOpLog) WithField(name string, value interface{}) Log { return l }
func (l *NoOpLog) WithFields(fields Fields) Log                 { return l }
func (l *NoOpLog) Trace(args ...interface{})                    {}
func (l *NoOpLog) Tracef(msg string, args ...interface{})       {}
func (l *NoOpLog) Debug(args ...interface{})                    {}
func (l *NoOpLog) Debugf(msg string, args ...interface{})       {}
func (l *NoOpLog) Info(args ...interface{})                     {}
func (l *NoOpLog) Infof(msg string, args ...interface{})        {}
func (l *NoOpLog) Notice(args ...interface{})                   {}
func (l *NoOpLog) Noticef(msg string, args ...interface{})      {}
func (l *NoOpLog) Warn(args ...interface{})                     {}
func (l *NoOpLog) Warnf(msg string, args ...interface{})        {}
func (l *NoOpLog) Error(args ...interface{})                    {}
func (l *NoOpLog) Errorf(msg string, args ...interface{})       {}
