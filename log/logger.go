package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level logging.Level

// The levels that can be passed to the SetLevel function.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

// The logger format
var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

// File sinks do not get terminal color codes.
var fileFormat = logging.MustStringFormatter(
	`[%{time:2006-01-02 15:04:05.000}] [%{module}] [%{level}] %{message}`,
)

var (
	// The internal leveled logger backend
	leveledBackend logging.LeveledBackend

	// The console sink and an optional rotating file sink.
	consoleSink io.Writer
	fileSink    *lumberjack.Logger

	currentLevel = Notice
)

// The logger interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// Create a new named logger.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// Override the console output sink.
func SetSink(sink io.Writer) {
	consoleSink = sink
	rebuildBackend()
}

// Tee log output into a size-rotated log file. Passing an empty path closes
// and detaches any previously configured file sink.
func SetFileSink(path string, maxSizeMB, maxBackups int) error {
	if fileSink != nil {
		if err := fileSink.Close(); err != nil {
			return fmt.Errorf("log: closing previous log file: %w", err)
		}
		fileSink = nil
	}

	if path != "" {
		fileSink = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
		}
	}

	rebuildBackend()
	return nil
}

// Set logger verbosity.
func SetLevel(level Level) {
	var loggerLevel logging.Level

	switch level {
	case Debug:
		loggerLevel = logging.DEBUG
	case Info:
		loggerLevel = logging.INFO
	case Notice:
		loggerLevel = logging.NOTICE
	case Warning:
		loggerLevel = logging.WARNING
	case Error:
		loggerLevel = logging.ERROR
	}

	currentLevel = level
	leveledBackend.SetLevel(loggerLevel, "")
}

// Parse a level name such as "debug" or "warning".
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return Debug, nil
	case "info":
		return Info, nil
	case "notice", "":
		return Notice, nil
	case "warning", "warn":
		return Warning, nil
	case "error":
		return Error, nil
	}
	return Notice, fmt.Errorf("log: unknown level %q", name)
}

func rebuildBackend() {
	backends := []logging.Backend{
		logging.NewBackendFormatter(logging.NewLogBackend(consoleSink, "", 0), format),
	}
	if fileSink != nil {
		backends = append(backends, logging.NewBackendFormatter(logging.NewLogBackend(fileSink, "", 0), fileFormat))
	}

	leveledBackend = logging.MultiLogger(backends...)
	logging.SetBackend(leveledBackend)
	SetLevel(currentLevel)
}

func init() {
	consoleSink = os.Stdout
	rebuildBackend()
}
