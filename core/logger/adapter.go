package logger

import (
	"github.com/lariat-data/lariat-go/core/infrastructure/logging"
)

// Re-exported log levels so callers outside infrastructure need not import it
const (
	LogLevelError = logging.LogLevelError
	LogLevelWarn  = logging.LogLevelWarn
	LogLevelInfo  = logging.LogLevelInfo
	LogLevelDebug = logging.LogLevelDebug
)

// Logger is the tagged logger used across the SDK
type Logger = logging.Logger

// New creates a new logger instance with a tag
func New(tag string) Logger {
	return logging.New(tag)
}

// SetLogLevel sets the global log level
func SetLogLevel(level int) {
	logging.SetLogLevel(level)
}

// GetLogLevel returns the current global log level
func GetLogLevel() int {
	return logging.GetLogLevel()
}

// SetTagFilter sets the tag filter
func SetTagFilter(filterStr string) {
	logging.SetTagFilter(filterStr)
}

// SetLogFile enables log file streaming
func SetLogFile() (string, error) {
	return logging.SetLogFile()
}

// CloseLogFile closes the log file
func CloseLogFile() error {
	return logging.CloseLogFile()
}

// ParseLogLevel converts a level name or number to a log level
func ParseLogLevel(value string) (int, error) {
	return logging.ParseLogLevel(value)
}
