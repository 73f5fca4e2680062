package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/lariat-data/lariat-go/core/domain/interfaces"
)

const (
	LogLevelError = 1
	LogLevelWarn  = 2
	LogLevelInfo  = 3
	LogLevelDebug = 4
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z"

var (
	globalLogLevel = LogLevelWarn
	logLevelMutex  sync.RWMutex

	// Tag filtering
	tagFilter      []string
	tagFilterMutex sync.RWMutex

	// Output; console formatting is decided per writer
	outputMutex sync.RWMutex
	logFile     *os.File
	logWriter   io.Writer = os.Stderr
	forceJSON   bool
)

// SetLogLevel sets the global log level. The SDK defaults to WARN so that
// embedding applications are quiet unless they opt in.
func SetLogLevel(level int) {
	logLevelMutex.Lock()
	defer logLevelMutex.Unlock()
	if level >= LogLevelError && level <= LogLevelDebug {
		globalLogLevel = level
		zerolog.SetGlobalLevel(convertLogLevel(level))
	}
}

// GetLogLevel returns the current global log level
func GetLogLevel() int {
	logLevelMutex.RLock()
	defer logLevelMutex.RUnlock()
	return globalLogLevel
}

// ParseLogLevel converts a level name or number ("debug", "4") to a log level.
func ParseLogLevel(value string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "error":
		return LogLevelError, nil
	case "2", "warn", "warning":
		return LogLevelWarn, nil
	case "3", "info":
		return LogLevelInfo, nil
	case "4", "debug":
		return LogLevelDebug, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", value)
	}
}

// SetTagFilter sets the tag filter from a comma-separated string.
// Tags prefixed with "-" are excluded; a tag also matches its "tag:*" children.
func SetTagFilter(filterStr string) {
	tagFilterMutex.Lock()
	defer tagFilterMutex.Unlock()

	if filterStr == "" {
		tagFilter = nil
		return
	}

	tags := strings.Split(filterStr, ",")
	tagFilter = make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tagFilter = append(tagFilter, tag)
		}
	}
}

func shouldLogTag(tag string) bool {
	tagFilterMutex.RLock()
	defer tagFilterMutex.RUnlock()

	if len(tagFilter) == 0 {
		return true
	}

	for _, filterTag := range tagFilter {
		if excludeTag, ok := strings.CutPrefix(filterTag, "-"); ok {
			if tag == excludeTag || strings.HasPrefix(tag, excludeTag+":") {
				return false
			}
		}
	}

	hasInclusion := false
	for _, filterTag := range tagFilter {
		if strings.HasPrefix(filterTag, "-") {
			continue
		}
		hasInclusion = true
		if tag == filterTag || strings.HasPrefix(tag, filterTag+":") {
			return true
		}
	}

	return !hasInclusion
}

// SetOutput redirects log output. JSON lines are written unless w is an
// interactive terminal.
func SetOutput(w io.Writer) {
	outputMutex.Lock()
	defer outputMutex.Unlock()
	logWriter = w
	forceJSON = !isTerminal(w)
}

// SetLogFile tees log output into a file under the system temp directory
// and returns its path.
func SetLogFile() (string, error) {
	outputMutex.Lock()
	defer outputMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), ".lariat", "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("lariat-%s-%s.log", time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
	filePath := filepath.Join(logDir, filename)

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", err
	}

	logFile = file
	logWriter = io.MultiWriter(os.Stderr, file)
	return filePath, nil
}

// CloseLogFile closes the log file if it's open
func CloseLogFile() error {
	outputMutex.Lock()
	defer outputMutex.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	logWriter = os.Stderr
	return err
}

// ZerologLogger implements the Logger interface using zerolog
type ZerologLogger struct {
	tag    string
	logger zerolog.Logger
}

// Logger is the interface exported from this package
type Logger = interfaces.Logger

// New creates a new logger instance with a tag
func New(tag string) Logger {
	if !shouldLogTag(tag) {
		return noOpLogger{}
	}

	outputMutex.RLock()
	out := logWriter
	jsonOnly := forceJSON
	outputMutex.RUnlock()

	if !jsonOnly && isInteractive() {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: consoleTimeFormat}
	}

	return &ZerologLogger{
		tag:    tag,
		logger: zerolog.New(out).With().Timestamp().Str("tag", tag).Logger(),
	}
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func convertLogLevel(level int) zerolog.Level {
	switch level {
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelInfo:
		return zerolog.InfoLevel
	case LogLevelDebug:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

func enabled(level int) bool {
	logLevelMutex.RLock()
	defer logLevelMutex.RUnlock()
	return level <= globalLogLevel
}

// Error logs at ERROR level
func (l *ZerologLogger) Error(message string) {
	if enabled(LogLevelError) {
		l.logger.Error().Msg(message)
	}
}

// Errorf logs at ERROR level with formatting
func (l *ZerologLogger) Errorf(format string, args ...any) {
	if enabled(LogLevelError) {
		l.logger.Error().Msgf(format, args...)
	}
}

// Warn logs at WARN level
func (l *ZerologLogger) Warn(message string) {
	if enabled(LogLevelWarn) {
		l.logger.Warn().Msg(message)
	}
}

// Warnf logs at WARN level with formatting
func (l *ZerologLogger) Warnf(format string, args ...any) {
	if enabled(LogLevelWarn) {
		l.logger.Warn().Msgf(format, args...)
	}
}

// Info logs at INFO level
func (l *ZerologLogger) Info(message string) {
	if enabled(LogLevelInfo) {
		l.logger.Info().Msg(message)
	}
}

// Infof logs at INFO level with formatting
func (l *ZerologLogger) Infof(format string, args ...any) {
	if enabled(LogLevelInfo) {
		l.logger.Info().Msgf(format, args...)
	}
}

// Success logs at INFO level but always shows regardless of log level
func (l *ZerologLogger) Success(message string) {
	l.logger.WithLevel(zerolog.NoLevel).Str("status", "success").Msg(message)
}

// Successf logs at INFO level but always shows regardless of log level
func (l *ZerologLogger) Successf(format string, args ...any) {
	l.logger.WithLevel(zerolog.NoLevel).Str("status", "success").Msgf(format, args...)
}

// Debug logs at DEBUG level
func (l *ZerologLogger) Debug(message string) {
	if enabled(LogLevelDebug) {
		l.logger.Debug().Msg(message)
	}
}

// Debugf logs at DEBUG level with formatting
func (l *ZerologLogger) Debugf(format string, args ...any) {
	if enabled(LogLevelDebug) {
		l.logger.Debug().Msgf(format, args...)
	}
}

// With returns a child logger with an extra field
func (l *ZerologLogger) With(key string, value any) Logger {
	return &ZerologLogger{
		tag:    l.tag,
		logger: l.logger.With().Interface(key, value).Logger(),
	}
}

// PrintError logs an error with a title
func (l *ZerologLogger) PrintError(title string, err error) {
	if err == nil || !enabled(LogLevelError) {
		return
	}
	l.logger.Error().Err(err).Msg(title)
}

// PrintValidationErrors logs validation errors
func (l *ZerologLogger) PrintValidationErrors(errors []string) {
	if len(errors) == 0 {
		return
	}
	l.Errorf("Validation Errors (%d)", len(errors))
	for i, err := range errors {
		l.Errorf("  %d. %s", i+1, err)
	}
}

// noOpLogger is a no-op logger for filtered tags
type noOpLogger struct{}

func (noOpLogger) Error(string)                   {}
func (noOpLogger) Errorf(string, ...any)          {}
func (noOpLogger) Warn(string)                    {}
func (noOpLogger) Warnf(string, ...any)           {}
func (noOpLogger) Info(string)                    {}
func (noOpLogger) Infof(string, ...any)           {}
func (noOpLogger) Success(string)                 {}
func (noOpLogger) Successf(string, ...any)        {}
func (noOpLogger) Debug(string)                   {}
func (noOpLogger) Debugf(string, ...any)          {}
func (n noOpLogger) With(string, any) Logger      { return n }
func (noOpLogger) PrintError(string, error)       {}
func (noOpLogger) PrintValidationErrors([]string) {}
