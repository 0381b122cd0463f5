package console

import (
	"io"
	"log/slog"
	"os"
)

// LogLevel mirrors slog levels so callers do not need to import log/slog.
type LogLevel int

const (
	LogLevelDebug LogLevel = LogLevel(slog.LevelDebug)
	LogLevelInfo  LogLevel = LogLevel(slog.LevelInfo)
	LogLevelWarn  LogLevel = LogLevel(slog.LevelWarn)
	LogLevelError LogLevel = LogLevel(slog.LevelError)
)

// Logger is the logging contract used across the console.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	SetLevel(level LogLevel)
}

type slogLogger struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

// NewDefaultLogger writes JSON records to stderr at info level.
func NewDefaultLogger() Logger {
	return NewLogger(os.Stderr, LogLevelInfo)
}

// NewLogger writes JSON records to w.
func NewLogger(w io.Writer, level LogLevel) Logger {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.Level(level))
	return &slogLogger{
		logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: levelVar})),
		level:  levelVar,
	}
}

func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *slogLogger) SetLevel(level LogLevel) {
	l.level.Set(slog.Level(level))
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) SetLevel(LogLevel)    {}

// NopLogger discards everything.
func NopLogger() Logger { return noopLogger{} }

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return NewDefaultLogger()
	}
	return l
}
