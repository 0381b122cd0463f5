package console

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type zapLogger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

// NewZapLogger writes zap JSON records to w. Args are key/value pairs, as
// with the slog-backed logger.
func NewZapLogger(w io.Writer, level LogLevel) Logger {
	atom := zap.NewAtomicLevelAt(zapLevel(level))
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), atom)
	return &zapLogger{sugar: zap.New(core).Sugar(), level: atom}
}

func (l *zapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *zapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *zapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *zapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

func (l *zapLogger) SetLevel(level LogLevel) {
	l.level.SetLevel(zapLevel(level))
}

func zapLevel(level LogLevel) zapcore.Level {
	switch {
	case level <= LogLevelDebug:
		return zapcore.DebugLevel
	case level <= LogLevelInfo:
		return zapcore.InfoLevel
	case level <= LogLevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
