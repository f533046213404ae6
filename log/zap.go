// Package log wraps zap with a small, opinionated API.
// A process-wide default logger is configured once by the command layer via
// ResetDefault; named loggers can be muted or raised selectively through
// zapfilter rules (see filter.go).
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	Field  = zap.Field
	Level  = zapcore.Level
	Option = zap.Option
)

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
	PanicLevel = zapcore.PanicLevel
	FatalLevel = zapcore.FatalLevel
)

// field helpers (re-exported so callers only import this package)
var (
	String     = zap.String
	Int        = zap.Int
	Int32      = zap.Int32
	Int64      = zap.Int64
	Uint32     = zap.Uint32
	Bool       = zap.Bool
	Float64    = zap.Float64
	Time       = zap.Time
	Duration   = zap.Duration
	Any        = zap.Any
	ErrorField = zap.Error

	WithCaller    = zap.WithCaller
	AddCallerSkip = zap.AddCallerSkip
)

type Logger struct {
	l     *zap.Logger
	level Level
}

func (l *Logger) Debug(msg string, fields ...Field) { l.l.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.l.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.l.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.l.Error(msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...Field) { l.l.Fatal(msg, fields...) }

func (l *Logger) Level() Level { return l.level }

// Named returns a child logger. The name takes part in filter rules.
func (l *Logger) Named(name string) *Logger {
	return &Logger{l: l.l.Named(name), level: l.level}
}

func (l *Logger) WithOptions(opts ...Option) *Logger {
	return &Logger{l: l.l.WithOptions(opts...), level: l.level}
}

func (l *Logger) Sync() error { return l.l.Sync() }

func ParseLevel(text string) (Level, error) {
	return zapcore.ParseLevel(text)
}

// New creates a logger with a JSON encoder (production format).
func New(writer io.Writer, level Level, opts ...Option) *Logger {
	return newLogger(writer, level,
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), opts...)
}

// DevLogger creates a logger with a console encoder for local runs.
func DevLogger(writer io.Writer, level Level, opts ...Option) *Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return newLogger(writer, level, zapcore.NewConsoleEncoder(cfg), opts...)
}

//nolint:whitespace // can't make both editor and linter happy
func newLogger(
	writer io.Writer, level Level, enc zapcore.Encoder, opts ...Option,
) *Logger {
	if writer == nil {
		writer = os.Stderr
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(writer), level)
	return &Logger{
		l:     zap.New(wrapFilterCore(core), opts...),
		level: level,
	}
}

var std = New(os.Stderr, InfoLevel)

func Default() *Logger { return std }

// GetLogger returns a named logger derived from the default one.
func GetLogger(name string) *Logger { return std.Named(name) }

// ResetDefault replaces the default logger. Not safe for concurrent use;
// call it once during startup before any goroutines log.
func ResetDefault(l *Logger) {
	std = l
}

func Debug(msg string, fields ...Field) { std.l.Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { std.l.Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { std.l.Warn(msg, fields...) }
func Error(msg string, fields ...Field) { std.l.Error(msg, fields...) }
func Fatal(msg string, fields ...Field) { std.l.Fatal(msg, fields...) }
