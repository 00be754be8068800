// Package logging provides the application logger backed by zap.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultFile is the log file name used when the config does not set one.
const DefaultFile = "auto_clicker.log"

const stackKey = "stacktrace"

// TimeLayout formats log timestamps, e.g. "2024-05-01 13:04:05,123".
const TimeLayout = "2006-01-02 15:04:05,000"

// Logger defines the logging surface used across the application.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// Critical logs at the highest non-exiting level. Use for unrecoverable
	// failures that the caller handles by terminating.
	Critical(msg string, fields ...Field)
	Sync() error
}

// Field is a key-value pair attached to a log entry.
type Field = zap.Field

// Options configure a logger instance.
type Options struct {
	// Level is the minimum level (debug, info, warn, error). Empty means debug.
	Level string
	// FilePath is opened in append mode. Empty disables the file sink.
	FilePath string
	// Console receives a mirrored copy of every line. Nil disables it.
	Console io.Writer
}

type zapLogger struct {
	logger *zap.Logger
	closer io.Closer
}

// New builds a logger writing "<time> - <LEVEL> - <message>" lines to the
// configured sinks.
func New(opts Options) (Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	enc := zapcore.NewConsoleEncoder(encoderConfig())

	var cores []zapcore.Core
	var closer io.Closer
	if opts.FilePath != "" {
		file, err := openLogFile(opts.FilePath)
		if err != nil {
			return nil, err
		}
		closer = file
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(file)), level))
	}
	if opts.Console != nil {
		cores = append(cores, zapcore.NewCore(enc.Clone(), zapcore.Lock(zapcore.AddSync(opts.Console)), level))
	}
	if len(cores) == 0 {
		return NewNop(), nil
	}

	z := zap.New(zapcore.NewTee(cores...), zap.AddCallerSkip(1))
	return &zapLogger{logger: z, closer: closer}, nil
}

// ParseLevel converts a level name into a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "critical":
		return zapcore.DPanicLevel, nil
	default:
		return zapcore.DebugLevel, fmt.Errorf("unsupported log level %q", level)
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(TimeLayout),
		EncodeLevel:      encodeLevel,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " - ",
	}
}

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch l {
	case zapcore.WarnLevel:
		enc.AppendString("WARNING")
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		enc.AppendString("CRITICAL")
	default:
		enc.AppendString(l.CapitalString())
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

func (l *zapLogger) Debug(msg string, fields ...Field) {
	l.logger.Debug(render(msg, fields))
}

func (l *zapLogger) Info(msg string, fields ...Field) {
	l.logger.Info(render(msg, fields))
}

func (l *zapLogger) Warn(msg string, fields ...Field) {
	l.logger.Warn(render(msg, fields))
}

func (l *zapLogger) Error(msg string, fields ...Field) {
	l.logger.Error(render(msg, fields))
}

// Critical uses DPanic, which only panics in development loggers. This
// logger is never built in development mode.
func (l *zapLogger) Critical(msg string, fields ...Field) {
	l.logger.DPanic(render(msg, fields))
}

// render folds fields into the message as "msg key=value ...", keeping each
// line in the "<time> - <LEVEL> - <message>" shape. A stack field goes on
// the lines after the message.
func render(msg string, fields []Field) string {
	if len(fields) == 0 {
		return msg
	}
	enc := zapcore.NewMapObjectEncoder()
	var b strings.Builder
	b.WriteString(msg)
	var trace string
	for _, f := range fields {
		if f.Type == zapcore.SkipType {
			continue
		}
		f.AddTo(enc)
		val := enc.Fields[f.Key]
		if f.Key == stackKey {
			trace = fmt.Sprint(val)
			continue
		}
		fmt.Fprintf(&b, " %s=%v", f.Key, val)
	}
	if trace != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(trace, "\n"))
	}
	return b.String()
}

// Sync flushes buffered entries and closes the log file, if any.
func (l *zapLogger) Sync() error {
	err := l.logger.Sync()
	if l.closer != nil {
		if cerr := l.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
		l.closer = nil
	}
	return err
}

// String creates a string field.
func String(key, val string) Field {
	return zap.String(key, val)
}

// Int creates an int field.
func Int(key string, val int) Field {
	return zap.Int(key, val)
}

// Bool creates a bool field.
func Bool(key string, val bool) Field {
	return zap.Bool(key, val)
}

// Error creates an error field with the key "error".
func Error(err error) Field {
	return zap.Error(err)
}

// Stack creates a field holding the given stack trace text.
func Stack(trace []byte) Field {
	return zap.ByteString(stackKey, trace)
}
