// Package logger provides a zap-based structured logger that enriches every
// record with the service name and, when available, the active trace id.
package logger

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the minimum level a logger emits.
type Level zapcore.Level

// Log levels.
const (
	LevelDebug = Level(zapcore.DebugLevel)
	LevelInfo  = Level(zapcore.InfoLevel)
	LevelWarn  = Level(zapcore.WarnLevel)
	LevelError = Level(zapcore.ErrorLevel)
)

// TraceIDFn extracts a trace id from the context, or returns "" when no
// trace is active.
type TraceIDFn func(ctx context.Context) string

// Logger wraps zap with context-aware logging methods.
type Logger struct {
	log     *zap.SugaredLogger
	traceID TraceIDFn
}

// New constructs a Logger writing JSON records to w at the given minimum
// level. traceIDFn may be nil.
func New(w io.Writer, minLevel Level, service string, traceIDFn TraceIDFn) *Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(cfg),
		zapcore.AddSync(w),
		zapcore.Level(minLevel),
	)
	log := zap.New(core).Sugar().With("service", service)

	return &Logger{log: log, traceID: traceIDFn}
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.log.Debugw(msg, l.enrich(ctx, args)...)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.log.Infow(msg, l.enrich(ctx, args)...)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.log.Warnw(msg, l.enrich(ctx, args)...)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.log.Errorw(msg, l.enrich(ctx, args)...)
}

// Sync flushes buffered records.
func (l *Logger) Sync() error {
	return l.log.Sync()
}

func (l *Logger) enrich(ctx context.Context, args []any) []any {
	if l.traceID == nil {
		return args
	}
	if id := l.traceID(ctx); id != "" {
		return append(args, "trace_id", id)
	}
	return args
}
