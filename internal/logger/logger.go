// Package logger builds the structured zap logger shared by the CLI, stores
// and replay harness, and propagates trace IDs through context.Context.
package logger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey string

const traceIDKey ctxKey = "trace_id"

// Init builds a JSON logger on stdout at the given level ("debug", "info",
// ...), tags it with the service name and installs it as zap's global.
func Init(service, level string) (*zap.Logger, error) {
	return InitTo(service, level, "stdout")
}

// InitTo is Init writing to output, a zap sink path such as "stderr" for
// commands whose stdout is their result.
func InitTo(service, level, output string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	config := zap.NewProductionConfig()
	config.OutputPaths = []string{output}
	config.ErrorOutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(lvl)

	log, err := config.Build()
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("service", service))

	// Set as global so zap.L() in the stores and replay use the same sink
	zap.ReplaceGlobals(log)
	return log, nil
}

// WithTraceID stores a trace ID in the context for downstream propagation.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceID extracts the trace ID from context. Returns "" if not set.
func TraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// GenerateTraceID creates a trace ID from a series key and timestamp.
// Format: "{key}-{unixNano}".
func GenerateTraceID(key string, ts time.Time) string {
	return fmt.Sprintf("%s-%d", key, ts.UnixNano())
}

// FromContext returns the global logger, tagged with the context's trace ID
// when one is set.
func FromContext(ctx context.Context) *zap.Logger {
	tid := TraceID(ctx)
	if tid == "" {
		return zap.L()
	}
	return zap.L().With(zap.String("trace_id", tid))
}
