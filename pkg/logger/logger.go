// Package logger builds the JSON slog loggers used by the storefront
// binaries and carries request-scoped ids through context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	userIDKey        contextKey = "user_id"
	operationIDKey   contextKey = "op_id"
	loggerKey        contextKey = "logger"
)

// New creates a JSON logger for the named component writing to stderr.
// Stdout is left to the CLI output.
func New(component, level string) *slog.Logger {
	return NewWithWriter(component, level, os.Stderr)
}

// NewWithWriter creates a JSON logger writing to w.
func NewWithWriter(component, level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	})

	return slog.New(handler).With(
		slog.String("component", component),
	)
}

// ParseLevel maps a level name such as "warn" or "DEBUG" to a slog level;
// anything unparseable means info.
func ParseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func withValue(ctx context.Context, key contextKey, v string) context.Context {
	return context.WithValue(ctx, key, v)
}

func stringValue(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// WithCorrelationID tags ctx with the id of the request it serves.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return withValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the correlation id, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, correlationIDKey)
}

// WithUserID tags ctx with the signed-in shopper's id.
func WithUserID(ctx context.Context, id string) context.Context {
	return withValue(ctx, userIDKey, id)
}

// UserIDFromContext returns the shopper id, or "".
func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, userIDKey)
}

// WithOperationID tags ctx with the id of the store operation running in it.
func WithOperationID(ctx context.Context, id string) context.Context {
	return withValue(ctx, operationIDKey, id)
}

// OperationIDFromContext returns the operation id, or "".
func OperationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, operationIDKey)
}

// NewContext returns a new context with the given logger stored in it.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored by NewContext, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// contextFields are copied from the context onto loggers by WithContext,
// in this order.
var contextFields = []contextKey{correlationIDKey, userIDKey, operationIDKey}

// WithContext returns l annotated with the ids carried by ctx and the
// current trace and span ids.
func WithContext(ctx context.Context, l *slog.Logger) *slog.Logger {
	var attrs []any
	for _, key := range contextFields {
		if v := stringValue(ctx, key); v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}
