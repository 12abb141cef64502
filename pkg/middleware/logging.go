package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/pkg/logger"
)

type requestLoggerKey struct{}

// CorrelationIDHeader carries the id that ties one shopper action together
// across the client, the API and the toast topic.
const CorrelationIDHeader = "X-Correlation-ID"

// RequestLogging assigns a correlation ID, stores a request-scoped logger in
// the context (see logger.FromContext) and logs each completed request.
// Mount it after Tracing so the logger carries trace_id and span_id.
func RequestLogging(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			correlationID := r.Header.Get(CorrelationIDHeader)
			if correlationID == "" {
				correlationID = uuid.New().String()
			}
			w.Header().Set(CorrelationIDHeader, correlationID)

			ctx := logger.WithCorrelationID(r.Context(), correlationID)
			if userID := r.Header.Get("X-User-ID"); userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			ctx = context.WithValue(ctx, requestLoggerKey{}, true)

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			logger.FromContext(ctx).InfoContext(ctx, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
				slog.Int("bytes", rec.bytes),
				slog.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}

func requestLogger(ctx context.Context) (*slog.Logger, bool) {
	if ctx.Value(requestLoggerKey{}) == nil {
		return nil, false
	}
	return logger.FromContext(ctx), true
}
