package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

// Recovery turns a handler panic into a logged 500 fail envelope. If the
// handler had already started the response, the connection is aborted
// instead. http.ErrAbortHandler is passed through untouched.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newStatusRecorder(w)
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}

				logger.WithContext(r.Context(), l).ErrorContext(r.Context(), "panic recovered",
					slog.String("panic", fmt.Sprint(v)),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Bool("response_started", rec.written),
				)
				if rec.written {
					panic(http.ErrAbortHandler)
				}
				httputil.WriteFail(rec, http.StatusInternalServerError, "an internal error occurred")
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
