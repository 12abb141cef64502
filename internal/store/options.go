package store

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/internal/i18n"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/tracing"
)

type options struct {
	locale        string
	tracer        trace.Tracer
	now           func() time.Time
	afterMutation func(ctx context.Context, productID string) error
}

// Option configures a store.
type Option func(*options)

// WithLocale sets the locale of pushed notifications.
func WithLocale(locale string) Option {
	return func(o *options) { o.locale = i18n.Resolve(locale) }
}

// WithTracer sets the tracer operation spans are started on.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithClock overrides the time source used for events.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithAfterMutation replaces the continuation a review store runs after a
// successful create, update or delete. The default refetches the product's
// review list.
func WithAfterMutation(fn func(ctx context.Context, productID string) error) Option {
	return func(o *options) { o.afterMutation = fn }
}

func buildOptions(opts []Option) options {
	o := options{
		locale: i18n.Default,
		tracer: tracing.Tracer("github.com/utafrali/storefront/internal/store"),
		now:    time.Now,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Session is what the stores need to know about the signed-in shopper.
type Session interface {
	Present() bool
	UserID() string
}

// invalid builds a local validation failure. It never reaches the network
// and emits no lifecycle events.
func invalid(cause error, message string) error {
	return &apperrors.AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     cause,
	}
}
