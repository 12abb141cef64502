package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/tracing"
)

// ErrAbandoned is returned when the caller's context was done by the time
// the remote call came back. The store state is left untouched.
var ErrAbandoned = errors.New("operation abandoned")

// runner drives operations through their lifecycle for one store. Its
// mutex also guards the owning store's state so a fulfilment's state
// change and its status transition are applied together.
type runner struct {
	name   string
	mu     sync.Mutex
	status statusProjection
	hub    hub

	tracer trace.Tracer
	now    func() time.Time
	logger *slog.Logger
}

func newRunner(name string, l *slog.Logger, o options) *runner {
	return &runner{
		name:   name,
		tracer: o.tracer,
		now:    o.now,
		logger: l.With(slog.String("store", name)),
	}
}

type opSpec struct {
	kind      OpKind
	productID string
	reviewID  string
	// fallback is the rejection text used when the server sent none.
	// Empty means the error's own text.
	fallback string
}

// run executes call as one operation: Pending, then Fulfilled (after
// commit is applied), Rejected or Abandoned.
func run[T any](ctx context.Context, r *runner, op opSpec, call func(context.Context) (T, error), commit func(T)) (T, error) {
	var zero T

	opID := uuid.New().String()
	ctx = logger.WithOperationID(ctx, opID)
	ctx, span := r.tracer.Start(ctx, string(op.kind), trace.WithAttributes(
		tracing.StringAttrs("store", r.name, "op_id", opID, "product_id", op.productID, "review_id", op.reviewID)...,
	))
	log := logger.WithContext(ctx, r.logger).With(
		slog.String("op", string(op.kind)),
		slog.String("product_id", op.productID),
		slog.String("review_id", op.reviewID),
	)

	start := r.now()
	r.publish(r.event(op, opID, PhasePending, "", 0), nil)

	v, err := call(ctx)
	elapsed := r.now().Sub(start)

	if cause := ctx.Err(); cause != nil {
		r.publish(r.event(op, opID, PhaseAbandoned, cause.Error(), elapsed), nil)
		log.DebugContext(ctx, "operation abandoned", slog.Duration("elapsed", elapsed))
		err = fmt.Errorf("%s: %w: %w", op.kind, ErrAbandoned, cause)
		tracing.End(span, err)
		return zero, err
	}

	if err != nil {
		r.publish(r.event(op, opID, PhaseRejected, rejectionText(err, op.fallback), elapsed), nil)
		log.WarnContext(ctx, "operation rejected",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", elapsed),
		)
		tracing.End(span, err)
		return zero, err
	}

	r.publish(r.event(op, opID, PhaseFulfilled, "", elapsed), func() {
		if commit != nil {
			commit(v)
		}
	})
	log.DebugContext(ctx, "operation fulfilled", slog.Duration("elapsed", elapsed))
	tracing.End(span, nil)
	return v, nil
}

func (r *runner) event(op opSpec, opID string, phase Phase, errText string, elapsed time.Duration) Event {
	return Event{
		OpID:      opID,
		Store:     r.name,
		Kind:      op.kind,
		Phase:     phase,
		ProductID: op.productID,
		ReviewID:  op.reviewID,
		Err:       errText,
		Elapsed:   elapsed,
		At:        r.now(),
	}
}

// publish applies commit and the status transition under the store lock,
// then notifies listeners outside it.
func (r *runner) publish(e Event, commit func()) {
	r.mu.Lock()
	if commit != nil {
		commit()
	}
	r.status.apply(e)
	r.mu.Unlock()

	r.hub.emit(e)
}

func (r *runner) view() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status.view()
}

func (r *runner) clearError() {
	r.mu.Lock()
	r.status.clearError()
	r.mu.Unlock()
}

// rejectionText is the text stored as a store's error: the server message
// when there is one, otherwise fallback, otherwise the error itself.
func rejectionText(err error, fallback string) string {
	if msg := apperrors.UserMessage(err, ""); msg != "" {
		return msg
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}

// Abandoned reports whether err means the caller lost interest.
func Abandoned(err error) bool {
	return errors.Is(err, ErrAbandoned)
}
