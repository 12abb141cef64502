package store

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/i18n"
	"github.com/utafrali/storefront/internal/notify"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// ReviewStore owns the review list of the product being viewed, the review
// selected for editing, and the status projection of its operations.
type ReviewStore struct {
	ops    *runner
	api    ReviewAPI
	toasts notify.Channel
	locale string
	logger *slog.Logger

	afterMutation func(ctx context.Context, productID string) error

	// guarded by ops.mu
	reviews   []domain.Review
	productID string
	selected  *domain.Review
}

// NewReviewStore creates a ReviewStore.
func NewReviewStore(api ReviewAPI, toasts notify.Channel, l *slog.Logger, opts ...Option) *ReviewStore {
	o := buildOptions(opts)
	s := &ReviewStore{
		ops:    newRunner("review", l, o),
		api:    api,
		toasts: toasts,
		locale: o.locale,
		logger: l,
	}
	s.afterMutation = o.afterMutation
	if s.afterMutation == nil {
		s.afterMutation = s.refetch
	}
	return s
}

// ListReviews fetches the reviews of a product and replaces the held list
// with them, in server order. On failure the previous list is kept.
func (s *ReviewStore) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	op := opSpec{kind: OpListReviews, productID: productID, fallback: i18n.T(s.locale, i18n.ReviewListFailed)}
	return run(ctx, s.ops, op,
		func(ctx context.Context) ([]domain.Review, error) {
			return s.api.ListReviews(ctx, productID)
		},
		func(list []domain.Review) {
			s.reviews = append([]domain.Review(nil), list...)
			s.productID = productID
		},
	)
}

// CreateReview posts a new review for productID. The list is not patched
// from the response; a successful create refetches it instead.
func (s *ReviewStore) CreateReview(ctx context.Context, productID string, form domain.ReviewForm) (*domain.Review, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if !domain.ValidRate(form.Rate) {
		return nil, invalid(domain.ErrRateOutOfRange, i18n.T(s.locale, i18n.RateOutOfRange))
	}

	op := opSpec{
		kind:      OpCreateReview,
		productID: productID,
		fallback:  i18n.T(s.locale, i18n.ReviewCreateFailed),
	}
	review, err := run(ctx, s.ops, op, func(ctx context.Context) (*domain.Review, error) {
		return s.api.CreateReview(ctx, productID, form.NewPayload())
	}, nil)
	s.settle(ctx, op, i18n.ReviewCreateSuccess, err)
	return review, err
}

// UpdateReview sends the editable fields of form for reviewID. productID
// is the product whose list is refetched afterwards.
func (s *ReviewStore) UpdateReview(ctx context.Context, reviewID, productID string, form domain.ReviewForm) (*domain.Review, error) {
	if reviewID == "" {
		return nil, apperrors.InvalidInput("review id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if !domain.ValidRate(form.Rate) {
		return nil, invalid(domain.ErrRateOutOfRange, i18n.T(s.locale, i18n.RateOutOfRange))
	}

	op := opSpec{
		kind:      OpUpdateReview,
		productID: productID,
		reviewID:  reviewID,
		fallback:  i18n.T(s.locale, i18n.ReviewUpdateFailed),
	}
	review, err := run(ctx, s.ops, op, func(ctx context.Context) (*domain.Review, error) {
		return s.api.UpdateReview(ctx, reviewID, form.EditPayload())
	}, nil)
	s.settle(ctx, op, i18n.ReviewUpdateSuccess, err)
	return review, err
}

// DeleteReview deletes reviewID and refetches productID's list. Unlike
// create and update it never sets Status().Success.
func (s *ReviewStore) DeleteReview(ctx context.Context, reviewID, productID string) error {
	if reviewID == "" {
		return apperrors.InvalidInput("review id is required")
	}
	if productID == "" {
		return apperrors.InvalidInput("product id is required")
	}

	op := opSpec{
		kind:      OpDeleteReview,
		productID: productID,
		reviewID:  reviewID,
		fallback:  i18n.T(s.locale, i18n.ReviewDeleteFailed),
	}
	_, err := run(ctx, s.ops, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.api.DeleteReview(ctx, reviewID)
	}, nil)
	s.settle(ctx, op, i18n.ReviewDeleteSuccess, err)
	return err
}

// settle runs the side effects of a finished mutation: a toast either way,
// and on success the after-mutation continuation, exactly once.
func (s *ReviewStore) settle(ctx context.Context, op opSpec, successKey string, err error) {
	if Abandoned(err) {
		return
	}

	msg := notify.Success(i18n.T(s.locale, successKey))
	if err != nil {
		msg = notify.Failure(rejectionText(err, op.fallback))
	}
	msg.Source = string(op.kind)
	msg.ProductID = op.productID
	s.toasts.Push(ctx, msg)

	if err != nil {
		return
	}
	if rerr := s.afterMutation(ctx, op.productID); rerr != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "refetch after mutation failed",
			slog.String("op", string(op.kind)),
			slog.String("product_id", op.productID),
			slog.String("error", rerr.Error()),
		)
	}
}

func (s *ReviewStore) refetch(ctx context.Context, productID string) error {
	_, err := s.ListReviews(ctx, productID)
	return err
}

// Reviews returns a copy of the held list and the product it belongs to.
func (s *ReviewStore) Reviews() ([]domain.Review, string) {
	s.ops.mu.Lock()
	defer s.ops.mu.Unlock()
	return append([]domain.Review(nil), s.reviews...), s.productID
}

// SetSelectedReview marks r as the review being edited.
func (s *ReviewStore) SetSelectedReview(r domain.Review) {
	s.ops.mu.Lock()
	s.selected = &r
	s.ops.mu.Unlock()
}

// ClearSelectedReview drops the selection.
func (s *ReviewStore) ClearSelectedReview() {
	s.ops.mu.Lock()
	s.selected = nil
	s.ops.mu.Unlock()
}

// Selected returns the selected review, if any.
func (s *ReviewStore) Selected() (domain.Review, bool) {
	s.ops.mu.Lock()
	defer s.ops.mu.Unlock()
	if s.selected == nil {
		return domain.Review{}, false
	}
	return *s.selected, true
}

// ClearError resets Error and Success so a failed submission can be retried.
func (s *ReviewStore) ClearError() {
	s.ops.clearError()
}

// Status returns the current status projection.
func (s *ReviewStore) Status() Status {
	return s.ops.view()
}

// Subscribe registers l for lifecycle events and returns its unsubscribe func.
func (s *ReviewStore) Subscribe(l Listener) func() {
	return s.ops.hub.subscribe(l)
}
