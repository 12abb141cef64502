package store

import (
	"context"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/i18n"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// EligibilityStore holds the sizes the signed-in shopper bought, per
// product. It only ever queries; nothing in the review flow mutates it.
type EligibilityStore struct {
	ops     *runner
	api     OrderAPI
	cache   SizeCache
	session Session
	logger  *slog.Logger
	locale  string

	// guarded by ops.mu
	sizes map[string][]string
}

// NewEligibilityStore creates an EligibilityStore. cache may be nil.
func NewEligibilityStore(api OrderAPI, cache SizeCache, session Session, l *slog.Logger, opts ...Option) *EligibilityStore {
	o := buildOptions(opts)
	return &EligibilityStore{
		ops:     newRunner("order", l, o),
		api:     api,
		cache:   cache,
		session: session,
		logger:  l,
		locale:  o.locale,
		sizes:   make(map[string][]string),
	}
}

// PurchasedSizes returns the distinct, lower-case sizes of productID the
// shopper has bought, in purchase order.
func (s *EligibilityStore) PurchasedSizes(ctx context.Context, productID string) ([]string, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	op := opSpec{kind: OpPurchasedSizes, productID: productID, fallback: i18n.T(s.locale, i18n.EligibilityFailed)}
	return run(ctx, s.ops, op,
		func(ctx context.Context) ([]string, error) {
			return s.fetch(ctx, productID)
		},
		func(sizes []string) {
			s.sizes[productID] = sizes
		},
	)
}

func (s *EligibilityStore) fetch(ctx context.Context, productID string) ([]string, error) {
	userID := s.session.UserID()
	log := logger.WithContext(ctx, s.logger)

	if s.cache != nil && userID != "" {
		sizes, ok, err := s.cache.GetSizes(ctx, userID, productID)
		switch {
		case err != nil:
			log.WarnContext(ctx, "eligibility cache read failed",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		case ok:
			return domain.EligibleSizes(sizes), nil
		}
	}

	raw, err := s.api.PurchasedSizes(ctx, productID)
	if err != nil {
		return nil, err
	}
	sizes := domain.EligibleSizes(raw)

	if s.cache != nil && userID != "" {
		if err := s.cache.SetSizes(ctx, userID, productID, sizes); err != nil {
			log.WarnContext(ctx, "eligibility cache write failed",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
	}
	return sizes, nil
}

// Sizes returns the last resolved eligibility set of productID.
func (s *EligibilityStore) Sizes(productID string) ([]string, bool) {
	s.ops.mu.Lock()
	defer s.ops.mu.Unlock()
	sizes, ok := s.sizes[productID]
	if !ok {
		return nil, false
	}
	return append([]string(nil), sizes...), true
}

// Status returns the current status projection.
func (s *EligibilityStore) Status() Status {
	return s.ops.view()
}

// Subscribe registers l for lifecycle events and returns its unsubscribe func.
func (s *EligibilityStore) Subscribe(l Listener) func() {
	return s.ops.hub.subscribe(l)
}
