package store

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/i18n"
	"github.com/utafrali/storefront/internal/notify"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CartStore adds items to the shopper's cart.
type CartStore struct {
	ops     *runner
	api     CartAPI
	toasts  notify.Channel
	session Session
	locale  string
}

// NewCartStore creates a CartStore.
func NewCartStore(api CartAPI, toasts notify.Channel, session Session, l *slog.Logger, opts ...Option) *CartStore {
	o := buildOptions(opts)
	return &CartStore{
		ops:     newRunner("cart", l, o),
		api:     api,
		toasts:  toasts,
		session: session,
		locale:  o.locale,
	}
}

// AddToCart adds one unit of productID in size. A signed-in shopper and a
// selected size are required before anything is sent.
func (s *CartStore) AddToCart(ctx context.Context, productID, size string) error {
	if productID == "" {
		return apperrors.InvalidInput("product id is required")
	}
	if !s.session.Present() {
		return &apperrors.AppError{
			Code:    "UNAUTHORIZED",
			Message: i18n.T(s.locale, i18n.LoginRequired),
			Status:  http.StatusUnauthorized,
			Err:     domain.ErrLoginRequired,
		}
	}
	if strings.TrimSpace(size) == "" {
		return invalid(domain.ErrSizeRequired, i18n.T(s.locale, i18n.SizeRequired))
	}

	op := opSpec{kind: OpAddToCart, productID: productID, fallback: i18n.T(s.locale, i18n.CartAddFailed)}
	_, err := run(ctx, s.ops, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.api.AddToCart(ctx, domain.CartItemRequest{
			ProductID: productID,
			Size:      domain.NormalizeSize(size),
			Qty:       1,
		})
	}, nil)

	if Abandoned(err) {
		return err
	}
	msg := notify.Success(i18n.T(s.locale, i18n.CartAddSuccess))
	if err != nil {
		msg = notify.Failure(rejectionText(err, op.fallback))
	}
	msg.Source = string(OpAddToCart)
	msg.ProductID = productID
	s.toasts.Push(ctx, msg)
	return err
}

// Status returns the current status projection.
func (s *CartStore) Status() Status {
	return s.ops.view()
}

// Subscribe registers l for lifecycle events and returns its unsubscribe func.
func (s *CartStore) Subscribe(l Listener) func() {
	return s.ops.hub.subscribe(l)
}
