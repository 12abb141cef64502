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

// ProductStore holds the product list and the product being viewed.
// Query failures are recorded in the status but never toasted; product
// creation toasts either way.
type ProductStore struct {
	ops    *runner
	api    ProductAPI
	cache  ProductCache
	toasts notify.Channel
	locale string
	logger *slog.Logger

	// guarded by ops.mu
	products []domain.Product
	selected *domain.Product
}

// NewProductStore creates a ProductStore. cache may be nil.
func NewProductStore(api ProductAPI, cache ProductCache, toasts notify.Channel, l *slog.Logger, opts ...Option) *ProductStore {
	o := buildOptions(opts)
	return &ProductStore{
		ops:    newRunner("product", l, o),
		api:    api,
		cache:  cache,
		toasts: toasts,
		locale: o.locale,
		logger: l,
	}
}

// ListProducts fetches the catalog, served from the cache when warm.
func (s *ProductStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	op := opSpec{kind: OpListProducts, fallback: i18n.T(s.locale, i18n.ProductListFailed)}
	return run(ctx, s.ops, op,
		s.fetchList,
		func(list []domain.Product) {
			s.products = append([]domain.Product(nil), list...)
		},
	)
}

func (s *ProductStore) fetchList(ctx context.Context) ([]domain.Product, error) {
	log := logger.WithContext(ctx, s.logger)

	if s.cache != nil {
		list, ok, err := s.cache.GetProducts(ctx)
		if err != nil {
			log.WarnContext(ctx, "product cache read failed", slog.String("error", err.Error()))
		} else if ok {
			return list, nil
		}
	}

	list, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProducts(ctx, list); err != nil {
			log.WarnContext(ctx, "product cache write failed", slog.String("error", err.Error()))
		}
	}
	return list, nil
}

// GetProduct fetches one product and selects it.
func (s *ProductStore) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	op := opSpec{kind: OpGetProduct, productID: productID, fallback: i18n.T(s.locale, i18n.ProductGetFailed)}
	return run(ctx, s.ops, op,
		func(ctx context.Context) (*domain.Product, error) {
			return s.api.GetProduct(ctx, productID)
		},
		func(p *domain.Product) {
			cp := *p
			s.selected = &cp
		},
	)
}

// CreateProduct validates and posts a new product. Success sets
// Status().Success so the product dialog can close, and drops the cached
// catalog. The failure toast is generic; the server's reason is kept in
// Status().Error.
func (s *ProductStore) CreateProduct(ctx context.Context, product domain.NewProduct) (*domain.Product, error) {
	if err := product.Validate(); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	op := opSpec{kind: OpCreateProduct, fallback: i18n.T(s.locale, i18n.ProductCreateError)}
	created, err := run(ctx, s.ops, op, func(ctx context.Context) (*domain.Product, error) {
		return s.api.CreateProduct(ctx, product.Normalized())
	}, nil)
	if Abandoned(err) {
		return nil, err
	}

	msg := notify.Success(i18n.T(s.locale, i18n.ProductCreated))
	if err != nil {
		msg = notify.Failure(i18n.T(s.locale, i18n.ProductCreateFailed))
	}
	msg.Source = string(OpCreateProduct)
	if created != nil {
		msg.ProductID = created.ID
	}
	s.toasts.Push(ctx, msg)

	if err == nil && s.cache != nil {
		if ferr := s.cache.ForgetProducts(ctx); ferr != nil {
			logger.WithContext(ctx, s.logger).WarnContext(ctx, "product cache invalidation failed",
				slog.String("error", ferr.Error()),
			)
		}
	}
	return created, err
}

// Products returns a copy of the held catalog.
func (s *ProductStore) Products() []domain.Product {
	s.ops.mu.Lock()
	defer s.ops.mu.Unlock()
	return append([]domain.Product(nil), s.products...)
}

// SetSelectedProduct marks p as the product being viewed.
func (s *ProductStore) SetSelectedProduct(p domain.Product) {
	s.ops.mu.Lock()
	s.selected = &p
	s.ops.mu.Unlock()
}

// Selected returns the product being viewed, if any.
func (s *ProductStore) Selected() (domain.Product, bool) {
	s.ops.mu.Lock()
	defer s.ops.mu.Unlock()
	if s.selected == nil {
		return domain.Product{}, false
	}
	return *s.selected, true
}

// ClearError resets Error and Success.
func (s *ProductStore) ClearError() {
	s.ops.clearError()
}

// Status returns the current status projection.
func (s *ProductStore) Status() Status {
	return s.ops.view()
}

// Subscribe registers l for lifecycle events and returns its unsubscribe func.
func (s *ProductStore) Subscribe(l Listener) func() {
	return s.ops.hub.subscribe(l)
}
