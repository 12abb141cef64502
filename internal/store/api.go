package store

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
)

// ReviewAPI is the review part of the remote storefront API.
type ReviewAPI interface {
	ListReviews(ctx context.Context, productID string) ([]domain.Review, error)
	CreateReview(ctx context.Context, productID string, payload domain.NewReviewPayload) (*domain.Review, error)
	UpdateReview(ctx context.Context, reviewID string, payload domain.ReviewEdit) (*domain.Review, error)
	DeleteReview(ctx context.Context, reviewID string) error
}

// OrderAPI is the order-history part of the remote storefront API.
type OrderAPI interface {
	PurchasedSizes(ctx context.Context, productID string) ([]string, error)
}

// ProductAPI is the catalog part of the remote storefront API.
type ProductAPI interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.NewProduct) (*domain.Product, error)
}

// CartAPI is the cart part of the remote storefront API.
type CartAPI interface {
	AddToCart(ctx context.Context, item domain.CartItemRequest) error
}

// SizeCache caches eligibility sets per (user, product).
type SizeCache interface {
	GetSizes(ctx context.Context, userID, productID string) ([]string, bool, error)
	SetSizes(ctx context.Context, userID, productID string, sizes []string) error
}

// ProductCache caches the product list.
type ProductCache interface {
	GetProducts(ctx context.Context) ([]domain.Product, bool, error)
	SetProducts(ctx context.Context, products []domain.Product) error
	ForgetProducts(ctx context.Context) error
}
