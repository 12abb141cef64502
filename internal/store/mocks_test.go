package store

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/notify"
)

// --- Mock APIs ---

type mockReviewAPI struct {
	mock.Mock
}

func (m *mockReviewAPI) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewAPI) CreateReview(ctx context.Context, productID string, payload domain.NewReviewPayload) (*domain.Review, error) {
	args := m.Called(ctx, productID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewAPI) UpdateReview(ctx context.Context, reviewID string, payload domain.ReviewEdit) (*domain.Review, error) {
	args := m.Called(ctx, reviewID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewAPI) DeleteReview(ctx context.Context, reviewID string) error {
	args := m.Called(ctx, reviewID)
	return args.Error(0)
}

type mockOrderAPI struct {
	mock.Mock
}

func (m *mockOrderAPI) PurchasedSizes(ctx context.Context, productID string) ([]string, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockProductAPI struct {
	mock.Mock
}

func (m *mockProductAPI) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductAPI) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductAPI) CreateProduct(ctx context.Context, product domain.NewProduct) (*domain.Product, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

type mockCartAPI struct {
	mock.Mock
}

func (m *mockCartAPI) AddToCart(ctx context.Context, item domain.CartItemRequest) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// recorder captures toasts and lifecycle events in the order they happened.
type recorder struct {
	mu     sync.Mutex
	toasts []notify.Message
	trail  []string
}

func (r *recorder) Push(_ context.Context, msg notify.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, msg)
	r.trail = append(r.trail, "toast:"+string(msg.Status))
}

func (r *recorder) listen(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trail = append(r.trail, string(e.Kind)+":"+string(e.Phase))
}

func (r *recorder) Toasts() []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Message(nil), r.toasts...)
}

func (r *recorder) Trail() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.trail...)
}

type staticSession struct {
	userID string
}

func (s staticSession) Present() bool  { return s.userID != "" }
func (s staticSession) UserID() string { return s.userID }

type memorySizeCache struct {
	mu      sync.Mutex
	entries map[string][]string
	err     error
}

func (c *memorySizeCache) GetSizes(_ context.Context, userID, productID string) ([]string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	s, ok := c.entries[userID+"/"+productID]
	return s, ok, nil
}

func (c *memorySizeCache) SetSizes(_ context.Context, userID, productID string, sizes []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string][]string)
	}
	c.entries[userID+"/"+productID] = sizes
	return c.err
}

func sampleReview(id, productID, userID string) domain.Review {
	return domain.Review{
		ID:      id,
		Content: "Great fit",
		Rate:    5,
		Author:  domain.Author{ID: userID, Name: "Jin"},
		Item:    domain.PurchaseItem{Product: domain.ProductRef{ID: productID, Name: "Linen Shirt"}, Size: "m"},
	}
}
