package app

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/dialog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/notify"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/internal/stubapi"
	"github.com/utafrali/storefront/internal/view"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/logger"
)

func newStubbedApp(t *testing.T, userID string, tweak func(*config.Config), opts ...Option) (*App, *stubapi.Server) {
	t.Helper()

	srv := stubapi.New(session.NewManager("app-test-secret", time.Hour), logger.Discard())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfg, err := config.LoadFrom()
	require.NoError(t, err)
	cfg.APIURL = ts.URL
	cfg.RedisAddr = ""
	cfg.KafkaBrokers = nil
	if userID != "" {
		tok, err := srv.IssueToken(userID)
		require.NoError(t, err)
		cfg.Token = tok
	}
	if tweak != nil {
		tweak(cfg)
	}

	a, err := New(context.Background(), cfg, logger.Discard(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a, srv
}

func ownRow(t *testing.T, rows []view.ReviewRow) view.ReviewRow {
	t.Helper()
	for _, r := range rows {
		if r.CanEdit {
			return r
		}
	}
	t.Fatal("no editable row")
	return view.ReviewRow{}
}

func TestReviewLifecycle(t *testing.T) {
	a, srv := newStubbedApp(t, "u-1", nil)
	ctx := context.Background()

	reviews, err := a.Reviews.ListReviews(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, reviews, 1)

	// Create through the dialog.
	require.NoError(t, a.Dialog.OpenNew(ctx, "p-1"))
	snap := a.Dialog.Snapshot()
	assert.Equal(t, "m", snap.Form.Size)
	assert.Equal(t, []string{"M", "L"}, snap.SizeOptions)

	require.NoError(t, a.Dialog.SetContent("Great fit"))
	require.NoError(t, a.Dialog.SetRate(4))
	sub, err := a.Dialog.Submit(ctx)
	require.NoError(t, err)
	assert.True(t, sub.Closed)
	assert.Equal(t, dialog.StateClosed, a.Dialog.State())

	msg, ok := a.Toasts.Current()
	require.True(t, ok)
	assert.Equal(t, "Review posted!", msg.Text)
	assert.Equal(t, notify.StatusSuccess, msg.Status)

	list, productID := a.Reviews.Reviews()
	assert.Equal(t, "p-1", productID)
	require.Len(t, list, 2)

	rows := view.Rows(list, a.Session.UserID(), time.UTC)
	mine := ownRow(t, rows)
	assert.Equal(t, "M", mine.Size)
	assert.Equal(t, "Mina", mine.AuthorName)
	for _, r := range rows {
		if r.ID != mine.ID {
			assert.False(t, r.CanEdit)
			assert.False(t, r.CanDelete)
		}
	}

	// Edit keeps the purchased size.
	var created domain.Review
	for _, r := range list {
		if r.ID == mine.ID {
			created = r
		}
	}
	require.NoError(t, a.Dialog.OpenEdit(created))
	assert.ErrorIs(t, a.Dialog.SetSize("l"), dialog.ErrSizeLocked)
	require.NoError(t, a.Dialog.SetContent("Runs a little large"))
	sub, err = a.Dialog.Submit(ctx)
	require.NoError(t, err)
	assert.True(t, sub.Closed)

	msg, _ = a.Toasts.Current()
	assert.Equal(t, "Review updated!", msg.Text)
	list, _ = a.Reviews.Reviews()
	mine = ownRow(t, view.Rows(list, a.Session.UserID(), time.UTC))
	assert.Equal(t, "Runs a little large", mine.Content)
	assert.Equal(t, "M", mine.Size)

	// Delete refetches and leaves success alone.
	require.NoError(t, a.Reviews.DeleteReview(ctx, mine.ID, "p-1"))
	msg, _ = a.Toasts.Current()
	assert.Equal(t, "Review deleted!", msg.Text)
	list, _ = a.Reviews.Reviews()
	assert.Len(t, list, 1)
	assert.Len(t, srv.Reviews("p-1"), 1)
}

func TestCreateFailureKeepsDialogOpen(t *testing.T) {
	a, srv := newStubbedApp(t, "u-1", nil)
	ctx := context.Background()
	srv.Faults().Fail(stubapi.RouteCreateReview, http.StatusInternalServerError, "database unavailable", 0)

	require.NoError(t, a.Dialog.OpenNew(ctx, "p-1"))
	require.NoError(t, a.Dialog.SetContent("Nice"))
	_, err := a.Dialog.Submit(ctx)
	require.Error(t, err)

	assert.Equal(t, dialog.StateOpenNew, a.Dialog.State())
	msg, ok := a.Toasts.Current()
	require.True(t, ok)
	assert.Equal(t, notify.StatusError, msg.Status)
	assert.Equal(t, "database unavailable", msg.Text)
	assert.Equal(t, "database unavailable", a.Reviews.Status().Error)
	assert.False(t, a.Reviews.Status().Success)
	assert.Zero(t, srv.Faults().Hits(stubapi.RouteListReviews))
}

func TestKoreanAlertOnInvalidRate(t *testing.T) {
	var alerts []string
	a, srv := newStubbedApp(t, "u-1", func(c *config.Config) { c.Locale = "ko" },
		WithAlerter(func(m string) { alerts = append(alerts, m) }))
	ctx := context.Background()

	require.NoError(t, a.Dialog.OpenNew(ctx, "p-1"))
	require.NoError(t, a.Dialog.SetContent("별로"))
	require.NoError(t, a.Dialog.SetRate(7))
	_, err := a.Dialog.Submit(ctx)

	assert.ErrorIs(t, err, domain.ErrRateOutOfRange)
	assert.Equal(t, []string{"평점은 0~5 사이여야 합니다."}, alerts)
	assert.Zero(t, srv.Faults().Hits(stubapi.RouteCreateReview))
}

func TestEligibilityCachedInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	a, srv := newStubbedApp(t, "u-1", func(c *config.Config) { c.RedisAddr = mr.Addr() })
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		sizes, err := a.Eligibility.PurchasedSizes(ctx, "p-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"m", "l"}, sizes)
	}
	assert.Equal(t, 1, srv.Faults().Hits(stubapi.RoutePurchasedSizes))

	resp := a.Health.Check(ctx)
	assert.Equal(t, health.StatusUp, resp.Status)
	assert.Equal(t, []string{"redis", "storefront_api"}, resp.Names())
}

func TestNewFailsWhenRedisUnreachable(t *testing.T) {
	srv := stubapi.New(session.NewManager("x", time.Hour), logger.Discard())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	cfg, err := config.LoadFrom()
	require.NoError(t, err)
	cfg.APIURL = ts.URL
	cfg.RedisAddr = "127.0.0.1:1"

	_, err = New(context.Background(), cfg, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

func TestCart(t *testing.T) {
	t.Run("anonymous shopper", func(t *testing.T) {
		a, srv := newStubbedApp(t, "", nil)
		err := a.Cart.AddToCart(context.Background(), "p-1", "m")
		assert.True(t, errors.Is(err, domain.ErrLoginRequired))
		assert.Zero(t, srv.Faults().Hits(stubapi.RouteAddToCart))
	})

	t.Run("signed in", func(t *testing.T) {
		var out bytes.Buffer
		a, srv := newStubbedApp(t, "u-1", nil, WithSink(notify.NewWriterSink(&out)))
		require.NoError(t, a.Cart.AddToCart(context.Background(), "p-1", "M"))

		assert.Equal(t, []domain.CartItemRequest{{ProductID: "p-1", Size: "m", Qty: 1}}, srv.Cart("u-1"))
		assert.Equal(t, "[success] Added to cart!\n", out.String())
	})
}

func TestProducts(t *testing.T) {
	a, _ := newStubbedApp(t, "", nil)
	ctx := context.Background()

	products, err := a.Products.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	p, err := a.Products.GetProduct(ctx, "p-2")
	require.NoError(t, err)
	assert.Equal(t, "Denim Jacket", p.Name)
	selected, ok := a.Products.Selected()
	require.True(t, ok)
	assert.Equal(t, "p-2", selected.ID)
}

func TestReadsAreNotRetriedByDefault(t *testing.T) {
	a, srv := newStubbedApp(t, "u-1", nil)
	ctx := context.Background()
	srv.Faults().Fail(stubapi.RouteListReviews, http.StatusServiceUnavailable, "busy", 1)
	srv.Faults().Fail(stubapi.RoutePurchasedSizes, http.StatusServiceUnavailable, "busy", 1)

	_, err := a.Reviews.ListReviews(ctx, "p-1")
	require.Error(t, err)
	assert.Equal(t, "busy", a.Reviews.Status().Error)
	assert.Equal(t, 1, srv.Faults().Hits(stubapi.RouteListReviews))

	_, err = a.Eligibility.PurchasedSizes(ctx, "p-1")
	require.Error(t, err)
	assert.Equal(t, 1, srv.Faults().Hits(stubapi.RoutePurchasedSizes))
}

func TestCreateProductAsAdmin(t *testing.T) {
	mr := miniredis.RunT(t)
	a, srv := newStubbedApp(t, "admin-1", func(c *config.Config) { c.RedisAddr = mr.Addr() })
	ctx := context.Background()

	products, err := a.Products.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	created, err := a.Products.CreateProduct(ctx, domain.NewProduct{
		SKU:      "TEE-BS-03",
		Name:     "Basic Tee",
		Price:    19000,
		Category: []string{"tops"},
		Stock:    map[string]int{"M": 4},
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, map[string]int{"m": 4}, created.Stock)
	assert.True(t, a.Products.Status().Success)

	msg, ok := a.Toasts.Current()
	require.True(t, ok)
	assert.Equal(t, notify.StatusSuccess, msg.Status)
	assert.Equal(t, "Product created!", msg.Text)

	products, err = a.Products.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3)
	assert.Equal(t, 2, srv.Faults().Hits(stubapi.RouteListProducts))
}

func TestCreateProductAsShopper(t *testing.T) {
	a, _ := newStubbedApp(t, "u-1", nil)

	_, err := a.Products.CreateProduct(context.Background(), domain.NewProduct{
		SKU: "TEE-BS-03", Name: "Basic Tee", Category: []string{"tops"}, Stock: map[string]int{"m": 1},
	})
	require.Error(t, err)
	assert.Equal(t, "only admins can add products", a.Products.Status().Error)
	msg, ok := a.Toasts.Current()
	require.True(t, ok)
	assert.Equal(t, "Product creation failed!", msg.Text)
}

func TestInvalidToken(t *testing.T) {
	cfg, err := config.LoadFrom()
	require.NoError(t, err)
	cfg.Token = "not-a-jwt"

	_, err = New(context.Background(), cfg, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STOREFRONT_TOKEN")
}
