// Package stubapi is an in-memory storefront API. It speaks the same
// {status, data} envelope and routes as the real backend and is used by
// tests and by cmd/storefront-stub for local development.
package stubapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

const serviceName = "storefront-stub"

// Option configures a Server.
type Option func(*Server)

// WithSeed replaces the default data set.
func WithSeed(seed Seed) Option {
	return func(s *Server) { s.seed = seed }
}

// WithClock sets the clock used for review timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithObjectSizes makes GET /order/sizes answer with an index-keyed object
// instead of an array.
func WithObjectSizes() Option {
	return func(s *Server) { s.objectSizes = true }
}

// Server is the stub storefront API.
type Server struct {
	seed        Seed
	now         func() time.Time
	objectSizes bool

	tokens *session.Manager
	faults *Faults
	svc    *service
	logger *slog.Logger
}

// New creates a stub server that signs and verifies tokens with tokens.
func New(tokens *session.Manager, l *slog.Logger, opts ...Option) *Server {
	s := &Server{
		seed:   DefaultSeed(),
		now:    time.Now,
		tokens: tokens,
		faults: newFaults(),
		logger: l,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.svc = &service{data: newMemory(s.seed), now: s.now, logger: l}
	return s
}

// Faults returns the fault injector of the server.
func (s *Server) Faults() *Faults {
	return s.faults
}

// IssueToken signs an access token for a seeded user.
func (s *Server) IssueToken(userID string) (string, error) {
	u, ok := s.svc.data.user(userID)
	if !ok {
		return "", errors.New("stubapi: unknown user " + userID)
	}
	return s.tokens.Issue(u.ID, u.Name)
}

// Cart returns the cart of a user.
func (s *Server) Cart(userID string) []domain.CartItemRequest {
	return s.svc.data.cart(userID)
}

// Reviews returns the stored reviews of a product, newest first.
func (s *Server) Reviews(productID string) []domain.Review {
	return s.svc.data.reviewsFor(productID)
}

func (s *Server) validateToken(token string) (*middleware.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	return &middleware.Claims{UserID: claims.Subject, Name: claims.Name}, nil
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	h := &handler{svc: s.svc, issue: s.IssueToken, logger: s.logger}

	hc := health.NewHandler()
	hc.Register("catalog", func(context.Context) error {
		if len(s.svc.data.listProducts()) == 0 {
			return errors.New("no products loaded")
		}
		return nil
	})

	r := chi.NewRouter()

	r.Use(middleware.Recovery(s.logger))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.Tracing(serviceName, "/healthz", "/readyz", "/metrics"))
	r.Use(middleware.RequestLogging(s.logger))
	r.Use(middleware.PrometheusMetrics(serviceName))

	r.Get("/healthz", hc.LivenessHandler())
	r.Get("/readyz", hc.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/token", h.issueToken)

	f := s.faults
	r.Get("/product", f.wrap(RouteListProducts, h.listProducts))
	r.Get("/product/{productId}", f.wrap(RouteGetProduct, h.getProduct))
	r.Get("/review/{id}", f.wrap(RouteListReviews, h.listReviews))

	// /review/{id} is a product id on GET and POST and a review id on PUT
	// and DELETE; chi needs one param name per segment.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(s.validateToken))

		r.Post("/review/{id}", f.wrap(RouteCreateReview, h.createReview))
		r.Put("/review/{id}", f.wrap(RouteUpdateReview, h.updateReview))
		r.Delete("/review/{id}", f.wrap(RouteDeleteReview, h.deleteReview))
		r.Get("/order/sizes/{productId}", f.wrap(RoutePurchasedSizes, h.purchasedSizes(s.objectSizes)))
		r.Post("/cart", f.wrap(RouteAddToCart, h.addToCart))
		r.Post("/product", f.wrap(RouteCreateProduct, h.createProduct))
	})

	return r
}
