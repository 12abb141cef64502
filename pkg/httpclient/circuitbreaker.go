package httpclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// CircuitBreakerConfig tunes the breaker in front of the storefront API.
type CircuitBreakerConfig struct {
	Name string
	// MaxRequests is how many trial calls may pass while half-open; 0 means 1.
	MaxRequests uint32
	// Interval clears the closed-state counts; 0 never clears them.
	Interval time.Duration
	// Timeout is how long the breaker stays open before letting a trial call through.
	Timeout time.Duration
	// FailureRatio trips the breaker once MinRequests have been seen.
	FailureRatio float64
	MinRequests  uint32
}

// DefaultCircuitBreakerConfig returns the breaker settings used by the
// storefront binaries.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = gobreaker.ErrOpenState

var (
	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_circuit_breaker_state",
			Help: "Breaker state per upstream (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	breakerRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_circuit_breaker_rejected_total",
			Help: "Calls refused without reaching the upstream",
		},
		[]string{"name"},
	)
)

// gaugeValue maps breaker states onto the state gauge.
var gaugeValue = map[gobreaker.State]float64{
	gobreaker.StateClosed:   0,
	gobreaker.StateHalfOpen: 1,
	gobreaker.StateOpen:     2,
}

// CircuitBreakerClient guards a Client with a breaker. Server errors and
// throttling answers count as failures; a caller giving up does not.
type CircuitBreakerClient struct {
	client  *Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	name    string
}

// NewCircuitBreakerClient wraps client with a breaker configured by cfg.
func NewCircuitBreakerClient(client *Client, cfg CircuitBreakerConfig, logger *slog.Logger) *CircuitBreakerClient {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= cfg.MinRequests &&
				float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(gaugeValue[to])
		},
	})
	breakerState.WithLabelValues(cfg.Name).Set(gaugeValue[gobreaker.StateClosed])

	return &CircuitBreakerClient{client: client, breaker: cb, name: cfg.Name}
}

// Do sends req through the breaker. A 5xx or 429 response is consumed and
// returned as the parsed AppError, counting against the breaker; any other
// response comes back with its body unread.
func (c *CircuitBreakerClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.client.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError || apperrors.RetryableStatus(resp.StatusCode) {
			return nil, ParseResponseError(resp)
		}
		return resp, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		breakerRejected.WithLabelValues(c.name).Inc()
	}
	return resp, err
}

// Send builds a request from method, url and an optional JSON body and
// runs it through the breaker. header is copied onto the request.
func (c *CircuitBreakerClient) Send(ctx context.Context, method, url string, body io.Reader, header http.Header) (*http.Response, error) {
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != http.NoBody && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.Do(ctx, req)
}

// State reports the breaker's current state.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.breaker.State()
}
