package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Config holds HTTP client configuration.
type Config struct {
	Timeout         time.Duration
	MaxRetries      int
	RetryWaitMin    time.Duration
	RetryWaitMax    time.Duration
	MaxConnsPerHost int

	// RequestsPerSecond caps outbound requests; 0 disables the limiter.
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns the client settings used against the storefront API.
func DefaultConfig() Config {
	return Config{
		Timeout:           15 * time.Second,
		MaxRetries:        2,
		RetryWaitMin:      200 * time.Millisecond,
		RetryWaitMax:      2 * time.Second,
		MaxConnsPerHost:   16,
		RequestsPerSecond: 0,
		Burst:             1,
	}
}

// Client wraps http.Client with retry logic, an optional rate limiter and
// better defaults. Only safe methods (GET, HEAD) are retried; a mutation is
// sent exactly once.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	config     Config
}

// New builds a pooled client from cfg.
func New(cfg Config) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		limiter: limiter,
		config:  cfg,
	}
}

// Do sends req, retrying a GET or HEAD on network errors and on retryable
// statuses. The wait between attempts doubles from RetryWaitMin up to
// RetryWaitMax; a Retry-After header in seconds takes precedence when it
// stays under RetryWaitMax. The last response is returned as-is.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	attempts := 1
	if isSafeMethod(req.Method) {
		attempts += c.config.MaxRetries
	}

	var wait time.Duration
	for attempt := 1; ; attempt++ {
		if wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter: %w", err)
			}
		}

		last := attempt == attempts
		resp, err := c.httpClient.Do(req)
		switch {
		case err != nil:
			if last || !isRetryableError(ctx, err) {
				return nil, fmt.Errorf("%s %s: attempt %d: %w", req.Method, req.URL.Path, attempt, err)
			}
			wait = c.backoff(attempt, nil)
		case !last && apperrors.RetryableStatus(resp.StatusCode):
			wait = c.backoff(attempt, resp)
			_ = resp.Body.Close()
		default:
			return resp, nil
		}
	}
}

// backoff returns the pause after the given failed attempt.
func (c *Client) backoff(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
			if d := time.Duration(secs) * time.Second; d <= c.config.RetryWaitMax {
				return d
			}
		}
	}
	wait := c.config.RetryWaitMin << (attempt - 1)
	if wait <= 0 || wait > c.config.RetryWaitMax {
		wait = c.config.RetryWaitMax
	}
	return wait
}

// Get sends a GET request for url.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create GET request: %w", err)
	}
	return c.Do(ctx, req)
}

// Post sends body to url once, never retrying.
func (c *Client) Post(ctx context.Context, url string, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("create POST request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(ctx, req)
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// isRetryableError reports a network failure the caller has not abandoned.
func isRetryableError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
