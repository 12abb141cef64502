// Package gateway is the HTTP client for the storefront API. Every response
// is a {status, data} envelope; anything other than status "success" is a
// failure carrying the server's message.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/internal/metrics"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
)

const statusSuccess = "success"

// Sender sends one HTTP request. httpclient.CircuitBreakerClient satisfies it.
type Sender interface {
	Send(ctx context.Context, method, url string, body io.Reader, header http.Header) (*http.Response, error)
}

// TokenSource returns the bearer token of the current session, or "".
type TokenSource func() string

// Client calls the storefront API.
type Client struct {
	sender  Sender
	baseURL string
	token   TokenSource
	tracer  trace.Tracer
	logger  *slog.Logger
}

// New creates a Client rooted at baseURL.
func New(sender Sender, baseURL string, token TokenSource, l *slog.Logger) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		sender:  sender,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		tracer:  tracing.Tracer("github.com/utafrali/storefront/internal/gateway"),
		logger:  l,
	}
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// call performs one request and decodes the envelope's data into out.
func (c *Client) call(ctx context.Context, endpoint, method, path string, in, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "gateway "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(tracing.StringAttrs("http.method", method, "url.path", path)...),
	)
	defer func() { tracing.End(span, err) }()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", endpoint, err)
		}
		body = bytes.NewReader(b)
	}

	header := http.Header{}
	header.Set("Accept", "application/json")
	if tok := c.token(); tok != "" {
		header.Set("Authorization", "Bearer "+tok)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		header.Set(middleware.CorrelationIDHeader, id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(header))

	start := time.Now()
	resp, err := c.sender.Send(ctx, method, c.baseURL+path, body, header)
	if err != nil {
		metrics.ObserveGateway(endpoint, statusOf(err), time.Since(start))
		c.logger.DebugContext(ctx, "storefront api call failed",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	metrics.ObserveGateway(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %w", endpoint, httpclient.ParseResponseError(resp))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", endpoint, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s: decode envelope: %w", endpoint, err)
	}
	if env.Status != statusSuccess {
		var fail httpclient.ErrorEnvelope
		_ = json.Unmarshal(raw, &fail)
		return fmt.Errorf("%s: %w", endpoint, apperrors.Remote(resp.StatusCode, strings.TrimSpace(fail.Text())))
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", endpoint, err)
	}
	return nil
}

func statusOf(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return 0
}
