package httpclient

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testCBConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      1 * time.Second, // Short for tests.
		FailureRatio: 0.5,
		MinRequests:  3,
	}
}

func noRetryClient() *Client {
	return New(Config{Timeout: 5 * time.Second, MaxRetries: 0, MaxConnsPerHost: 10})
}

func TestCircuitBreaker_ClosedState_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"success","data":[]}`))
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), testCBConfig("test-closed"), testLogger())

	resp, err := cb.Send(context.Background(), http.MethodGet, server.URL, nil, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_5xxReturnsServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"fail","error":"network error"}`))
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), testCBConfig("test-5xx-message"), testLogger())

	_, err := cb.Send(context.Background(), http.MethodGet, server.URL, nil, nil)
	require.Error(t, err)
	assert.Equal(t, "network error", apperrors.UserMessage(err, "fallback"))
	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
}

func TestCircuitBreaker_TripsOnFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), testCBConfig("test-trip"), testLogger())

	for i := 0; i < 3; i++ {
		_, err := cb.Send(context.Background(), http.MethodGet, server.URL, nil, nil)
		require.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())
	assert.Equal(t, float64(2), testutil.ToFloat64(breakerState.WithLabelValues("test-trip")))

	_, err := cb.Send(context.Background(), http.MethodGet, server.URL, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, float64(1), testutil.ToFloat64(breakerRejected.WithLabelValues("test-trip")))
}

func TestCircuitBreaker_ThrottlingCountsAsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"status":"fail","error":"slow down"}`))
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), testCBConfig("test-429"), testLogger())

	for i := 0; i < 3; i++ {
		_, err := cb.Send(context.Background(), http.MethodGet, server.URL, nil, nil)
		require.Error(t, err)
		assert.Equal(t, "slow down", apperrors.UserMessage(err, "fallback"))
		assert.Equal(t, http.StatusTooManyRequests, apperrors.HTTPStatus(err))
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func TestCircuitBreaker_HalfOpenToClosedRecovery(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testCBConfig("test-recovery")
	cfg.Timeout = 100 * time.Millisecond

	cb := NewCircuitBreakerClient(noRetryClient(), cfg, testLogger())

	for i := 0; i < 3; i++ {
		_, _ = cb.Send(context.Background(), http.MethodGet, server.URL, nil, nil)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	time.Sleep(150 * time.Millisecond)
	failing.Store(false)

	resp, err := cb.Send(context.Background(), http.MethodGet, server.URL, nil, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_4xxNotCountedAsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"fail","error":"bad request"}`))
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), testCBConfig("test-4xx"), testLogger())

	for i := 0; i < 5; i++ {
		resp, err := cb.Send(context.Background(), http.MethodGet, server.URL, nil, nil)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_CanceledCallsDoNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), testCBConfig("test-canceled"), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		_, err := cb.Send(ctx, http.MethodGet, server.URL, nil, nil)
		require.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_SendSetsHeadersAndJSONContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cb := NewCircuitBreakerClient(noRetryClient(), testCBConfig("test-send"), testLogger())

	header := http.Header{}
	header.Set("Authorization", "Bearer tok")
	resp, err := cb.Send(context.Background(), http.MethodPut, server.URL, strings.NewReader(`{}`), header)
	require.NoError(t, err)
	resp.Body.Close()
}

func TestCircuitBreaker_DefaultConfig(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("test-defaults")
	assert.Equal(t, "test-defaults", cfg.Name)
	assert.Equal(t, uint32(1), cfg.MaxRequests)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 0.5, cfg.FailureRatio)
	assert.Equal(t, uint32(5), cfg.MinRequests)
}
