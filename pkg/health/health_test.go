package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLivenessHandler_AlwaysUp(t *testing.T) {
	h := NewHandler()
	h.Register("api", func(context.Context) error { return errors.New("down") })

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusUp, resp.Status)
	assert.Empty(t, resp.Checks)
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name       string
		redisErr   error
		wantCode   int
		wantStatus Status
	}{
		{"all healthy", nil, http.StatusOK, StatusUp},
		{"redis down", errors.New("connection refused"), http.StatusServiceUnavailable, StatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler()
			h.Register("storefront_api", func(context.Context) error { return nil })
			h.Register("redis", func(context.Context) error { return tt.redisErr })

			rec := httptest.NewRecorder()
			h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var resp Response
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, StatusUp, resp.Checks["storefront_api"].Status)
			if tt.redisErr != nil {
				assert.Equal(t, "connection refused", resp.Checks["redis"].Error)
			}
		})
	}
}

func TestCheck_SharedDeadline(t *testing.T) {
	h := NewHandler()
	h.SetTimeout(20 * time.Millisecond)
	h.Register("kafka", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	resp := h.Check(context.Background())
	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, context.DeadlineExceeded.Error(), resp.Checks["kafka"].Error)
}

func TestResponse_Names(t *testing.T) {
	r := Response{Checks: map[string]CheckResult{"redis": {}, "kafka": {}, "api": {}}}
	assert.Equal(t, []string{"api", "kafka", "redis"}, r.Names())
}

func TestCheck_NoCheckersIsUp(t *testing.T) {
	assert.Equal(t, StatusUp, NewHandler().Check(context.Background()).Status)
}
