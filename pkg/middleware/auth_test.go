package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

func staticValidator(token string) (*Claims, error) {
	if token != "good" {
		return nil, errors.New("bad signature")
	}
	return &Claims{UserID: "u-1", Name: "Mina"}, nil
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		wantCode int
		wantErr  string
	}{
		{"missing header", "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "invalid authorization header format"},
		{"bad token", "Bearer nope", http.StatusUnauthorized, "invalid or expired token"},
		{"valid", "Bearer good", http.StatusOK, ""},
		{"lowercase scheme", "bearer good", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID, gotName string
			h := Auth(staticValidator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID = UserIDFromContext(r.Context())
				gotName = UserNameFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/review/p-1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantErr != "" {
				var resp httputil.Response
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, httputil.StatusFail, resp.Status)
				assert.Equal(t, tt.wantErr, resp.Error)
				assert.Empty(t, gotID)
				return
			}
			assert.Equal(t, "u-1", gotID)
			assert.Equal(t, "Mina", gotName)
		})
	}
}

func TestAuth_EnrichesRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewWithWriter("storefront-stub", "info", &buf)

	chain := RequestLogging(base)(Auth(staticValidator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("handler")
	})))

	req := httptest.NewRequest(http.MethodPost, "/review/p-1", nil)
	req.Header.Set("Authorization", "Bearer good")
	chain.ServeHTTP(httptest.NewRecorder(), req)

	var first map[string]any
	require.NoError(t, json.NewDecoder(&buf).Decode(&first))
	assert.Equal(t, "handler", first["msg"])
	assert.Equal(t, "u-1", first["user_id"])
	assert.NotEmpty(t, first["correlation_id"])
}

func TestUserIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, UserIDFromContext(req.Context()))
	assert.Empty(t, UserNameFromContext(req.Context()))
}
