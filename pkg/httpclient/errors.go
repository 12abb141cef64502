package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ErrorEnvelope is the failure body returned by the storefront API. The
// server reports the reason under "error"; some routes use "message" instead.
// "error" may also be a {code, message} object.
type ErrorEnvelope struct {
	Status  string          `json:"status"`
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// Text returns the human-readable reason carried by the envelope.
func (e ErrorEnvelope) Text() string {
	if len(e.Error) > 0 {
		var s string
		if json.Unmarshal(e.Error, &s) == nil && s != "" {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(e.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
	}
	return e.Message
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError whose Message is the server's text, verbatim. When the
// body carries no message the AppError message is left empty so callers can
// substitute a localized fallback.
//
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		appErr := apperrors.FromStatus(resp.StatusCode, "")
		appErr.Err = fmt.Errorf("read error body: %w: %w", appErr.Err, err)
		return appErr
	}

	var envelope ErrorEnvelope
	message := ""
	if json.Unmarshal(bodyBytes, &envelope) == nil {
		message = envelope.Text()
	}

	return apperrors.FromStatus(resp.StatusCode, strings.TrimSpace(message))
}
