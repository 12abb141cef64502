package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/validator"
)

// Envelope statuses used by the storefront API.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// Response is the storefront JSON envelope: {"status": ..., "data": ...} on
// success and {"status": "fail", "error": "..."} on failure.
type Response struct {
	Status string            `json:"status"`
	Data   any               `json:"data,omitempty"`
	Error  string            `json:"error,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a success envelope around data.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{Status: StatusSuccess, Data: data})
}

// WriteFail writes a failure envelope carrying message.
func WriteFail(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{Status: StatusFail, Error: message})
}

// WriteError writes a failure envelope for err. AppError messages are sent
// as-is; anything else becomes a logged 500 with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		WriteFail(w, apperrors.HTTPStatus(err), appErr.Message)
		return
	}

	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		WriteFail(w, status, "an internal error occurred")
		return
	}
	WriteFail(w, status, err.Error())
}

// WriteValidationError writes a 400 failure envelope with field-level errors
// when err comes from the validator package.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Status: StatusFail,
			Error:  valErr.Error(),
			Fields: valErr.Fields(),
		})
		return
	}

	WriteFail(w, http.StatusBadRequest, err.Error())
}
