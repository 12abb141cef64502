package validator

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewBody struct {
	Content string `json:"content" validate:"notblank"`
	Rate    int    `json:"rate" validate:"gte=0,lte=5"`
	Image   string `json:"image" validate:"omitempty,url,max=64"`
	Size    string `json:"size,omitempty" validate:"omitempty,size"`
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(reviewBody{Content: "Great fit", Rate: 5, Size: "M"}))
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name  string
		body  reviewBody
		field string
		want  string
	}{
		{"missing content", reviewBody{Rate: 3}, "content", "is required"},
		{"blank content", reviewBody{Content: " \t ", Rate: 3}, "content", "is required"},
		{"rate too high", reviewBody{Content: "ok", Rate: 7}, "rate", "must be less than or equal to 5"},
		{"negative rate", reviewBody{Content: "ok", Rate: -1}, "rate", "must be greater than or equal to 0"},
		{"bad url", reviewBody{Content: "ok", Image: "not a url"}, "image", "must be a valid URL"},
		{"long url", reviewBody{Content: "ok", Image: "https://cdn.example.com/" + strings.Repeat("a", 64)}, "image", "must be at most 64 characters"},
		{"unknown size", reviewBody{Content: "ok", Size: "XXXXL"}, "size", "must be a size from XXS to XXXL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.body)

			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.True(t, valErr.Has(tt.field))
			assert.Equal(t, tt.want, valErr.Fields()[tt.field])
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := Validate(reviewBody{Rate: 9})
	require.Error(t, err)
	assert.Equal(t, "invalid content: is required, rate: must be less than or equal to 5", err.Error())
}

func TestValidate_NonStruct(t *testing.T) {
	require.Error(t, Validate("not a struct"))
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest("POST", "/review/p1", bytes.NewBufferString(`{"content":"nice","rate":4,"size":"l"}`))
	var body reviewBody
	require.NoError(t, DecodeAndValidate(req, &body))
	assert.Equal(t, 4, body.Rate)
	assert.Equal(t, "l", body.Size)

	bad := httptest.NewRequest("POST", "/review/p1", bytes.NewBufferString(`{"content":`))
	err := DecodeAndValidate(bad, &body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
