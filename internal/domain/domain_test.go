package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewForm_Validate(t *testing.T) {
	tests := []struct {
		name    string
		form    ReviewForm
		wantErr error
	}{
		{"valid", ReviewForm{Content: "Great fit", Rate: 5}, nil},
		{"zero rate is valid", ReviewForm{Content: "meh", Rate: 0}, nil},
		{"rate too high", ReviewForm{Content: "Great fit", Rate: 7}, ErrRateOutOfRange},
		{"rate negative", ReviewForm{Content: "Great fit", Rate: -1}, ErrRateOutOfRange},
		{"empty content", ReviewForm{Rate: 3}, ErrContentRequired},
		{"blank content", ReviewForm{Content: "   ", Rate: 3}, ErrContentRequired},
		{"rate wins over content", ReviewForm{Rate: 9}, ErrRateOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestReviewForm_Payloads(t *testing.T) {
	f := ReviewForm{Content: "Great fit", Image: "http://img/1.png", Size: " M ", Rate: 5}

	assert.Equal(t, NewReviewPayload{Content: "Great fit", Rate: 5, Image: "http://img/1.png", Size: "m"}, f.NewPayload())
	assert.Equal(t, ReviewEdit{Content: "Great fit", Rate: 5, Image: "http://img/1.png"}, f.EditPayload())
}

func TestFormFromReview(t *testing.T) {
	r := Review{
		ID:      "r1",
		Content: "Runs small",
		Rate:    3,
		Image:   "http://img/2.png",
		Item:    PurchaseItem{Product: ProductRef{ID: "p1"}, Size: "L"},
	}
	f := FormFromReview(r)
	assert.Equal(t, ReviewForm{Content: "Runs small", Image: "http://img/2.png", Size: "l", Rate: 3}, f)
	assert.Equal(t, "p1", r.ProductID())
}

func TestReview_OwnedBy(t *testing.T) {
	r := Review{Author: Author{ID: "u1"}}
	assert.True(t, r.OwnedBy("u1"))
	assert.False(t, r.OwnedBy("u2"))
	assert.False(t, (&Review{}).OwnedBy(""))
}

func TestEligibleSizes(t *testing.T) {
	assert.Equal(t, []string{"m", "l"}, EligibleSizes([]string{"M", "l", "m", " ", "L"}))
	assert.Empty(t, EligibleSizes(nil))
}

func TestDefaultSize(t *testing.T) {
	size, ok := DefaultSize([]string{"m", "l"})
	require.True(t, ok)
	assert.Equal(t, "m", size)

	_, ok = DefaultSize([]string{})
	assert.False(t, ok)
}

func TestSizeDisplay(t *testing.T) {
	assert.Equal(t, "XL", DisplaySize("xl"))
	assert.Equal(t, "xl", NormalizeSize(" XL"))
	assert.True(t, ContainsSize([]string{"m", "l"}, "L"))
	assert.False(t, ContainsSize([]string{"m"}, "s"))
}

func TestProduct_SizeOptions(t *testing.T) {
	p := Product{Stock: map[string]int{"xl": 0, "s": 3, "m": 1, "free": 2}}
	assert.Equal(t, []SizeOption{
		{Size: "s", InStock: true},
		{Size: "m", InStock: true},
		{Size: "xl", InStock: false},
		{Size: "free", InStock: true},
	}, p.SizeOptions())
}

func TestValidRate(t *testing.T) {
	for r := -2; r <= 7; r++ {
		assert.Equal(t, r >= 0 && r <= 5, ValidRate(r), "rate %d", r)
	}
}

func TestReview_UnmarshalRefs(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		author     string
		authorName string
		productID  string
	}{
		{"populated", `{"userId":{"_id":"u-1","name":"Mina"},"item":{"productId":{"_id":"p-1","name":"Shirt"}}}`, "u-1", "Mina", "p-1"},
		{"bare ids", `{"userId":"u-2","item":{"productId":"p-2"}}`, "u-2", "", "p-2"},
		{"missing", `{}`, "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Review
			require.NoError(t, json.Unmarshal([]byte(tt.body), &r))
			assert.Equal(t, tt.author, r.Author.ID)
			assert.Equal(t, tt.authorName, r.Author.Name)
			assert.Equal(t, tt.productID, r.ProductID())
		})
	}

	var r Review
	assert.Error(t, json.Unmarshal([]byte(`{"userId":42}`), &r))
}
