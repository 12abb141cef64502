package domain

import (
	"errors"

	"github.com/utafrali/storefront/pkg/validator"
)

// Local validation failures. None of them ever reaches the network.
var (
	ErrRateOutOfRange  = errors.New("rate must be between 0 and 5")
	ErrContentRequired = errors.New("review content is required")
	ErrSizeRequired    = errors.New("a size must be selected")
	ErrNoEligibleSize  = errors.New("no purchased size to review")
	ErrLoginRequired   = errors.New("sign in required")
)

// ReviewForm is the transient create/edit form.
type ReviewForm struct {
	Content string `json:"content" validate:"notblank"`
	Image   string `json:"image"`
	Size    string `json:"size"`
	Rate    int    `json:"rate" validate:"gte=0,lte=5"`
}

// EmptyForm returns the defaults a closed dialog resets to.
func EmptyForm() ReviewForm {
	return ReviewForm{}
}

// FormFromReview seeds an edit form from an existing review.
func FormFromReview(r Review) ReviewForm {
	return ReviewForm{
		Content: r.Content,
		Image:   r.Image,
		Size:    NormalizeSize(r.Item.Size),
		Rate:    r.Rate,
	}
}

// Validate checks the fields common to both dialog modes and maps failures
// onto the package sentinels. The rate check wins when both fail.
func (f ReviewForm) Validate() error {
	err := validator.Validate(f)
	if err == nil {
		return nil
	}

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		if valErr.Has("rate") {
			return ErrRateOutOfRange
		}
		if valErr.Has("content") {
			return ErrContentRequired
		}
	}
	return err
}

// NewReviewPayload is the body of POST /review/{productId}.
type NewReviewPayload struct {
	Content string `json:"content"`
	Rate    int    `json:"rate"`
	Image   string `json:"image"`
	Size    string `json:"size"`
}

// ReviewEdit is the body of PUT /review/{reviewId}. Size and author are
// never sent on edit.
type ReviewEdit struct {
	Content string `json:"content"`
	Rate    int    `json:"rate"`
	Image   string `json:"image"`
}

// NewPayload builds the create body from the form.
func (f ReviewForm) NewPayload() NewReviewPayload {
	return NewReviewPayload{
		Content: f.Content,
		Rate:    f.Rate,
		Image:   f.Image,
		Size:    NormalizeSize(f.Size),
	}
}

// EditPayload builds the update body from the form.
func (f ReviewForm) EditPayload() ReviewEdit {
	return ReviewEdit{
		Content: f.Content,
		Rate:    f.Rate,
		Image:   f.Image,
	}
}
