package dialog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/i18n"
	"github.com/utafrali/storefront/pkg/logger"
)

// Submission is the completion of one Submit call.
type Submission struct {
	Mode   Mode
	Review *domain.Review
	// Closed is true when the submission closed the dialog.
	Closed bool
}

// Submit validates the form and dispatches a create (new mode) or update
// (edit mode). Validation failures are alerted and nothing is sent. On
// success the dialog closes and resets; on a remote failure it stays open
// so the shopper can resubmit, and the failure is toasted by the store.
func (c *Controller) Submit(ctx context.Context) (Submission, error) {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return Submission{}, ErrNotOpen
	}
	if c.submitting {
		c.mu.Unlock()
		return Submission{}, ErrSubmitInProgress
	}

	mode := c.state.Mode()
	form := c.form
	productID, reviewID := c.productID, c.reviewID
	sizes := append([]string(nil), c.sizes...)
	gen := c.gen

	if err := validate(mode, form, sizes); err != nil {
		c.mu.Unlock()
		c.alert(c.alertText(err))
		return Submission{Mode: mode}, err
	}
	c.submitting = true
	c.mu.Unlock()

	log := logger.WithContext(ctx, c.logger).With(
		slog.String("mode", string(mode)),
		slog.String("product_id", productID),
	)

	var (
		review *domain.Review
		err    error
	)
	if mode == ModeNew {
		review, err = c.reviews.CreateReview(ctx, productID, form)
	} else {
		review, err = c.reviews.UpdateReview(ctx, reviewID, productID, form)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.gen == gen
	if current {
		c.submitting = false
	}
	if err != nil {
		log.DebugContext(ctx, "review submission failed", slog.String("error", err.Error()))
		return Submission{Mode: mode}, err
	}

	sub := Submission{Mode: mode, Review: review}
	if current {
		c.close()
		sub.Closed = true
	}
	log.DebugContext(ctx, "review submitted", slog.Bool("closed", sub.Closed))
	return sub, nil
}

func validate(mode Mode, form domain.ReviewForm, sizes []string) error {
	if err := form.Validate(); err != nil {
		return err
	}
	if mode == ModeEdit {
		return nil
	}
	if len(sizes) == 0 {
		return domain.ErrNoEligibleSize
	}
	if form.Size == "" || !domain.ContainsSize(sizes, form.Size) {
		return domain.ErrSizeRequired
	}
	return nil
}

func (c *Controller) alertText(err error) string {
	key := ""
	switch {
	case errors.Is(err, domain.ErrRateOutOfRange):
		key = i18n.RateOutOfRange
	case errors.Is(err, domain.ErrContentRequired):
		key = i18n.ContentRequired
	case errors.Is(err, domain.ErrNoEligibleSize):
		key = i18n.NoEligibleSize
	case errors.Is(err, domain.ErrSizeRequired):
		key = i18n.SizeRequired
	default:
		return err.Error()
	}
	return i18n.T(c.locale, key)
}
