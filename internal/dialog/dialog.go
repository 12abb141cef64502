// Package dialog implements the review dialog: one create/edit form over
// the review and eligibility stores, with its open/closed state machine.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/i18n"
	"github.com/utafrali/storefront/internal/store"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// State is the dialog's state machine position.
type State string

const (
	StateClosed   State = "closed"
	StateOpenNew  State = "open-new"
	StateOpenEdit State = "open-edit"
)

// Mode is what a submission does.
type Mode string

const (
	ModeNew  Mode = "new"
	ModeEdit Mode = "edit"
)

// Mode returns the submit mode of an open state.
func (s State) Mode() Mode {
	if s == StateOpenEdit {
		return ModeEdit
	}
	return ModeNew
}

var (
	ErrNotOpen          = errors.New("review dialog is not open")
	ErrAlreadyOpen      = errors.New("review dialog is already open")
	ErrSizeLocked       = errors.New("size cannot change while editing a review")
	ErrSizeNotEligible  = errors.New("size was not purchased")
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrUnknownField     = errors.New("unknown form field")
)

// Field identifies a form field for keyed updates.
type Field string

const (
	FieldContent Field = "content"
	FieldImage   Field = "image"
	FieldSize    Field = "size"
	FieldRate    Field = "rate"
)

// Reviews is the review store surface the dialog drives.
type Reviews interface {
	CreateReview(ctx context.Context, productID string, form domain.ReviewForm) (*domain.Review, error)
	UpdateReview(ctx context.Context, reviewID, productID string, form domain.ReviewForm) (*domain.Review, error)
	SetSelectedReview(r domain.Review)
	ClearSelectedReview()
	ClearError()
}

// Eligibility is the eligibility store surface the dialog reads.
type Eligibility interface {
	PurchasedSizes(ctx context.Context, productID string) ([]string, error)
	Sizes(productID string) ([]string, bool)
	Subscribe(l store.Listener) func()
}

// Alerter shows a blocking validation message to the shopper.
type Alerter func(message string)

// Controller is the review dialog. It owns only transient form state.
type Controller struct {
	reviews     Reviews
	eligibility Eligibility
	session     store.Session
	alert       Alerter
	locale      string
	logger      *slog.Logger

	mu         sync.Mutex
	state      State
	productID  string
	reviewID   string
	form       domain.ReviewForm
	sizes      []string
	resolved   bool
	sizeChosen bool
	submitting bool
	gen        uint64
	stopQuery  context.CancelFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithAlerter sets how validation failures are shown.
func WithAlerter(a Alerter) Option {
	return func(c *Controller) { c.alert = a }
}

// WithLocale sets the locale of alert messages.
func WithLocale(locale string) Option {
	return func(c *Controller) { c.locale = i18n.Resolve(locale) }
}

// WithSession makes opening a new review require a signed-in shopper.
func WithSession(s store.Session) Option {
	return func(c *Controller) { c.session = s }
}

// New creates a closed Controller.
func New(reviews Reviews, eligibility Eligibility, l *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		reviews:     reviews,
		eligibility: eligibility,
		alert:       func(string) {},
		locale:      i18n.Default,
		logger:      l.With(slog.String("component", "review_dialog")),
		state:       StateClosed,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// OpenNew opens the dialog to write a review of productID and blocks until
// the shopper's purchased sizes resolve. The size then defaults to the
// first purchased size. A failed query leaves the dialog open with no
// sizes, which blocks submission.
func (c *Controller) OpenNew(ctx context.Context, productID string) error {
	if productID == "" {
		return apperrors.InvalidInput("product id is required")
	}
	if c.session != nil && !c.session.Present() {
		return domain.ErrLoginRequired
	}

	c.mu.Lock()
	if c.state != StateClosed {
		c.mu.Unlock()
		return ErrAlreadyOpen
	}
	c.reset()
	c.state = StateOpenNew
	c.productID = productID
	qctx, cancel := context.WithCancel(ctx)
	c.stopQuery = cancel
	gen := c.gen
	c.mu.Unlock()

	c.reviews.ClearError()

	sizes, err := c.eligibility.PurchasedSizes(qctx, productID)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return nil
	}
	if err != nil {
		logger.WithContext(ctx, c.logger).WarnContext(ctx, "purchased sizes unavailable",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("load purchased sizes: %w", err)
	}
	c.applySizes(sizes)
	return nil
}

// OpenEdit opens the dialog on an existing review. The form is seeded from
// it and the size becomes display-only; no eligibility query is made.
func (c *Controller) OpenEdit(r domain.Review) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateClosed {
		return ErrAlreadyOpen
	}
	c.reviews.SetSelectedReview(r)
	c.reviews.ClearError()

	c.reset()
	c.state = StateOpenEdit
	c.productID = r.ProductID()
	c.reviewID = r.ID
	c.form = domain.FormFromReview(r)
	c.sizeChosen = true
	return nil
}

// Follow applies eligibility results for the open product that arrive from
// outside OpenNew, e.g. a refetch triggered elsewhere. It returns the
// unsubscribe func.
func (c *Controller) Follow() func() {
	return c.eligibility.Subscribe(func(e store.Event) {
		if e.Kind != store.OpPurchasedSizes || e.Phase != store.PhaseFulfilled {
			return
		}
		if sizes, ok := c.eligibility.Sizes(e.ProductID); ok {
			c.EligibilityChanged(e.ProductID, sizes)
		}
	})
}

// EligibilityChanged records a new eligibility set for productID. The size
// is seeded from it only if the shopper has not got one yet.
func (c *Controller) EligibilityChanged(productID string, sizes []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOpenNew || c.productID != productID {
		return
	}
	c.applySizes(sizes)
}

func (c *Controller) applySizes(sizes []string) {
	c.sizes = domain.EligibleSizes(sizes)
	c.resolved = true
	if c.sizeChosen {
		return
	}
	if size, ok := domain.DefaultSize(c.sizes); ok {
		c.form.Size = size
		c.sizeChosen = true
	}
}

// SetContent merges a content edit into the form.
func (c *Controller) SetContent(content string) error {
	return c.update(func() error {
		c.form.Content = content
		return nil
	})
}

// SetRate merges a rating edit into the form. Range is checked on submit.
func (c *Controller) SetRate(rate int) error {
	return c.update(func() error {
		c.form.Rate = rate
		return nil
	})
}

// SetImage merges an image URL into the form.
func (c *Controller) SetImage(url string) error {
	return c.update(func() error {
		c.form.Image = url
		return nil
	})
}

// UploadImage is the completion callback of an image upload widget.
func (c *Controller) UploadImage(url string) {
	if err := c.SetImage(url); err != nil {
		c.logger.Debug("image upload finished after dialog closed", slog.String("url", url))
	}
}

// SetSize selects one of the purchased sizes. Only possible in new mode.
func (c *Controller) SetSize(size string) error {
	return c.update(func() error {
		if c.state == StateOpenEdit {
			return ErrSizeLocked
		}
		if c.resolved && !domain.ContainsSize(c.sizes, size) {
			return fmt.Errorf("%w: %s", ErrSizeNotEligible, domain.DisplaySize(size))
		}
		c.form.Size = domain.NormalizeSize(size)
		c.sizeChosen = true
		return nil
	})
}

// Set merges value into the field named by f.
func (c *Controller) Set(f Field, value string) error {
	switch f {
	case FieldContent:
		return c.SetContent(value)
	case FieldImage:
		return c.SetImage(value)
	case FieldSize:
		return c.SetSize(value)
	case FieldRate:
		rate, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("rate %q: %w", value, domain.ErrRateOutOfRange)
		}
		return c.SetRate(rate)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
}

func (c *Controller) update(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return ErrNotOpen
	}
	return fn()
}

// Cancel closes the dialog and resets the form. A pending eligibility query
// is abandoned; a submission already sent is not.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return
	}
	c.close()
}

// close must be called with c.mu held.
func (c *Controller) close() {
	if c.state == StateOpenEdit {
		c.reviews.ClearSelectedReview()
	}
	c.reset()
	c.state = StateClosed
}

// reset must be called with c.mu held. It bumps the generation so results
// of work started by a previous opening are ignored.
func (c *Controller) reset() {
	if c.stopQuery != nil {
		c.stopQuery()
		c.stopQuery = nil
	}
	c.gen++
	c.productID = ""
	c.reviewID = ""
	c.form = domain.EmptyForm()
	c.sizes = nil
	c.resolved = false
	c.sizeChosen = false
	c.submitting = false
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
