package dialog

import "github.com/utafrali/storefront/internal/domain"

// View is a render-ready snapshot of the dialog.
type View struct {
	State     State
	Mode      Mode
	ProductID string
	ReviewID  string
	Form      domain.ReviewForm

	// SizeOptions are the purchased sizes as shown, upper-case.
	SizeOptions  []string
	SizeDisplay  string
	SizeEditable bool
	// MissingSize is set once eligibility resolved to no sizes in new mode.
	MissingSize bool
	Resolved    bool
	Submitting  bool
	CanSubmit   bool
}

// Title returns the dialog heading.
func (v View) Title() string {
	if v.Mode == ModeEdit {
		return "Edit Review"
	}
	return "Add New Review"
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		State:       c.state,
		ProductID:   c.productID,
		ReviewID:    c.reviewID,
		Form:        c.form,
		SizeDisplay: domain.DisplaySize(c.form.Size),
		Resolved:    c.resolved,
		Submitting:  c.submitting,
	}
	if c.state == StateClosed {
		return v
	}

	v.Mode = c.state.Mode()
	if v.Mode == ModeNew {
		v.SizeEditable = true
		v.SizeOptions = make([]string, len(c.sizes))
		for i, s := range c.sizes {
			v.SizeOptions[i] = domain.DisplaySize(s)
		}
		v.MissingSize = c.resolved && len(c.sizes) == 0
	}
	v.CanSubmit = !c.submitting && validate(v.Mode, c.form, c.sizes) == nil
	return v
}
