package store

// Status is the per-store {loading, error, success} view. It is derived
// from lifecycle events and is never the source of truth for a single
// operation's outcome; that is the operation's return value.
type Status struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// statusProjection folds lifecycle events into a Status. Loading counts
// in-flight operations so overlapping calls do not clear each other.
type statusProjection struct {
	inFlight int
	err      string
	success  bool
}

func (p *statusProjection) apply(e Event) {
	switch e.Phase {
	case PhasePending:
		p.inFlight++
		return
	case PhaseFulfilled:
		p.err = ""
		if e.Kind.Closeable() {
			p.success = true
		}
	case PhaseRejected:
		p.err = e.Err
		if e.Kind.Closeable() {
			p.success = false
		}
	}
	if p.inFlight > 0 {
		p.inFlight--
	}
}

func (p *statusProjection) clearError() {
	p.err = ""
	p.success = false
}

func (p *statusProjection) view() Status {
	return Status{
		Loading: p.inFlight > 0,
		Error:   p.err,
		Success: p.success,
	}
}
