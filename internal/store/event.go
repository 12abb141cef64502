package store

import (
	"sync"
	"time"
)

// Phase is a step of an operation's lifecycle. Every operation emits
// PhasePending and then exactly one of the other three.
type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseFulfilled Phase = "fulfilled"
	PhaseRejected  Phase = "rejected"
	PhaseAbandoned Phase = "abandoned"
)

// Terminal reports whether p ends an operation.
func (p Phase) Terminal() bool {
	return p != PhasePending
}

// OpKind names a store operation.
type OpKind string

const (
	OpListReviews    OpKind = "review.list"
	OpCreateReview   OpKind = "review.create"
	OpUpdateReview   OpKind = "review.update"
	OpDeleteReview   OpKind = "review.delete"
	OpPurchasedSizes OpKind = "order.purchased_sizes"
	OpListProducts   OpKind = "product.list"
	OpGetProduct     OpKind = "product.get"
	OpCreateProduct  OpKind = "product.create"
	OpAddToCart      OpKind = "cart.add"
)

// Closeable reports whether a successful op of this kind completes the
// dialog it was submitted from. Review delete is deliberately not closeable.
func (k OpKind) Closeable() bool {
	switch k {
	case OpCreateReview, OpUpdateReview, OpCreateProduct:
		return true
	}
	return false
}

// Event is one lifecycle transition of one operation.
type Event struct {
	OpID      string
	Store     string
	Kind      OpKind
	Phase     Phase
	ProductID string
	ReviewID  string
	// Err is the shopper-facing failure text of a rejection, or the
	// cancellation cause of an abandonment.
	Err     string
	Elapsed time.Duration
	At      time.Time
}

// Listener receives lifecycle events. It runs on the goroutine that drove
// the operation and must not block.
type Listener func(Event)

type hub struct {
	mu        sync.Mutex
	next      int
	listeners map[int]Listener
}

func (h *hub) subscribe(l Listener) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.listeners == nil {
		h.listeners = make(map[int]Listener)
	}
	id := h.next
	h.next++
	h.listeners[id] = l

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

func (h *hub) emit(e Event) {
	h.mu.Lock()
	ls := make([]Listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		ls = append(ls, l)
	}
	h.mu.Unlock()

	for _, l := range ls {
		l(e)
	}
}
