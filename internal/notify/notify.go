// Package notify is the process-wide transient message channel (toasts).
// Any operation may push into it; it knows nothing about who pushed.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the kind of a toast.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// DefaultTTL is how long a toast stays current when the bus has no TTL set.
const DefaultTTL = 3 * time.Second

// Message is one toast.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"message"`
	Status    Status    `json:"status"`
	Source    string    `json:"source,omitempty"`
	ProductID string    `json:"productId,omitempty"`
	At        time.Time `json:"at"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Success builds a success toast.
func Success(text string) Message {
	return Message{Text: text, Status: StatusSuccess}
}

// Failure builds an error toast.
func Failure(text string) Message {
	return Message{Text: text, Status: StatusError}
}

// Channel accepts toasts. Push never fails and never blocks on consumers.
type Channel interface {
	Push(ctx context.Context, msg Message)
}

// Sink receives every pushed toast, e.g. to log or forward it.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, msg Message) error
}

// Bus is the in-process Channel. The most recent toast replaces the prior
// one and stays current until its TTL runs out or it is dismissed.
type Bus struct {
	mu      sync.Mutex
	current *Message
	subs    map[int]chan Message
	nextSub int

	ttl    time.Duration
	sinks  []Sink
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithTTL sets how long a toast stays current.
func WithTTL(ttl time.Duration) Option {
	return func(b *Bus) {
		if ttl > 0 {
			b.ttl = ttl
		}
	}
}

// WithSink adds a sink that receives every toast.
func WithSink(s Sink) Option {
	return func(b *Bus) { b.sinks = append(b.sinks, s) }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) { b.now = now }
}

// NewBus creates a Bus.
func NewBus(logger *slog.Logger, opts ...Option) *Bus {
	b := &Bus{
		subs:   make(map[int]chan Message),
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: logger,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Push records msg as the current toast and fans it out to subscribers and
// sinks. Slow subscribers miss messages rather than block the pusher.
func (b *Bus) Push(ctx context.Context, msg Message) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.At = b.now()
	msg.ExpiresAt = msg.At.Add(b.ttl)

	b.mu.Lock()
	b.current = &msg
	for _, ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
	sinks := b.sinks
	b.mu.Unlock()

	for _, s := range sinks {
		if err := s.Deliver(ctx, msg); err != nil {
			b.logger.WarnContext(ctx, "notification sink failed",
				slog.String("sink", s.Name()),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Current returns the toast on display, if any has not expired.
func (b *Bus) Current() (Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil || !b.now().Before(b.current.ExpiresAt) {
		return Message{}, false
	}
	return *b.current, true
}

// Dismiss clears the current toast.
func (b *Bus) Dismiss() {
	b.mu.Lock()
	b.current = nil
	b.mu.Unlock()
}

// Subscribe returns a channel receiving every subsequent toast and a func
// that unsubscribes and closes it.
func (b *Bus) Subscribe(buffer int) (<-chan Message, func()) {
	ch := make(chan Message, buffer)

	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}
