package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// LogSink writes toasts to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(l *slog.Logger) *LogSink {
	return &LogSink{logger: l}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(ctx context.Context, msg Message) error {
	level := slog.LevelInfo
	if msg.Status == StatusError {
		level = slog.LevelWarn
	}
	logger.WithContext(ctx, s.logger).Log(ctx, level, "toast",
		slog.String("toast_id", msg.ID),
		slog.String("status", string(msg.Status)),
		slog.String("message", msg.Text),
		slog.String("product_id", msg.ProductID),
	)
	return nil
}

// WriterSink prints toasts as lines, e.g. to a terminal.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a WriterSink.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Name() string { return "writer" }

func (s *WriterSink) Deliver(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "[%s] %s\n", msg.Status, msg.Text)
	return err
}

// Publisher is the part of kafka.Producer the KafkaSink needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// EventToastShown is the event type of forwarded toasts.
const EventToastShown = "toast.shown"

// KafkaSink forwards toasts to a Kafka topic so they can be audited or
// replayed by other consumers.
type KafkaSink struct {
	pub    Publisher
	topic  string
	source string
}

// NewKafkaSink creates a KafkaSink. An empty topic means kafka.Topic("ui", "toast").
func NewKafkaSink(pub Publisher, topic, source string) *KafkaSink {
	if topic == "" {
		topic = kafka.Topic("ui", "toast")
	}
	return &KafkaSink{pub: pub, topic: topic, source: source}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Deliver(ctx context.Context, msg Message) error {
	key := msg.ProductID
	if key == "" {
		key = msg.ID
	}
	event, err := kafka.NewEvent(EventToastShown, key, s.source, msg)
	if err != nil {
		return fmt.Errorf("build toast event: %w", err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	event.WithAttribute("op_id", logger.OperationIDFromContext(ctx)).
		WithAttribute("status", string(msg.Status))
	return s.pub.Publish(ctx, s.topic, event)
}
