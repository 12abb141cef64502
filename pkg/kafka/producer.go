package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/utafrali/storefront/pkg/logger"
)

// ProducerConfig holds Kafka producer configuration.
type ProducerConfig struct {
	Brokers      []string
	BatchSize    int
	BatchTimeout time.Duration
	Async        bool
	DialTimeout  time.Duration
}

// DefaultProducerConfig returns defaults for low-volume UI events: small
// batches and async writes so a slow broker never stalls the caller.
func DefaultProducerConfig(brokers []string) ProducerConfig {
	return ProducerConfig{
		Brokers:      brokers,
		BatchSize:    20,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		DialTimeout:  3 * time.Second,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes storefront events.
type Producer struct {
	writer      messageWriter
	brokers     []string
	dialTimeout time.Duration
	logger      *slog.Logger
}

// NewProducer creates a Producer. Nothing is dialed until the first write.
func NewProducer(cfg ProducerConfig, l *slog.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		Async:        cfg.Async,
		RequiredAcks: kafka.RequireOne,
		ErrorLogger: kafka.LoggerFunc(func(format string, args ...any) {
			l.Error(fmt.Sprintf(format, args...), slog.String("component", "kafka_writer"))
		}),
	}

	return &Producer{
		writer:      w,
		brokers:     cfg.Brokers,
		dialTimeout: cfg.DialTimeout,
		logger:      l,
	}
}

// headerCarrier lets the otel propagator write into kafka headers.
type headerCarrier struct {
	headers *[]kafka.Header
}

func (c headerCarrier) Get(key string) string {
	for _, h := range *c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	*c.headers = append(*c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, len(*c.headers))
	for i, h := range *c.headers {
		keys[i] = h.Key
	}
	return keys
}

var _ propagation.TextMapCarrier = headerCarrier{}

func (p *Producer) message(ctx context.Context, topic string, event *Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}

	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(event.Type)},
		{Key: "source", Value: []byte(event.Source)},
	}
	if event.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: "correlation_id", Value: []byte(event.CorrelationID)})
	}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{headers: &headers})

	return kafka.Message{
		Topic:   topic,
		Key:     []byte(event.Key),
		Value:   value,
		Headers: headers,
		Time:    event.OccurredAt,
	}, nil
}

// Publish writes event to topic, keyed by event.Key.
func (p *Producer) Publish(ctx context.Context, topic string, event *Event) error {
	if event == nil {
		return errors.New("kafka: nil event")
	}
	msg, err := p.message(ctx, topic, event)
	if err != nil {
		return err
	}

	log := logger.WithContext(ctx, p.logger).With(
		slog.String("topic", topic),
		slog.String("event_type", event.Type),
	)
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		ProducerPublishErrors.WithLabelValues(topic).Inc()
		log.ErrorContext(ctx, "failed to publish event", slog.String("error", err.Error()))
		return fmt.Errorf("publish event to %s: %w", topic, err)
	}

	ProducerMessagesPublished.WithLabelValues(topic).Inc()
	log.DebugContext(ctx, "event published", slog.String("key", event.Key))
	return nil
}

// Ping reports whether at least one broker answers a metadata request.
func (p *Producer) Ping(ctx context.Context) error {
	if p.dialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.dialTimeout)
		defer cancel()
	}
	return PingBrokers(ctx, p.brokers)
}

// PingBrokers dials brokers in order and returns nil at the first one that
// lists the cluster.
func PingBrokers(ctx context.Context, brokers []string) error {
	if len(brokers) == 0 {
		return errors.New("kafka: no brokers configured")
	}

	var errs []error
	for _, addr := range brokers {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		_, err = conn.Brokers()
		_ = conn.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", addr, err))
			continue
		}
		return nil
	}
	return fmt.Errorf("kafka: all brokers unreachable: %w", errors.Join(errs...))
}

// Close flushes pending messages and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
