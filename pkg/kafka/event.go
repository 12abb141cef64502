package kafka

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TopicPrefix namespaces every topic written by the storefront client.
const TopicPrefix = "storefront"

// Topic joins TopicPrefix and parts with dots, e.g.
// Topic("ui", "toast") == "storefront.ui.toast".
func Topic(parts ...string) string {
	return strings.Join(append([]string{TopicPrefix}, parts...), ".")
}

// SchemaVersion is the version stamped on new events.
const SchemaVersion = 1

// Event is the envelope of every message the storefront client publishes.
// Key decides the partition, so events about one product stay ordered.
type Event struct {
	ID            string            `json:"id"`
	Type          string            `json:"type"`
	Key           string            `json:"key"`
	Source        string            `json:"source"`
	SchemaVersion int               `json:"schema_version"`
	OccurredAt    time.Time         `json:"occurred_at"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
}

// NewEvent wraps payload in an envelope with a fresh id and the current time.
func NewEvent(eventType, key, source string, payload any) (*Event, error) {
	if eventType == "" {
		return nil, fmt.Errorf("kafka: event type is required")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}

	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Key:           key,
		Source:        source,
		SchemaVersion: SchemaVersion,
		OccurredAt:    time.Now().UTC(),
		Payload:       raw,
	}, nil
}

// WithCorrelationID sets the correlation ID on the event.
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// WithAttribute adds a string attribute. Empty values are skipped.
func (e *Event) WithAttribute(key, value string) *Event {
	if value == "" {
		return e
	}
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
	return e
}

// DecodeEvent parses an envelope read back from a topic.
func DecodeEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &event, nil
}

// DecodePayload unmarshals the payload into target.
func (e *Event) DecodePayload(target any) error {
	return json.Unmarshal(e.Payload, target)
}
