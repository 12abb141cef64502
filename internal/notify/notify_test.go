package notify

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type failingSink struct{ calls int }

func (s *failingSink) Name() string { return "failing" }

func (s *failingSink) Deliver(context.Context, Message) error {
	s.calls++
	return errors.New("sink down")
}

func TestBus_LatestReplacesPrior(t *testing.T) {
	b := NewBus(logger.Discard())

	b.Push(context.Background(), Success("리뷰 생성 완료!"))
	b.Push(context.Background(), Failure("network error"))

	cur, ok := b.Current()
	require.True(t, ok)
	assert.Equal(t, "network error", cur.Text)
	assert.Equal(t, StatusError, cur.Status)
	assert.NotEmpty(t, cur.ID)
}

func TestBus_ExpiresAfterTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	b := NewBus(logger.Discard(), WithTTL(2*time.Second), WithClock(clock.Now))

	b.Push(context.Background(), Success("Review deleted!"))
	_, ok := b.Current()
	assert.True(t, ok)

	clock.Advance(2 * time.Second)
	_, ok = b.Current()
	assert.False(t, ok)
}

func TestBus_Dismiss(t *testing.T) {
	b := NewBus(logger.Discard())
	b.Push(context.Background(), Success("x"))
	b.Dismiss()
	_, ok := b.Current()
	assert.False(t, ok)
}

func TestBus_SubscribeAndUnsubscribe(t *testing.T) {
	b := NewBus(logger.Discard())
	ch, unsubscribe := b.Subscribe(2)

	b.Push(context.Background(), Success("one"))
	b.Push(context.Background(), Success("two"))
	b.Push(context.Background(), Success("dropped"))

	assert.Equal(t, "one", (<-ch).Text)
	assert.Equal(t, "two", (<-ch).Text)

	unsubscribe()
	unsubscribe()
	_, open := <-ch
	assert.False(t, open)

	b.Push(context.Background(), Success("after"))
}

func TestBus_SinkErrorsDoNotStopDelivery(t *testing.T) {
	var buf bytes.Buffer
	failing := &failingSink{}
	b := NewBus(logger.Discard(), WithSink(failing), WithSink(NewWriterSink(&buf)))

	b.Push(context.Background(), Failure("리뷰 생성 중 오류가 발생했습니다."))

	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, "[error] 리뷰 생성 중 오류가 발생했습니다.\n", buf.String())
}

type recordingPublisher struct {
	topic  string
	events []*kafka.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event *kafka.Event) error {
	p.topic = topic
	p.events = append(p.events, event)
	return p.err
}

func TestKafkaSink_Deliver(t *testing.T) {
	pub := &recordingPublisher{}
	sink := NewKafkaSink(pub, "", "reviewctl")

	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	ctx = logger.WithOperationID(ctx, "op-1")
	msg := Message{ID: "t1", Text: "Review posted!", Status: StatusSuccess, ProductID: "p1"}

	require.NoError(t, sink.Deliver(ctx, msg))
	require.Len(t, pub.events, 1)
	assert.Equal(t, "storefront.ui.toast", pub.topic)

	ev := pub.events[0]
	assert.Equal(t, EventToastShown, ev.Type)
	assert.Equal(t, "p1", ev.Key)
	assert.Equal(t, "reviewctl", ev.Source)
	assert.Equal(t, "corr-1", ev.CorrelationID)
	assert.Equal(t, "op-1", ev.Attributes["op_id"])
	assert.Equal(t, "success", ev.Attributes["status"])

	var decoded Message
	require.NoError(t, ev.DecodePayload(&decoded))
	assert.Equal(t, "Review posted!", decoded.Text)
}

func TestKafkaSink_KeyFallsBackToToastID(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	sink := NewKafkaSink(pub, "custom.topic", "reviewctl")

	err := sink.Deliver(context.Background(), Message{ID: "t9", Text: "x", Status: StatusError})
	require.Error(t, err)
	assert.Equal(t, "custom.topic", pub.topic)
	assert.Equal(t, "t9", pub.events[0].Key)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(logger.NewWithWriter("test", "info", &buf))

	require.NoError(t, sink.Deliver(context.Background(), Failure("network error")))
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), `"message":"network error"`)
}
