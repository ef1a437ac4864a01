package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-divergence-service/internal/ports"
)

var sampleAlert = ports.DivergenceAlert{
	RecordID:           "rec-1",
	RouteID:            "home-office",
	Provider:           "tomtom",
	ComparedTo:         "google",
	AvgDeviationMeters: 612,
	MaxDeviationMeters: 1480,
	Timestamp:          1_700_000_000_000,
}

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error { return nil }

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifierWith(zerolog.New(&buf))

	require.NoError(t, n.Notify(context.Background(), sampleAlert))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "home-office", line["route_id"])
	assert.Equal(t, "tomtom", line["provider"])
	assert.Equal(t, "google", line["compared_to"])
	assert.EqualValues(t, 612, line["avg_m"])
}

func TestRabbitMQNotifierPublishes(t *testing.T) {
	ch := &fakeChannel{}
	n := &RabbitMQNotifier{channel: ch, exchange: AlertExchange}

	require.NoError(t, n.Notify(context.Background(), sampleAlert))

	assert.Equal(t, AlertExchange, ch.exchange)
	assert.Equal(t, "route.divergence.home-office", ch.key)
	assert.Equal(t, uint8(amqp.Persistent), ch.msg.DeliveryMode)
	assert.Equal(t, "application/json", ch.msg.ContentType)

	var evt Event
	require.NoError(t, json.Unmarshal(ch.msg.Body, &evt))
	assert.Equal(t, EventRouteDivergence, evt.Type)
	assert.Equal(t, sampleAlert, evt.Data)
}

func TestRabbitMQNotifierPublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	n := &RabbitMQNotifier{channel: ch, exchange: AlertExchange}

	err := n.Notify(context.Background(), sampleAlert)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel closed")
	assert.NoError(t, n.Close())
}

func TestKafkaNotifierWritesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	n := &KafkaNotifier{writer: w}

	require.NoError(t, n.Notify(context.Background(), sampleAlert))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, []byte("home-office"), msg.Key)
	assert.Equal(t, int64(1_700_000_000_000), msg.Time.UnixMilli())

	var evt Event
	require.NoError(t, json.Unmarshal(msg.Value, &evt))
	assert.Equal(t, sampleAlert, evt.Data)
}

func TestKafkaNotifierWriteError(t *testing.T) {
	n := &KafkaNotifier{writer: &fakeWriter{err: errors.New("no brokers")}}
	require.Error(t, n.Notify(context.Background(), sampleAlert))
}
