package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"route-divergence-service/internal/ports"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes divergence events keyed by route id, so one
// route's alerts stay ordered within a partition.
type KafkaNotifier struct {
	writer messageWriter
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &KafkaNotifier{writer: w}
}

func (n *KafkaNotifier) Notify(ctx context.Context, alert ports.DivergenceAlert) error {
	body, err := encodeEvent(alert)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(alert.RouteID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(EventRouteDivergence)},
		},
		Time: time.UnixMilli(alert.Timestamp),
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write divergence event: %w", err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
