package alerts

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"route-divergence-service/internal/ports"
)

const AlertExchange = "route-alerts"

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQNotifier publishes divergence events to a durable topic exchange.
type RabbitMQNotifier struct {
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
}

func NewRabbitMQNotifier(uri string) (*RabbitMQNotifier, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		AlertExchange, // name
		"topic",       // type
		true,          // durable
		false,         // auto-deleted
		false,         // internal
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", AlertExchange, err)
	}

	return &RabbitMQNotifier{conn: conn, channel: ch, exchange: AlertExchange}, nil
}

func (n *RabbitMQNotifier) Notify(ctx context.Context, alert ports.DivergenceAlert) error {
	body, err := encodeEvent(alert)
	if err != nil {
		return err
	}

	key := routingKey(alert)
	log.Debug().Str("routing_key", key).Msg("publishing divergence event")

	err = n.channel.PublishWithContext(ctx,
		n.exchange, // exchange
		key,        // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    alert.RecordID,
		})
	if err != nil {
		return fmt.Errorf("publish divergence event: %w", err)
	}
	return nil
}

func (n *RabbitMQNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Close()
}
