package notify

import (
	"context"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Publisher pushes a serialized session event toward the notification
// subsystem. Delivery past the broker is out of this core's hands.
type Publisher interface {
	Publish(ctx context.Context, event string, body []byte) error
}

// AMQPPublisher publishes session events to a RabbitMQ fanout
// exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewAMQPPublisher(amqpURL, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish sends one event to the exchange. The event name rides along
// as the message type so consumers can route without parsing the body.
func (p *AMQPPublisher) Publish(_ context.Context, event string, body []byte) error {
	err := p.channel.Publish(
		p.exchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Type:        event,
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}

	return nil
}

// Close shuts the channel and connection down.
func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// LogPublisher writes events to the log instead of a broker. Used in
// development when no AMQP URL is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event string, body []byte) error {
	p.logger.Info("Session event",
		zap.String("event", event),
		zap.Int("payload_bytes", len(body)),
	)
	return nil
}
