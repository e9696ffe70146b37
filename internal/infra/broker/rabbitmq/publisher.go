package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

type Config struct {
	URL      string
	Exchange string
}

// Publisher sends outbox events to a durable topic exchange; the topic becomes
// the routing key.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.Exchange == "" {
		return nil, fmt.Errorf("rabbitmq: exchange name is required")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		cfg.Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: declare exchange %q: %w", cfg.Exchange, err)
	}
	return &Publisher{conn: conn, channel: ch, exchange: cfg.Exchange}, nil
}

func (p *Publisher) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if p.channel == nil || p.conn == nil || p.conn.IsClosed() {
		return fmt.Errorf("rabbitmq: not connected")
	}
	msg := amqp.Publishing{
		ContentType:  "application/cloudevents+json",
		Body:         payload,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		MessageId:    headers["ce-id"],
		Headers:      tableFrom(headers, key),
	}
	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.channel.PublishWithContext(publishCtx, p.exchange, topic, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq: publish %s: %w", topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	var firstErr error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			firstErr = err
		}
		p.channel = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.conn = nil
	}
	return firstErr
}

func tableFrom(headers map[string]string, key string) amqp.Table {
	table := make(amqp.Table, len(headers)+1)
	for k, v := range headers {
		table[k] = v
	}
	if key != "" {
		table["x-aggregate-id"] = key
	}
	return table
}
