package bootstrap

import (
	"fmt"
	"log/slog"

	"rentals/internal/infra/broker/kafka"
	"rentals/internal/infra/broker/rabbitmq"
	"rentals/internal/infra/config"
	"rentals/internal/infra/outbox"
)

// NewProducer connects the broker EVENTS_DRIVER names. With "none" events are
// only logged.
func NewProducer(cfg config.Config, logger *slog.Logger) (outbox.Producer, func() error, error) {
	switch cfg.EventsDriver {
	case config.EventsKafka:
		p, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case config.EventsRabbitMQ:
		p, err := rabbitmq.NewPublisher(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange})
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case config.EventsNone, "":
		return outbox.LogProducer{Logger: logger}, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown events driver %q", cfg.EventsDriver)
	}
}

// NewRelay pairs an outbox store with the configured producer.
func NewRelay(cfg config.Config, store *outbox.Store, producer outbox.Producer, logger *slog.Logger) *outbox.Worker {
	return &outbox.Worker{
		Store:       store,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Source:      "app://rentals/catalogctl",
		Backoff:     cfg.RetryBackoff,
		Logger:      logger,
	}
}
