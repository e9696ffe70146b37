package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"rentals/internal/infra/broker/kafka"
	"rentals/internal/infra/config"
	"rentals/internal/infra/inbox"
)

// watch tails the catalog topics and logs every event once.
func watch(ctx context.Context, cfg config.Config, logger *slog.Logger, group string) error {
	if len(cfg.KafkaBrokers) == 0 {
		return fmt.Errorf("%w: watch needs KAFKA_BROKERS", errUsage)
	}
	seen := inbox.NewStore(group, 0, 0)
	defer seen.Close()

	handler := kafka.HandlerFunc(func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		var envelope struct {
			ID      string          `json:"id"`
			Type    string          `json:"type"`
			Subject string          `json:"subject"`
			Time    string          `json:"time"`
			Data    json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(msg.Value, &envelope); err != nil {
			return fmt.Errorf("decode event at offset %d: %w", msg.Offset, err)
		}
		id := envelope.ID
		if header, ok := kafka.Header(msg, "ce-id"); ok {
			id = header
		}
		if seen.Seen(id) {
			logger.DebugContext(ctx, "duplicate event skipped", slog.String("event_id", id))
			return nil
		}
		logger.InfoContext(ctx, "catalog event",
			slog.String("topic", msg.Topic),
			slog.String("event_id", id),
			slog.String("type", envelope.Type),
			slog.String("subject", envelope.Subject),
			slog.String("time", envelope.Time),
			slog.String("data", string(envelope.Data)),
		)
		return nil
	})

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, group, nil, handler, logger)
	if err != nil {
		return err
	}
	defer consumer.Close()

	topics := []string{cfg.KafkaTopicPrefix + "property", cfg.KafkaTopicPrefix + "catalog"}
	logger.Info("watching catalog events", slog.Any("topics", topics), slog.String("group", group))
	if err := consumer.Run(ctx, topics); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
