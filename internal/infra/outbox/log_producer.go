package outbox

import (
	"context"
	"log/slog"
)

// LogProducer stands in for a broker when events are disabled.
type LogProducer struct {
	Logger *slog.Logger
}

func (p LogProducer) Publish(ctx context.Context, topic string, key string, payload []byte, _ map[string]string) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "event",
		slog.String("topic", topic),
		slog.String("key", key),
		slog.Int("bytes", len(payload)),
	)
	return nil
}
