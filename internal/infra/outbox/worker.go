package outbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

type Worker struct {
	Store       *Store
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
	Logger      *slog.Logger
}

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for {
				published, err := w.processOnce(ctx)
				if err != nil {
					return err
				}
				if !published {
					break
				}
			}
		}
	}
}

// Drain publishes until the store is empty, retrying failures on the backoff
// schedule. It returns ctx.Err() if the deadline passes first.
func (w *Worker) Drain(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	for w.Store.Pending() > 0 {
		processed, err := w.processOnce(ctx)
		if err != nil {
			return err
		}
		if processed {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.interval()):
		}
	}
	return nil
}

// processOnce reports whether it claimed a record.
func (w *Worker) processOnce(ctx context.Context) (bool, error) {
	doc, err := w.Store.Claim(ctx, w.workerID())
	if err != nil || doc == nil {
		return false, err
	}
	topic := w.topicFor(doc.Name)
	payload, headers, err := w.formatPayload(doc)
	if err != nil {
		w.logger().ErrorContext(ctx, "outbox record unreadable", slog.String("event_id", doc.ID), slog.Any("error", err))
		return true, w.Store.MarkSent(ctx, doc.ID)
	}
	if err := w.Producer.Publish(ctx, topic, doc.Aggregate, payload, headers); err != nil {
		next := w.nextRetry(doc.Attempts)
		w.logger().WarnContext(ctx, "event publish failed",
			slog.String("event_id", doc.ID),
			slog.String("topic", topic),
			slog.Int("attempt", doc.Attempts+1),
			slog.Time("next_attempt", next),
			slog.Any("error", err),
		)
		return false, w.Store.MarkFailed(ctx, doc.ID, next, err.Error())
	}
	w.logger().DebugContext(ctx, "event published", slog.String("event_id", doc.ID), slog.String("topic", topic))
	return true, w.Store.MarkSent(ctx, doc.ID)
}

// cloudEvent is the structured-mode CloudEvents 1.0 envelope.
type cloudEvent struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Subject         string          `json:"subject,omitempty"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	TraceParent     string          `json:"traceparent,omitempty"`
	Data            json.RawMessage `json:"data"`
}

var errBadPayload = errors.New("outbox: payload is not a JSON object")

func (w *Worker) formatPayload(doc *EventDocument) ([]byte, map[string]string, error) {
	data := bytes.TrimSpace(doc.Payload)
	if len(data) == 0 || data[0] != '{' || !json.Valid(data) {
		return nil, nil, errBadPayload
	}
	eventType := doc.Name + ".v1"
	payload, err := json.Marshal(cloudEvent{
		SpecVersion:     "1.0",
		ID:              doc.ID,
		Type:            eventType,
		Source:          w.source(),
		Subject:         doc.Aggregate,
		Time:            doc.OccurredAt,
		DataContentType: "application/json",
		TraceParent:     doc.Headers["traceparent"],
		Data:            data,
	})
	if err != nil {
		return nil, nil, err
	}
	headers := make(map[string]string, len(doc.Headers)+3)
	for k, v := range doc.Headers {
		headers[k] = v
	}
	headers["content-type"] = "application/cloudevents+json"
	headers["ce-id"] = doc.ID
	headers["ce-type"] = eventType
	return payload, headers, nil
}

// topicFor maps "property.imported" to "<prefix>property".
func (w *Worker) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return w.TopicPrefix + base
}

func (w *Worker) workerID() string {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return w.ID
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if attempts < len(w.Backoff) {
		return time.Now().Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return time.Now().Add(w.Backoff[len(w.Backoff)-1])
	}
	return time.Now().Add(5 * time.Second)
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://rentals"
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
