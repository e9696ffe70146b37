package obs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Poster is the part of *fluent.Fluent the handler needs.
type Poster interface {
	Post(tag string, message interface{}) error
}

// NewFluentClient dials Fluent Bit; records are tagged "<tag>.<level>".
func NewFluentClient(host string, port int, tag string) (*fluent.Fluent, error) {
	client, err := fluent.New(fluent.Config{
		FluentHost: host,
		FluentPort: port,
		TagPrefix:  tag,
		Async:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("fluent connect %s:%d: %w", host, port, err)
	}
	return client, nil
}

// FluentHandler forwards slog records to Fluent Bit as flat maps.
type FluentHandler struct {
	client Poster
	level  slog.Leveler
	attrs  []slog.Attr
	group  string
}

func NewFluentHandler(client Poster, level slog.Leveler) *FluentHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &FluentHandler{client: client, level: level}
}

func (h *FluentHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *FluentHandler) Handle(ctx context.Context, r slog.Record) error {
	data := make(map[string]interface{}, r.NumAttrs()+len(h.attrs)+4)
	for _, a := range h.attrs {
		addAttr(data, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(data, h.group, a)
		return true
	})
	data["level"] = strings.ToLower(r.Level.String())
	data["message"] = r.Message
	data["timestamp"] = r.Time.UTC().Format(time.RFC3339Nano)
	if id := RequestIDFromContext(ctx); id != "" {
		data["request_id"] = id
	}
	return h.client.Post(strings.ToLower(r.Level.String()), data)
}

func (h *FluentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append(append([]slog.Attr(nil), h.attrs...), prefixed(h.group, attrs)...)
	return &cp
}

func (h *FluentHandler) WithGroup(name string) slog.Handler {
	cp := *h
	cp.group = joinKey(h.group, name)
	return &cp
}

func addAttr(data map[string]interface{}, group string, a slog.Attr) {
	v := a.Value.Resolve()
	key := joinKey(group, a.Key)
	if v.Kind() == slog.KindGroup {
		for _, inner := range v.Group() {
			addAttr(data, key, inner)
		}
		return
	}
	switch v.Kind() {
	case slog.KindDuration:
		data[key] = v.Duration().String()
	case slog.KindTime:
		data[key] = v.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			data[key] = err.Error()
			return
		}
		data[key] = v.Any()
	default:
		data[key] = v.Any()
	}
}

func prefixed(group string, attrs []slog.Attr) []slog.Attr {
	if group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: joinKey(group, a.Key), Value: a.Value}
	}
	return out
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}
