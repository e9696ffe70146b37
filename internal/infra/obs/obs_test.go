package obs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type recordingPoster struct {
	tags []string
	msgs []map[string]interface{}
}

func (p *recordingPoster) Post(tag string, message interface{}) error {
	p.tags = append(p.tags, tag)
	p.msgs = append(p.msgs, message.(map[string]interface{}))
	return nil
}

func TestFluentHandlerFlattensRecord(t *testing.T) {
	poster := &recordingPoster{}
	logger := slog.New(NewFluentHandler(poster, slog.LevelInfo)).With("component", "import").WithGroup("catalog")

	ctx := WithRequestID(context.Background(), "req-1")
	logger.DebugContext(ctx, "dropped")
	logger.ErrorContext(ctx, "import failed", "rows", 3, "err", errors.New("boom"))

	if len(poster.msgs) != 1 {
		t.Fatalf("got %d posts, want 1", len(poster.msgs))
	}
	if poster.tags[0] != "error" {
		t.Fatalf("got tag %q, want error", poster.tags[0])
	}
	msg := poster.msgs[0]
	want := map[string]interface{}{
		"component":    "import",
		"catalog.rows": int64(3),
		"catalog.err":  "boom",
		"message":      "import failed",
		"request_id":   "req-1",
	}
	for k, v := range want {
		if msg[k] != v {
			t.Fatalf("got %s=%v, want %v", k, msg[k], v)
		}
	}
}

func TestFanoutDeliversToEveryHandler(t *testing.T) {
	a, b := &recordingPoster{}, &recordingPoster{}
	logger := slog.New(fanout{NewFluentHandler(a, slog.LevelInfo), NewFluentHandler(b, slog.LevelWarn)})
	logger.Info("one")
	logger.Warn("two")
	if len(a.msgs) != 2 || len(b.msgs) != 1 {
		t.Fatalf("got %d and %d posts, want 2 and 1", len(a.msgs), len(b.msgs))
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware{}.RequestID())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	r.ServeHTTP(w, req)
	if seen != "abc" || w.Header().Get("X-Request-ID") != "abc" {
		t.Fatalf("got %q / %q, want abc", seen, w.Header().Get("X-Request-ID"))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || w.Header().Get("X-Request-ID") != seen {
		t.Fatalf("got generated id %q, header %q", seen, w.Header().Get("X-Request-ID"))
	}
}

func TestReadyz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name  string
		ready func(context.Context) error
		want  int
	}{
		{name: "ok", ready: func(context.Context) error { return nil }, want: http.StatusOK},
		{name: "down", ready: func(context.Context) error { return errors.New("db down") }, want: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/readyz", HealthHandlers{Ready: tc.ready}.Readyz)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if w.Code != tc.want {
				t.Fatalf("got %d, want %d", w.Code, tc.want)
			}
		})
	}
}
