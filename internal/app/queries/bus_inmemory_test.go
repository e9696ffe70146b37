package queries

import (
	"context"
	"errors"
	"testing"
)

type echoQuery struct{ Value string }

func (echoQuery) Key() string { return "test.echo" }

type otherQuery struct{}

func (otherQuery) Key() string { return "test.other" }

func TestAskRoutesToHandler(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[echoQuery, string](bus, HandlerFunc[echoQuery, string](func(_ context.Context, q echoQuery) (string, error) {
		return "echo:" + q.Value, nil
	}))

	got, err := Ask[echoQuery, string](context.Background(), bus, echoQuery{Value: "hi"})
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if got != "echo:hi" {
		t.Errorf("got %q, want %q", got, "echo:hi")
	}
	if keys := bus.Keys(); len(keys) != 1 || keys[0] != "test.echo" {
		t.Errorf("keys: got %v, want [test.echo]", keys)
	}
}

func TestAskErrors(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[echoQuery, string](bus, HandlerFunc[echoQuery, string](func(context.Context, echoQuery) (string, error) {
		return "x", nil
	}))

	if _, err := Ask[otherQuery, string](context.Background(), bus, otherQuery{}); !errors.Is(err, ErrHandlerNotFound) {
		t.Errorf("unknown key: got %v, want ErrHandlerNotFound", err)
	}
	if _, err := Ask[echoQuery, int](context.Background(), bus, echoQuery{}); !errors.Is(err, ErrResultType) {
		t.Errorf("wrong result: got %v, want ErrResultType", err)
	}
	if _, err := Ask[echoQuery, string](context.Background(), nil, echoQuery{}); !errors.Is(err, ErrNilBus) {
		t.Errorf("nil bus: got %v, want ErrNilBus", err)
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[echoQuery, string](func(context.Context, echoQuery) (string, error) { return "", nil })
	RegisterHandler[echoQuery, string](bus, h)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate key")
		}
	}()
	RegisterHandler[echoQuery, string](bus, h)
}
