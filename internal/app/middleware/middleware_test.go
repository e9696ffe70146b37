package middleware

import (
	"context"
	"errors"
	"testing"

	"rentals/internal/app/commands"
	"rentals/internal/app/outbox"
	"rentals/internal/app/uow"
	"rentals/internal/domain/booking"
	"rentals/internal/domain/pricing"
	"rentals/internal/domain/properties"
)

type testCommand struct {
	fail     bool
	readOnly bool
	invalid  bool
}

func (testCommand) Key() string      { return "test.command" }
func (c testCommand) ReadOnly() bool { return c.readOnly }
func (c testCommand) Validate() error {
	if c.invalid {
		return errors.New("invalid")
	}
	return nil
}

type fakeUnit struct {
	committed   bool
	rolledBack  bool
	commitErr   error
	rollbackErr error
}

func (u *fakeUnit) Properties() properties.Repository   { return nil }
func (u *fakeUnit) Bookings() booking.Repository         { return nil }
func (u *fakeUnit) PricingRules() pricing.RuleRepository { return nil }
func (u *fakeUnit) Catalog() uow.CatalogWriter           { return nil }

func (u *fakeUnit) Commit(context.Context) error {
	if u.commitErr != nil {
		return u.commitErr
	}
	u.committed = true
	return nil
}

func (u *fakeUnit) Rollback(context.Context) error {
	u.rolledBack = true
	return u.rollbackErr
}

type fakeFactory struct {
	units []*fakeUnit
	opts  []uow.TxOptions

	// applied to every unit begun
	commitErr, rollbackErr error
}

func (f *fakeFactory) Begin(_ context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	u := &fakeUnit{commitErr: f.commitErr, rollbackErr: f.rollbackErr}
	f.units = append(f.units, u)
	f.opts = append(f.opts, opts)
	return u, nil
}

type countingOutbox struct {
	flushed, discarded int
}

func (o *countingOutbox) Add(context.Context, outbox.EventRecord) error { return nil }
func (o *countingOutbox) Discard(context.Context)                      { o.discarded++ }

func (o *countingOutbox) Flush(context.Context) error {
	o.flushed++
	return nil
}

func newBus(factory uow.UoWFactory, box outbox.Outbox) commands.Bus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[testCommand, string](bus, commands.HandlerFunc[testCommand, string](
		func(ctx context.Context, cmd testCommand) (string, error) {
			if _, ok := uow.FromContext(ctx); !ok {
				return "", uow.ErrUnitOfWorkMissing
			}
			if cmd.fail {
				return "", errors.New("boom")
			}
			return "ok", nil
		}))
	return ChainCommands(bus, Validation(), OutboxFlush(box), Transaction(factory))
}

func TestTransactionCommitsAndFlushes(t *testing.T) {
	factory := &fakeFactory{}
	box := &countingOutbox{}
	res, err := commands.Dispatch[testCommand, string](context.Background(), newBus(factory, box), testCommand{})
	if err != nil || res != "ok" {
		t.Fatalf("got (%q, %v), want (ok, nil)", res, err)
	}
	u := factory.units[0]
	if !u.committed || u.rolledBack {
		t.Errorf("unit: committed %v, rolled back %v", u.committed, u.rolledBack)
	}
	if box.flushed != 1 || box.discarded != 0 {
		t.Errorf("outbox: flushed %d, discarded %d", box.flushed, box.discarded)
	}
}

func TestTransactionRollsBackAndDiscards(t *testing.T) {
	factory := &fakeFactory{}
	box := &countingOutbox{}
	_, err := commands.Dispatch[testCommand, string](context.Background(), newBus(factory, box), testCommand{fail: true})
	if err == nil {
		t.Fatal("expected handler error")
	}
	u := factory.units[0]
	if u.committed || !u.rolledBack {
		t.Errorf("unit: committed %v, rolled back %v", u.committed, u.rolledBack)
	}
	if box.flushed != 0 || box.discarded != 1 {
		t.Errorf("outbox: flushed %d, discarded %d", box.flushed, box.discarded)
	}
}

func TestTransactionCommitFailureRollsBack(t *testing.T) {
	errCommit := errors.New("commit refused")
	errRollback := errors.New("connection lost")
	factory := &fakeFactory{commitErr: errCommit, rollbackErr: errRollback}
	box := &countingOutbox{}
	_, err := commands.Dispatch[testCommand, string](context.Background(), newBus(factory, box), testCommand{})
	if !errors.Is(err, errCommit) || !errors.Is(err, errRollback) {
		t.Fatalf("got %v, want both commit and rollback errors", err)
	}
	if !factory.units[0].rolledBack {
		t.Error("unit was not rolled back after a failed commit")
	}
	if box.flushed != 0 || box.discarded != 1 {
		t.Errorf("outbox: flushed %d, discarded %d", box.flushed, box.discarded)
	}
}

func TestReadOnlyCommandGetsReadOnlyUnit(t *testing.T) {
	factory := &fakeFactory{}
	if _, err := commands.Dispatch[testCommand, string](context.Background(), newBus(factory, &countingOutbox{}), testCommand{readOnly: true}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !factory.opts[0].ReadOnly {
		t.Error("expected read-only options")
	}
}

func TestValidationStopsBeforeTransaction(t *testing.T) {
	factory := &fakeFactory{}
	box := &countingOutbox{}
	if _, err := commands.Dispatch[testCommand, string](context.Background(), newBus(factory, box), testCommand{invalid: true}); err == nil {
		t.Fatal("expected validation error")
	}
	if len(factory.units) != 0 {
		t.Errorf("units begun: got %d, want 0", len(factory.units))
	}
}
