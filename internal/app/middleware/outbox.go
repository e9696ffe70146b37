package middleware

import (
	"context"

	"rentals/internal/app/commands"
	"rentals/internal/app/outbox"
)

// OutboxFlush publishes the events a command recorded once it has committed
// and drops them when it fails. Place it outside Transaction.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				box.Discard(ctx)
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
