package middleware

import (
	"context"
	"errors"
	"fmt"

	"rentals/internal/app/commands"
	"rentals/internal/app/uow"
)

// Transaction runs each command inside its own unit of work. A handler error
// rolls the unit back and a rollback failure is joined to it; commands
// implementing commands.ReadOnly get a read-only unit.
func Transaction(factory uow.UoWFactory) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (res any, err error) {
			var opts uow.TxOptions
			if ro, ok := cmd.(commands.ReadOnly); ok {
				opts.ReadOnly = ro.ReadOnly()
			}
			unit, err := factory.Begin(ctx, opts)
			if err != nil {
				return nil, fmt.Errorf("%s: begin: %w", cmd.Key(), err)
			}
			execCtx := uow.Bind(ctx, unit)
			defer func() {
				if err == nil {
					return
				}
				if rbErr := unit.Rollback(execCtx); rbErr != nil {
					err = errors.Join(err, fmt.Errorf("%s: rollback: %w", cmd.Key(), rbErr))
				}
			}()

			res, err = next.Dispatch(execCtx, cmd)
			if err != nil {
				return nil, err
			}
			if err = unit.Commit(execCtx); err != nil {
				return nil, fmt.Errorf("%s: commit: %w", cmd.Key(), err)
			}
			return res, nil
		})
	}
}
