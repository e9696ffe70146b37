package middleware

import (
	"context"
	"log/slog"
	"time"

	"rentals/internal/app/commands"
	"rentals/internal/app/queries"
)

func QueryLogging(logger *slog.Logger) QueryMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := next.Ask(ctx, q)
			attrs := []any{slog.String("query", q.Key()), slog.Duration("duration", time.Since(start))}
			if err != nil {
				logger.DebugContext(ctx, "query failed", append(attrs, slog.Any("error", err))...)
				return nil, err
			}
			logger.DebugContext(ctx, "query handled", attrs...)
			return res, nil
		})
	}
}

func CommandLogging(logger *slog.Logger) CommandMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := next.Dispatch(ctx, cmd)
			attrs := []any{slog.String("command", cmd.Key()), slog.Duration("duration", time.Since(start))}
			if err != nil {
				logger.ErrorContext(ctx, "command failed", append(attrs, slog.Any("error", err))...)
				return nil, err
			}
			logger.InfoContext(ctx, "command handled", attrs...)
			return res, nil
		})
	}
}
