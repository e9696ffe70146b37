package bootstrap

import (
	"log/slog"

	"rentals/internal/infra/config"
	"rentals/internal/infra/obs"
)

// NewLogger builds the process logger. With Fluent enabled every record is
// also shipped to Fluent Bit; a failed dial only costs that tier.
func NewLogger(cfg config.Config) (*slog.Logger, func()) {
	if !cfg.FluentEnabled {
		return obs.NewLogger(cfg.Env), func() {}
	}
	client, err := obs.NewFluentClient(cfg.FluentHost, cfg.FluentPort, cfg.FluentTag)
	if err != nil {
		logger := obs.NewLogger(cfg.Env)
		logger.Warn("fluent logging disabled", slog.Any("error", err))
		return logger, func() {}
	}
	level := slog.LevelInfo
	if cfg.Env == "dev" || cfg.Env == "local" {
		level = slog.LevelDebug
	}
	logger := obs.NewLogger(cfg.Env, obs.NewFluentHandler(client, level))
	return logger, func() { _ = client.Close() }
}
