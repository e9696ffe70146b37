package bootstrap

import (
	"log/slog"

	"rentals/internal/app/catalogimport"
	"rentals/internal/app/commands"
	propertiesapp "rentals/internal/app/handlers/properties"
	"rentals/internal/app/middleware"
	appoutbox "rentals/internal/app/outbox"
	"rentals/internal/app/queries"
	"rentals/internal/app/uow"
)

// QueryBus registers the catalog queries behind validation and logging.
func QueryBus(factory uow.UoWFactory, logger *slog.Logger) queries.Bus {
	bus := queries.NewInMemoryBus()
	propertiesapp.Register(bus, factory)
	return middleware.ChainQueries(bus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(),
	)
}

// CommandBus registers the import command. The outbox flush sits outside the
// transaction so events leave only after commit.
func CommandBus(factory uow.UoWFactory, box appoutbox.Outbox, logger *slog.Logger) commands.Bus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[catalogimport.ImportCatalogCommand, catalogimport.Report](bus, &catalogimport.ImportCatalogHandler{
		Outbox:  box,
		Encoder: appoutbox.JSONEventEncoder{},
		Logger:  logger,
	})
	return middleware.ChainCommands(bus,
		middleware.CommandLogging(logger),
		middleware.Validation(),
		middleware.OutboxFlush(box),
		middleware.Transaction(factory),
	)
}
