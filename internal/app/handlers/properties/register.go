package properties

import (
	"rentals/internal/app/dto"
	"rentals/internal/app/queries"
	"rentals/internal/app/uow"
)

// Register binds every catalog query handler to bus.
func Register(bus *queries.InMemoryBus, factory uow.UoWFactory) {
	queries.RegisterHandler[SearchCatalogQuery, dto.PropertyPage](bus, &SearchCatalogHandler{UoWFactory: factory})
	queries.RegisterHandler[GeoJSONQuery, dto.FeatureCollection](bus, &GeoJSONHandler{UoWFactory: factory})
	queries.RegisterHandler[NearbyQuery, dto.Nearby](bus, &NearbyHandler{UoWFactory: factory})
	queries.RegisterHandler[GetPropertyQuery, dto.PropertyDetail](bus, &GetPropertyHandler{UoWFactory: factory})
	queries.RegisterHandler[AvailabilityQuery, dto.Availability](bus, &AvailabilityHandler{UoWFactory: factory})
	queries.RegisterHandler[CalculatePriceQuery, dto.PriceQuote](bus, &CalculatePriceHandler{UoWFactory: factory})
}
