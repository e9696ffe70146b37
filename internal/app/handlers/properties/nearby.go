package properties

import (
	"context"

	"rentals/internal/app/dto"
	"rentals/internal/app/handlers/support"
	"rentals/internal/app/queries"
	"rentals/internal/app/uow"
	domainproperties "rentals/internal/domain/properties"
	"rentals/internal/domain/shared/geo"
)

const nearbyKey = "properties.nearby"

// NearbyQuery lists every property within RadiusKm of Center, closest first.
type NearbyQuery struct {
	Center   *geo.Point
	RadiusKm float64
}

func (q NearbyQuery) Key() string { return nearbyKey }

func (q NearbyQuery) Validate() error {
	if q.Center == nil {
		return ErrCoordinatesRequired
	}
	if !q.Center.Valid() {
		return geo.ErrInvalidPoint
	}
	if q.RadiusKm <= 0 {
		return ErrInvalidRadius
	}
	return nil
}

type NearbyHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *NearbyHandler) Handle(ctx context.Context, q NearbyQuery) (dto.Nearby, error) {
	if err := q.Validate(); err != nil {
		return dto.Nearby{}, err
	}
	unit, ctx, release, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Nearby{}, err
	}
	defer release()

	res, err := search(ctx, unit, domainproperties.SearchParams{
		Near: &domainproperties.Proximity{Center: *q.Center, RadiusKm: q.RadiusKm},
		All:  true,
	})
	if err != nil {
		return dto.Nearby{}, err
	}
	return dto.Nearby{
		Count:    res.Total,
		RadiusKm: q.RadiusKm,
		Center:   dto.Center{Latitude: q.Center.Lat, Longitude: q.Center.Lon},
		Results:  dto.MapCards(res.Items),
	}, nil
}

var _ queries.Handler[NearbyQuery, dto.Nearby] = (*NearbyHandler)(nil)
