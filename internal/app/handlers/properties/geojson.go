package properties

import (
	"context"

	"rentals/internal/app/dto"
	"rentals/internal/app/handlers/support"
	"rentals/internal/app/queries"
	"rentals/internal/app/uow"
	domainproperties "rentals/internal/domain/properties"
)

const geoJSONKey = "properties.geojson"

// GeoJSONQuery renders every property matching Params, unpaged.
type GeoJSONQuery struct {
	Params domainproperties.SearchParams
}

func (q GeoJSONQuery) Key() string { return geoJSONKey }

type GeoJSONHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GeoJSONHandler) Handle(ctx context.Context, q GeoJSONQuery) (dto.FeatureCollection, error) {
	unit, ctx, release, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.FeatureCollection{}, err
	}
	defer release()

	params := q.Params
	params.All = true
	res, err := search(ctx, unit, params)
	if err != nil {
		return dto.FeatureCollection{}, err
	}
	return dto.MapFeatureCollection(res.Items), nil
}

var _ queries.Handler[GeoJSONQuery, dto.FeatureCollection] = (*GeoJSONHandler)(nil)
