package properties

import (
	"context"
	"math"

	"rentals/internal/app/dto"
	"rentals/internal/app/handlers/support"
	"rentals/internal/app/queries"
	"rentals/internal/app/uow"
	domainproperties "rentals/internal/domain/properties"
	"rentals/internal/domain/shared/daterange"
)

const searchCatalogKey = "properties.search"

// SearchCatalogQuery asks for one page of the filtered catalog.
type SearchCatalogQuery struct {
	Params   domainproperties.SearchParams
	Page     int
	PageSize int
}

func (q SearchCatalogQuery) Key() string { return searchCatalogKey }

func (q SearchCatalogQuery) Validate() error {
	if q.Page < 1 {
		return ErrPageNotFound
	}
	if q.Params.Near != nil && q.Params.Near.RadiusKm < 0 {
		return ErrInvalidRadius
	}
	if q.Params.HasStay() && !daterange.Day(q.Params.CheckOut).After(daterange.Day(q.Params.CheckIn)) {
		return daterange.ErrInvalidRange
	}
	return nil
}

type SearchCatalogHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchCatalogHandler) Handle(ctx context.Context, q SearchCatalogQuery) (dto.PropertyPage, error) {
	unit, ctx, release, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PropertyPage{}, err
	}
	defer release()

	params := q.Params
	params.Limit = q.PageSize
	params = params.Normalized()
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page-1 > math.MaxInt/params.Limit {
		return dto.PropertyPage{}, ErrPageNotFound
	}
	params.Offset = (page - 1) * params.Limit

	res, err := search(ctx, unit, params)
	if err != nil {
		return dto.PropertyPage{}, err
	}
	if page > 1 && params.Offset >= res.Total {
		return dto.PropertyPage{}, ErrPageNotFound
	}
	return dto.PropertyPage{
		Count:    res.Total,
		Page:     page,
		PageSize: params.Limit,
		Results:  dto.MapCards(res.Items),
	}, nil
}

var _ queries.Handler[SearchCatalogQuery, dto.PropertyPage] = (*SearchCatalogHandler)(nil)
