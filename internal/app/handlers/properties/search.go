package properties

import (
	"context"
	"errors"

	"rentals/internal/app/uow"
	"rentals/internal/domain/availability"
	"rentals/internal/domain/booking"
	domainproperties "rentals/internal/domain/properties"
)

var (
	ErrDatesRequired       = errors.New("catalog: check_in and check_out dates are required")
	ErrCoordinatesRequired = errors.New("catalog: latitude and longitude are required")
	ErrInvalidRadius       = errors.New("catalog: radius must be positive")
	ErrPageNotFound        = errors.New("catalog: invalid page")
)

// search runs params against the unit's repositories. When a stay is given,
// the repository returns every attribute match and availability is decided
// here from the confirmed bookings, before paging.
func search(ctx context.Context, unit uow.UnitOfWork, params domainproperties.SearchParams) (domainproperties.SearchResult, error) {
	params = params.Normalized()
	if !params.HasStay() {
		return unit.Properties().Search(ctx, params)
	}

	candidates := params
	candidates.All = true
	res, err := unit.Properties().Search(ctx, candidates)
	if err != nil {
		return domainproperties.SearchResult{}, err
	}
	ids := make([]domainproperties.ID, 0, len(res.Items))
	for _, hit := range res.Items {
		ids = append(ids, hit.Property.ID)
	}
	confirmed, err := unit.Bookings().Confirmed(ctx, ids)
	if err != nil {
		return domainproperties.SearchResult{}, err
	}
	free := availability.FilterAvailable(res.Items, func(hit domainproperties.Hit) []booking.Booking {
		return confirmed[hit.Property.ID]
	}, params.CheckIn, params.CheckOut)

	total := len(free)
	if !params.All {
		free = window(free, params.Offset, params.Limit)
	}
	return domainproperties.SearchResult{Items: free, Total: total}, nil
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
