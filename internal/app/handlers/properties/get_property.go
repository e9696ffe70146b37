package properties

import (
	"context"

	"rentals/internal/app/dto"
	"rentals/internal/app/handlers/support"
	"rentals/internal/app/queries"
	"rentals/internal/app/uow"
	"rentals/internal/domain/availability"
	domainproperties "rentals/internal/domain/properties"
)

const (
	getPropertyKey  = "properties.get"
	availabilityKey = "properties.availability"
)

type GetPropertyQuery struct {
	ID domainproperties.ID
}

func (q GetPropertyQuery) Key() string { return getPropertyKey }

// GetPropertyHandler returns the full property with its booked ranges.
type GetPropertyHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPropertyHandler) Handle(ctx context.Context, q GetPropertyQuery) (dto.PropertyDetail, error) {
	unit, ctx, release, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PropertyDetail{}, err
	}
	defer release()

	prop, err := unit.Properties().ByID(ctx, q.ID)
	if err != nil {
		return dto.PropertyDetail{}, err
	}
	bookings, err := unit.Bookings().ForProperty(ctx, q.ID)
	if err != nil {
		return dto.PropertyDetail{}, err
	}
	return dto.MapDetail(prop, availability.UnavailableRanges(bookings)), nil
}

type AvailabilityQuery struct {
	ID domainproperties.ID
}

func (q AvailabilityQuery) Key() string { return availabilityKey }

type AvailabilityHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *AvailabilityHandler) Handle(ctx context.Context, q AvailabilityQuery) (dto.Availability, error) {
	unit, ctx, release, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Availability{}, err
	}
	defer release()

	prop, err := unit.Properties().ByID(ctx, q.ID)
	if err != nil {
		return dto.Availability{}, err
	}
	bookings, err := unit.Bookings().ForProperty(ctx, q.ID)
	if err != nil {
		return dto.Availability{}, err
	}
	ranges := dto.MapRanges(availability.UnavailableRanges(bookings))
	return dto.Availability{
		PropertyID:       int64(prop.ID),
		PropertyName:     prop.Name,
		UnavailableDates: ranges,
		TotalBookings:    len(ranges),
	}, nil
}

var (
	_ queries.Handler[GetPropertyQuery, dto.PropertyDetail] = (*GetPropertyHandler)(nil)
	_ queries.Handler[AvailabilityQuery, dto.Availability]  = (*AvailabilityHandler)(nil)
)
