package properties

import (
	"context"
	"strings"

	"rentals/internal/app/dto"
	"rentals/internal/app/handlers/support"
	"rentals/internal/app/queries"
	"rentals/internal/app/uow"
	"rentals/internal/domain/pricing"
	domainproperties "rentals/internal/domain/properties"
	"rentals/internal/domain/shared/daterange"
)

const calculatePriceKey = "properties.calculate_price"

// CalculatePriceQuery carries the raw dates so that an unknown property is
// reported before any date problem.
type CalculatePriceQuery struct {
	ID       domainproperties.ID
	CheckIn  string
	CheckOut string
}

func (q CalculatePriceQuery) Key() string { return calculatePriceKey }

type CalculatePriceHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *CalculatePriceHandler) Handle(ctx context.Context, q CalculatePriceQuery) (dto.PriceQuote, error) {
	unit, ctx, release, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PriceQuote{}, err
	}
	defer release()

	prop, err := unit.Properties().ByID(ctx, q.ID)
	if err != nil {
		return dto.PriceQuote{}, err
	}
	if strings.TrimSpace(q.CheckIn) == "" || strings.TrimSpace(q.CheckOut) == "" {
		return dto.PriceQuote{}, ErrDatesRequired
	}
	checkIn, err := daterange.ParseDay(strings.TrimSpace(q.CheckIn))
	if err != nil {
		return dto.PriceQuote{}, err
	}
	checkOut, err := daterange.ParseDay(strings.TrimSpace(q.CheckOut))
	if err != nil {
		return dto.PriceQuote{}, err
	}
	rules, err := unit.PricingRules().ForProperty(ctx, prop.ID)
	if err != nil {
		return dto.PriceQuote{}, err
	}
	breakdown, err := pricing.Calculate(prop.BasePrice, rules, checkIn, checkOut)
	if err != nil {
		return dto.PriceQuote{}, err
	}
	return dto.MapPriceQuote(prop, breakdown), nil
}

var _ queries.Handler[CalculatePriceQuery, dto.PriceQuote] = (*CalculatePriceHandler)(nil)
