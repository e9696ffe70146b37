package dto

import (
	"rentals/internal/domain/pricing"
	"rentals/internal/domain/properties"
	"rentals/internal/domain/shared/daterange"
	"rentals/internal/domain/shared/money"
)

type NightlyPrice struct {
	Date        string `json:"date"`
	BasePrice   string `json:"base_price"`
	Multiplier  string `json:"multiplier"`
	FinalPrice  string `json:"final_price"`
	PricingRule string `json:"pricing_rule"`
}

// PriceQuote serializes a pricing.Breakdown. Amounts are decimal strings so
// no precision is lost on the wire.
type PriceQuote struct {
	PropertyID           int64          `json:"property_id"`
	PropertyName         string         `json:"property_name"`
	CheckIn              string         `json:"check_in"`
	CheckOut             string         `json:"check_out"`
	Nights               int            `json:"nights"`
	BasePricePerNight    string         `json:"base_price_per_night"`
	TotalPrice           string         `json:"total_price"`
	AveragePricePerNight string         `json:"average_price_per_night"`
	Currency             string         `json:"currency"`
	DailyBreakdown       []NightlyPrice `json:"daily_breakdown"`
}

func MapPriceQuote(p *properties.Property, b pricing.Breakdown) PriceQuote {
	days := make([]NightlyPrice, 0, len(b.Days))
	for _, night := range b.Days {
		days = append(days, NightlyPrice{
			Date:        daterange.FormatDay(night.Date),
			BasePrice:   night.Base.String(),
			Multiplier:  night.Multiplier.StringFixed(2),
			FinalPrice:  night.Price.String(),
			PricingRule: night.Rule,
		})
	}
	return PriceQuote{
		PropertyID:           int64(p.ID),
		PropertyName:         p.Name,
		CheckIn:              daterange.FormatDay(b.CheckIn),
		CheckOut:             daterange.FormatDay(b.CheckOut),
		Nights:               b.Nights,
		BasePricePerNight:    money.FormatAmount(b.Base.Amount),
		TotalPrice:           b.Total.String(),
		AveragePricePerNight: b.Average.String(),
		Currency:             b.Currency(),
		DailyBreakdown:       days,
	}
}
