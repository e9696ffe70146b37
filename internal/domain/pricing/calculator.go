package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rentals/internal/domain/shared/daterange"
	"rentals/internal/domain/shared/money"
)

// MaxNights bounds one quote to ten years of nights.
const MaxNights = 3660

var (
	ErrInvalidRange = fmt.Errorf("pricing: %w", daterange.ErrInvalidRange)
	ErrStayTooLong  = errors.New("pricing: stay is longer than the maximum number of nights")
)

// NightPrice is one entry of the daily breakdown.
type NightPrice struct {
	Date       time.Time
	Base       money.Money
	Multiplier decimal.Decimal
	Price      money.Money
	Rule       string
}

// Breakdown is the priced stay. Total is the exact sum of every night.
type Breakdown struct {
	CheckIn  time.Time
	CheckOut time.Time
	Nights   int
	Base     money.Money
	Total    money.Money
	Average  money.Money
	Days     []NightPrice
}

func (b Breakdown) Currency() string {
	return b.Base.Currency
}

// Calculate prices every night in [checkIn, checkOut). For each night the first
// rule in the given order that covers the date wins; callers pass rules
// through SortRules or get them sorted from a RuleRepository.
func Calculate(base money.Money, rules []Rule, checkIn, checkOut time.Time) (Breakdown, error) {
	stay, err := daterange.New(checkIn, checkOut)
	if err != nil {
		if errors.Is(err, daterange.ErrInvalidRange) {
			return Breakdown{}, ErrInvalidRange
		}
		return Breakdown{}, err
	}
	if stay.Nights() > MaxNights {
		return Breakdown{}, ErrStayTooLong
	}

	nights := stay.Dates()
	out := Breakdown{
		CheckIn:  stay.CheckIn,
		CheckOut: stay.CheckOut,
		Nights:   len(nights),
		Base:     base,
		Total:    money.Zero(base.Currency),
		Days:     make([]NightPrice, 0, len(nights)),
	}
	for _, night := range nights {
		multiplier := DefaultMultiplier
		label := BaseRateLabel
		if rule, ok := firstMatch(rules, night); ok {
			multiplier = rule.Multiplier
			label = rule.Label()
		}
		price := base.Mul(multiplier)
		total, err := out.Total.Add(price)
		if err != nil {
			return Breakdown{}, err
		}
		out.Total = total
		out.Days = append(out.Days, NightPrice{
			Date:       night,
			Base:       base,
			Multiplier: multiplier,
			Price:      price,
			Rule:       label,
		})
	}
	out.Average = out.Total.Div(out.Nights)
	return out, nil
}

func firstMatch(rules []Rule, night time.Time) (Rule, bool) {
	for _, rule := range rules {
		if rule.Applies(night) {
			return rule, true
		}
	}
	return Rule{}, false
}
