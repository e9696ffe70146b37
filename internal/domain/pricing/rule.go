package pricing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"rentals/internal/domain/properties"
	"rentals/internal/domain/shared/daterange"
)

const BaseRateLabel = "Base Rate"

var (
	ErrRuleRange          = errors.New("pricing: rule end date must not precede start date")
	ErrNegativeMultiplier = errors.New("pricing: multiplier must be positive")
)

// DefaultMultiplier applies when no rule covers a night.
var DefaultMultiplier = decimal.NewFromInt(1)

type RuleID int64

// Rule scales the base nightly price for every date in [StartDate, EndDate].
type Rule struct {
	ID         RuleID
	PropertyID properties.ID
	StartDate  time.Time
	EndDate    time.Time
	Multiplier decimal.Decimal
}

func NewRule(id RuleID, propertyID properties.ID, start, end time.Time, multiplier decimal.Decimal) (Rule, error) {
	start = daterange.Day(start)
	end = daterange.Day(end)
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return Rule{}, ErrRuleRange
	}
	if !multiplier.IsPositive() {
		return Rule{}, ErrNegativeMultiplier
	}
	return Rule{
		ID:         id,
		PropertyID: propertyID,
		StartDate:  start,
		EndDate:    end,
		Multiplier: multiplier.Round(2),
	}, nil
}

// Applies reports whether d falls inside the rule, both ends inclusive.
func (r Rule) Applies(d time.Time) bool {
	d = daterange.Day(d)
	return !d.Before(r.StartDate) && !d.After(r.EndDate)
}

func (r Rule) Label() string {
	return fmt.Sprintf("Seasonal (%s to %s)", daterange.FormatDay(r.StartDate), daterange.FormatDay(r.EndDate))
}

// SortRules puts rules into resolution order: ascending start date, then id.
func SortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if !rules[i].StartDate.Equal(rules[j].StartDate) {
			return rules[i].StartDate.Before(rules[j].StartDate)
		}
		return rules[i].ID < rules[j].ID
	})
}

// RuleRepository returns the rules of a property already in resolution order.
type RuleRepository interface {
	ForProperty(ctx context.Context, id properties.ID) ([]Rule, error)
}
