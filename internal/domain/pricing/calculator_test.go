package pricing

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rentals/internal/domain/shared/daterange"
	"rentals/internal/domain/shared/money"
)

func day(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := daterange.ParseDay(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return d
}

func mustRule(t *testing.T, id RuleID, start, end, multiplier string) Rule {
	t.Helper()
	r, err := NewRule(id, 1, day(t, start), day(t, end), decimal.RequireFromString(multiplier))
	if err != nil {
		t.Fatalf("new rule: %v", err)
	}
	return r
}

func TestCalculateBaseRateOnly(t *testing.T) {
	base := money.Must("100.00", "USD")
	got, err := Calculate(base, nil, day(t, "2025-12-01"), day(t, "2025-12-04"))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if got.Nights != 3 {
		t.Errorf("Nights: got %d, want 3", got.Nights)
	}
	if got.Total.String() != "300.00" {
		t.Errorf("Total: got %s, want 300.00", got.Total)
	}
	if got.Average.String() != "100.00" {
		t.Errorf("Average: got %s, want 100.00", got.Average)
	}
	for _, night := range got.Days {
		if night.Rule != BaseRateLabel {
			t.Errorf("%s: got label %q, want %q", daterange.FormatDay(night.Date), night.Rule, BaseRateLabel)
		}
	}
}

func TestCalculateSeasonalRule(t *testing.T) {
	base := money.Must("100.00", "USD")
	rules := []Rule{mustRule(t, 1, "2025-12-02", "2025-12-03", "1.5")}
	got, err := Calculate(base, rules, day(t, "2025-12-01"), day(t, "2025-12-04"))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	wantPrices := []string{"100.00", "150.00", "150.00"}
	wantLabels := []string{BaseRateLabel, "Seasonal (2025-12-02 to 2025-12-03)", "Seasonal (2025-12-02 to 2025-12-03)"}
	for i, night := range got.Days {
		if night.Price.String() != wantPrices[i] {
			t.Errorf("night %d price: got %s, want %s", i, night.Price, wantPrices[i])
		}
		if night.Rule != wantLabels[i] {
			t.Errorf("night %d label: got %q, want %q", i, night.Rule, wantLabels[i])
		}
	}
	if got.Total.String() != "400.00" {
		t.Errorf("Total: got %s, want 400.00", got.Total)
	}
	if got.Average.String() != "133.3333333333333333" {
		t.Errorf("Average: got %s, want 133.3333333333333333", got.Average)
	}
}

func TestCalculateRejectsInvalidRange(t *testing.T) {
	base := money.Must("100.00", "USD")
	cases := []struct {
		name    string
		in, out string
	}{
		{"equal", "2025-12-05", "2025-12-05"},
		{"reversed", "2025-12-06", "2025-12-05"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Calculate(base, nil, day(t, tc.in), day(t, tc.out))
			if !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("got %v, want ErrInvalidRange", err)
			}
			if !errors.Is(err, daterange.ErrInvalidRange) {
				t.Fatalf("error should wrap daterange.ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestCalculateSumAndLength(t *testing.T) {
	base := money.Must("89.99", "EUR")
	rules := []Rule{
		mustRule(t, 1, "2026-01-10", "2026-01-20", "1.25"),
		mustRule(t, 2, "2026-01-15", "2026-02-01", "0.85"),
	}
	checkIn, checkOut := day(t, "2026-01-05"), day(t, "2026-01-28")
	got, err := Calculate(base, rules, checkIn, checkOut)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	wantNights := int(checkOut.Sub(checkIn).Hours() / 24)
	if len(got.Days) != wantNights || got.Nights != wantNights {
		t.Fatalf("nights: got %d/%d, want %d", len(got.Days), got.Nights, wantNights)
	}
	sum := decimal.Zero
	for _, night := range got.Days {
		sum = sum.Add(night.Price.Amount)
	}
	if !sum.Equal(got.Total.Amount) {
		t.Errorf("sum of nights: got %s, want %s", sum, got.Total.Amount)
	}
	if got.Currency() != "EUR" {
		t.Errorf("currency: got %s, want EUR", got.Currency())
	}
}

func TestCalculateFirstRuleWins(t *testing.T) {
	base := money.Must("100", "USD")
	rules := []Rule{
		mustRule(t, 2, "2025-07-01", "2025-07-31", "2.00"),
		mustRule(t, 1, "2025-07-01", "2025-07-10", "1.50"),
	}
	SortRules(rules)
	if rules[0].ID != 1 {
		t.Fatalf("SortRules: got first id %d, want 1", rules[0].ID)
	}
	got, err := Calculate(base, rules, day(t, "2025-07-05"), day(t, "2025-07-06"))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if got.Total.String() != "150.00" {
		t.Errorf("Total: got %s, want 150.00", got.Total)
	}
}

func TestCalculateSingleDayRuleCoversOneNight(t *testing.T) {
	base := money.Must("100.00", "USD")
	rules := []Rule{mustRule(t, 1, "2025-12-01", "2025-12-01", "2")}
	got, err := Calculate(base, rules, day(t, "2025-12-01"), day(t, "2025-12-04"))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	seasonal := 0
	for _, night := range got.Days {
		if night.Rule != BaseRateLabel {
			seasonal++
		}
	}
	if seasonal != 1 {
		t.Errorf("seasonal nights: got %d, want 1", seasonal)
	}
	if got.Total.String() != "400.00" {
		t.Errorf("Total: got %s, want 400.00", got.Total)
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	base := money.Must("114.99", "USD")
	rules := []Rule{mustRule(t, 1, "2025-06-01", "2025-08-31", "1.15")}
	first, err := Calculate(base, rules, day(t, "2025-05-28"), day(t, "2025-06-04"))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	second, err := Calculate(base, rules, day(t, "2025-05-28"), day(t, "2025-06-04"))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated calculation differs:\n%+v\n%+v", first, second)
	}
	if first.Days[4].Price.String() != "132.2385" {
		t.Errorf("exact nightly: got %s, want 132.2385", first.Days[4].Price)
	}
}

func TestNewRuleValidation(t *testing.T) {
	if _, err := NewRule(1, 1, day(t, "2025-01-02"), day(t, "2025-01-01"), decimal.NewFromInt(1)); !errors.Is(err, ErrRuleRange) {
		t.Errorf("reversed rule: got %v, want ErrRuleRange", err)
	}
	if _, err := NewRule(1, 1, day(t, "2025-01-01"), day(t, "2025-01-01"), decimal.Zero); !errors.Is(err, ErrNegativeMultiplier) {
		t.Errorf("zero multiplier: got %v, want ErrNegativeMultiplier", err)
	}
}

func TestCalculateStayLength(t *testing.T) {
	base := money.Must("100.00", "USD")
	if _, err := Calculate(base, nil, day(t, "0001-01-02"), day(t, "9999-12-31")); !errors.Is(err, ErrStayTooLong) {
		t.Fatalf("multi-century stay: got %v, want ErrStayTooLong", err)
	}

	checkIn := day(t, "2020-01-01")
	got, err := Calculate(base, nil, checkIn, checkIn.AddDate(0, 0, MaxNights))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if got.Nights != MaxNights || len(got.Days) != MaxNights {
		t.Fatalf("got %d nights and %d days, want %d", got.Nights, len(got.Days), MaxNights)
	}
	last := got.Days[len(got.Days)-1].Date
	if want := checkIn.AddDate(0, 0, MaxNights-1); !last.Equal(want) {
		t.Errorf("last night: got %s, want %s", daterange.FormatDay(last), daterange.FormatDay(want))
	}
	if want := base.Amount.Mul(decimal.NewFromInt(MaxNights)); !got.Total.Amount.Equal(want) {
		t.Errorf("Total: got %s, want %s", got.Total, want)
	}
}
