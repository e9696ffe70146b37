package money

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"300":      "300.00",
		"133.3":    "133.30",
		"114.9885": "114.9885",
		"0":        "0.00",
	}
	for in, want := range cases {
		if got := FormatAmount(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatAmount(%s): got %s, want %s", in, got, want)
		}
	}
}

func TestArithmetic(t *testing.T) {
	a := Must("100.10", "usd")
	b := Must("0.20", "USD")
	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if sum.String() != "100.30" || sum.Currency != "USD" {
		t.Errorf("sum: got %s %s, want 100.30 USD", sum, sum.Currency)
	}
	if got := a.Mul(decimal.RequireFromString("1.5")).String(); got != "150.15" {
		t.Errorf("mul: got %s, want 150.15", got)
	}
	if got := Must("400", "USD").Div(3).String(); got != "133.3333333333333333" {
		t.Errorf("div: got %s, want 133.3333333333333333", got)
	}
	if got := Must("400", "USD").Div(0); !got.IsZero() {
		t.Errorf("div by zero: got %s, want 0", got)
	}
}

func TestCurrencyRules(t *testing.T) {
	if _, err := Must("1", "USD").Add(Must("1", "EUR")); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("mismatch: got %v, want ErrCurrencyMismatch", err)
	}
	if _, err := Parse("1", "US"); !errors.Is(err, ErrInvalidCurrency) {
		t.Errorf("short code: got %v, want ErrInvalidCurrency", err)
	}
	if _, err := Parse("abc", "USD"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("amount: got %v, want ErrInvalidAmount", err)
	}
}
