package properties

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func sampleParams() CreateParams {
	return CreateParams{
		ID:          1,
		Name:        "Ocean View Loft",
		Description: "Bright loft near the beach",
		Type:        "loft",
		Address:     "1 Ocean Ave",
		City:        "Santa Monica",
		Country:     "USA",
		Latitude:    34.0195,
		Longitude:   -118.4912,
		Bedrooms:    2,
		Bathrooms:   decimal.RequireFromString("1.5"),
		MaxGuests:   4,
		BasePrice:   decimal.RequireFromString("180"),
		Amenities:   []string{"WiFi", " Pool ", "wifi", ""},
		Images: []Image{
			{ID: 3, URL: "https://img/3.jpg"},
			{ID: 9, URL: "https://img/9.jpg", IsPrimary: true},
			{ID: 1, URL: "https://img/1.jpg"},
		},
		Now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewProperty(t *testing.T) {
	p, err := NewProperty(sampleParams())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if p.Type != TypeLoft {
		t.Errorf("type: got %s, want %s", p.Type, TypeLoft)
	}
	if p.BasePrice.Currency != "USD" {
		t.Errorf("currency: got %s, want USD", p.BasePrice.Currency)
	}
	if len(p.Amenities) != 2 {
		t.Errorf("amenities: got %v, want [WiFi Pool]", p.Amenities)
	}
	if p.Images[0].ID != 9 || p.Images[1].ID != 1 {
		t.Errorf("images order: got %+v, want primary first then by id", p.Images)
	}
	if len(p.Geohash) != 9 {
		t.Errorf("geohash: got %q, want 9 chars", p.Geohash)
	}
}

func TestNewPropertyValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateParams)
		want   error
	}{
		{"name", func(p *CreateParams) { p.Name = " " }, ErrNameRequired},
		{"type", func(p *CreateParams) { p.Type = "Castle" }, ErrInvalidType},
		{"rooms", func(p *CreateParams) { p.Bedrooms = -1 }, ErrNegativeRooms},
		{"guests", func(p *CreateParams) { p.MaxGuests = 0 }, ErrGuestsLimit},
		{"price", func(p *CreateParams) { p.BasePrice = decimal.NewFromInt(-1) }, ErrNegativePrice},
		{"address", func(p *CreateParams) { p.City = "" }, ErrAddressRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := sampleParams()
			tc.mutate(&params)
			if _, err := NewProperty(params); !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestMatchesAttributes(t *testing.T) {
	p, err := NewProperty(sampleParams())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	two := 2
	three := 3
	cases := []struct {
		name   string
		params SearchParams
		want   bool
	}{
		{"empty", SearchParams{}, true},
		{"price range", SearchParams{MinPrice: decimal.NewNullDecimal(decimal.NewFromInt(100)), MaxPrice: decimal.NewNullDecimal(decimal.NewFromInt(180))}, true},
		{"too cheap", SearchParams{MaxPrice: decimal.NewNullDecimal(decimal.NewFromInt(179))}, false},
		{"bedrooms exact", SearchParams{Bedrooms: &two}, true},
		{"bedrooms gte", SearchParams{MinBedrooms: &three}, false},
		{"bathrooms gte", SearchParams{MinBathrooms: decimal.NewNullDecimal(decimal.RequireFromString("1.5"))}, true},
		{"city contains", SearchParams{City: "monica"}, true},
		{"country", SearchParams{Country: "Canada"}, false},
		{"amenities all", SearchParams{Amenities: []string{"wifi", "pool"}}, true},
		{"amenities missing", SearchParams{Amenities: []string{"wifi", "gym"}}, false},
		{"guests", SearchParams{MinGuests: 5}, false},
		{"type", SearchParams{Type: TypeVilla}, false},
		{"search address", SearchParams{Text: "ocean ave"}, true},
		{"search miss", SearchParams{Text: "mountain"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.params.MatchesAttributes(p); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNormalizedAndOrdering(t *testing.T) {
	n := SearchParams{Limit: 500, Offset: -3, Near: &Proximity{}}.Normalized()
	if n.Limit != MaxPageSize || n.Offset != 0 {
		t.Errorf("paging: got %d/%d, want %d/0", n.Limit, n.Offset, MaxPageSize)
	}
	if n.Near.RadiusKm != DefaultRadiusKm {
		t.Errorf("radius: got %v, want %v", n.Near.RadiusKm, DefaultRadiusKm)
	}
	if got := n.EffectiveOrdering(); got.Field != OrderByDistance {
		t.Errorf("geo ordering: got %s, want distance", got)
	}
	if got := (SearchParams{}).EffectiveOrdering().String(); got != "-created_at" {
		t.Errorf("default ordering: got %s, want -created_at", got)
	}
	if o, ok := ParseOrdering("-base_price_per_night"); !ok || !o.Desc || o.Field != OrderByPrice {
		t.Errorf("parse: got %+v %v", o, ok)
	}
	if _, ok := ParseOrdering("guest_email"); ok {
		t.Error("unknown field should be rejected")
	}
}
