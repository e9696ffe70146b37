package properties

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rentals/internal/domain/shared/daterange"
	"rentals/internal/domain/shared/geo"
)

// OrderField is a column the catalog can be sorted by.
type OrderField string

const (
	OrderByPrice     OrderField = "base_price_per_night"
	OrderByBedrooms  OrderField = "bedrooms"
	OrderByBathrooms OrderField = "bathrooms"
	OrderByCreated   OrderField = "created_at"
	OrderByName      OrderField = "name"
	OrderByDistance  OrderField = "distance"

	DefaultRadiusKm = 10.0
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Ordering struct {
	Field OrderField
	Desc  bool
}

// ParseOrdering accepts "field" or "-field"; unknown fields yield ok=false.
func ParseOrdering(raw string) (Ordering, bool) {
	raw = strings.TrimSpace(raw)
	desc := strings.HasPrefix(raw, "-")
	field := OrderField(strings.TrimPrefix(raw, "-"))
	switch field {
	case OrderByPrice, OrderByBedrooms, OrderByBathrooms, OrderByCreated, OrderByName:
		return Ordering{Field: field, Desc: desc}, true
	default:
		return Ordering{}, false
	}
}

func (o Ordering) String() string {
	if o.Desc {
		return "-" + string(o.Field)
	}
	return string(o.Field)
}

// Proximity restricts results to a circle around Center.
type Proximity struct {
	Center   geo.Point
	RadiusKm float64
}

// SearchParams describe catalog filters and paging options.
type SearchParams struct {
	MinPrice     decimal.NullDecimal
	MaxPrice     decimal.NullDecimal
	Bedrooms     *int
	MinBedrooms  *int
	Bathrooms    decimal.NullDecimal
	MinBathrooms decimal.NullDecimal
	Type         Type
	City         string
	Country      string
	Amenities    []string
	MinGuests    int
	CheckIn      time.Time
	CheckOut     time.Time
	Near         *Proximity
	Text         string
	Ordering     *Ordering
	Limit        int
	Offset       int

	// All disables paging; Limit and Offset are ignored.
	All bool
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	n := p
	n.City = strings.TrimSpace(n.City)
	n.Country = strings.TrimSpace(n.Country)
	n.Text = strings.TrimSpace(n.Text)
	n.Amenities = normalizeTokens(n.Amenities)
	n.CheckIn = daterange.Day(n.CheckIn)
	n.CheckOut = daterange.Day(n.CheckOut)
	if n.MinGuests < 0 {
		n.MinGuests = 0
	}
	if n.Near != nil && n.Near.RadiusKm <= 0 {
		near := *n.Near
		near.RadiusKm = DefaultRadiusKm
		n.Near = &near
	}
	if n.Limit <= 0 {
		n.Limit = DefaultPageSize
	}
	if n.Limit > MaxPageSize {
		n.Limit = MaxPageSize
	}
	if n.Offset < 0 {
		n.Offset = 0
	}
	return n
}

// HasStay reports whether the availability filter applies; both dates are needed.
func (p SearchParams) HasStay() bool {
	return !p.CheckIn.IsZero() && !p.CheckOut.IsZero()
}

// EffectiveOrdering resolves the sort order: an explicit ordering wins, a
// proximity search sorts by distance, everything else is newest first.
func (p SearchParams) EffectiveOrdering() Ordering {
	if p.Ordering != nil {
		return *p.Ordering
	}
	if p.Near != nil {
		return Ordering{Field: OrderByDistance}
	}
	return Ordering{Field: OrderByCreated, Desc: true}
}

// MatchesAttributes applies every filter except availability and proximity,
// which need bookings and coordinates respectively.
func (p SearchParams) MatchesAttributes(prop *Property) bool {
	if prop == nil {
		return false
	}
	price := prop.BasePrice.Amount
	if p.MinPrice.Valid && price.LessThan(p.MinPrice.Decimal) {
		return false
	}
	if p.MaxPrice.Valid && price.GreaterThan(p.MaxPrice.Decimal) {
		return false
	}
	if p.Bedrooms != nil && prop.Bedrooms != *p.Bedrooms {
		return false
	}
	if p.MinBedrooms != nil && prop.Bedrooms < *p.MinBedrooms {
		return false
	}
	if p.Bathrooms.Valid && !prop.Bathrooms.Equal(p.Bathrooms.Decimal) {
		return false
	}
	if p.MinBathrooms.Valid && prop.Bathrooms.LessThan(p.MinBathrooms.Decimal) {
		return false
	}
	if p.Type != "" && prop.Type != p.Type {
		return false
	}
	if p.City != "" && !containsFold(prop.City, p.City) {
		return false
	}
	if p.Country != "" && !containsFold(prop.Country, p.Country) {
		return false
	}
	for _, amenity := range p.Amenities {
		if !prop.HasAmenity(amenity) {
			return false
		}
	}
	if p.MinGuests > 0 && prop.MaxGuests < p.MinGuests {
		return false
	}
	if p.Text != "" {
		if !containsFold(prop.Name, p.Text) && !containsFold(prop.Description, p.Text) &&
			!containsFold(prop.City, p.Text) && !containsFold(prop.Address, p.Text) {
			return false
		}
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func normalizeTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		key := strings.ToLower(token)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, token)
	}
	return out
}

// Hit is one search result; DistanceKm is set only for proximity searches.
type Hit struct {
	Property   *Property
	DistanceKm *float64
}

// SearchResult wraps search hits with meta.
type SearchResult struct {
	Items []Hit
	Total int
}
