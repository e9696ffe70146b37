package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rentals/internal/domain/booking"
	"rentals/internal/domain/pricing"
	"rentals/internal/domain/properties"
	"rentals/internal/domain/shared/geo"
	"rentals/internal/domain/shared/money"
)

const (
	propertiesCollection = "properties"
	rulesCollection      = "pricing_rules"
	bookingsCollection   = "bookings"
	countersCollection   = "counters"
)

// pointDocument is a GeoJSON point: coordinates are [lon, lat].
type pointDocument struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

type imageDocument struct {
	ID        int64  `bson:"id"`
	URL       string `bson:"image_url"`
	IsPrimary bool   `bson:"is_primary"`
}

type propertyDocument struct {
	ID           int64                `bson:"_id"`
	Name         string               `bson:"name"`
	Description  string               `bson:"description"`
	PropertyType string               `bson:"property_type"`
	Address      string               `bson:"address"`
	City         string               `bson:"city"`
	Country      string               `bson:"country"`
	Location     pointDocument        `bson:"location"`
	Geohash      string               `bson:"geohash"`
	Bedrooms     int                  `bson:"bedrooms"`
	Bathrooms    primitive.Decimal128 `bson:"bathrooms"`
	MaxGuests    int                  `bson:"max_guests"`
	BasePrice    primitive.Decimal128 `bson:"base_price_per_night"`
	Currency     string               `bson:"currency"`
	Amenities    []string             `bson:"amenities"`
	Images       []imageDocument      `bson:"images"`
	CreatedAt    time.Time            `bson:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at"`
	// DistanceM is filled by $geoNear only.
	DistanceM *float64 `bson:"distance_m,omitempty"`
}

func newPropertyDocument(p *properties.Property) (propertyDocument, error) {
	bathrooms, err := toDecimal128(p.Bathrooms)
	if err != nil {
		return propertyDocument{}, err
	}
	price, err := toDecimal128(p.BasePrice.Amount)
	if err != nil {
		return propertyDocument{}, err
	}
	images := make([]imageDocument, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, imageDocument{ID: img.ID, URL: img.URL, IsPrimary: img.IsPrimary})
	}
	return propertyDocument{
		ID:           int64(p.ID),
		Name:         p.Name,
		Description:  p.Description,
		PropertyType: string(p.Type),
		Address:      p.Address,
		City:         p.City,
		Country:      p.Country,
		Location:     pointDocument{Type: "Point", Coordinates: []float64{p.Location.Lon, p.Location.Lat}},
		Geohash:      p.Geohash,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    bathrooms,
		MaxGuests:    p.MaxGuests,
		BasePrice:    price,
		Currency:     p.BasePrice.Currency,
		Amenities:    append([]string{}, p.Amenities...),
		Images:       images,
		CreatedAt:    p.CreatedAt.UTC(),
		UpdatedAt:    p.UpdatedAt.UTC(),
	}, nil
}

func (d propertyDocument) toAggregate() (properties.Hit, error) {
	bathrooms, err := fromDecimal128(d.Bathrooms)
	if err != nil {
		return properties.Hit{}, fmt.Errorf("property %d bathrooms: %w", d.ID, err)
	}
	price, err := fromDecimal128(d.BasePrice)
	if err != nil {
		return properties.Hit{}, fmt.Errorf("property %d price: %w", d.ID, err)
	}
	var loc geo.Point
	if len(d.Location.Coordinates) == 2 {
		loc = geo.Point{Lon: d.Location.Coordinates[0], Lat: d.Location.Coordinates[1]}
	}
	images := make([]properties.Image, 0, len(d.Images))
	for _, img := range d.Images {
		images = append(images, properties.Image{ID: img.ID, URL: img.URL, IsPrimary: img.IsPrimary})
	}
	properties.SortImages(images)
	p := &properties.Property{
		ID:          properties.ID(d.ID),
		Name:        d.Name,
		Description: d.Description,
		Type:        properties.Type(d.PropertyType),
		Address:     d.Address,
		City:        d.City,
		Country:     d.Country,
		Location:    loc,
		Geohash:     d.Geohash,
		Bedrooms:    d.Bedrooms,
		Bathrooms:   bathrooms,
		MaxGuests:   d.MaxGuests,
		BasePrice:   money.Money{Amount: price, Currency: d.Currency},
		Amenities:   d.Amenities,
		Images:      images,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	hit := properties.Hit{Property: p}
	if d.DistanceM != nil {
		km := *d.DistanceM / 1000
		hit.DistanceKm = &km
	}
	return hit, nil
}

type ruleDocument struct {
	ID         int64                `bson:"_id"`
	PropertyID int64                `bson:"property_id"`
	Range      rangeDocument        `bson:"range"`
	Multiplier primitive.Decimal128 `bson:"price_multiplier"`
}

type rangeDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

func newRuleDocument(r pricing.Rule) (ruleDocument, error) {
	m, err := toDecimal128(r.Multiplier)
	if err != nil {
		return ruleDocument{}, err
	}
	return ruleDocument{
		ID:         int64(r.ID),
		PropertyID: int64(r.PropertyID),
		Range:      rangeDocument{Start: r.StartDate.UnixMilli(), End: r.EndDate.UnixMilli()},
		Multiplier: m,
	}, nil
}

func (d ruleDocument) toAggregate() (pricing.Rule, error) {
	m, err := fromDecimal128(d.Multiplier)
	if err != nil {
		return pricing.Rule{}, fmt.Errorf("rule %d multiplier: %w", d.ID, err)
	}
	return pricing.Rule{
		ID:         pricing.RuleID(d.ID),
		PropertyID: properties.ID(d.PropertyID),
		StartDate:  timestampToTime(d.Range.Start),
		EndDate:    timestampToTime(d.Range.End),
		Multiplier: m,
	}, nil
}

type bookingDocument struct {
	ID         int64                 `bson:"_id"`
	PropertyID int64                 `bson:"property_id"`
	CheckIn    int64                 `bson:"check_in"`
	CheckOut   int64                 `bson:"check_out"`
	GuestName  string                `bson:"guest_name"`
	GuestEmail string                `bson:"guest_email"`
	TotalPrice *primitive.Decimal128 `bson:"total_price,omitempty"`
	Status     string                `bson:"status"`
	CreatedAt  int64                 `bson:"created_at"`
}

func newBookingDocument(b booking.Booking) (bookingDocument, error) {
	doc := bookingDocument{
		ID:         int64(b.ID),
		PropertyID: int64(b.PropertyID),
		CheckIn:    b.CheckIn.UnixMilli(),
		CheckOut:   b.CheckOut.UnixMilli(),
		GuestName:  b.GuestName,
		GuestEmail: b.GuestEmail,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt.UnixMilli(),
	}
	if b.TotalPrice.Valid {
		total, err := toDecimal128(b.TotalPrice.Decimal)
		if err != nil {
			return bookingDocument{}, err
		}
		doc.TotalPrice = &total
	}
	return doc, nil
}

func (d bookingDocument) toAggregate() (booking.Booking, error) {
	b := booking.Booking{
		ID:         booking.ID(d.ID),
		PropertyID: properties.ID(d.PropertyID),
		CheckIn:    timestampToTime(d.CheckIn),
		CheckOut:   timestampToTime(d.CheckOut),
		GuestName:  d.GuestName,
		GuestEmail: d.GuestEmail,
		Status:     booking.Status(d.Status),
		CreatedAt:  timestampToTime(d.CreatedAt),
	}
	if d.TotalPrice != nil {
		total, err := fromDecimal128(*d.TotalPrice)
		if err != nil {
			return booking.Booking{}, fmt.Errorf("booking %d total: %w", d.ID, err)
		}
		b.TotalPrice = decimal.NewNullDecimal(total)
	}
	return b, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("decimal %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(v.String())
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
