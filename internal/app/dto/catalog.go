package dto

import (
	"time"

	"rentals/internal/domain/properties"
	"rentals/internal/domain/shared/daterange"
	"rentals/internal/domain/shared/geo"
	"rentals/internal/domain/shared/money"
)

// PropertyCard is the list representation of a property.
type PropertyCard struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	PropertyType      string   `json:"property_type"`
	City              string   `json:"city"`
	Country           string   `json:"country"`
	Latitude          float64  `json:"latitude"`
	Longitude         float64  `json:"longitude"`
	Bedrooms          int      `json:"bedrooms"`
	Bathrooms         string   `json:"bathrooms"`
	MaxGuests         int      `json:"max_guests"`
	BasePricePerNight string   `json:"base_price_per_night"`
	Currency          string   `json:"currency"`
	Amenities         []string `json:"amenities"`
	PrimaryImage      *string  `json:"primary_image"`
	Distance          *float64 `json:"distance"`
}

// PropertyPage is one page of the catalog. Next and Previous are absolute
// URLs filled in by the transport layer.
type PropertyPage struct {
	Count          int            `json:"count"`
	Page           int            `json:"page"`
	PageSize       int            `json:"page_size"`
	Next           *string        `json:"next"`
	Previous       *string        `json:"previous"`
	Results        []PropertyCard `json:"results"`
	FiltersApplied FiltersApplied `json:"filters_applied"`
}

func (p PropertyPage) HasNext() bool {
	return p.Page*p.PageSize < p.Count
}

func (p PropertyPage) HasPrevious() bool {
	return p.Page > 1
}

// FiltersApplied echoes the raw filter values; absent values stay null.
type FiltersApplied struct {
	PropertyType *string `json:"property_type"`
	City         *string `json:"city"`
	MinPrice     *string `json:"min_price"`
	MaxPrice     *string `json:"max_price"`
	Geolocation  bool    `json:"geolocation"`
}

type PropertyImage struct {
	ID        int64  `json:"id"`
	ImageURL  string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
}

type StayRange struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

type AvailabilityNote struct {
	Message string `json:"message"`
	Note    string `json:"note"`
}

type PropertyDetail struct {
	ID                int64            `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	PropertyType      string           `json:"property_type"`
	Address           string           `json:"address"`
	City              string           `json:"city"`
	Country           string           `json:"country"`
	Latitude          float64          `json:"latitude"`
	Longitude         float64          `json:"longitude"`
	Bedrooms          int              `json:"bedrooms"`
	Bathrooms         string           `json:"bathrooms"`
	MaxGuests         int              `json:"max_guests"`
	BasePricePerNight string           `json:"base_price_per_night"`
	Currency          string           `json:"currency"`
	Amenities         []string         `json:"amenities"`
	Images            []PropertyImage  `json:"images"`
	AvailableDates    AvailabilityNote `json:"available_dates"`
	UnavailableDates  []StayRange      `json:"unavailable_dates"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

type Availability struct {
	PropertyID       int64       `json:"property_id"`
	PropertyName     string      `json:"property_name"`
	UnavailableDates []StayRange `json:"unavailable_dates"`
	TotalBookings    int         `json:"total_bookings"`
}

type Center struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Nearby struct {
	Count    int            `json:"count"`
	RadiusKm float64        `json:"radius_km"`
	Center   Center         `json:"center"`
	Results  []PropertyCard `json:"results"`
}

func MapCard(hit properties.Hit) PropertyCard {
	p := hit.Property
	card := PropertyCard{
		ID:                int64(p.ID),
		Name:              p.Name,
		PropertyType:      string(p.Type),
		City:              p.City,
		Country:           p.Country,
		Latitude:          p.Location.Lat,
		Longitude:         p.Location.Lon,
		Bedrooms:          p.Bedrooms,
		Bathrooms:         p.Bathrooms.StringFixed(1),
		MaxGuests:         p.MaxGuests,
		BasePricePerNight: p.BasePrice.Amount.StringFixed(2),
		Currency:          p.BasePrice.Currency,
		Amenities:         nonNil(p.Amenities),
	}
	if img, ok := p.PrimaryImage(); ok {
		url := img.URL
		card.PrimaryImage = &url
	}
	if hit.DistanceKm != nil {
		km := geo.RoundKm(*hit.DistanceKm)
		card.Distance = &km
	}
	return card
}

func MapCards(hits []properties.Hit) []PropertyCard {
	out := make([]PropertyCard, 0, len(hits))
	for _, hit := range hits {
		out = append(out, MapCard(hit))
	}
	return out
}

func MapDetail(p *properties.Property, unavailable []daterange.DateRange) PropertyDetail {
	images := make([]PropertyImage, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, PropertyImage{ID: img.ID, ImageURL: img.URL, IsPrimary: img.IsPrimary})
	}
	return PropertyDetail{
		ID:                int64(p.ID),
		Name:              p.Name,
		Description:       p.Description,
		PropertyType:      string(p.Type),
		Address:           p.Address,
		City:              p.City,
		Country:           p.Country,
		Latitude:          p.Location.Lat,
		Longitude:         p.Location.Lon,
		Bedrooms:          p.Bedrooms,
		Bathrooms:         p.Bathrooms.StringFixed(1),
		MaxGuests:         p.MaxGuests,
		BasePricePerNight: money.FormatAmount(p.BasePrice.Amount),
		Currency:          p.BasePrice.Currency,
		Amenities:         nonNil(p.Amenities),
		Images:            images,
		AvailableDates: AvailabilityNote{
			Message: "Check unavailable_dates for booked periods",
			Note:    "All other dates are potentially available",
		},
		UnavailableDates: MapRanges(unavailable),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func MapRanges(ranges []daterange.DateRange) []StayRange {
	out := make([]StayRange, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, StayRange{CheckIn: daterange.FormatDay(r.CheckIn), CheckOut: daterange.FormatDay(r.CheckOut)})
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
