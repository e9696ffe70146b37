package properties

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rentals/internal/domain/shared/events"
	"rentals/internal/domain/shared/geo"
	"rentals/internal/domain/shared/money"
)

var (
	ErrNotFound        = errors.New("properties: property not found")
	ErrNameRequired    = errors.New("properties: name is required")
	ErrInvalidType     = errors.New("properties: unknown property type")
	ErrNegativeRooms   = errors.New("properties: bedrooms and bathrooms must be non-negative")
	ErrGuestsLimit     = errors.New("properties: max guests must be at least 1")
	ErrNegativePrice   = errors.New("properties: base price must be non-negative")
	ErrAddressRequired = errors.New("properties: address, city and country are required")
)

type ID int64

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

func ParseID(raw string) (ID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrNotFound
	}
	return ID(v), nil
}

type Type string

const (
	TypeApartment Type = "Apartment"
	TypeHouse     Type = "House"
	TypeCondo     Type = "Condo"
	TypeVilla     Type = "Villa"
	TypeTownhouse Type = "Townhouse"
	TypeLoft      Type = "Loft"
	TypeStudio    Type = "Studio"
	TypePenthouse Type = "Penthouse"
	TypeCottage   Type = "Cottage"
	TypeBungalow  Type = "Bungalow"
)

var knownTypes = []Type{
	TypeApartment, TypeHouse, TypeCondo, TypeVilla, TypeTownhouse,
	TypeLoft, TypeStudio, TypePenthouse, TypeCottage, TypeBungalow,
}

// ParseType matches a known type case-insensitively.
func ParseType(raw string) (Type, bool) {
	raw = strings.TrimSpace(raw)
	for _, t := range knownTypes {
		if strings.EqualFold(string(t), raw) {
			return t, true
		}
	}
	return "", false
}

// Amenity names the importer ships with; free text is accepted as well.
var KnownAmenities = []string{
	"WiFi", "Kitchen", "Parking", "Pool", "Gym", "Air Conditioning", "Heating",
	"TV", "Washer", "Dryer", "Elevator", "Balcony", "Pet Friendly",
}

type Image struct {
	ID        int64
	URL       string
	IsPrimary bool
}

type Property struct {
	ID          ID
	Name        string
	Description string
	Type        Type
	Address     string
	City        string
	Country     string
	Location    geo.Point
	Geohash     string
	Bedrooms    int
	Bathrooms   decimal.Decimal
	MaxGuests   int
	BasePrice   money.Money
	Amenities   []string
	Images      []Image
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

type CreateParams struct {
	ID          ID
	Name        string
	Description string
	Type        string
	Address     string
	City        string
	Country     string
	Latitude    float64
	Longitude   float64
	Bedrooms    int
	Bathrooms   decimal.Decimal
	MaxGuests   int
	BasePrice   decimal.Decimal
	Currency    string
	Amenities   []string
	Images      []Image
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Now         time.Time
}

func NewProperty(params CreateParams) (*Property, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	propertyType, ok := ParseType(params.Type)
	if !ok {
		return nil, ErrInvalidType
	}
	if strings.TrimSpace(params.Address) == "" || strings.TrimSpace(params.City) == "" || strings.TrimSpace(params.Country) == "" {
		return nil, ErrAddressRequired
	}
	location, err := geo.NewPoint(params.Latitude, params.Longitude)
	if err != nil {
		return nil, err
	}
	if params.Bedrooms < 0 || params.Bathrooms.IsNegative() {
		return nil, ErrNegativeRooms
	}
	if params.MaxGuests < 1 {
		return nil, ErrGuestsLimit
	}
	if params.BasePrice.IsNegative() {
		return nil, ErrNegativePrice
	}
	currency := params.Currency
	if strings.TrimSpace(currency) == "" {
		currency = money.DefaultCurrency
	}
	price, err := money.New(params.BasePrice, currency)
	if err != nil {
		return nil, err
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	created := params.CreatedAt
	if created.IsZero() {
		created = now
	}
	updated := params.UpdatedAt
	if updated.IsZero() {
		updated = created
	}

	p := &Property{
		ID:          params.ID,
		Name:        strings.TrimSpace(params.Name),
		Description: strings.TrimSpace(params.Description),
		Type:        propertyType,
		Address:     strings.TrimSpace(params.Address),
		City:        strings.TrimSpace(params.City),
		Country:     strings.TrimSpace(params.Country),
		Location:    location,
		Geohash:     location.Geohash(),
		Bedrooms:    params.Bedrooms,
		Bathrooms:   params.Bathrooms.Round(1),
		MaxGuests:   params.MaxGuests,
		BasePrice:   price,
		Amenities:   normalizeAmenities(params.Amenities),
		Images:      append([]Image(nil), params.Images...),
		CreatedAt:   created.UTC(),
		UpdatedAt:   updated.UTC(),
	}
	SortImages(p.Images)
	return p, nil
}

// PrimaryImage returns the image flagged as primary, if any.
func (p *Property) PrimaryImage() (Image, bool) {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img, true
		}
	}
	return Image{}, false
}

func (p *Property) HasAmenity(needle string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return true
	}
	for _, amenity := range p.Amenities {
		if strings.Contains(strings.ToLower(amenity), needle) {
			return true
		}
	}
	return false
}

// MarkImported records the import event once the property has its final id.
func (p *Property) MarkImported(source string, at time.Time) {
	p.Record(PropertyImportedEvent{PropertyID: p.ID, Source: source, At: at.UTC()})
}

// SortImages orders primary images first, then by id.
func SortImages(images []Image) {
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].IsPrimary != images[j].IsPrimary {
			return images[i].IsPrimary
		}
		return images[i].ID < images[j].ID
	})
}

func normalizeAmenities(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Repository is the read side of the catalog.
type Repository interface {
	ByID(ctx context.Context, id ID) (*Property, error)
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
	Count(ctx context.Context) (int, error)
}
