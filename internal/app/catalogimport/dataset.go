package catalogimport

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"
)

//go:embed schema/dataset.schema.json
var schemaFS embed.FS

const schemaPath = "schema/dataset.schema.json"

var ErrInvalidDataset = errors.New("catalogimport: dataset does not match schema")

// Dataset mirrors the tables of a catalog export.
type Dataset struct {
	Properties   []PropertyRow `json:"properties"`
	Amenities    []AmenityRow  `json:"property_amenities"`
	Images       []ImageRow    `json:"property_images"`
	PricingRules []RuleRow     `json:"pricing_rules"`
	Bookings     []BookingRow  `json:"bookings"`
}

type PropertyRow struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Description       *string         `json:"description"`
	PropertyType      string          `json:"property_type"`
	Address           string          `json:"address"`
	City              string          `json:"city"`
	Country           string          `json:"country"`
	Latitude          float64         `json:"latitude"`
	Longitude         float64         `json:"longitude"`
	Bedrooms          int             `json:"bedrooms"`
	Bathrooms         decimal.Decimal `json:"bathrooms"`
	MaxGuests         int             `json:"max_guests"`
	BasePricePerNight decimal.Decimal `json:"base_price_per_night"`
	Currency          *string         `json:"currency"`
	CreatedAt         *time.Time      `json:"created_at"`
	UpdatedAt         *time.Time      `json:"updated_at"`
}

type AmenityRow struct {
	ID         int64  `json:"id"`
	PropertyID int64  `json:"property_id"`
	Amenity    string `json:"amenity"`
}

// Flag accepts both JSON booleans and the 0/1 integers of SQL exports.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true", "1":
		*f = true
	case "false", "0", "null":
		*f = false
	default:
		return fmt.Errorf("catalogimport: invalid flag %s", data)
	}
	return nil
}

type ImageRow struct {
	ID         int64  `json:"id"`
	PropertyID int64  `json:"property_id"`
	ImageURL   string `json:"image_url"`
	IsPrimary  Flag   `json:"is_primary"`
}

type RuleRow struct {
	ID              int64           `json:"id"`
	PropertyID      int64           `json:"property_id"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	PriceMultiplier decimal.Decimal `json:"price_multiplier"`
}

type BookingRow struct {
	ID         int64               `json:"id"`
	PropertyID int64               `json:"property_id"`
	CheckIn    string              `json:"check_in"`
	CheckOut   string              `json:"check_out"`
	GuestName  string              `json:"guest_name"`
	GuestEmail *string             `json:"guest_email"`
	TotalPrice decimal.NullDecimal `json:"total_price"`
	Status     *string             `json:"status"`
	CreatedAt  *time.Time          `json:"created_at"`
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func datasetSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		f, err := schemaFS.Open(schemaPath)
		if err != nil {
			compileErr = err
			return
		}
		defer f.Close()
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource(schemaPath, f); err != nil {
			compileErr = err
			return
		}
		compiledSchema, compileErr = compiler.Compile(schemaPath)
	})
	return compiledSchema, compileErr
}

// Decode reads a dataset, validates it against the embedded schema and
// decodes it. Schema violations wrap ErrInvalidDataset.
func Decode(r io.Reader) (Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Dataset{}, fmt.Errorf("catalogimport: read dataset: %w", err)
	}
	schema, err := datasetSchema()
	if err != nil {
		return Dataset{}, fmt.Errorf("catalogimport: compile schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Dataset{}, fmt.Errorf("catalogimport: parse dataset: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return Dataset{}, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}

	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return Dataset{}, fmt.Errorf("catalogimport: decode dataset: %w", err)
	}
	return ds, nil
}
