package catalogimport

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rentals/internal/app/commands"
	"rentals/internal/app/outbox"
	"rentals/internal/app/uow"
	"rentals/internal/domain/booking"
	"rentals/internal/domain/pricing"
	"rentals/internal/domain/properties"
	"rentals/internal/domain/shared/daterange"
	"rentals/internal/domain/shared/events"
)

const importCatalogKey = "catalog.import"

// ImportCatalogCommand writes a decoded dataset into the catalog.
//
// Without PreserveIDs every entity gets a fresh id and child rows are
// re-pointed through the property id map. Rows whose property is not part
// of the dataset are skipped and counted as orphans.
type ImportCatalogCommand struct {
	Source         string
	Dataset        Dataset
	Clear          bool
	PreserveIDs    bool
	SkipIfNotEmpty bool
}

func (c ImportCatalogCommand) Key() string { return importCatalogKey }

func (c ImportCatalogCommand) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return fmt.Errorf("catalogimport: source is required")
	}
	return nil
}

type Report struct {
	Source       string `json:"source"`
	Skipped      bool   `json:"skipped"`
	Cleared      int    `json:"cleared"`
	Properties   int    `json:"properties"`
	Amenities    int    `json:"amenities"`
	Images       int    `json:"images"`
	PricingRules int    `json:"pricing_rules"`
	Bookings     int    `json:"bookings"`
	Orphans      int    `json:"orphans"`
}

type ImportCatalogHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Now     func() time.Time
}

func (h *ImportCatalogHandler) Handle(ctx context.Context, cmd ImportCatalogCommand) (Report, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return Report{}, uow.ErrUnitOfWorkMissing
	}
	report := Report{Source: cmd.Source}
	now := h.now()

	if cmd.SkipIfNotEmpty {
		count, err := unit.Properties().Count(ctx)
		if err != nil {
			return Report{}, err
		}
		if count > 0 {
			h.logger().InfoContext(ctx, "catalog already contains data, skipping", slog.Int("properties", count))
			report.Skipped = true
			return report, nil
		}
	}

	writer := unit.Catalog()
	if cmd.Clear {
		removed, err := writer.Clear(ctx)
		if err != nil {
			return Report{}, fmt.Errorf("catalogimport: clear: %w", err)
		}
		report.Cleared = removed
		if err := h.record(ctx, properties.CatalogClearedEvent{Removed: removed, At: now}); err != nil {
			return Report{}, err
		}
	}

	amenities := make(map[int64][]string)
	for _, row := range cmd.Dataset.Amenities {
		amenities[row.PropertyID] = append(amenities[row.PropertyID], row.Amenity)
	}
	images := make(map[int64][]properties.Image)
	for _, row := range cmd.Dataset.Images {
		img := properties.Image{URL: row.ImageURL, IsPrimary: bool(row.IsPrimary)}
		if cmd.PreserveIDs {
			img.ID = row.ID
		}
		images[row.PropertyID] = append(images[row.PropertyID], img)
	}

	idMap := make(map[int64]properties.ID, len(cmd.Dataset.Properties))
	for _, row := range cmd.Dataset.Properties {
		prop, err := buildProperty(row, amenities[row.ID], images[row.ID], cmd.PreserveIDs, now)
		if err != nil {
			return Report{}, fmt.Errorf("catalogimport: property %d: %w", row.ID, err)
		}
		id, err := writer.SaveProperty(ctx, prop)
		if err != nil {
			return Report{}, fmt.Errorf("catalogimport: save property %d: %w", row.ID, err)
		}
		prop.ID = id
		idMap[row.ID] = id
		prop.MarkImported(cmd.Source, now)
		if err := h.record(ctx, prop.PullEvents()...); err != nil {
			return Report{}, err
		}
		report.Properties++
		report.Amenities += len(prop.Amenities)
		report.Images += len(prop.Images)
	}
	for _, row := range cmd.Dataset.Amenities {
		if _, ok := idMap[row.PropertyID]; !ok {
			report.Orphans++
		}
	}
	for _, row := range cmd.Dataset.Images {
		if _, ok := idMap[row.PropertyID]; !ok {
			report.Orphans++
		}
	}

	rules := make([]pricing.Rule, 0, len(cmd.Dataset.PricingRules))
	for _, row := range cmd.Dataset.PricingRules {
		propertyID, ok := idMap[row.PropertyID]
		if !ok {
			report.Orphans++
			continue
		}
		rule, err := buildRule(row, propertyID, cmd.PreserveIDs)
		if err != nil {
			return Report{}, fmt.Errorf("catalogimport: pricing rule %d: %w", row.ID, err)
		}
		rules = append(rules, rule)
	}
	if err := writer.SavePricingRules(ctx, rules); err != nil {
		return Report{}, fmt.Errorf("catalogimport: save pricing rules: %w", err)
	}
	report.PricingRules = len(rules)

	bookings := make([]booking.Booking, 0, len(cmd.Dataset.Bookings))
	for _, row := range cmd.Dataset.Bookings {
		propertyID, ok := idMap[row.PropertyID]
		if !ok {
			report.Orphans++
			continue
		}
		b, err := buildBooking(row, propertyID, cmd.PreserveIDs, now)
		if err != nil {
			return Report{}, fmt.Errorf("catalogimport: booking %d: %w", row.ID, err)
		}
		bookings = append(bookings, b)
	}
	if err := writer.SaveBookings(ctx, bookings); err != nil {
		return Report{}, fmt.Errorf("catalogimport: save bookings: %w", err)
	}
	report.Bookings = len(bookings)

	h.logger().InfoContext(ctx, "catalog imported",
		slog.String("source", cmd.Source),
		slog.Int("properties", report.Properties),
		slog.Int("pricing_rules", report.PricingRules),
		slog.Int("bookings", report.Bookings),
		slog.Int("orphans", report.Orphans),
	)
	return report, nil
}

func (h *ImportCatalogHandler) record(ctx context.Context, evs ...events.DomainEvent) error {
	return outbox.Record(ctx, h.Outbox, h.Encoder, evs...)
}

func (h *ImportCatalogHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *ImportCatalogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func buildProperty(row PropertyRow, amenities []string, images []properties.Image, preserveIDs bool, now time.Time) (*properties.Property, error) {
	params := properties.CreateParams{
		Name:      row.Name,
		Type:      row.PropertyType,
		Address:   row.Address,
		City:      row.City,
		Country:   row.Country,
		Latitude:  row.Latitude,
		Longitude: row.Longitude,
		Bedrooms:  row.Bedrooms,
		Bathrooms: row.Bathrooms,
		MaxGuests: row.MaxGuests,
		BasePrice: row.BasePricePerNight,
		Amenities: amenities,
		Images:    images,
		Now:       now,
	}
	if preserveIDs {
		params.ID = properties.ID(row.ID)
	}
	if row.Description != nil {
		params.Description = *row.Description
	}
	if row.Currency != nil {
		params.Currency = *row.Currency
	}
	if row.CreatedAt != nil {
		params.CreatedAt = *row.CreatedAt
	}
	if row.UpdatedAt != nil {
		params.UpdatedAt = *row.UpdatedAt
	}
	return properties.NewProperty(params)
}

func buildRule(row RuleRow, propertyID properties.ID, preserveIDs bool) (pricing.Rule, error) {
	start, err := daterange.ParseDay(row.StartDate)
	if err != nil {
		return pricing.Rule{}, err
	}
	end, err := daterange.ParseDay(row.EndDate)
	if err != nil {
		return pricing.Rule{}, err
	}
	var id pricing.RuleID
	if preserveIDs {
		id = pricing.RuleID(row.ID)
	}
	return pricing.NewRule(id, propertyID, start, end, row.PriceMultiplier)
}

func buildBooking(row BookingRow, propertyID properties.ID, preserveIDs bool, now time.Time) (booking.Booking, error) {
	checkIn, err := daterange.ParseDay(row.CheckIn)
	if err != nil {
		return booking.Booking{}, err
	}
	checkOut, err := daterange.ParseDay(row.CheckOut)
	if err != nil {
		return booking.Booking{}, err
	}
	params := booking.CreateParams{
		PropertyID: propertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestName:  row.GuestName,
		TotalPrice: row.TotalPrice,
		CreatedAt:  now,
	}
	if preserveIDs {
		params.ID = booking.ID(row.ID)
	}
	if row.GuestEmail != nil {
		params.GuestEmail = *row.GuestEmail
	}
	if row.Status != nil {
		params.Status = *row.Status
	}
	if row.CreatedAt != nil {
		params.CreatedAt = *row.CreatedAt
	}
	return booking.New(params)
}

var _ commands.Handler[ImportCatalogCommand, Report] = (*ImportCatalogHandler)(nil)
