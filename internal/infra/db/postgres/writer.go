package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"rentals/internal/domain/booking"
	"rentals/internal/domain/pricing"
	"rentals/internal/domain/properties"
)

// CatalogWriter writes inside the unit's transaction. Rows inserted with an
// explicit id bump the table sequence so later inserts do not collide.
type CatalogWriter struct {
	db querier
}

func (w CatalogWriter) Clear(ctx context.Context) (int, error) {
	tag, err := w.db.Exec(ctx, `DELETE FROM properties`)
	if err != nil {
		return 0, fmt.Errorf("clear catalog: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (w CatalogWriter) SaveProperty(ctx context.Context, p *properties.Property) (properties.ID, error) {
	var id int64
	err := w.db.QueryRow(ctx, `INSERT INTO properties (
			id, name, description, property_type, address, city, country, location, geohash,
			bedrooms, bathrooms, max_guests, base_price_per_night, currency, created_at, updated_at
		) VALUES (
			COALESCE($1, nextval(pg_get_serial_sequence('properties', 'id'))), $2, $3, $4, $5, $6, $7,
			ST_SetSRID(ST_MakePoint($8, $9), 4326)::geography, $10,
			$11, $12, $13, $14, $15, $16, $17
		) RETURNING id`,
		nullableID(int64(p.ID)), p.Name, p.Description, string(p.Type), p.Address, p.City, p.Country,
		p.Location.Lon, p.Location.Lat, p.Geohash,
		p.Bedrooms, p.Bathrooms, p.MaxGuests, p.BasePrice.Amount, p.BasePrice.Currency, p.CreatedAt, p.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert property %q: %w", p.Name, err)
	}

	batch := &pgx.Batch{}
	for _, amenity := range p.Amenities {
		batch.Queue(`INSERT INTO property_amenities (property_id, name) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, id, amenity)
	}
	explicitImages := false
	for _, img := range p.Images {
		explicitImages = explicitImages || img.ID != 0
		batch.Queue(`INSERT INTO property_images (id, property_id, image_url, is_primary)
			VALUES (COALESCE($1, nextval(pg_get_serial_sequence('property_images', 'id'))), $2, $3, $4)`,
			nullableID(img.ID), id, img.URL, img.IsPrimary)
	}
	if p.ID != 0 {
		queueSyncSequence(batch, "properties")
	}
	if explicitImages {
		queueSyncSequence(batch, "property_images")
	}
	if err := sendBatch(ctx, w.db, batch); err != nil {
		return 0, fmt.Errorf("insert property %d children: %w", id, err)
	}
	return properties.ID(id), nil
}

func (w CatalogWriter) SavePricingRules(ctx context.Context, rules []pricing.Rule) error {
	batch := &pgx.Batch{}
	explicit := false
	for _, r := range rules {
		explicit = explicit || r.ID != 0
		batch.Queue(`INSERT INTO pricing_rules (id, property_id, start_date, end_date, price_multiplier)
			VALUES (COALESCE($1, nextval(pg_get_serial_sequence('pricing_rules', 'id'))), $2, $3, $4, $5)`,
			nullableID(int64(r.ID)), int64(r.PropertyID), r.StartDate, r.EndDate, r.Multiplier)
	}
	if explicit {
		queueSyncSequence(batch, "pricing_rules")
	}
	if err := sendBatch(ctx, w.db, batch); err != nil {
		return fmt.Errorf("insert pricing rules: %w", err)
	}
	return nil
}

func (w CatalogWriter) SaveBookings(ctx context.Context, bookings []booking.Booking) error {
	batch := &pgx.Batch{}
	explicit := false
	for _, b := range bookings {
		explicit = explicit || b.ID != 0
		batch.Queue(`INSERT INTO bookings (id, property_id, check_in, check_out, guest_name, guest_email,
				total_price, status, created_at)
			VALUES (COALESCE($1, nextval(pg_get_serial_sequence('bookings', 'id'))), $2, $3, $4, $5, $6, $7, $8, $9)`,
			nullableID(int64(b.ID)), int64(b.PropertyID), b.CheckIn, b.CheckOut, b.GuestName, b.GuestEmail,
			b.TotalPrice, string(b.Status), b.CreatedAt)
	}
	if explicit {
		queueSyncSequence(batch, "bookings")
	}
	if err := sendBatch(ctx, w.db, batch); err != nil {
		return fmt.Errorf("insert bookings: %w", err)
	}
	return nil
}

func queueSyncSequence(batch *pgx.Batch, table string) {
	batch.Queue(fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'),
		GREATEST((SELECT COALESCE(max(id), 0) FROM %[1]s), 1))`, table))
}

func sendBatch(ctx context.Context, db querier, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	results := db.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return err
		}
	}
	return results.Close()
}

func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
