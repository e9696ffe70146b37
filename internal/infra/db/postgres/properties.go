package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"rentals/internal/domain/properties"
	"rentals/internal/domain/shared/geo"
	"rentals/internal/domain/shared/money"
)

const propertyColumns = `p.id, p.name, p.description, p.property_type, p.address, p.city, p.country,
	ST_Y(p.location::geometry), ST_X(p.location::geometry), p.geohash, p.bedrooms, p.bathrooms::text,
	p.max_guests, p.base_price_per_night::text, p.currency, p.created_at, p.updated_at`

type PropertyRepository struct {
	db querier
}

func (r PropertyRepository) ByID(ctx context.Context, id properties.ID) (*properties.Property, error) {
	row := r.db.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties p WHERE p.id = $1`, int64(id))
	p, err := scanProperty(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, properties.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load property %d: %w", id, err)
	}
	if err := r.attach(ctx, map[properties.ID]*properties.Property{p.ID: p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r PropertyRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM properties`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count properties: %w", err)
	}
	return n, nil
}

func (r PropertyRepository) Search(ctx context.Context, params properties.SearchParams) (properties.SearchResult, error) {
	opts := params.Normalized()
	qb, distance := applyFilters(opts)
	sql := fmt.Sprintf(`SELECT %s, %s AS distance_km, count(*) OVER () AS total
		FROM properties p %s %s`, propertyColumns, distance, qb.where(), orderClause(opts.EffectiveOrdering()))
	if !opts.All {
		sql += fmt.Sprintf(" LIMIT %s OFFSET %s", qb.arg(opts.Limit), qb.arg(opts.Offset))
	}

	rows, err := r.db.Query(ctx, sql, qb.args...)
	if err != nil {
		return properties.SearchResult{}, fmt.Errorf("search properties: %w", err)
	}
	defer rows.Close()

	var (
		hits  = make([]properties.Hit, 0)
		byID  = make(map[properties.ID]*properties.Property)
		total int
	)
	for rows.Next() {
		var km *float64
		p, err := scanProperty(rows, &km, &total)
		if err != nil {
			return properties.SearchResult{}, fmt.Errorf("scan property: %w", err)
		}
		byID[p.ID] = p
		hits = append(hits, properties.Hit{Property: p, DistanceKm: km})
	}
	if err := rows.Err(); err != nil {
		return properties.SearchResult{}, fmt.Errorf("search properties: %w", err)
	}
	if len(hits) == 0 && !opts.All && opts.Offset > 0 {
		// the window fell past the end, so count(*) OVER () never ran
		if total, err = r.countMatching(ctx, opts); err != nil {
			return properties.SearchResult{}, err
		}
	}
	if err := r.attach(ctx, byID); err != nil {
		return properties.SearchResult{}, err
	}
	return properties.SearchResult{Items: hits, Total: total}, nil
}

func (r PropertyRepository) countMatching(ctx context.Context, opts properties.SearchParams) (int, error) {
	qb, _ := applyFilters(opts)
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM properties p `+qb.where(), qb.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count properties: %w", err)
	}
	return n, nil
}

// attach loads amenities and images for the given properties.
func (r PropertyRepository) attach(ctx context.Context, byID map[properties.ID]*properties.Property) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(byID))
	for id := range byID {
		ids = append(ids, int64(id))
	}

	rows, err := r.db.Query(ctx, `SELECT property_id, name FROM property_amenities
		WHERE property_id = ANY($1) ORDER BY property_id, name`, ids)
	if err != nil {
		return fmt.Errorf("load amenities: %w", err)
	}
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return fmt.Errorf("scan amenity: %w", err)
		}
		p := byID[properties.ID(id)]
		p.Amenities = append(p.Amenities, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load amenities: %w", err)
	}

	rows, err = r.db.Query(ctx, `SELECT id, property_id, image_url, is_primary FROM property_images
		WHERE property_id = ANY($1) ORDER BY property_id, is_primary DESC, id`, ids)
	if err != nil {
		return fmt.Errorf("load images: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			img        properties.Image
			propertyID int64
		)
		if err := rows.Scan(&img.ID, &propertyID, &img.URL, &img.IsPrimary); err != nil {
			return fmt.Errorf("scan image: %w", err)
		}
		p := byID[properties.ID(propertyID)]
		p.Images = append(p.Images, img)
	}
	return rows.Err()
}

func scanProperty(row pgx.Row, extra ...any) (*properties.Property, error) {
	var (
		id                   int64
		p                    properties.Property
		kind                 string
		lat, lon             float64
		bathrooms, price     string
		currency             string
		createdAt, updatedAt time.Time
	)
	dest := []any{&id, &p.Name, &p.Description, &kind, &p.Address, &p.City, &p.Country,
		&lat, &lon, &p.Geohash, &p.Bedrooms, &bathrooms, &p.MaxGuests, &price, &currency,
		&createdAt, &updatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	bath, err := decimal.NewFromString(bathrooms)
	if err != nil {
		return nil, fmt.Errorf("bathrooms %q: %w", bathrooms, err)
	}
	amount, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("price %q: %w", price, err)
	}
	p.ID = properties.ID(id)
	p.Type = properties.Type(kind)
	p.Location = geo.Point{Lat: lat, Lon: lon}
	p.Bathrooms = bath
	p.BasePrice = money.Money{Amount: amount, Currency: currency}
	p.CreatedAt = createdAt.UTC()
	p.UpdatedAt = updatedAt.UTC()
	return &p, nil
}

var _ properties.Repository = PropertyRepository{}
