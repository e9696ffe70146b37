package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"rentals/internal/domain/booking"
	"rentals/internal/domain/pricing"
	"rentals/internal/domain/properties"
)

const bookingColumns = `id, property_id, check_in, check_out, guest_name, guest_email,
	total_price::text, status, created_at`

type BookingRepository struct {
	db querier
}

func (r BookingRepository) ForProperty(ctx context.Context, id properties.ID) ([]booking.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE property_id = $1 ORDER BY check_in, id`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	return collectBookings(rows)
}

func (r BookingRepository) Confirmed(ctx context.Context, ids []properties.ID) (map[properties.ID][]booking.Booking, error) {
	out := make(map[properties.ID][]booking.Booking, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE property_id = ANY($1) AND status = $2 ORDER BY property_id, check_in, id`,
		raw, string(booking.StatusConfirmed))
	if err != nil {
		return nil, fmt.Errorf("load confirmed bookings: %w", err)
	}
	list, err := collectBookings(rows)
	if err != nil {
		return nil, err
	}
	for _, b := range list {
		out[b.PropertyID] = append(out[b.PropertyID], b)
	}
	return out, nil
}

func collectBookings(rows pgx.Rows) ([]booking.Booking, error) {
	defer rows.Close()
	var out []booking.Booking
	for rows.Next() {
		var (
			b                    booking.Booking
			id, propertyID       int64
			total                *string
			status               string
			checkIn, checkOut, c time.Time
		)
		if err := rows.Scan(&id, &propertyID, &checkIn, &checkOut, &b.GuestName, &b.GuestEmail, &total, &status, &c); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		if total != nil {
			d, err := decimal.NewFromString(*total)
			if err != nil {
				return nil, fmt.Errorf("booking %d total %q: %w", id, *total, err)
			}
			b.TotalPrice = decimal.NewNullDecimal(d)
		}
		b.ID = booking.ID(id)
		b.PropertyID = properties.ID(propertyID)
		b.CheckIn = checkIn.UTC()
		b.CheckOut = checkOut.UTC()
		b.Status = booking.Status(status)
		b.CreatedAt = c.UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

type RuleRepository struct {
	db querier
}

func (r RuleRepository) ForProperty(ctx context.Context, id properties.ID) ([]pricing.Rule, error) {
	rows, err := r.db.Query(ctx, `SELECT id, property_id, start_date, end_date, price_multiplier::text
		FROM pricing_rules WHERE property_id = $1 ORDER BY start_date, id`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("load pricing rules: %w", err)
	}
	defer rows.Close()
	var out []pricing.Rule
	for rows.Next() {
		var (
			ruleID, propertyID int64
			start, end         time.Time
			multiplier         string
		)
		if err := rows.Scan(&ruleID, &propertyID, &start, &end, &multiplier); err != nil {
			return nil, fmt.Errorf("scan pricing rule: %w", err)
		}
		m, err := decimal.NewFromString(multiplier)
		if err != nil {
			return nil, fmt.Errorf("rule %d multiplier %q: %w", ruleID, multiplier, err)
		}
		out = append(out, pricing.Rule{
			ID:         pricing.RuleID(ruleID),
			PropertyID: properties.ID(propertyID),
			StartDate:  start.UTC(),
			EndDate:    end.UTC(),
			Multiplier: m,
		})
	}
	return out, rows.Err()
}

var (
	_ booking.Repository     = BookingRepository{}
	_ pricing.RuleRepository = RuleRepository{}
)
