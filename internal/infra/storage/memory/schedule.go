package memory

import (
	"context"
	"sort"

	"rentals/internal/domain/booking"
	"rentals/internal/domain/pricing"
	"rentals/internal/domain/properties"
)

type BookingRepository struct {
	view func() *state
	done func()
}

func (r BookingRepository) ForProperty(ctx context.Context, id properties.ID) ([]booking.Booking, error) {
	st := r.view()
	defer r.done()
	return append([]booking.Booking(nil), st.bookings[id]...), nil
}

func (r BookingRepository) Confirmed(ctx context.Context, ids []properties.ID) (map[properties.ID][]booking.Booking, error) {
	st := r.view()
	defer r.done()
	out := make(map[properties.ID][]booking.Booking, len(ids))
	for _, id := range ids {
		for _, b := range st.bookings[id] {
			if b.Blocks() {
				out[id] = append(out[id], b)
			}
		}
	}
	return out, nil
}

type RuleRepository struct {
	view func() *state
	done func()
}

func (r RuleRepository) ForProperty(ctx context.Context, id properties.ID) ([]pricing.Rule, error) {
	st := r.view()
	defer r.done()
	return append([]pricing.Rule(nil), st.rules[id]...), nil
}

func sortBookings(bookings []booking.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		if !bookings[i].CheckIn.Equal(bookings[j].CheckIn) {
			return bookings[i].CheckIn.Before(bookings[j].CheckIn)
		}
		return bookings[i].ID < bookings[j].ID
	})
}

var (
	_ booking.Repository     = BookingRepository{}
	_ pricing.RuleRepository = RuleRepository{}
)
