// Package availability decides whether a property can be booked for a stay.
// Intervals are closed: a booking that ends on the requested start day still
// conflicts.
package availability

import (
	"sort"
	"time"

	"rentals/internal/domain/booking"
	"rentals/internal/domain/shared/daterange"
)

// IsAvailable returns false when any confirmed booking satisfies
// checkIn <= end && checkOut >= start. Other statuses are ignored.
func IsAvailable(start, end time.Time, bookings []booking.Booking) bool {
	start = daterange.Day(start)
	end = daterange.Day(end)
	for _, b := range bookings {
		if !b.Blocks() {
			continue
		}
		if !b.CheckIn.After(end) && !b.CheckOut.Before(start) {
			return false
		}
	}
	return true
}

// FilterAvailable keeps the items whose bookings leave [start, end] free.
// Input order is preserved.
func FilterAvailable[T any](items []T, bookingsOf func(T) []booking.Booking, start, end time.Time) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if IsAvailable(start, end, bookingsOf(item)) {
			out = append(out, item)
		}
	}
	return out
}

// UnavailableRanges lists confirmed stays ordered by check-in.
func UnavailableRanges(bookings []booking.Booking) []daterange.DateRange {
	confirmed := make([]booking.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Blocks() {
			confirmed = append(confirmed, b)
		}
	}
	sort.SliceStable(confirmed, func(i, j int) bool {
		if !confirmed[i].CheckIn.Equal(confirmed[j].CheckIn) {
			return confirmed[i].CheckIn.Before(confirmed[j].CheckIn)
		}
		return confirmed[i].ID < confirmed[j].ID
	})
	out := make([]daterange.DateRange, 0, len(confirmed))
	for _, b := range confirmed {
		out = append(out, b.Range())
	}
	return out
}
