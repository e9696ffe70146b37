package memory

import (
	"context"
	"errors"
	"fmt"

	"rentals/internal/domain/booking"
	"rentals/internal/domain/pricing"
	"rentals/internal/domain/properties"
)

var (
	ErrDuplicateID     = errors.New("memory: duplicate id")
	ErrUnknownProperty = errors.New("memory: property does not exist")
)

// CatalogWriter mutates the state staged by a write unit.
type CatalogWriter struct {
	st *state
}

func (w CatalogWriter) Clear(ctx context.Context) (int, error) {
	removed := len(w.st.properties)
	fresh := newState()
	fresh.lastProperty = w.st.lastProperty
	fresh.lastImage = w.st.lastImage
	fresh.lastRule = w.st.lastRule
	fresh.lastBooking = w.st.lastBooking
	*w.st = *fresh
	return removed, nil
}

func (w CatalogWriter) SaveProperty(ctx context.Context, p *properties.Property) (properties.ID, error) {
	if p == nil {
		return 0, errors.New("memory: nil property")
	}
	stored := cloneProperty(p)
	if stored.ID == 0 {
		w.st.lastProperty++
		stored.ID = properties.ID(w.st.lastProperty)
	} else {
		if _, exists := w.st.properties[stored.ID]; exists {
			return 0, fmt.Errorf("%w: property %d", ErrDuplicateID, stored.ID)
		}
		w.st.lastProperty = max(w.st.lastProperty, int64(stored.ID))
	}
	for i := range stored.Images {
		if stored.Images[i].ID == 0 {
			w.st.lastImage++
			stored.Images[i].ID = w.st.lastImage
		} else {
			w.st.lastImage = max(w.st.lastImage, stored.Images[i].ID)
		}
	}
	properties.SortImages(stored.Images)
	w.st.putProperty(stored)
	return stored.ID, nil
}

func (w CatalogWriter) SavePricingRules(ctx context.Context, rules []pricing.Rule) error {
	touched := make(map[properties.ID]struct{})
	for _, rule := range rules {
		if _, ok := w.st.properties[rule.PropertyID]; !ok {
			return fmt.Errorf("%w: %d", ErrUnknownProperty, rule.PropertyID)
		}
		if rule.ID == 0 {
			w.st.lastRule++
			rule.ID = pricing.RuleID(w.st.lastRule)
		} else {
			w.st.lastRule = max(w.st.lastRule, int64(rule.ID))
		}
		w.st.rules[rule.PropertyID] = append(w.st.rules[rule.PropertyID], rule)
		touched[rule.PropertyID] = struct{}{}
	}
	for id := range touched {
		pricing.SortRules(w.st.rules[id])
	}
	return nil
}

func (w CatalogWriter) SaveBookings(ctx context.Context, bookings []booking.Booking) error {
	touched := make(map[properties.ID]struct{})
	for _, b := range bookings {
		if _, ok := w.st.properties[b.PropertyID]; !ok {
			return fmt.Errorf("%w: %d", ErrUnknownProperty, b.PropertyID)
		}
		if b.ID == 0 {
			w.st.lastBooking++
			b.ID = booking.ID(w.st.lastBooking)
		} else {
			w.st.lastBooking = max(w.st.lastBooking, int64(b.ID))
		}
		w.st.bookings[b.PropertyID] = append(w.st.bookings[b.PropertyID], b)
		touched[b.PropertyID] = struct{}{}
	}
	for id := range touched {
		sortBookings(w.st.bookings[id])
	}
	return nil
}
