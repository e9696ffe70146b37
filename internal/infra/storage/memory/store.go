package memory

import (
	"sort"
	"strings"
	"sync"

	"rentals/internal/domain/booking"
	"rentals/internal/domain/pricing"
	"rentals/internal/domain/properties"
)

// Store keeps the whole catalog in process. Properties are indexed by
// geohash so proximity searches only scan the cells around the center.
type Store struct {
	mu      sync.RWMutex
	writeMu sync.Mutex
	state   *state
}

type hashEntry struct {
	hash string
	id   properties.ID
}

type state struct {
	properties map[properties.ID]*properties.Property
	index      []hashEntry
	rules      map[properties.ID][]pricing.Rule
	bookings   map[properties.ID][]booking.Booking

	lastProperty int64
	lastImage    int64
	lastRule     int64
	lastBooking  int64
}

func NewStore() *Store {
	return &Store{state: newState()}
}

func newState() *state {
	return &state{
		properties: make(map[properties.ID]*properties.Property),
		rules:      make(map[properties.ID][]pricing.Rule),
		bookings:   make(map[properties.ID][]booking.Booking),
	}
}

func (s *state) clone() *state {
	out := &state{
		properties:   make(map[properties.ID]*properties.Property, len(s.properties)),
		index:        append([]hashEntry(nil), s.index...),
		rules:        make(map[properties.ID][]pricing.Rule, len(s.rules)),
		bookings:     make(map[properties.ID][]booking.Booking, len(s.bookings)),
		lastProperty: s.lastProperty,
		lastImage:    s.lastImage,
		lastRule:     s.lastRule,
		lastBooking:  s.lastBooking,
	}
	for id, p := range s.properties {
		out.properties[id] = p
	}
	for id, rules := range s.rules {
		out.rules[id] = append([]pricing.Rule(nil), rules...)
	}
	for id, bookings := range s.bookings {
		out.bookings[id] = append([]booking.Booking(nil), bookings...)
	}
	return out
}

func (s *state) putProperty(p *properties.Property) {
	if old, ok := s.properties[p.ID]; ok {
		s.unindex(old)
	}
	s.properties[p.ID] = p
	entry := hashEntry{hash: p.Geohash, id: p.ID}
	i := sort.Search(len(s.index), func(i int) bool { return !entryLess(s.index[i], entry) })
	s.index = append(s.index, hashEntry{})
	copy(s.index[i+1:], s.index[i:])
	s.index[i] = entry
}

func (s *state) unindex(p *properties.Property) {
	for i, e := range s.index {
		if e.id == p.ID {
			s.index = append(s.index[:i], s.index[i+1:]...)
			return
		}
	}
}

// withPrefix returns ids whose geohash starts with prefix.
func (s *state) withPrefix(prefix string) []properties.ID {
	start := sort.Search(len(s.index), func(i int) bool { return s.index[i].hash >= prefix })
	var ids []properties.ID
	for i := start; i < len(s.index) && strings.HasPrefix(s.index[i].hash, prefix); i++ {
		ids = append(ids, s.index[i].id)
	}
	return ids
}

func entryLess(a, b hashEntry) bool {
	if a.hash != b.hash {
		return a.hash < b.hash
	}
	return a.id < b.id
}

func cloneProperty(p *properties.Property) *properties.Property {
	cp := &properties.Property{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Type:        p.Type,
		Address:     p.Address,
		City:        p.City,
		Country:     p.Country,
		Location:    p.Location,
		Geohash:     p.Geohash,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		MaxGuests:   p.MaxGuests,
		BasePrice:   p.BasePrice,
		Amenities:   append([]string(nil), p.Amenities...),
		Images:      append([]properties.Image(nil), p.Images...),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	return cp
}
