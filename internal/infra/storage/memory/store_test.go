package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rentals/internal/app/uow"
	"rentals/internal/domain/booking"
	"rentals/internal/domain/pricing"
	"rentals/internal/domain/properties"
	"rentals/internal/domain/shared/geo"
)

var created = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newProperty(t *testing.T, name, city string, lat, lon float64, price string, age int) *properties.Property {
	t.Helper()
	p, err := properties.NewProperty(properties.CreateParams{
		Name:      name,
		Type:      "Apartment",
		Address:   "1 Main St",
		City:      city,
		Country:   "USA",
		Latitude:  lat,
		Longitude: lon,
		Bedrooms:  2,
		Bathrooms: decimal.NewFromInt(1),
		MaxGuests: 4,
		BasePrice: decimal.RequireFromString(price),
		CreatedAt: created.AddDate(0, 0, age),
		Images: []properties.Image{
			{URL: "https://img.example.com/" + name + "-2.jpg"},
			{URL: "https://img.example.com/" + name + "-1.jpg", IsPrimary: true},
		},
	})
	if err != nil {
		t.Fatalf("NewProperty: %v", err)
	}
	return p
}

func day(raw string) time.Time {
	d, _ := time.Parse("2006-01-02", raw)
	return d
}

func seed(t *testing.T, store *Store, props ...*properties.Property) []properties.ID {
	t.Helper()
	ctx := context.Background()
	unit, err := Factory{Store: store}.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	ids := make([]properties.ID, 0, len(props))
	for _, p := range props {
		id, err := unit.Catalog().SaveProperty(ctx, p)
		if err != nil {
			t.Fatalf("SaveProperty: %v", err)
		}
		ids = append(ids, id)
	}
	if err := unit.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return ids
}

func readUnit(t *testing.T, store *Store) uow.UnitOfWork {
	t.Helper()
	unit, err := Factory{Store: store}.Begin(context.Background(), uow.TxOptions{ReadOnly: true})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return unit
}

func TestSavePropertyAllocatesIDs(t *testing.T) {
	store := NewStore()
	ids := seed(t, store,
		newProperty(t, "a", "New York", 40.7128, -74.0060, "100", 0),
		newProperty(t, "b", "New York", 40.7130, -74.0050, "200", 1),
	)
	if ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("got ids %v, want [1 2]", ids)
	}

	got, err := readUnit(t, store).Properties().ByID(context.Background(), 2)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if got.Name != "b" {
		t.Fatalf("got name %q, want b", got.Name)
	}
	if !got.Images[0].IsPrimary || got.Images[0].ID == 0 {
		t.Fatalf("got images %+v, want primary first with ids", got.Images)
	}
}

func TestSavePropertyKeepsExplicitID(t *testing.T) {
	store := NewStore()
	p := newProperty(t, "a", "Paris", 48.8566, 2.3522, "100", 0)
	p.ID = 42
	seed(t, store, p)
	next := seed(t, store, newProperty(t, "b", "Paris", 48.85, 2.35, "100", 0))
	if next[0] != 43 {
		t.Fatalf("got id %d, want 43", next[0])
	}

	ctx := context.Background()
	unit, _ := Factory{Store: store}.Begin(ctx, uow.TxOptions{})
	dup := newProperty(t, "c", "Paris", 48.85, 2.35, "100", 0)
	dup.ID = 42
	if _, err := unit.Catalog().SaveProperty(ctx, dup); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("got %v, want ErrDuplicateID", err)
	}
	_ = unit.Rollback(ctx)
}

func TestByIDMissing(t *testing.T) {
	_, err := readUnit(t, NewStore()).Properties().ByID(context.Background(), 7)
	if !errors.Is(err, properties.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	unit, _ := Factory{Store: store}.Begin(ctx, uow.TxOptions{})
	if _, err := unit.Catalog().SaveProperty(ctx, newProperty(t, "a", "Rome", 41.9, 12.5, "80", 0)); err != nil {
		t.Fatalf("SaveProperty: %v", err)
	}
	if err := unit.Rollback(ctx); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	n, _ := readUnit(t, store).Properties().Count(ctx)
	if n != 0 {
		t.Fatalf("got %d properties, want 0", n)
	}
}

func TestReadOnlyUnitRejectsWrites(t *testing.T) {
	_, err := readUnit(t, NewStore()).Catalog().Clear(context.Background())
	if !errors.Is(err, ErrReadOnlyUnit) {
		t.Fatalf("got %v, want ErrReadOnlyUnit", err)
	}
}

func TestSearchDefaultOrderingNewestFirst(t *testing.T) {
	store := NewStore()
	seed(t, store,
		newProperty(t, "old", "Boston", 42.36, -71.06, "100", 0),
		newProperty(t, "new", "Boston", 42.36, -71.05, "150", 5),
		newProperty(t, "mid", "Chicago", 41.88, -87.63, "300", 2),
	)
	res, err := readUnit(t, store).Properties().Search(context.Background(), properties.SearchParams{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	var names []string
	for _, hit := range res.Items {
		names = append(names, hit.Property.Name)
	}
	want := []string{"new", "mid", "old"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestSearchFiltersAndPages(t *testing.T) {
	store := NewStore()
	seed(t, store,
		newProperty(t, "a", "Boston", 42.36, -71.06, "100", 0),
		newProperty(t, "b", "Boston", 42.36, -71.05, "150", 1),
		newProperty(t, "c", "Boston", 42.35, -71.04, "250", 2),
		newProperty(t, "d", "Chicago", 41.88, -87.63, "120", 3),
	)
	ordering := properties.Ordering{Field: properties.OrderByPrice}
	res, err := readUnit(t, store).Properties().Search(context.Background(), properties.SearchParams{
		City:     "boston",
		MaxPrice: decimal.NewNullDecimal(decimal.NewFromInt(200)),
		Ordering: &ordering,
		Limit:    1,
		Offset:   1,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("got total %d, want 2", res.Total)
	}
	if len(res.Items) != 1 || res.Items[0].Property.Name != "b" {
		t.Fatalf("got %+v, want single hit b", res.Items)
	}
}

func TestSearchNearSortsByDistance(t *testing.T) {
	store := NewStore()
	seed(t, store,
		newProperty(t, "far", "New York", 40.7580, -73.9855, "100", 0),
		newProperty(t, "near", "New York", 40.7138, -74.0050, "100", 1),
		newProperty(t, "la", "Los Angeles", 34.0522, -118.2437, "100", 2),
	)
	center := geo.Point{Lat: 40.7128, Lon: -74.0060}
	res, err := readUnit(t, store).Properties().Search(context.Background(), properties.SearchParams{
		Near: &properties.Proximity{Center: center, RadiusKm: 10},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("got total %d, want 2", res.Total)
	}
	if res.Items[0].Property.Name != "near" || res.Items[1].Property.Name != "far" {
		t.Fatalf("got %s,%s, want near,far", res.Items[0].Property.Name, res.Items[1].Property.Name)
	}
	for _, hit := range res.Items {
		if hit.DistanceKm == nil || *hit.DistanceKm > 10 {
			t.Fatalf("got distance %v, want <= 10", hit.DistanceKm)
		}
	}
}

func TestSearchNearMatchesFullScan(t *testing.T) {
	store := NewStore()
	var props []*properties.Property
	for i := 0; i < 40; i++ {
		lat := 40.60 + float64(i%8)*0.03
		lon := -74.10 + float64(i/8)*0.04
		props = append(props, newProperty(t, "p", "New York", lat, lon, "100", i))
	}
	seed(t, store, props...)
	center := geo.Point{Lat: 40.7128, Lon: -74.0060}
	res, err := readUnit(t, store).Properties().Search(context.Background(), properties.SearchParams{
		Near: &properties.Proximity{Center: center, RadiusKm: 8},
		All:  true,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := 0
	for _, p := range props {
		if geo.DistanceKm(center, p.Location) <= 8 {
			want++
		}
	}
	if res.Total != want {
		t.Fatalf("got %d hits, want %d", res.Total, want)
	}
}

func TestSchedulesSortedAndFiltered(t *testing.T) {
	store := NewStore()
	ids := seed(t, store, newProperty(t, "a", "Denver", 39.74, -104.99, "100", 0))
	ctx := context.Background()

	unit, _ := Factory{Store: store}.Begin(ctx, uow.TxOptions{})
	late, _ := pricing.NewRule(0, ids[0], day("2024-07-01"), day("2024-07-31"), decimal.RequireFromString("1.5"))
	early, _ := pricing.NewRule(0, ids[0], day("2024-06-01"), day("2024-06-30"), decimal.RequireFromString("1.2"))
	if err := unit.Catalog().SavePricingRules(ctx, []pricing.Rule{late, early}); err != nil {
		t.Fatalf("SavePricingRules: %v", err)
	}
	confirmed, _ := booking.New(booking.CreateParams{PropertyID: ids[0], CheckIn: day("2024-05-10"), CheckOut: day("2024-05-12"), GuestName: "Ann"})
	cancelled, _ := booking.New(booking.CreateParams{PropertyID: ids[0], CheckIn: day("2024-05-01"), CheckOut: day("2024-05-03"), GuestName: "Bob", Status: "cancelled"})
	if err := unit.Catalog().SaveBookings(ctx, []booking.Booking{confirmed, cancelled}); err != nil {
		t.Fatalf("SaveBookings: %v", err)
	}
	orphan, _ := booking.New(booking.CreateParams{PropertyID: 99, CheckIn: day("2024-05-01"), CheckOut: day("2024-05-03"), GuestName: "Eve"})
	if err := unit.Catalog().SaveBookings(ctx, []booking.Booking{orphan}); !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("got %v, want ErrUnknownProperty", err)
	}
	if err := unit.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	read := readUnit(t, store)
	rules, _ := read.PricingRules().ForProperty(ctx, ids[0])
	if len(rules) != 2 || !rules[0].StartDate.Equal(day("2024-06-01")) {
		t.Fatalf("got rules %+v, want June first", rules)
	}
	all, _ := read.Bookings().ForProperty(ctx, ids[0])
	if len(all) != 2 || all[0].GuestName != "Bob" {
		t.Fatalf("got bookings %+v, want Bob first", all)
	}
	blocking, _ := read.Bookings().Confirmed(ctx, ids)
	if len(blocking[ids[0]]) != 1 || blocking[ids[0]][0].GuestName != "Ann" {
		t.Fatalf("got confirmed %+v, want only Ann", blocking[ids[0]])
	}
}

func TestClearRemovesEverything(t *testing.T) {
	store := NewStore()
	seed(t, store,
		newProperty(t, "a", "Austin", 30.27, -97.74, "90", 0),
		newProperty(t, "b", "Austin", 30.26, -97.75, "95", 1),
	)
	ctx := context.Background()
	unit, _ := Factory{Store: store}.Begin(ctx, uow.TxOptions{})
	removed, err := unit.Catalog().Clear(ctx)
	if err != nil || removed != 2 {
		t.Fatalf("got %d, %v; want 2, nil", removed, err)
	}
	_ = unit.Commit(ctx)
	n, _ := readUnit(t, store).Properties().Count(ctx)
	if n != 0 {
		t.Fatalf("got %d properties, want 0", n)
	}
}
