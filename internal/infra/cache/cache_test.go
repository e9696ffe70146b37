package cache

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/shopspring/decimal"

	"rentals/internal/app/uow"
	"rentals/internal/domain/properties"
	"rentals/internal/infra/storage/memory"
)

type fakeRemote struct {
	mu    sync.Mutex
	items map[string][]byte
	gets  int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{items: make(map[string][]byte)}
}

func (f *fakeRemote) Get(key string) (*memcache.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	v, ok := f.items[key]
	if !ok {
		return nil, memcache.ErrCacheMiss
	}
	return &memcache.Item{Key: key, Value: v}, nil
}

func (f *fakeRemote) Set(item *memcache.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[item.Key] = item.Value
	return nil
}

func (f *fakeRemote) Add(item *memcache.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[item.Key]; ok {
		return memcache.ErrNotStored
	}
	f.items[item.Key] = item.Value
	return nil
}

func (f *fakeRemote) Increment(key string, delta uint64) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[key]
	if !ok {
		return 0, memcache.ErrCacheMiss
	}
	n, _ := strconv.ParseUint(string(v), 10, 64)
	n += delta
	f.items[key] = []byte(strconv.FormatUint(n, 10))
	return n, nil
}

func property(t *testing.T, name string) *properties.Property {
	t.Helper()
	p, err := properties.NewProperty(properties.CreateParams{
		Name:      name,
		Type:      "House",
		Address:   "5 Elm St",
		City:      "Boston",
		Country:   "USA",
		Latitude:  42.36,
		Longitude: -71.06,
		Bedrooms:  3,
		Bathrooms: decimal.RequireFromString("2.5"),
		MaxGuests: 6,
		BasePrice: decimal.RequireFromString("199.90"),
		Now:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("NewProperty: %v", err)
	}
	return p
}

func TestRemoteTierFillsLocal(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	writer := NewWithRemote(Config{TTL: time.Minute}, remote)
	defer writer.Close()
	p := property(t, "Elm House")
	p.ID = 4
	writer.Set(ctx, p)

	reader := NewWithRemote(Config{TTL: time.Minute}, remote)
	defer reader.Close()
	got, ok := reader.Get(ctx, 4)
	if !ok {
		t.Fatal("expected remote hit")
	}
	if got.Name != "Elm House" || !got.BasePrice.Amount.Equal(decimal.RequireFromString("199.90")) {
		t.Errorf("got %+v", got)
	}
	before := remote.gets
	if _, ok := reader.Get(ctx, 4); !ok {
		t.Fatal("expected local hit")
	}
	if remote.gets != before {
		t.Errorf("local hit went remote: got %d gets, want %d", remote.gets, before)
	}
}

func TestInvalidateBumpsGeneration(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	c := NewWithRemote(Config{}, remote)
	defer c.Close()
	p := property(t, "Elm House")
	p.ID = 9
	c.Set(ctx, p)

	c.Invalidate(ctx)
	if _, ok := c.Get(ctx, 9); ok {
		t.Fatal("entry survived invalidation")
	}
	if got := string(remote.items[generationKey]); got != "1" {
		t.Errorf("generation: got %q, want 1", got)
	}
	c.Invalidate(ctx)
	if got := string(remote.items[generationKey]); got != "2" {
		t.Errorf("generation: got %q, want 2", got)
	}
}

type countingFactory struct {
	uow.UoWFactory
	byID int
}

type countingUnit struct {
	uow.UnitOfWork
	f *countingFactory
}

type countingRepo struct {
	properties.Repository
	f *countingFactory
}

func (f *countingFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit, err := f.UoWFactory.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	return countingUnit{UnitOfWork: unit, f: f}, nil
}

func (u countingUnit) Properties() properties.Repository {
	return countingRepo{Repository: u.UnitOfWork.Properties(), f: u.f}
}

func (r countingRepo) ByID(ctx context.Context, id properties.ID) (*properties.Property, error) {
	r.f.byID++
	return r.Repository.ByID(ctx, id)
}

func readName(t *testing.T, f Factory, id properties.ID) string {
	t.Helper()
	ctx := context.Background()
	unit, err := f.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer unit.Rollback(ctx)
	p, err := unit.Properties().ByID(ctx, id)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	return p.Name
}

func TestFactoryCachesAndInvalidatesOnCommit(t *testing.T) {
	ctx := context.Background()
	counter := &countingFactory{UoWFactory: memory.Factory{Store: memory.NewStore()}}
	f := Factory{Next: counter, Cache: NewWithRemote(Config{}, nil)}
	defer f.Cache.Close()

	unit, err := f.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	id, err := unit.Catalog().SaveProperty(ctx, property(t, "First"))
	if err != nil {
		t.Fatalf("SaveProperty: %v", err)
	}
	if err := unit.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	for i := 0; i < 3; i++ {
		if got := readName(t, f, id); got != "First" {
			t.Fatalf("name: got %s, want First", got)
		}
	}
	if counter.byID != 1 {
		t.Errorf("store reads: got %d, want 1", counter.byID)
	}

	unit, err = f.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := unit.Catalog().Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	renamed := property(t, "Second")
	renamed.ID = id
	if _, err := unit.Catalog().SaveProperty(ctx, renamed); err != nil {
		t.Fatalf("SaveProperty: %v", err)
	}
	if err := unit.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if got := readName(t, f, id); got != "Second" {
		t.Errorf("after commit: got %s, want Second", got)
	}
}
