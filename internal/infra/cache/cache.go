package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/karlseguin/ccache/v3"

	"rentals/internal/domain/properties"
)

const (
	keyPrefix     = "rentals:property:"
	generationKey = "rentals:catalog:generation"
)

// Remote is the subset of *memcache.Client the cache uses.
type Remote interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Add(item *memcache.Item) error
	Increment(key string, delta uint64) (uint64, error)
}

type Config struct {
	TTL           time.Duration
	Size          int64
	MemcachedAddr string
	Logger        *slog.Logger
}

// PropertyCache keeps property details in a local ccache in front of an
// optional memcached tier. Remote keys carry a catalog generation, so bumping
// the generation invalidates every process at once; the local tier of other
// processes ages out with TTL.
type PropertyCache struct {
	local  *ccache.Cache[*properties.Property]
	remote Remote
	ttl    time.Duration
	logger *slog.Logger
}

func New(cfg Config) *PropertyCache {
	var remote Remote
	if cfg.MemcachedAddr != "" {
		client := memcache.New(cfg.MemcachedAddr)
		client.Timeout = 200 * time.Millisecond
		remote = client
	}
	return NewWithRemote(cfg, remote)
}

// NewWithRemote builds a cache over an explicit remote tier; nil keeps it local.
func NewWithRemote(cfg Config, remote Remote) *PropertyCache {
	size := cfg.Size
	if size <= 0 {
		size = 1000
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &PropertyCache{
		local:  ccache.New(ccache.Configure[*properties.Property]().MaxSize(size)),
		remote: remote,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns a cached property. Callers must treat it as read-only.
func (c *PropertyCache) Get(ctx context.Context, id properties.ID) (*properties.Property, bool) {
	key := id.String()
	if item := c.local.Get(key); item != nil && !item.Expired() {
		return item.Value(), true
	}
	if c.remote == nil {
		return nil, false
	}
	remoteKey, err := c.remoteKey(id)
	if err != nil {
		c.logger.WarnContext(ctx, "cache generation lookup failed", slog.Any("error", err))
		return nil, false
	}
	item, err := c.remote.Get(remoteKey)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			c.logger.WarnContext(ctx, "memcached get failed", slog.String("key", remoteKey), slog.Any("error", err))
		}
		return nil, false
	}
	var p properties.Property
	if err := json.Unmarshal(item.Value, &p); err != nil {
		c.logger.WarnContext(ctx, "memcached entry unreadable", slog.String("key", remoteKey), slog.Any("error", err))
		return nil, false
	}
	c.local.Set(key, &p, c.ttl)
	return &p, true
}

func (c *PropertyCache) Set(ctx context.Context, p *properties.Property) {
	if p == nil || p.ID == 0 {
		return
	}
	c.local.Set(p.ID.String(), p, c.ttl)
	if c.remote == nil {
		return
	}
	remoteKey, err := c.remoteKey(p.ID)
	if err != nil {
		c.logger.WarnContext(ctx, "cache generation lookup failed", slog.Any("error", err))
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		c.logger.WarnContext(ctx, "cache encode failed", slog.Int64("property_id", int64(p.ID)), slog.Any("error", err))
		return
	}
	item := &memcache.Item{Key: remoteKey, Value: raw, Expiration: int32(c.ttl / time.Second)}
	if err := c.remote.Set(item); err != nil {
		c.logger.WarnContext(ctx, "memcached set failed", slog.String("key", remoteKey), slog.Any("error", err))
	}
}

// Invalidate drops the local tier and moves the remote tier to a new generation.
func (c *PropertyCache) Invalidate(ctx context.Context) {
	c.local.Clear()
	if c.remote == nil {
		return
	}
	if _, err := c.remote.Increment(generationKey, 1); err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			c.logger.WarnContext(ctx, "memcached generation bump failed", slog.Any("error", err))
			return
		}
		err = c.remote.Add(&memcache.Item{Key: generationKey, Value: []byte("1")})
		if err != nil && !errors.Is(err, memcache.ErrNotStored) {
			c.logger.WarnContext(ctx, "memcached generation init failed", slog.Any("error", err))
		}
	}
}

func (c *PropertyCache) Close() {
	c.local.Stop()
}

func (c *PropertyCache) remoteKey(id properties.ID) (string, error) {
	gen := "0"
	item, err := c.remote.Get(generationKey)
	switch {
	case err == nil:
		gen = string(item.Value)
	case errors.Is(err, memcache.ErrCacheMiss):
	default:
		return "", err
	}
	if _, err := strconv.ParseUint(gen, 10, 64); err != nil {
		return "", fmt.Errorf("cache: bad generation %q", gen)
	}
	return keyPrefix + gen + ":" + id.String(), nil
}
