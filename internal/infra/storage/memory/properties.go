package memory

import (
	"context"
	"sort"

	"rentals/internal/domain/properties"
	"rentals/internal/domain/shared/geo"
)

type PropertyRepository struct {
	view func() *state
	done func()
}

func (r PropertyRepository) ByID(ctx context.Context, id properties.ID) (*properties.Property, error) {
	st := r.view()
	defer r.done()
	p, ok := st.properties[id]
	if !ok {
		return nil, properties.ErrNotFound
	}
	return cloneProperty(p), nil
}

func (r PropertyRepository) Count(ctx context.Context) (int, error) {
	st := r.view()
	defer r.done()
	return len(st.properties), nil
}

func (r PropertyRepository) Search(ctx context.Context, params properties.SearchParams) (properties.SearchResult, error) {
	st := r.view()
	defer r.done()

	opts := params.Normalized()
	hits := make([]properties.Hit, 0)
	for _, id := range candidates(st, opts) {
		if err := ctx.Err(); err != nil {
			return properties.SearchResult{}, err
		}
		p := st.properties[id]
		if !opts.MatchesAttributes(p) {
			continue
		}
		hit := properties.Hit{Property: p}
		if opts.Near != nil {
			km := geo.DistanceKm(opts.Near.Center, p.Location)
			if km > opts.Near.RadiusKm {
				continue
			}
			hit.DistanceKm = &km
		}
		hits = append(hits, hit)
	}

	SortHits(hits, opts.EffectiveOrdering())
	total := len(hits)
	if !opts.All {
		hits = page(hits, opts.Offset, opts.Limit)
	}
	for i := range hits {
		hits[i].Property = cloneProperty(hits[i].Property)
	}
	return properties.SearchResult{Items: hits, Total: total}, nil
}

// candidates narrows the scan to the geohash cells around a proximity center.
func candidates(st *state, opts properties.SearchParams) []properties.ID {
	if opts.Near != nil {
		if prefixes := geo.CoverPrefixes(opts.Near.Center, opts.Near.RadiusKm); prefixes != nil {
			seen := make(map[properties.ID]struct{})
			var ids []properties.ID
			for _, prefix := range prefixes {
				for _, id := range st.withPrefix(prefix) {
					if _, dup := seen[id]; dup {
						continue
					}
					seen[id] = struct{}{}
					ids = append(ids, id)
				}
			}
			return ids
		}
	}
	ids := make([]properties.ID, 0, len(st.properties))
	for id := range st.properties {
		ids = append(ids, id)
	}
	return ids
}

// SortHits orders hits by o; ties fall back to ascending id.
func SortHits(hits []properties.Hit, o properties.Ordering) {
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		c := compareHits(a, b, o.Field)
		if c == 0 {
			return a.Property.ID < b.Property.ID
		}
		if o.Desc {
			return c > 0
		}
		return c < 0
	})
}

func compareHits(a, b properties.Hit, field properties.OrderField) int {
	pa, pb := a.Property, b.Property
	switch field {
	case properties.OrderByPrice:
		return pa.BasePrice.Amount.Cmp(pb.BasePrice.Amount)
	case properties.OrderByBedrooms:
		return pa.Bedrooms - pb.Bedrooms
	case properties.OrderByBathrooms:
		return pa.Bathrooms.Cmp(pb.Bathrooms)
	case properties.OrderByName:
		switch {
		case pa.Name < pb.Name:
			return -1
		case pa.Name > pb.Name:
			return 1
		}
		return 0
	case properties.OrderByDistance:
		if a.DistanceKm == nil || b.DistanceKm == nil {
			return 0
		}
		switch {
		case *a.DistanceKm < *b.DistanceKm:
			return -1
		case *a.DistanceKm > *b.DistanceKm:
			return 1
		}
		return 0
	default:
		return pa.CreatedAt.Compare(pb.CreatedAt)
	}
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

var _ properties.Repository = PropertyRepository{}
