package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"rentals/internal/domain/properties"
)

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) PropertyRepository {
	return PropertyRepository{col: db.Collection(propertiesCollection)}
}

func (r PropertyRepository) ByID(ctx context.Context, id properties.ID) (*properties.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, properties.ErrNotFound
		}
		return nil, fmt.Errorf("load property %d: %w", id, err)
	}
	hit, err := doc.toAggregate()
	if err != nil {
		return nil, err
	}
	return hit.Property, nil
}

func (r PropertyRepository) Count(ctx context.Context) (int, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count properties: %w", err)
	}
	return int(n), nil
}

func (r PropertyRepository) Search(ctx context.Context, params properties.SearchParams) (properties.SearchResult, error) {
	opts := params.Normalized()
	pipeline, err := searchPipeline(opts)
	if err != nil {
		return properties.SearchResult{}, err
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return properties.SearchResult{}, fmt.Errorf("search properties: %w", err)
	}
	defer cur.Close(ctx)

	var facets []struct {
		Items []propertyDocument `bson:"items"`
		Total []struct {
			N int `bson:"n"`
		} `bson:"total"`
	}
	if err := cur.All(ctx, &facets); err != nil {
		return properties.SearchResult{}, fmt.Errorf("decode search: %w", err)
	}
	res := properties.SearchResult{Items: make([]properties.Hit, 0)}
	if len(facets) == 0 {
		return res, nil
	}
	if len(facets[0].Total) > 0 {
		res.Total = facets[0].Total[0].N
	}
	for _, doc := range facets[0].Items {
		hit, err := doc.toAggregate()
		if err != nil {
			return properties.SearchResult{}, err
		}
		res.Items = append(res.Items, hit)
	}
	return res, nil
}

// searchPipeline starts with $geoNear for proximity searches (it must be the
// first stage) and $match otherwise, then sorts and pages inside a $facet so
// the total comes back in the same round trip.
func searchPipeline(opts properties.SearchParams) (mongo.Pipeline, error) {
	filter, err := searchFilter(opts)
	if err != nil {
		return nil, err
	}
	var pipeline mongo.Pipeline
	if opts.Near != nil {
		pipeline = append(pipeline, bson.D{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: bson.D{
				{Key: "type", Value: "Point"},
				{Key: "coordinates", Value: bson.A{opts.Near.Center.Lon, opts.Near.Center.Lat}},
			}},
			{Key: "distanceField", Value: "distance_m"},
			{Key: "maxDistance", Value: opts.Near.RadiusKm * 1000},
			{Key: "spherical", Value: true},
			{Key: "query", Value: filter},
		}}})
	} else {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: filter}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sortSpec(opts.EffectiveOrdering())}})

	items := bson.A{}
	if !opts.All {
		items = append(items,
			bson.D{{Key: "$skip", Value: int64(opts.Offset)}},
			bson.D{{Key: "$limit", Value: int64(opts.Limit)}},
		)
	}
	pipeline = append(pipeline, bson.D{{Key: "$facet", Value: bson.D{
		{Key: "items", Value: items},
		{Key: "total", Value: bson.A{bson.D{{Key: "$count", Value: "n"}}}},
	}}})
	return pipeline, nil
}

func searchFilter(opts properties.SearchParams) (bson.D, error) {
	filter := bson.D{}
	price := bson.D{}
	if opts.MinPrice.Valid {
		v, err := toDecimal128(opts.MinPrice.Decimal)
		if err != nil {
			return nil, err
		}
		price = append(price, bson.E{Key: "$gte", Value: v})
	}
	if opts.MaxPrice.Valid {
		v, err := toDecimal128(opts.MaxPrice.Decimal)
		if err != nil {
			return nil, err
		}
		price = append(price, bson.E{Key: "$lte", Value: v})
	}
	if len(price) > 0 {
		filter = append(filter, bson.E{Key: "base_price_per_night", Value: price})
	}

	bedrooms := bson.D{}
	if opts.Bedrooms != nil {
		bedrooms = append(bedrooms, bson.E{Key: "$eq", Value: *opts.Bedrooms})
	}
	if opts.MinBedrooms != nil {
		bedrooms = append(bedrooms, bson.E{Key: "$gte", Value: *opts.MinBedrooms})
	}
	if len(bedrooms) > 0 {
		filter = append(filter, bson.E{Key: "bedrooms", Value: bedrooms})
	}

	bathrooms := bson.D{}
	if opts.Bathrooms.Valid {
		v, err := toDecimal128(opts.Bathrooms.Decimal)
		if err != nil {
			return nil, err
		}
		bathrooms = append(bathrooms, bson.E{Key: "$eq", Value: v})
	}
	if opts.MinBathrooms.Valid {
		v, err := toDecimal128(opts.MinBathrooms.Decimal)
		if err != nil {
			return nil, err
		}
		bathrooms = append(bathrooms, bson.E{Key: "$gte", Value: v})
	}
	if len(bathrooms) > 0 {
		filter = append(filter, bson.E{Key: "bathrooms", Value: bathrooms})
	}

	if opts.Type != "" {
		filter = append(filter, bson.E{Key: "property_type", Value: string(opts.Type)})
	}
	if opts.City != "" {
		filter = append(filter, bson.E{Key: "city", Value: containsRegex(opts.City)})
	}
	if opts.Country != "" {
		filter = append(filter, bson.E{Key: "country", Value: containsRegex(opts.Country)})
	}
	if len(opts.Amenities) > 0 {
		all := bson.A{}
		for _, amenity := range opts.Amenities {
			all = append(all, containsRegex(amenity))
		}
		filter = append(filter, bson.E{Key: "amenities", Value: bson.D{{Key: "$all", Value: all}}})
	}
	if opts.MinGuests > 0 {
		filter = append(filter, bson.E{Key: "max_guests", Value: bson.D{{Key: "$gte", Value: opts.MinGuests}}})
	}
	if opts.Text != "" {
		re := containsRegex(opts.Text)
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: re}},
			bson.D{{Key: "description", Value: re}},
			bson.D{{Key: "city", Value: re}},
			bson.D{{Key: "address", Value: re}},
		}})
	}
	return filter, nil
}

var sortFields = map[properties.OrderField]string{
	properties.OrderByPrice:     "base_price_per_night",
	properties.OrderByBedrooms:  "bedrooms",
	properties.OrderByBathrooms: "bathrooms",
	properties.OrderByCreated:   "created_at",
	properties.OrderByName:      "name",
	properties.OrderByDistance:  "distance_m",
}

func sortSpec(o properties.Ordering) bson.D {
	field, ok := sortFields[o.Field]
	if !ok {
		field = "created_at"
	}
	dir := 1
	if o.Desc {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}}
}

func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

var _ properties.Repository = PropertyRepository{}
