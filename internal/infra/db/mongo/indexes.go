package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureIndexes creates the indexes search and schedule lookups rely on.
// $geoNear refuses to run without the 2dsphere index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		propertiesCollection: {
			{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}},
			{Keys: bson.D{{Key: "base_price_per_night", Value: 1}}},
			{Keys: bson.D{{Key: "city", Value: 1}}},
		},
		rulesCollection: {
			{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "range.start", Value: 1}}},
		},
		bookingsCollection: {
			{Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "check_in", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
	}
	for collection, models := range specs {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", collection, err)
		}
	}
	return nil
}
