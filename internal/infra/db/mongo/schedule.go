package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentals/internal/domain/booking"
	"rentals/internal/domain/pricing"
	"rentals/internal/domain/properties"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) BookingRepository {
	return BookingRepository{col: db.Collection(bookingsCollection)}
}

func (r BookingRepository) ForProperty(ctx context.Context, id properties.ID) ([]booking.Booking, error) {
	return r.find(ctx, bson.M{"property_id": int64(id)})
}

func (r BookingRepository) Confirmed(ctx context.Context, ids []properties.ID) (map[properties.ID][]booking.Booking, error) {
	out := make(map[properties.ID][]booking.Booking, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}
	list, err := r.find(ctx, bson.M{
		"property_id": bson.M{"$in": raw},
		"status":      string(booking.StatusConfirmed),
	})
	if err != nil {
		return nil, err
	}
	for _, b := range list {
		out[b.PropertyID] = append(out[b.PropertyID], b)
	}
	return out, nil
}

func (r BookingRepository) find(ctx context.Context, filter bson.M) ([]booking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "property_id", Value: 1}, {Key: "check_in", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	out := make([]booking.Booking, 0, len(docs))
	for _, doc := range docs {
		b, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

type RuleRepository struct {
	col *mongo.Collection
}

func NewRuleRepository(db *mongo.Database) RuleRepository {
	return RuleRepository{col: db.Collection(rulesCollection)}
}

func (r RuleRepository) ForProperty(ctx context.Context, id properties.ID) ([]pricing.Rule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "range.start", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"property_id": int64(id)}, opts)
	if err != nil {
		return nil, fmt.Errorf("load pricing rules: %w", err)
	}
	var docs []ruleDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode pricing rules: %w", err)
	}
	out := make([]pricing.Rule, 0, len(docs))
	for _, doc := range docs {
		rule, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}

var (
	_ booking.Repository     = BookingRepository{}
	_ pricing.RuleRepository = RuleRepository{}
)
