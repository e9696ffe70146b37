package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentals/internal/domain/booking"
	"rentals/internal/domain/pricing"
	"rentals/internal/domain/properties"
)

var (
	ErrDuplicateID     = errors.New("mongo: duplicate id")
	ErrUnknownProperty = errors.New("mongo: property does not exist")
)

const imagesCounter = "property_images"

// CatalogWriter allocates ids from the counters collection, one document per
// sequence. Explicit ids raise the counter with $max so allocation never
// hands them out again; Clear leaves the counters alone.
type CatalogWriter struct {
	db *mongo.Database
}

func NewCatalogWriter(db *mongo.Database) CatalogWriter {
	return CatalogWriter{db: db}
}

func (w CatalogWriter) Clear(ctx context.Context) (int, error) {
	res, err := w.db.Collection(propertiesCollection).DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("clear properties: %w", err)
	}
	for _, name := range []string{rulesCollection, bookingsCollection} {
		if _, err := w.db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return 0, fmt.Errorf("clear %s: %w", name, err)
		}
	}
	return int(res.DeletedCount), nil
}

func (w CatalogWriter) SaveProperty(ctx context.Context, p *properties.Property) (properties.ID, error) {
	if p == nil {
		return 0, errors.New("mongo: nil property")
	}
	id, err := w.claim(ctx, propertiesCollection, int64(p.ID))
	if err != nil {
		return 0, err
	}
	stored := *p
	stored.ID = properties.ID(id)
	stored.Images = append([]properties.Image(nil), p.Images...)
	for i := range stored.Images {
		imageID, err := w.claim(ctx, imagesCounter, stored.Images[i].ID)
		if err != nil {
			return 0, err
		}
		stored.Images[i].ID = imageID
	}
	properties.SortImages(stored.Images)

	doc, err := newPropertyDocument(&stored)
	if err != nil {
		return 0, err
	}
	if _, err := w.db.Collection(propertiesCollection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, fmt.Errorf("%w: property %d", ErrDuplicateID, id)
		}
		return 0, fmt.Errorf("insert property %q: %w", p.Name, err)
	}
	return stored.ID, nil
}

func (w CatalogWriter) SavePricingRules(ctx context.Context, rules []pricing.Rule) error {
	if len(rules) == 0 {
		return nil
	}
	ids := make([]properties.ID, 0, len(rules))
	for _, r := range rules {
		ids = append(ids, r.PropertyID)
	}
	if err := w.ensureProperties(ctx, ids); err != nil {
		return err
	}
	docs := make([]any, 0, len(rules))
	for _, r := range rules {
		id, err := w.claim(ctx, rulesCollection, int64(r.ID))
		if err != nil {
			return err
		}
		r.ID = pricing.RuleID(id)
		doc, err := newRuleDocument(r)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	return w.insertMany(ctx, rulesCollection, docs)
}

func (w CatalogWriter) SaveBookings(ctx context.Context, bookings []booking.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	ids := make([]properties.ID, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.PropertyID)
	}
	if err := w.ensureProperties(ctx, ids); err != nil {
		return err
	}
	docs := make([]any, 0, len(bookings))
	for _, b := range bookings {
		id, err := w.claim(ctx, bookingsCollection, int64(b.ID))
		if err != nil {
			return err
		}
		b.ID = booking.ID(id)
		doc, err := newBookingDocument(b)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	return w.insertMany(ctx, bookingsCollection, docs)
}

func (w CatalogWriter) insertMany(ctx context.Context, collection string, docs []any) error {
	if _, err := w.db.Collection(collection).InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, collection)
		}
		return fmt.Errorf("insert %s: %w", collection, err)
	}
	return nil
}

func (w CatalogWriter) ensureProperties(ctx context.Context, ids []properties.ID) error {
	unique := make(map[int64]struct{}, len(ids))
	raw := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := unique[int64(id)]; ok {
			continue
		}
		unique[int64(id)] = struct{}{}
		raw = append(raw, int64(id))
	}
	n, err := w.db.Collection(propertiesCollection).CountDocuments(ctx, bson.M{"_id": bson.M{"$in": raw}})
	if err != nil {
		return fmt.Errorf("check properties: %w", err)
	}
	if int(n) != len(raw) {
		return fmt.Errorf("%w: one of %v", ErrUnknownProperty, raw)
	}
	return nil
}

type counterDocument struct {
	Name string `bson:"_id"`
	Seq  int64  `bson:"seq"`
}

// claim returns explicit unchanged after bumping the counter past it, or the
// next value of the sequence when explicit is zero.
func (w CatalogWriter) claim(ctx context.Context, sequence string, explicit int64) (int64, error) {
	counters := w.db.Collection(countersCollection)
	if explicit != 0 {
		_, err := counters.UpdateOne(ctx,
			bson.M{"_id": sequence},
			bson.M{"$max": bson.M{"seq": explicit}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return 0, fmt.Errorf("sync %s counter: %w", sequence, err)
		}
		return explicit, nil
	}
	var doc counterDocument
	err := counters.FindOneAndUpdate(ctx,
		bson.M{"_id": sequence},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", sequence, err)
	}
	return doc.Seq, nil
}
