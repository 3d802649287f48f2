package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// mongoStore implements Store on top of a MongoDB database.
type mongoStore struct {
	db *mongo.Database
}

// NewMongo returns a Store backed by the given MongoDB database.
// Panics on nil database to fail fast during initialization.
func NewMongo(db *mongo.Database) Store {
	if db == nil {
		panic("store: mongo database is required")
	}
	return &mongoStore{db: db}
}

func (s *mongoStore) Get(ctx context.Context, collection, id string, dest any) error {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(dest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (s *mongoStore) Create(ctx context.Context, collection string, doc any) error {
	_, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyExists
	}
	return err
}

func (s *mongoStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	res, err := s.db.Collection(collection).UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoStore) AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error {
	res, err := s.db.Collection(collection).UpdateByID(ctx, id, bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoStore) Query(ctx context.Context, collection string, q Query, dest any) error {
	filter := bson.M{}
	for k, v := range q.Eq {
		filter[k] = v
	}
	if q.Range != nil {
		op, ok := mongoRangeOps[q.Range.Op]
		if !ok {
			return ErrInvalidQuery
		}
		filter[q.Range.Field] = bson.M{op: q.Range.Value}
	}

	opts := options.Find()
	if q.Sort != nil {
		dir := 1
		if q.Sort.Desc {
			dir = -1
		}
		opts = opts.SetSort(bson.D{{Key: q.Sort.Field, Value: dir}})
	}
	if q.Limit > 0 {
		opts = opts.SetLimit(q.Limit)
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cursor.All(ctx, dest)
}

func (s *mongoStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoStore) DeleteMany(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	f := bson.M{}
	for k, v := range filter {
		f[k] = v
	}
	res, err := s.db.Collection(collection).DeleteMany(ctx, f)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

var mongoRangeOps = map[RangeOp]string{
	OpLT:  "$lt",
	OpLTE: "$lte",
	OpGT:  "$gt",
	OpGTE: "$gte",
}
