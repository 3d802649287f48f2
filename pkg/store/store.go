package store

import "context"

// RangeOp is a comparison operator usable in a Query range filter.
type RangeOp string

const (
	OpLT  RangeOp = "lt"
	OpLTE RangeOp = "lte"
	OpGT  RangeOp = "gt"
	OpGTE RangeOp = "gte"
)

// Range constrains a single field by comparison against a value.
// Only one range filter per query is supported.
type Range struct {
	Field string
	Op    RangeOp
	Value any
}

// Sort orders query results by a single field.
type Sort struct {
	Field string
	Desc  bool
}

// Query describes a collection scan: equality filters, at most one range
// filter, optional sort and limit.
type Query struct {
	Eq    map[string]any
	Range *Range
	Sort  *Sort
	Limit int64
}

// Store is the document storage contract consumed by the tenancy services.
// It deliberately exposes only single-document operations plus an atomic
// numeric increment; no multi-document transaction primitive is assumed.
//
// Field names in Update and AtomicIncrement may use dot notation to address
// nested document fields (e.g. "counts.assets").
type Store interface {
	// Get decodes the document with the given id into dest.
	// Returns ErrNotFound if no such document exists.
	Get(ctx context.Context, collection, id string, dest any) error

	// Create inserts a new document. The document is expected to carry its
	// own id (bson "_id"). Returns ErrAlreadyExists on id collision.
	Create(ctx context.Context, collection string, doc any) error

	// Update applies a partial update to an existing document.
	// Returns ErrNotFound if the document does not exist.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// AtomicIncrement adds delta to a numeric field in a single atomic
	// operation. A missing field is treated as zero.
	AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error

	// Query scans a collection and decodes all matching documents into dest,
	// which must be a pointer to a slice.
	Query(ctx context.Context, collection string, q Query, dest any) error

	// Delete removes a single document. Returns ErrNotFound if absent.
	Delete(ctx context.Context, collection, id string) error

	// DeleteMany removes all documents matching the equality filter and
	// returns the number of documents removed.
	DeleteMany(ctx context.Context, collection string, filter map[string]any) (int64, error)
}
