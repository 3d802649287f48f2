package store

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// memoryStore is an in-memory Store implementation intended for tests and
// local development. Documents go through a bson round-trip on write and
// read so struct tags behave exactly as they do with the MongoDB backend.
type memoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]bson.M // collection -> id -> document
}

// NewMemory returns an empty in-memory Store.
func NewMemory() Store {
	return &memoryStore{data: make(map[string]map[string]bson.M)}
}

func (s *memoryStore) Get(ctx context.Context, collection, id string, dest any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	return decodeDoc(doc, dest)
}

func (s *memoryStore) Create(ctx context.Context, collection string, doc any) error {
	m, err := encodeDoc(doc)
	if err != nil {
		return err
	}
	id, _ := m["_id"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.data[collection]
	if !ok {
		col = make(map[string]bson.M)
		s.data[collection] = col
	}
	if _, exists := col[id]; exists {
		return ErrAlreadyExists
	}
	col[id] = m
	return nil
}

func (s *memoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	for path, v := range fields {
		setPath(doc, path, canonicalValue(v))
	}
	return nil
}

func (s *memoryStore) AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	current, _ := asInt64(getPath(doc, field))
	setPath(doc, field, current+delta)
	return nil
}

func (s *memoryStore) Query(ctx context.Context, collection string, q Query, dest any) error {
	if q.Range != nil {
		if _, ok := mongoRangeOps[q.Range.Op]; !ok {
			return ErrInvalidQuery
		}
	}

	// The matched slice aliases the live stored maps, so the read lock must
	// cover the decode as well or concurrent writers race with it.
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []bson.M
	for _, doc := range s.data[collection] {
		if matches(doc, q.Eq, q.Range) {
			matched = append(matched, doc)
		}
	}

	if q.Sort != nil {
		field, desc := q.Sort.Field, q.Sort.Desc
		sort.SliceStable(matched, func(i, j int) bool {
			cmp, _ := compareValues(getPath(matched[i], field), getPath(matched[j], field))
			less := cmp < 0
			if desc {
				return !less
			}
			return less
		})
	}
	if q.Limit > 0 && int64(len(matched)) > q.Limit {
		matched = matched[:q.Limit]
	}
	return decodeAll(matched, dest)
}

func (s *memoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.data[collection], id)
	return nil
}

func (s *memoryStore) DeleteMany(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, doc := range s.data[collection] {
		if matches(doc, filter, nil) {
			delete(s.data[collection], id)
			removed++
		}
	}
	return removed, nil
}

// encodeDoc round-trips a document through bson so the in-memory
// representation matches what the MongoDB backend would store.
func encodeDoc(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return normalizeValue(m).(bson.M), nil
}

// canonicalValue runs a single value through the same bson round-trip as
// stored documents, so update and filter values match stored fields no
// matter which Go type they arrived as. bson collapses typed strings
// (e.g. a named string type) to string and *time.Time to a datetime, which
// normalizeValue then widens like any stored field.
func canonicalValue(v any) any {
	raw, err := bson.Marshal(bson.M{"v": v})
	if err != nil {
		return normalizeValue(v)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return normalizeValue(v)
	}
	return normalizeValue(m["v"])
}

func decodeDoc(doc bson.M, dest any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, dest)
}

func decodeAll(docs []bson.M, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Slice {
		return ErrInvalidDest
	}
	slice := v.Elem()
	out := reflect.MakeSlice(slice.Type(), 0, len(docs))
	elemType := slice.Type().Elem()
	for _, doc := range docs {
		elem := reflect.New(elemType)
		if err := decodeDoc(doc, elem.Interface()); err != nil {
			return err
		}
		out = reflect.Append(out, elem.Elem())
	}
	slice.Set(out)
	return nil
}

// normalizeValue rewrites bson decode artifacts into canonical forms:
// nested bson.D become bson.M, integer kinds widen to int64 and times
// become bson.DateTime. This keeps path lookups and comparisons uniform.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case bson.D:
		m := make(bson.M, len(t))
		for _, e := range t {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	case bson.M:
		for k, e := range t {
			t[k] = normalizeValue(e)
		}
		return t
	case map[string]any:
		m := make(bson.M, len(t))
		for k, e := range t {
			m[k] = normalizeValue(e)
		}
		return m
	case bson.A:
		for i, e := range t {
			t[i] = normalizeValue(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeValue(e)
		}
		return t
	case time.Time:
		return bson.NewDateTimeFromTime(t)
	case int:
		return int64(t)
	case int32:
		return int64(t)
	default:
		return v
	}
}

func getPath(doc bson.M, path string) any {
	parts := strings.Split(path, ".")
	var cur any = doc
	for _, p := range parts {
		m, ok := cur.(bson.M)
		if !ok {
			return nil
		}
		cur, ok = m[p]
		if !ok {
			return nil
		}
	}
	return cur
}

func setPath(doc bson.M, path string, value any) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(bson.M)
		if !ok {
			next = bson.M{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

func matches(doc bson.M, eq map[string]any, rng *Range) bool {
	for path, want := range eq {
		if !reflect.DeepEqual(getPath(doc, path), canonicalValue(want)) {
			return false
		}
	}
	if rng == nil {
		return true
	}
	got := getPath(doc, rng.Field)
	if got == nil {
		return false
	}
	cmp, ok := compareValues(got, canonicalValue(rng.Value))
	if !ok {
		return false
	}
	switch rng.Op {
	case OpLT:
		return cmp < 0
	case OpLTE:
		return cmp <= 0
	case OpGT:
		return cmp > 0
	case OpGTE:
		return cmp >= 0
	}
	return false
}

// compareValues orders two canonical values. The boolean reports whether
// the values were comparable at all; incomparable pairs must never satisfy
// a range filter.
func compareValues(a, b any) (int, bool) {
	if ai, ok := asInt64(a); ok {
		if bi, ok := asInt64(b); ok {
			switch {
			case ai < bi:
				return -1, true
			case ai > bi:
				return 1, true
			}
			return 0, true
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	case bson.DateTime:
		return int64(t), true
	case time.Time:
		return int64(bson.NewDateTimeFromTime(t)), true
	}
	return 0, false
}
