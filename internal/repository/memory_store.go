package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryDocumentStore keeps documents in process memory. It backs tests and the memory driver.
type MemoryDocumentStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{collections: make(map[string]map[string]Document)}
}

func (s *MemoryDocumentStore) Create(ctx context.Context, collection string, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := doc.String("id")
	if id == "" {
		id = uuid.NewString()
	}
	stored, _, err := canonical(doc)
	if err != nil {
		return "", err
	}
	stored["id"] = id

	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]Document)
		s.collections[collection] = coll
	}
	coll[id] = stored
	return id, nil
}

func (s *MemoryDocumentStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return copyDocument(doc), nil
}

func (s *MemoryDocumentStore) Update(ctx context.Context, collection, id string, fields Document) error {
	return s.update(ctx, collection, id, nil, fields)
}

func (s *MemoryDocumentStore) UpdateIf(ctx context.Context, collection, id string, guard Filter, fields Document) error {
	if err := validateField(guard.Field); err != nil {
		return err
	}
	return s.update(ctx, collection, id, &guard, fields)
}

func (s *MemoryDocumentStore) update(ctx context.Context, collection, id string, guard *Filter, fields Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	patch, _, err := canonical(fields)
	if err != nil {
		return err
	}
	delete(patch, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrDocumentNotFound
	}
	if guard != nil && !matches(doc, *guard) {
		return ErrGuardFailed
	}
	for k, v := range patch {
		if v == nil {
			delete(doc, k)
			continue
		}
		doc[k] = v
	}
	return nil
}

func (s *MemoryDocumentStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection][id]; !ok {
		return ErrDocumentNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryDocumentStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	s.mu.RLock()
	result := make([]Document, 0)
	for _, doc := range s.collections[collection] {
		if matchesAll(doc, q.Filters) {
			result = append(result, copyDocument(doc))
		}
	}
	s.mu.RUnlock()

	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = "id"
	}
	sort.SliceStable(result, func(i, j int) bool {
		c, ok := compareValues(result[i][orderBy], result[j][orderBy])
		if !ok {
			// documents lacking the field sort last
			_, hasI := result[i][orderBy]
			return hasI
		}
		if c == 0 {
			return result[i].String("id") < result[j].String("id")
		}
		if q.Desc {
			return c > 0
		}
		return c < 0
	})

	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

func (s *MemoryDocumentStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func matchesAll(doc Document, filters []Filter) bool {
	for _, f := range filters {
		if !matches(doc, f) {
			return false
		}
	}
	return true
}

func matches(doc Document, f Filter) bool {
	actual, ok := doc[f.Field]
	if !ok {
		return false
	}
	c, ok := compareValues(actual, normalizeValue(f.Value))
	if !ok {
		return false
	}
	switch f.Op {
	case OpEq:
		return c == 0
	case OpGte:
		return c >= 0
	case OpLte:
		return c <= 0
	case OpGt:
		return c > 0
	case OpLt:
		return c < 0
	}
	return false
}

// compareValues orders two JSON scalars of the same type. Booleans only compare for equality.
func compareValues(a, b interface{}) (int, bool) {
	switch av := a.(type) {
	case string:
		if bv, ok := toString(b); ok {
			return strings.Compare(av, bv), true
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1, true
			case av > bv:
				return 1, true
			}
			return 0, true
		}
	case bool:
		if bv, ok := b.(bool); ok {
			if av == bv {
				return 0, true
			}
			return 1, true
		}
	case nil:
		if b == nil {
			return 0, true
		}
	}
	return 0, false
}

func toString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case interface{ String() string }:
		return s.String(), true
	}
	return "", false
}

func copyDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			out[k] = copyValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = copyValue(item)
		}
		return out
	}
	return v
}
