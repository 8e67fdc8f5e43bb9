package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	// ErrDocumentNotFound is returned when no document has the requested id.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrGuardFailed is returned by UpdateIf when the document no longer satisfies the guard.
	ErrGuardFailed = errors.New("document guard failed")
	// ErrInvalidField is returned for field names that are not plain identifiers.
	ErrInvalidField = errors.New("invalid document field")
)

// Document is a JSON object keyed by top-level field name.
type Document map[string]interface{}

// Op is a comparison operator for filters.
type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLte Op = "<="
	OpGt  Op = ">"
	OpLt  Op = "<"
)

// Filter compares one top-level field against a value.
type Filter struct {
	Field string
	Op    Op
	Value interface{}
}

// Eq builds an equality filter.
func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Op: OpEq, Value: value}
}

// Query selects documents from one collection. All filters must match.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}

// DocumentStore persists schemaless documents grouped in collections.
type DocumentStore interface {
	Create(ctx context.Context, collection string, doc Document) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Update(ctx context.Context, collection, id string, fields Document) error
	// UpdateIf applies fields only while guard still holds, atomically with respect to other writers.
	UpdateIf(ctx context.Context, collection, id string, guard Filter, fields Document) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	Ping(ctx context.Context) error
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

func validateField(name string) error {
	if !fieldPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidField, name)
	}
	return nil
}

func validateQuery(q Query) error {
	for _, f := range q.Filters {
		if err := validateField(f.Field); err != nil {
			return err
		}
		switch f.Op {
		case OpEq, OpGte, OpLte, OpGt, OpLt:
		default:
			return fmt.Errorf("unsupported operator %q", f.Op)
		}
	}
	if q.OrderBy != "" {
		return validateField(q.OrderBy)
	}
	return nil
}

// String returns the string stored at key, or "".
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Bool returns the boolean stored at key, or false.
func (d Document) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}

// Time decodes the timestamp stored at key. Missing or null values yield ok=false.
func (d Document) Time(key string) (time.Time, bool) {
	v, present := d[key]
	if !present || v == nil {
		return time.Time{}, false
	}
	t, err := ParseTime(v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// TimePtr is Time returning nil when absent.
func (d Document) TimePtr(key string) *time.Time {
	t, ok := d.Time(key)
	if !ok {
		return nil
	}
	return &t
}

// Map returns the nested object stored at key.
func (d Document) Map(key string) map[string]interface{} {
	m, _ := d[key].(map[string]interface{})
	return m
}
