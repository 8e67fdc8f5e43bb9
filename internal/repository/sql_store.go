package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SQLDocumentStore keeps documents as JSON bodies in a single documents table.
// Postgres stores bodies as JSONB; sqlite uses the JSON1 functions.
type SQLDocumentStore struct {
	db      *sqlx.DB
	dialect sqlDialect
	now     func() time.Time
}

// NewSQLDocumentStore selects the dialect from the driver name of db.
func NewSQLDocumentStore(db *sqlx.DB) (*SQLDocumentStore, error) {
	var d sqlDialect
	switch db.DriverName() {
	case "postgres":
		d = postgresDialect{}
	case "sqlite3":
		d = sqliteDialect{}
	default:
		return nil, fmt.Errorf("document store: unsupported driver %q", db.DriverName())
	}
	return &SQLDocumentStore{db: db, dialect: d, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *SQLDocumentStore) Create(ctx context.Context, collection string, doc Document) (string, error) {
	id := doc.String("id")
	if id == "" {
		id = uuid.NewString()
	}
	stored, _, err := canonical(doc)
	if err != nil {
		return "", err
	}
	stored["id"] = id
	body, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	now := s.now()
	query := s.db.Rebind(`INSERT INTO documents (collection, id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, collection, id, string(body), now, now); err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	return id, nil
}

func (s *SQLDocumentStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var body string
	query := s.db.Rebind(`SELECT body FROM documents WHERE collection = ? AND id = ?`)
	if err := s.db.GetContext(ctx, &body, query, collection, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return decodeBody(body, id)
}

func (s *SQLDocumentStore) Update(ctx context.Context, collection, id string, fields Document) error {
	affected, err := s.patch(ctx, collection, id, nil, fields)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (s *SQLDocumentStore) UpdateIf(ctx context.Context, collection, id string, guard Filter, fields Document) error {
	if err := validateField(guard.Field); err != nil {
		return err
	}
	affected, err := s.patch(ctx, collection, id, &guard, fields)
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var count int
	query := s.db.Rebind(`SELECT COUNT(1) FROM documents WHERE collection = ? AND id = ?`)
	if err := s.db.GetContext(ctx, &count, query, collection, id); err != nil {
		return fmt.Errorf("check document: %w", err)
	}
	if count == 0 {
		return ErrDocumentNotFound
	}
	return ErrGuardFailed
}

func (s *SQLDocumentStore) patch(ctx context.Context, collection, id string, guard *Filter, fields Document) (int64, error) {
	patch, raw, err := canonical(fields)
	if err != nil {
		return 0, err
	}
	if _, ok := patch["id"]; ok {
		delete(patch, "id")
		if raw, err = json.Marshal(patch); err != nil {
			return 0, fmt.Errorf("encode patch: %w", err)
		}
	}
	var removed []string
	for k, v := range patch {
		if v == nil {
			removed = append(removed, k)
		}
	}

	setExpr, setArgs := s.dialect.merge(string(raw), removed)
	query := `UPDATE documents SET ` + setExpr + `, updated_at = ? WHERE collection = ? AND id = ?`
	args := append(setArgs, s.now(), collection, id)
	if guard != nil {
		cond, arg := s.dialect.compare(*guard)
		query += ` AND ` + cond
		args = append(args, arg)
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("update document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update document: %w", err)
	}
	return affected, nil
}

func (s *SQLDocumentStore) Delete(ctx context.Context, collection, id string) error {
	query := s.db.Rebind(`DELETE FROM documents WHERE collection = ? AND id = ?`)
	res, err := s.db.ExecContext(ctx, query, collection, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if affected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (s *SQLDocumentStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(`SELECT body FROM documents WHERE collection = ?`)
	args := []interface{}{collection}
	for _, f := range q.Filters {
		cond, arg := s.dialect.compare(f)
		b.WriteString(` AND `)
		b.WriteString(cond)
		args = append(args, arg)
	}
	if q.OrderBy != "" {
		b.WriteString(` ORDER BY `)
		b.WriteString(s.dialect.orderExpr(q.OrderBy))
		if q.Desc {
			b.WriteString(` DESC`)
		}
		b.WriteString(`, id`)
	} else {
		b.WriteString(` ORDER BY id`)
	}
	if q.Limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	var bodies []string
	if err := s.db.SelectContext(ctx, &bodies, s.db.Rebind(b.String()), args...); err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	docs := make([]Document, 0, len(bodies))
	for _, body := range bodies {
		doc, err := decodeBody(body, "")
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *SQLDocumentStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func decodeBody(body, id string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if id != "" {
		doc["id"] = id
	}
	return doc, nil
}

// sqlDialect renders JSON field access for one SQL engine. Field names are validated before use.
type sqlDialect interface {
	compare(f Filter) (string, interface{})
	orderExpr(field string) string
	merge(patch string, removed []string) (string, []interface{})
}

type postgresDialect struct{}

func (postgresDialect) compare(f Filter) (string, interface{}) {
	v := normalizeValue(f.Value)
	switch val := v.(type) {
	case bool:
		return fmt.Sprintf(`(body->>'%s')::boolean %s ?`, f.Field, f.Op), val
	case float64:
		return fmt.Sprintf(`(body->>'%s')::numeric %s ?`, f.Field, f.Op), val
	case nil:
		return fmt.Sprintf(`(body->>'%s') IS NOT DISTINCT FROM ?`, f.Field), nil
	default:
		return fmt.Sprintf(`(body->>'%s') COLLATE "C" %s ?`, f.Field, f.Op), fmt.Sprint(val)
	}
}

func (postgresDialect) orderExpr(field string) string {
	return fmt.Sprintf(`(body->>'%s') COLLATE "C"`, field)
}

func (postgresDialect) merge(patch string, removed []string) (string, []interface{}) {
	if removed == nil {
		removed = []string{}
	}
	return `body = (body || ?::jsonb) - ?::text[]`, []interface{}{patch, pq.Array(removed)}
}

type sqliteDialect struct{}

func (sqliteDialect) compare(f Filter) (string, interface{}) {
	v := normalizeValue(f.Value)
	expr := fmt.Sprintf(`json_extract(body, '$.%s')`, f.Field)
	switch val := v.(type) {
	case bool:
		n := 0
		if val {
			n = 1
		}
		return fmt.Sprintf(`%s %s ?`, expr, f.Op), n
	case float64:
		return fmt.Sprintf(`%s %s ?`, expr, f.Op), val
	case nil:
		return fmt.Sprintf(`%s IS ?`, expr), nil
	default:
		return fmt.Sprintf(`%s %s ?`, expr, f.Op), fmt.Sprint(val)
	}
}

func (sqliteDialect) orderExpr(field string) string {
	return fmt.Sprintf(`json_extract(body, '$.%s')`, field)
}

// merge relies on json_patch removing keys whose patch value is null.
func (sqliteDialect) merge(patch string, _ []string) (string, []interface{}) {
	return `body = json_patch(body, ?)`, []interface{}{patch}
}
