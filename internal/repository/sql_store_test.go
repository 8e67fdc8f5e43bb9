package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreMock(t *testing.T, driver string) (*SQLDocumentStore, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	store, err := NewSQLDocumentStore(sqlx.NewDb(db, driver))
	require.NoError(t, err)
	return store, mock, func() { db.Close() }
}

func TestSQLStoreCreateEncodesTimestamps(t *testing.T) {
	store, mock, cleanup := newStoreMock(t, "postgres")
	defer cleanup()

	created := time.Date(2024, 6, 1, 8, 30, 0, 0, time.FixedZone("SAST", 2*3600))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents (collection, id, body, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)")).
		WithArgs("complaints", "c-1", `{"createdAt":"2024-06-01T06:30:00.000000Z","id":"c-1","status":"pending"}`, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := store.Create(context.Background(), "complaints", Document{"id": "c-1", "status": "pending", "createdAt": created})
	require.NoError(t, err)
	assert.Equal(t, "c-1", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreGetNotFound(t *testing.T) {
	store, mock, cleanup := newStoreMock(t, "postgres")
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT body FROM documents WHERE collection = $1 AND id = $2")).
		WithArgs("guests", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"body"}))

	_, err := store.Get(context.Background(), "guests", "missing")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreGetDecodesBody(t *testing.T) {
	store, mock, cleanup := newStoreMock(t, "postgres")
	defer cleanup()

	mock.ExpectQuery("SELECT body FROM documents").
		WithArgs("guests", "g-1").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow(`{"status":"active","isActive":true,"createdAt":1717230600000}`))

	doc, err := store.Get(context.Background(), "guests", "g-1")
	require.NoError(t, err)
	assert.Equal(t, "g-1", doc.String("id"))
	assert.True(t, doc.Bool("isActive"))
	createdAt, ok := doc.Time("createdAt")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC), createdAt)
}

func TestSQLStoreUpdateIfGuardFailed(t *testing.T) {
	store, mock, cleanup := newStoreMock(t, "postgres")
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET body = (body || $1::jsonb) - $2::text[], updated_at = $3 WHERE collection = $4 AND id = $5 AND (body->>'status') COLLATE "C" = $6`)).
		WithArgs(`{"status":"approved"}`, sqlmock.AnyArg(), sqlmock.AnyArg(), "sleepover_requests", "s-1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM documents")).
		WithArgs("sleepover_requests", "s-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := store.UpdateIf(context.Background(), "sleepover_requests", "s-1", Eq("status", "pending"), Document{"status": "approved"})
	assert.ErrorIs(t, err, ErrGuardFailed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreUpdateMissing(t *testing.T) {
	store, mock, cleanup := newStoreMock(t, "postgres")
	defer cleanup()

	mock.ExpectExec("UPDATE documents SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Update(context.Background(), "notifications", "n-1", Document{"read": true})
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestSQLStoreQueryBuildsFilters(t *testing.T) {
	store, mock, cleanup := newStoreMock(t, "postgres")
	defer cleanup()

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT body FROM documents WHERE collection = $1 AND (body->>'isActive')::boolean = $2 AND (body->>'createdAt') COLLATE "C" >= $3 ORDER BY (body->>'checkInTime') COLLATE "C" DESC, id LIMIT $4`)).
		WithArgs("guests", true, "2024-06-01T00:00:00.000000Z", 50).
		WillReturnRows(sqlmock.NewRows([]string{"body"}).
			AddRow(`{"id":"g-2","status":"active"}`).
			AddRow(`{"id":"g-1","status":"active"}`))

	docs, err := store.Query(context.Background(), "guests", Query{
		Filters: []Filter{Eq("isActive", true), {Field: "createdAt", Op: OpGte, Value: from}},
		OrderBy: "checkInTime",
		Desc:    true,
		Limit:   50,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "g-2", docs[0].String("id"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreSQLiteDialect(t *testing.T) {
	store, mock, cleanup := newStoreMock(t, "sqlite3")
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET body = json_patch(body, ?), updated_at = ? WHERE collection = ? AND id = ? AND json_extract(body, '$.status') = ?`)).
		WithArgs(`{"status":"in_progress"}`, sqlmock.AnyArg(), "complaints", "c-1", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpdateIf(context.Background(), "complaints", "c-1", Eq("status", "pending"), Document{"status": "in_progress"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreRejectsInjectedFieldNames(t *testing.T) {
	store, _, cleanup := newStoreMock(t, "postgres")
	defer cleanup()

	_, err := store.Query(context.Background(), "guests", Query{Filters: []Filter{Eq("status'; DROP TABLE documents;--", "x")}})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestNewSQLDocumentStoreUnknownDriver(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewSQLDocumentStore(sqlx.NewDb(db, "mysql"))
	assert.Error(t, err)
}
