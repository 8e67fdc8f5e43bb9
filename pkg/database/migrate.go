package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		body JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (collection, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_status ON documents (collection, (body->>'status'))`,
	`CREATE INDEX IF NOT EXISTS idx_documents_user ON documents (collection, (body->>'userId'))`,
	`CREATE INDEX IF NOT EXISTS idx_documents_created ON documents (collection, (body->>'createdAt'))`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		body TEXT NOT NULL CHECK (json_valid(body)),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_status ON documents (collection, json_extract(body, '$.status'))`,
	`CREATE INDEX IF NOT EXISTS idx_documents_user ON documents (collection, json_extract(body, '$.userId'))`,
	`CREATE INDEX IF NOT EXISTS idx_documents_created ON documents (collection, json_extract(body, '$.createdAt'))`,
}

// Migrate creates the document table for the connected driver.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var stmts []string
	switch db.DriverName() {
	case "postgres":
		stmts = postgresSchema
	case "sqlite3":
		stmts = sqliteSchema
	default:
		return fmt.Errorf("migrate: unsupported driver %q", db.DriverName())
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
