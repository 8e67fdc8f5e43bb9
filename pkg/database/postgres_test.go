package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/residence-portal-api/pkg/config"
)

func TestPostgresDSN(t *testing.T) {
	dsn := postgresDSN(config.DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "portal",
		Password: `it's a \secret`,
		Name:     "residence_portal",
	})

	assert.Equal(t,
		`host=db.internal port=5433 user=portal password='it\'s a \\secret' dbname=residence_portal sslmode=disable application_name=residence-portal-api`,
		dsn)
}

func TestQuoteDSNValueEmpty(t *testing.T) {
	assert.Equal(t, "''", quoteDSNValue(""))
	assert.Equal(t, "require", quoteDSNValue("require"))
}
