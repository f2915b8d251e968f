package helper_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visit/config"
	"visit/helper"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Postgres.Write.Host = "db.internal"
	cfg.DB.Postgres.Write.Port = "5432"
	cfg.DB.Postgres.Write.Username = "visit"
	cfg.DB.Postgres.Write.Password = "p@ss/word"
	cfg.DB.Postgres.Write.Name = "visit"
	cfg.DB.Postgres.Write.SSLMode = "disable"
	cfg.DB.Postgres.Prefix = "staging_"
	cfg.DB.Postgres.MigrationTable = "schema_migrations"

	parsed, err := url.Parse(helper.DSN(cfg))
	require.NoError(t, err)

	password, _ := parsed.User.Password()

	assert.Equal(t, "postgres", parsed.Scheme)
	assert.Equal(t, "db.internal:5432", parsed.Host)
	assert.Equal(t, "visit", parsed.User.Username())
	assert.Equal(t, "p@ss/word", password)
	assert.Equal(t, "/staging_visit", parsed.Path)
	assert.Equal(t, "disable", parsed.Query().Get("sslmode"))
	assert.Equal(t, "schema_migrations", parsed.Query().Get("x-migrations-table"))
}

func TestDSN_DefaultMigrationTable(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Postgres.Write.Host = "localhost"
	cfg.DB.Postgres.Write.Port = "5432"
	cfg.DB.Postgres.Write.Name = "visit"

	parsed, err := url.Parse(helper.DSN(cfg))
	require.NoError(t, err)

	assert.Equal(t, "/visit", parsed.Path)
	assert.False(t, parsed.Query().Has("x-migrations-table"))
}

func TestRun_UnknownAction(t *testing.T) {
	err := helper.Run(&config.Config{}, helper.Action("sideways"))

	assert.ErrorIs(t, err, helper.ErrUnknownAction)
}
