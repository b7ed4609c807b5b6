package db

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDBPoolParams_ConnString(t *testing.T) {
	params := NewDBPoolParams{DBHost: "postgres", DBPort: "5433", DBName: "hoopstats_db"}
	assert.Equal(t, "postgres://postgres@postgres:5433/hoopstats_db", params.ConnString())

	params.DBPort = ""
	assert.Equal(t, "postgres://postgres@postgres:5432/hoopstats_db", params.ConnString())

	cfg, err := pgxpool.ParseConfig(params.ConnString())
	require.NoError(t, err)
	assert.Equal(t, "hoopstats_db", cfg.ConnConfig.Database)
	assert.Equal(t, uint16(5432), cfg.ConnConfig.Port)
}
