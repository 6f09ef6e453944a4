package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalogMigrationsAreEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(Catalog(), ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	raw, err := fs.ReadFile(Catalog(), "00001_catalog_baseline.sql")
	require.NoError(t, err)
	sql := string(raw)
	require.Contains(t, sql, "-- +goose Up")
	require.Contains(t, sql, "-- +goose Down")
	for _, table := range []string{"regions", "sectors", "categories", "brands", "brand_categories"} {
		require.True(t, strings.Contains(sql, "CREATE TABLE "+table+" ("), table)
	}
}
