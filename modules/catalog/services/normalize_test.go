package services_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/domain/aggregates/brand"
	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/domain/entities/reference"
	"github.com/lgicquelw-tech/made-in-france-sub000/modules/catalog/services"
	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/spreadsheet"
)

var allColumns = []string{
	"Nom", "Slug", "Description", "Site web", "Année de création", "Niveau",
	"Adresse", "Code postal", "Ville", "Région", "Secteur", "Catégories",
}

func normalize(t *testing.T, cells ...spreadsheet.Cell) (services.BrandInput, error) {
	t.Helper()
	cols, err := services.NewColumnMap(allColumns, services.DefaultAliases())
	require.NoError(t, err)
	return services.NormalizeRow(cols, spreadsheet.Row{Row: 1, Line: 2, Cells: cells}, fixedNow)
}

func str(v string) spreadsheet.Cell { return spreadsheet.StringCell(v) }

func rowError(t *testing.T, err error) *services.RowError {
	t.Helper()
	var re *services.RowError
	require.True(t, errors.As(err, &re), "expected a RowError, got %v", err)
	return re
}

func TestNormalizeRow_CoercesCells(t *testing.T) {
	in, err := normalize(t,
		str("  Armor   Lux "),
		spreadsheet.Empty,
		str("Marinières depuis 1938"),
		str("www.armorlux.com"),
		spreadsheet.NumberCell(1938),
		str("Majoritaire"),
		str("21 rue Louis Pasteur"),
		spreadsheet.NumberCell(29000),
		str("Quimper"),
		str("Bretagne"),
		str("Textile"),
		str("Vêtements;Accessoires\nvetements"),
	)
	require.NoError(t, err)

	assert.Equal(t, "Armor Lux", in.Name)
	assert.Equal(t, "armor-lux", in.Slug)
	assert.Equal(t, "https://www.armorlux.com", in.Website)

	in, err = normalize(t, str("Le Slip Français"), spreadsheet.Empty, spreadsheet.Empty, str("leslipfrancais.fr:8443/boutique"))
	require.NoError(t, err)
	assert.Equal(t, "https://leslipfrancais.fr:8443/boutique", in.Website)
	require.NotNil(t, in.FoundedYear)
	assert.Equal(t, 1938, *in.FoundedYear)
	assert.Equal(t, brand.LevelMajority, in.Level)
	assert.Equal(t, "29000", in.PostalCode)
	assert.Equal(t, []string{"Vêtements", "Accessoires"}, in.Categories)
}

func TestNormalizeRow_SlugColumnWins(t *testing.T) {
	in, err := normalize(t, str("Saint James"), str("Saint James Marine!"))
	require.NoError(t, err)
	assert.Equal(t, "saint-james-marine", in.Slug)

	_, err = normalize(t, str("Saint James"), str("---"))
	assert.Equal(t, "slug", rowError(t, err).Field)

	_, err = normalize(t, str("???"))
	assert.Equal(t, "slug", rowError(t, err).Field)
}

func TestNormalizeRow_Years(t *testing.T) {
	date := spreadsheet.DateCell(time.Date(1889, 3, 1, 0, 0, 0, 0, time.UTC))
	for _, c := range []spreadsheet.Cell{spreadsheet.NumberCell(1889), str("1889"), str("1889.0"), date} {
		in, err := normalize(t, str("X"), spreadsheet.Empty, spreadsheet.Empty, spreadsheet.Empty, c)
		require.NoError(t, err, c.Text())
		assert.Equal(t, 1889, *in.FoundedYear, c.Text())
	}

	for _, c := range []spreadsheet.Cell{spreadsheet.NumberCell(2026), spreadsheet.NumberCell(999), spreadsheet.NumberCell(1950.5), str("vers 1900")} {
		_, err := normalize(t, str("X"), spreadsheet.Empty, spreadsheet.Empty, spreadsheet.Empty, c)
		assert.Equal(t, "founded_year", rowError(t, err).Field, c.Text())
	}
}

func TestNormalizeRow_PostalCodes(t *testing.T) {
	cases := map[string]spreadsheet.Cell{
		"01000": spreadsheet.NumberCell(1000),
		"75001": str("75 001"),
		"06000": str("6000"),
	}
	for want, c := range cases {
		in, err := normalize(t, str("X"), spreadsheet.Empty, spreadsheet.Empty, spreadsheet.Empty, spreadsheet.Empty,
			spreadsheet.Empty, spreadsheet.Empty, c)
		require.NoError(t, err, want)
		assert.Equal(t, want, in.PostalCode)
	}

	for _, c := range []spreadsheet.Cell{str("2A004"), str("750010"), spreadsheet.NumberCell(123456)} {
		_, err := normalize(t, str("X"), spreadsheet.Empty, spreadsheet.Empty, spreadsheet.Empty, spreadsheet.Empty,
			spreadsheet.Empty, spreadsheet.Empty, c)
		assert.Equal(t, "postal_code", rowError(t, err).Field, c.Text())
	}
}

func TestNormalizeRow_RejectsBadValues(t *testing.T) {
	_, err := normalize(t, spreadsheet.Empty, spreadsheet.Empty, str("orphan description"))
	re := rowError(t, err)
	assert.Equal(t, "name", re.Field)
	assert.Equal(t, "name is required", re.Reason)

	_, err = normalize(t, str("X"), spreadsheet.Empty, spreadsheet.Empty, str("ftp://files.example.fr"))
	assert.Equal(t, "website", rowError(t, err).Field)

	_, err = normalize(t, str("X"), spreadsheet.Empty, spreadsheet.Empty, str("https://exa mple.fr"))
	assert.Equal(t, "website", rowError(t, err).Field)

	for _, v := range []string{"mailto:contact@armorlux.fr", "tel:0298901234", "javascript:alert(1)"} {
		_, err = normalize(t, str("X"), spreadsheet.Empty, spreadsheet.Empty, str(v))
		re := rowError(t, err)
		assert.Equal(t, "website", re.Field, v)
		assert.Contains(t, re.Reason, "must use http or https", v)
	}

	_, err = normalize(t, str("X"), spreadsheet.Empty, spreadsheet.Empty, spreadsheet.Empty, spreadsheet.Empty, str("un peu"))
	assert.Equal(t, "made_in_france_level", rowError(t, err).Field)
}

func TestResolveReferences(t *testing.T) {
	refs, ids := newRefs()
	var all []reference.Reference
	for kind, list := range refs {
		for _, r := range list {
			r.Kind = kind
			all = append(all, r)
		}
	}
	ix, err := reference.NewIndex(all)
	require.NoError(t, err)

	fields, err := services.ResolveReferences(services.BrandInput{
		Name: "Armor Lux", Slug: "armor-lux", Region: "BRETAGNE", Sector: "textile",
		Categories: []string{"Vêtements"},
	}, ix)
	require.NoError(t, err)
	assert.Equal(t, ids.bretagne, *fields.RegionID)
	assert.Equal(t, ids.textile, *fields.SectorID)
	assert.Equal(t, ids.vetements, fields.CategoryIDs[0])

	_, err = services.ResolveReferences(services.BrandInput{Name: "X", Slug: "x", Region: "Savoie", Sector: "Textil"}, ix)
	re := rowError(t, err)
	assert.Equal(t, "region", re.Field)
	assert.Equal(t, `unknown region "Savoie"; unknown sector "Textil" (did you mean "Textile"?)`, re.Reason)
}

func TestColumnMapAndAliases(t *testing.T) {
	cols, err := services.NewColumnMap([]string{"RÉGION", "  nom ", "Site Internet"}, services.DefaultAliases())
	require.NoError(t, err)
	i, ok := cols.Column(services.FieldRegion)
	assert.True(t, ok)
	assert.Equal(t, 0, i)
	i, _ = cols.Column(services.FieldName)
	assert.Equal(t, 1, i)
	assert.Equal(t, []services.Field{services.FieldName, services.FieldRegion, services.FieldWebsite}, cols.Mapped())

	_, err = services.NewColumnMap([]string{"Raison sociale"}, services.DefaultAliases())
	require.ErrorIs(t, err, services.ErrHeader)

	path := filepath.Join(t.TempDir(), "columns.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: [Raison sociale]\nregion: [Province]\n"), 0o644))
	aliases, err := services.LoadAliases(path)
	require.NoError(t, err)
	cols, err = services.NewColumnMap([]string{"Raison Sociale", "province"}, aliases)
	require.NoError(t, err)
	_, ok = cols.Column(services.FieldRegion)
	assert.True(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("city: [Nom]\n"), 0o644))
	_, err = services.LoadAliases(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("planet: [Mars]\n"), 0o644))
	_, err = services.LoadAliases(path)
	require.Error(t, err)

	_, err = services.LoadAliases(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
