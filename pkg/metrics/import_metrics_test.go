package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestImportMetrics_WriteTextfile(t *testing.T) {
	m := NewImportMetrics()
	m.Record(Run{
		Outcomes:   map[string]int{"created": 3, "failed": 1},
		Duration:   1500 * time.Millisecond,
		FinishedAt: time.Unix(1700000000, 0),
		DryRun:     true,
	})

	path := filepath.Join(t.TempDir(), "brand_import.prom")
	require.NoError(t, m.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	require.Contains(t, out, `brand_import_rows_total{outcome="created"} 3`)
	require.Contains(t, out, `brand_import_rows_total{outcome="failed"} 1`)
	require.Contains(t, out, "brand_import_duration_seconds 1.5")
	require.Contains(t, out, "brand_import_last_run_timestamp_seconds 1.7e+09")
	require.Contains(t, out, "brand_import_dry_run 1")
}

func TestImportMetrics_GatherAfterRecord(t *testing.T) {
	m := NewImportMetrics()
	m.Record(Run{Outcomes: map[string]int{"skipped": 2}})

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["brand_import_rows_total"])
	require.True(t, names["brand_import_dry_run"])
}
