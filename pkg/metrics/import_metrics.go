package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "brand_import"

// Run summarizes one import for export.
type Run struct {
	Outcomes   map[string]int
	Duration   time.Duration
	FinishedAt time.Time
	DryRun     bool
}

// ImportMetrics holds the import gauges on a private registry so a batch
// job can dump them to a node_exporter textfile.
type ImportMetrics struct {
	registry *prometheus.Registry

	rows     *prometheus.GaugeVec
	duration prometheus.Gauge
	lastRun  prometheus.Gauge
	dryRun   prometheus.Gauge
}

func NewImportMetrics() *ImportMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &ImportMetrics{
		registry: reg,
		rows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Rows processed by the last import, by outcome.",
		}, []string{"outcome"}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duration_seconds",
			Help:      "Wall time of the last import.",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last import finished.",
		}),
		dryRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dry_run",
			Help:      "Whether the last import was a dry run (1/0).",
		}),
	}
}

func (m *ImportMetrics) Record(run Run) {
	for outcome, n := range run.Outcomes {
		m.rows.WithLabelValues(outcome).Set(float64(n))
	}
	m.duration.Set(run.Duration.Seconds())
	m.lastRun.Set(float64(run.FinishedAt.Unix()))
	if run.DryRun {
		m.dryRun.Set(1)
	} else {
		m.dryRun.Set(0)
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *ImportMetrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes the metrics in the Prometheus text format. The file
// is replaced atomically.
func (m *ImportMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
