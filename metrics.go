package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// migrationMetrics counts run outcomes. A nil *migrationMetrics is valid and
// records nothing.
type migrationMetrics struct {
	registry      *prometheus.Registry
	tables        *prometheus.CounterVec
	rows          *prometheus.CounterVec
	batches       *prometheus.CounterVec
	indexes       *prometheus.CounterVec
	parseIssues   prometheus.Counter
	batchDuration prometheus.Histogram
}

func newMigrationMetrics() *migrationMetrics {
	m := &migrationMetrics{
		registry: prometheus.NewRegistry(),
		tables: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "myferry",
			Name:      "tables_total",
			Help:      "Tables processed, by outcome.",
		}, []string{"status"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "myferry",
			Name:      "rows_inserted_total",
			Help:      "Rows inserted into the target, by table.",
		}, []string{"table"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "myferry",
			Name:      "batches_total",
			Help:      "Insert batches sent, by table and outcome.",
		}, []string{"table", "status"}),
		indexes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "myferry",
			Name:      "indexes_total",
			Help:      "Index statements, by outcome.",
		}, []string{"status"}),
		parseIssues: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "myferry",
			Name:      "parse_issues_total",
			Help:      "Column-list clauses that could not be parsed.",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "myferry",
			Name:      "batch_duration_seconds",
			Help:      "Time spent executing one insert batch.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	m.registry.MustRegister(m.tables, m.rows, m.batches, m.indexes, m.parseIssues, m.batchDuration)
	return m
}

func (m *migrationMetrics) observeBatch(table string, rows int, err error, took time.Duration) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(took.Seconds())
	if err != nil {
		m.batches.WithLabelValues(table, "failed").Inc()
		return
	}
	m.batches.WithLabelValues(table, "ok").Inc()
	m.rows.WithLabelValues(table).Add(float64(rows))
}

func (m *migrationMetrics) observeIndex(res IndexResult) {
	if m == nil {
		return
	}
	switch {
	case res.Skipped:
		m.indexes.WithLabelValues("skipped").Inc()
	case res.Err != nil:
		m.indexes.WithLabelValues("failed").Inc()
	default:
		m.indexes.WithLabelValues("created").Inc()
	}
}

func (m *migrationMetrics) observeTable(r TableReport) {
	if m == nil {
		return
	}
	m.parseIssues.Add(float64(len(r.ParseIssues)))
	if r.Err != nil {
		m.tables.WithLabelValues("failed").Inc()
		return
	}
	m.tables.WithLabelValues("ok").Inc()
}

// writeTextfile writes the counters in Prometheus text format, for the node
// exporter textfile collector.
func (m *migrationMetrics) writeTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
