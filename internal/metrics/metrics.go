// Package metrics exports the counters of a load in the Prometheus text
// format, for collection by the node exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wikisql/wikisql/internal/loader"
)

const namespace = "wikisql"

const (
	MetricLines          = "lines_total"
	MetricBytes          = "bytes_total"
	MetricEntities       = "entities_total"
	MetricSkipped        = "skipped_lines_total"
	MetricErrors         = "errors_total"
	MetricCommits        = "commits_total"
	MetricDeprecated     = "deprecated_claims_total"
	MetricRows           = "rows_total"
	MetricDuration       = "load_duration_seconds"
	MetricLastCompletion = "last_completion_timestamp_seconds"
)

// Registry builds a registry holding the counters of s.
func Registry(s loader.Stats, elapsed time.Duration, now time.Time) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	counter := func(name, help string, v int64) {
		c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
		c.Add(float64(v))
		reg.MustRegister(c)
	}
	counter(MetricLines, "Lines read from the dump.", s.Lines)
	counter(MetricBytes, "Bytes read from the dump, line terminators excluded.", s.Bytes)
	counter(MetricEntities, "Records parsed from the dump.", s.Entities)
	counter(MetricSkipped, "Empty and delimiter lines.", s.Skipped)
	counter(MetricCommits, "Committed batches.", s.Commits)
	counter(MetricDeprecated, "Deprecated claims dropped.", s.DeprecatedClaims)

	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      MetricErrors,
		Help:      "Reported failures by stage.",
	}, []string{"stage"})
	for stage, n := range map[loader.Stage]int64{
		loader.StageRead:   s.ReadErrors,
		loader.StageJSON:   s.JSONErrors,
		loader.StageEntity: s.EntityErrors,
		loader.StageStore:  s.StoreErrors,
		loader.StageCommit: s.CommitErrors,
		loader.StageIndex:  s.IndexErrors,
	} {
		errs.WithLabelValues(string(stage)).Add(float64(n))
	}
	reg.MustRegister(errs)

	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      MetricRows,
		Help:      "Rows written by table.",
	}, []string{"table"})
	for table, n := range s.Rows {
		rows.WithLabelValues(table).Add(float64(n))
	}
	reg.MustRegister(rows)

	duration := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: MetricDuration, Help: "Duration of the load."})
	duration.Set(elapsed.Seconds())
	reg.MustRegister(duration)

	completed := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: MetricLastCompletion, Help: "Unix time the load finished."})
	completed.Set(float64(now.Unix()))
	reg.MustRegister(completed)

	return reg
}

// Export writes the counters of s to path. The file is replaced
// atomically.
func Export(path string, s loader.Stats, elapsed time.Duration) error {
	if err := prometheus.WriteToTextfile(path, Registry(s, elapsed, time.Now())); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
