// Package metrics exposes build and lookup metrics in Prometheus format.
// A build writes them to a textfile for the node exporter; the lookup
// server serves them on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kodepos-id/kodepos"
	"github.com/kodepos-id/kodepos/pkg/codec"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/reconcile"
	"github.com/kodepos-id/kodepos/pkg/registry"
	"github.com/kodepos-id/kodepos/pkg/sources"
)

const namespace = "kodepos"

// Metrics holds every collector on its own registry, so several instances
// can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	Villages        *prometheus.GaugeVec
	Records         *prometheus.GaugeVec
	RecordsBySource *prometheus.GaugeVec
	Coverage        prometheus.Gauge
	SourceCodes     *prometheus.GaugeVec
	SourceSkipped   *prometheus.GaugeVec
	SourceOrphans   *prometheus.GaugeVec
	Conflicts       prometheus.Gauge
	ArtifactBytes   *prometheus.GaugeVec
	BuildDuration   prometheus.Gauge
	LastBuild       prometheus.Gauge

	Lookups         *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Villages: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registry_villages",
			Help:      "Registry units loaded, by village type",
		}, []string{"type"}),
		Records: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Canonical records produced, by status",
		}, []string{"status"}),
		RecordsBySource: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_by_source",
			Help:      "Canonical records produced, by selected source",
		}, []string{"source"}),
		Coverage: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coverage_percent",
			Help:      "Share of registry units carrying a postal code",
		}),
		SourceCodes: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_codes",
			Help:      "Distinct village codes mapped by a source",
		}, []string{"source"}),
		SourceSkipped: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_skipped_rows",
			Help:      "Source rows dropped while loading, by reason",
		}, []string{"source", "reason"}),
		SourceOrphans: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_orphan_codes",
			Help:      "Source codes absent from the registry",
		}, []string{"source"}),
		Conflicts: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "conflicts",
			Help:      "Lower-precedence offers that disagreed with the selected postal code",
		}),
		ArtifactBytes: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "artifact_bytes",
			Help:      "Size of each written artifact",
		}, []string{"artifact"}),
		BuildDuration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of the last reconciliation",
		}),
		LastBuild: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_build_timestamp_seconds",
			Help:      "Unix time the last reconciliation finished",
		}),
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Lookup API requests, by route and status code",
		}, []string{"route", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Duration of lookup API requests",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"route"}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Attach registers build hooks that keep the gauges current.
func (m *Metrics) Attach(b *kodepos.Builder) {
	b.OnRegistryLoaded(m.ObserveRegistry)
	b.OnSourceLoaded(m.ObserveSource)
	b.OnReconciled(m.ObserveResult)
	b.OnArtifactWritten(m.ObserveArtifact)
}

// ObserveRegistry records registry unit counts.
func (m *Metrics) ObserveRegistry(reg *registry.Registry) {
	for typ, n := range reg.CountByType() {
		m.Villages.WithLabelValues(typ).Set(float64(n))
	}
}

// ObserveSource records a loaded source mapping.
func (m *Metrics) ObserveSource(id sources.ID, mapping *sources.Mapping) {
	m.SourceCodes.WithLabelValues(id.String()).Set(float64(mapping.Len()))
	for reason, n := range mapping.Skipped() {
		m.SourceSkipped.WithLabelValues(id.String(), string(reason)).Set(float64(n))
	}
}

// ObserveResult records the outcome of a reconciliation.
func (m *Metrics) ObserveResult(r *reconcile.Result) {
	m.ObserveStats(r.Stats)
	m.BuildDuration.Set(r.Metadata.Duration.Seconds())
	m.LastBuild.Set(float64(r.Metadata.EndTime.Unix()))
}

// ObserveStats records record counts of a dataset.
func (m *Metrics) ObserveStats(st reconcile.Stats) {
	for status, n := range st.ByStatus {
		m.Records.WithLabelValues(status.String()).Set(float64(n))
	}
	for source, n := range st.BySource {
		m.RecordsBySource.WithLabelValues(source).Set(float64(n))
	}
	for source, n := range st.Orphans {
		m.SourceOrphans.WithLabelValues(source).Set(float64(n))
	}
	m.Coverage.Set(st.CoveragePercent())
	m.Conflicts.Set(float64(st.Conflicts))
}

// ObserveArtifact records the size of a written artifact.
func (m *Metrics) ObserveArtifact(a codec.Artifact) {
	m.ArtifactBytes.WithLabelValues(a.Path).Set(float64(a.Bytes))
}

// ObserveRequest records a lookup request.
// Call with time.Now() at the start of the request.
func (m *Metrics) ObserveRequest(route string, code int, start time.Time) {
	m.Lookups.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// WriteTextfile writes the current values to path for the node exporter
// textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
