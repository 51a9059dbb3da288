package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tigerroll/weekreport/pkg/support/logger"
)

// PrometheusRecorder is a Prometheus implementation of MetricRecorder.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	runDurationSeconds  *prometheus.HistogramVec
	runStatusCounter    *prometheus.CounterVec
	farmDurationSeconds *prometheus.HistogramVec
	farmStatusCounter   *prometheus.CounterVec
	topicDuration       *prometheus.HistogramVec
	topicRows           *prometheus.CounterVec
	poolInUse           prometheus.Gauge
}

// NewPrometheusRecorder creates a recorder with its own registry, including Go and process collectors.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		runDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weekreport_run_duration_seconds",
			Help:    "Duration of batch passes.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 3600},
		}, []string{"day_gb", "status"}),
		runStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weekreport_run_total",
			Help: "Batch passes by period kind and status.",
		}, []string{"day_gb", "status"}),
		farmDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weekreport_farm_duration_seconds",
			Help:    "Duration of one farm's report generation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"day_gb", "status"}),
		farmStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weekreport_farm_total",
			Help: "Farm reports by status.",
		}, []string{"day_gb", "status"}),
		topicDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weekreport_topic_duration_seconds",
			Help:    "Duration of one aggregator for one farm.",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"}),
		topicRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weekreport_topic_rows_total",
			Help: "Topic rows written by aggregator.",
		}, []string{"topic"}),
		poolInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weekreport_db_leases_in_use",
			Help: "Database connections currently leased by farm workers.",
		}),
	}
	registry.MustRegister(
		r.runDurationSeconds,
		r.runStatusCounter,
		r.farmDurationSeconds,
		r.farmStatusCounter,
		r.topicDuration,
		r.topicRows,
		r.poolInUse,
	)
	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *PrometheusRecorder) RecordRunStart(_ context.Context, dayGb string) {
	r.runStatusCounter.WithLabelValues(dayGb, "STARTED").Inc()
	logger.Debugf("Metrics: %s pass started.", dayGb)
}

func (r *PrometheusRecorder) RecordRunEnd(_ context.Context, dayGb, status string, duration time.Duration) {
	r.runStatusCounter.WithLabelValues(dayGb, status).Inc()
	r.runDurationSeconds.WithLabelValues(dayGb, status).Observe(duration.Seconds())
	logger.Debugf("Metrics: %s pass ended with %s in %.3fs", dayGb, status, duration.Seconds())
}

func (r *PrometheusRecorder) RecordFarm(_ context.Context, dayGb, status string, duration time.Duration) {
	r.farmStatusCounter.WithLabelValues(dayGb, status).Inc()
	r.farmDurationSeconds.WithLabelValues(dayGb, status).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) RecordTopic(_ context.Context, topic string, rows int, duration time.Duration) {
	r.topicRows.WithLabelValues(topic).Add(float64(rows))
	r.topicDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) SetPoolInUse(inUse int) {
	r.poolInUse.Set(float64(inUse))
}

var _ MetricRecorder = (*PrometheusRecorder)(nil)
