package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tigerroll/weekreport/pkg/support/logger"
)

// OTelRecorder records the same measurements as PrometheusRecorder through an OpenTelemetry meter,
// so they reach the OTLP collector configured under weekreport.telemetry.
type OTelRecorder struct {
	runs      metric.Int64Counter
	runTime   metric.Float64Histogram
	farms     metric.Int64Counter
	farmTime  metric.Float64Histogram
	topicRows metric.Int64Counter
	topicTime metric.Float64Histogram
	leases    metric.Int64Gauge
}

// NewOTelRecorder creates instruments on meter. Instruments that fail to register are logged and
// replaced by no-op instruments from the meter's fallback.
func NewOTelRecorder(meter metric.Meter) *OTelRecorder {
	r := &OTelRecorder{}
	var err error
	if r.runs, err = meter.Int64Counter("weekreport.run.count", metric.WithDescription("Batch passes by status.")); err != nil {
		logger.Warnf("otel: run counter: %v", err)
	}
	if r.runTime, err = meter.Float64Histogram("weekreport.run.duration", metric.WithUnit("s")); err != nil {
		logger.Warnf("otel: run histogram: %v", err)
	}
	if r.farms, err = meter.Int64Counter("weekreport.farm.count", metric.WithDescription("Farm reports by status.")); err != nil {
		logger.Warnf("otel: farm counter: %v", err)
	}
	if r.farmTime, err = meter.Float64Histogram("weekreport.farm.duration", metric.WithUnit("s")); err != nil {
		logger.Warnf("otel: farm histogram: %v", err)
	}
	if r.topicRows, err = meter.Int64Counter("weekreport.topic.rows"); err != nil {
		logger.Warnf("otel: topic counter: %v", err)
	}
	if r.topicTime, err = meter.Float64Histogram("weekreport.topic.duration", metric.WithUnit("s")); err != nil {
		logger.Warnf("otel: topic histogram: %v", err)
	}
	if r.leases, err = meter.Int64Gauge("weekreport.db.leases"); err != nil {
		logger.Warnf("otel: lease gauge: %v", err)
	}
	return r
}

func (r *OTelRecorder) RecordRunStart(ctx context.Context, dayGb string) {
	if r.runs != nil {
		r.runs.Add(ctx, 1, metric.WithAttributes(attribute.String("day_gb", dayGb), attribute.String("status", "STARTED")))
	}
}

func (r *OTelRecorder) RecordRunEnd(ctx context.Context, dayGb, status string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("day_gb", dayGb), attribute.String("status", status))
	if r.runs != nil {
		r.runs.Add(ctx, 1, attrs)
	}
	if r.runTime != nil {
		r.runTime.Record(ctx, duration.Seconds(), attrs)
	}
}

func (r *OTelRecorder) RecordFarm(ctx context.Context, dayGb, status string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("day_gb", dayGb), attribute.String("status", status))
	if r.farms != nil {
		r.farms.Add(ctx, 1, attrs)
	}
	if r.farmTime != nil {
		r.farmTime.Record(ctx, duration.Seconds(), attrs)
	}
}

func (r *OTelRecorder) RecordTopic(ctx context.Context, topic string, rows int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("topic", topic))
	if r.topicRows != nil {
		r.topicRows.Add(ctx, int64(rows), attrs)
	}
	if r.topicTime != nil {
		r.topicTime.Record(ctx, duration.Seconds(), attrs)
	}
}

func (r *OTelRecorder) SetPoolInUse(inUse int) {
	if r.leases != nil {
		r.leases.Record(context.Background(), int64(inUse))
	}
}

var _ MetricRecorder = (*OTelRecorder)(nil)
