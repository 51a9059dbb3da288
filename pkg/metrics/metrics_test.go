package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tigerroll/weekreport/pkg/config"
)

func TestPrometheusRecorder_ExposesMetrics(t *testing.T) {
	r := NewPrometheusRecorder()
	ctx := context.Background()
	r.RecordRunStart(ctx, "WEEK")
	r.RecordFarm(ctx, "WEEK", "COMPLETE", 2*time.Second)
	r.RecordTopic(ctx, "GB", 12, 10*time.Millisecond)
	r.SetPoolInUse(3)
	r.RecordRunEnd(ctx, "WEEK", "COMPLETE", time.Minute)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `weekreport_farm_total{day_gb="WEEK",status="COMPLETE"} 1`)
	assert.Contains(t, body, `weekreport_topic_rows_total{topic="GB"} 12`)
	assert.Contains(t, body, "weekreport_db_leases_in_use 3")
	assert.True(t, strings.Contains(body, "go_goroutines"))
}

func TestOpenTelemetryTracer_RecordsSpansAndErrors(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	tracer := NewOpenTelemetryTracer(tp)

	ctx, endRun := tracer.StartRunSpan(context.Background(), "WEEK", "2024-W02")
	farmCtx, endFarm := tracer.StartFarmSpan(ctx, 101)
	tracer.RecordEvent(farmCtx, "placeholder", map[string]interface{}{"farm_no": 101, "dry_run": false})
	endFarm(errors.New("boom"))
	endRun(nil)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "report.farm", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	require.Len(t, spans[0].Events(), 2, "one recorded event plus the exception event")
	assert.Equal(t, "report.run", spans[1].Name())
	assert.Equal(t, spans[1].SpanContext().TraceID(), spans[0].SpanContext().TraceID())
}

func TestOTelRecorder_RecordsToMeter(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	r := NewOTelRecorder(mp.Meter("test"))

	ctx := context.Background()
	r.RecordFarm(ctx, "WEEK", "ERROR", time.Second)
	r.RecordFarm(ctx, "WEEK", "ERROR", time.Second)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	found := false
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if m.Name != "weekreport.farm.count" {
			continue
		}
		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, sum.DataPoints, 1)
		assert.Equal(t, int64(2), sum.DataPoints[0].Value)
		found = true
	}
	assert.True(t, found)
}

func TestNewTelemetry_NoneExporter(t *testing.T) {
	tel, err := NewTelemetry(context.Background(), config.TelemetryConfig{ServiceName: "test", Exporter: "none"})
	require.NoError(t, err)
	assert.NoError(t, tel.Shutdown(context.Background()))

	_, err = NewTelemetry(context.Background(), config.TelemetryConfig{Exporter: "zipkin"})
	assert.Error(t, err)
}

func TestMultiRecorder_FansOut(t *testing.T) {
	a, b := NewPrometheusRecorder(), NewPrometheusRecorder()
	MultiRecorder{a, b, NewNoOpMetricRecorder()}.SetPoolInUse(2)
	for _, r := range []*PrometheusRecorder{a, b} {
		rec := httptest.NewRecorder()
		r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
		assert.Contains(t, rec.Body.String(), "weekreport_db_leases_in_use 2")
	}
}
