package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OpenTelemetryTracer is an implementation of Tracer using OpenTelemetry.
type OpenTelemetryTracer struct {
	tracer trace.Tracer
}

// NewOpenTelemetryTracer creates a Tracer from provider.
func NewOpenTelemetryTracer(provider trace.TracerProvider) *OpenTelemetryTracer {
	return &OpenTelemetryTracer{tracer: provider.Tracer("github.com/tigerroll/weekreport")}
}

func (t *OpenTelemetryTracer) StartRunSpan(ctx context.Context, dayGb, period string) (context.Context, Span) {
	return t.start(ctx, "report.run",
		attribute.String("report.day_gb", dayGb),
		attribute.String("report.period", period))
}

func (t *OpenTelemetryTracer) StartFarmSpan(ctx context.Context, farmNo int) (context.Context, Span) {
	return t.start(ctx, "report.farm", attribute.Int("report.farm_no", farmNo))
}

func (t *OpenTelemetryTracer) StartTopicSpan(ctx context.Context, topic string) (context.Context, Span) {
	return t.start(ctx, "report.topic", attribute.String("report.topic", topic))
}

func (t *OpenTelemetryTracer) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// RecordEvent records an event in the current span.
func (t *OpenTelemetryTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	kvs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			kvs = append(kvs, attribute.String(k, val))
		case int:
			kvs = append(kvs, attribute.Int(k, val))
		case int64:
			kvs = append(kvs, attribute.Int64(k, val))
		case float64:
			kvs = append(kvs, attribute.Float64(k, val))
		case bool:
			kvs = append(kvs, attribute.Bool(k, val))
		default:
			kvs = append(kvs, attribute.String(k, fmt.Sprint(val)))
		}
	}
	span.AddEvent(name, trace.WithAttributes(kvs...))
}

var _ Tracer = (*OpenTelemetryTracer)(nil)
