package metrics

import (
	"context"
	"time"
)

// NoOpMetricRecorder discards everything. Used by tests and when telemetry is off.
type NoOpMetricRecorder struct{}

// NewNoOpMetricRecorder creates a NoOpMetricRecorder.
func NewNoOpMetricRecorder() MetricRecorder { return &NoOpMetricRecorder{} }

func (r *NoOpMetricRecorder) RecordRunStart(context.Context, string)                      {}
func (r *NoOpMetricRecorder) RecordRunEnd(context.Context, string, string, time.Duration) {}
func (r *NoOpMetricRecorder) RecordFarm(context.Context, string, string, time.Duration)   {}
func (r *NoOpMetricRecorder) RecordTopic(context.Context, string, int, time.Duration)     {}
func (r *NoOpMetricRecorder) SetPoolInUse(int)                                            {}

// NoOpTracer starts no spans.
type NoOpTracer struct{}

// NewNoOpTracer creates a NoOpTracer.
func NewNoOpTracer() Tracer { return &NoOpTracer{} }

func (t *NoOpTracer) StartRunSpan(ctx context.Context, _, _ string) (context.Context, Span) {
	return ctx, func(error) {}
}

func (t *NoOpTracer) StartFarmSpan(ctx context.Context, _ int) (context.Context, Span) {
	return ctx, func(error) {}
}

func (t *NoOpTracer) StartTopicSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, func(error) {}
}

func (t *NoOpTracer) RecordEvent(context.Context, string, map[string]interface{}) {}
