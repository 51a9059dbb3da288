// Package metrics records what a batch pass did: pass and farm outcomes, aggregator
// timings and connection pool usage. Prometheus and OpenTelemetry backends are provided.
package metrics

import (
	"context"
	"time"
)

// MetricRecorder is the abstract interface for recording report generation metrics.
type MetricRecorder interface {
	// RecordRunStart records the start of a batch pass for a period kind (WEEK, MONTH, QUARTER).
	RecordRunStart(ctx context.Context, dayGb string)
	// RecordRunEnd records the terminal status and duration of a batch pass.
	RecordRunEnd(ctx context.Context, dayGb, status string, duration time.Duration)
	// RecordFarm records one farm's outcome (COMPLETE, ERROR).
	RecordFarm(ctx context.Context, dayGb, status string, duration time.Duration)
	// RecordTopic records the rows one aggregator wrote for a farm.
	RecordTopic(ctx context.Context, topic string, rows int, duration time.Duration)
	// SetPoolInUse records the number of leased database connections.
	SetPoolInUse(inUse int)
}

// Span is the end function of a traced unit of work. err may be nil.
type Span func(err error)

// Tracer starts spans around passes, farms and aggregators.
type Tracer interface {
	StartRunSpan(ctx context.Context, dayGb, period string) (context.Context, Span)
	StartFarmSpan(ctx context.Context, farmNo int) (context.Context, Span)
	StartTopicSpan(ctx context.Context, topic string) (context.Context, Span)
	// RecordEvent attaches an event to the span in ctx.
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})
}

// MultiRecorder fans every call out to all recorders.
type MultiRecorder []MetricRecorder

func (m MultiRecorder) RecordRunStart(ctx context.Context, dayGb string) {
	for _, r := range m {
		r.RecordRunStart(ctx, dayGb)
	}
}

func (m MultiRecorder) RecordRunEnd(ctx context.Context, dayGb, status string, duration time.Duration) {
	for _, r := range m {
		r.RecordRunEnd(ctx, dayGb, status, duration)
	}
}

func (m MultiRecorder) RecordFarm(ctx context.Context, dayGb, status string, duration time.Duration) {
	for _, r := range m {
		r.RecordFarm(ctx, dayGb, status, duration)
	}
}

func (m MultiRecorder) RecordTopic(ctx context.Context, topic string, rows int, duration time.Duration) {
	for _, r := range m {
		r.RecordTopic(ctx, topic, rows, duration)
	}
}

func (m MultiRecorder) SetPoolInUse(inUse int) {
	for _, r := range m {
		r.SetPoolInUse(inUse)
	}
}

var _ MetricRecorder = MultiRecorder(nil)
