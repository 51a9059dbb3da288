package metrics

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/weekreport/pkg/config"
)

func newTelemetry(lc fx.Lifecycle, cfg *config.Config) (*Telemetry, error) {
	t, err := NewTelemetry(context.Background(), cfg.WeekReport.Telemetry)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: t.Shutdown})
	return t, nil
}

func newMetricRecorder(prom *PrometheusRecorder, t *Telemetry) MetricRecorder {
	return MultiRecorder{prom, NewOTelRecorder(t.MeterProvider.Meter("github.com/tigerroll/weekreport"))}
}

func newTracer(t *Telemetry) Tracer {
	return NewOpenTelemetryTracer(t.TracerProvider)
}

// Module provides the telemetry providers, the combined MetricRecorder and the Tracer.
var Module = fx.Options(
	fx.Provide(newTelemetry),
	fx.Provide(NewPrometheusRecorder),
	fx.Provide(newMetricRecorder),
	fx.Provide(newTracer),
)
