package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/tigerroll/weekreport/internal/domain/model"
	"github.com/tigerroll/weekreport/pkg/config"
	"github.com/tigerroll/weekreport/pkg/metrics"
	"github.com/tigerroll/weekreport/pkg/support/logger"
)

const testYAML = `
weekreport:
  database:
    main:
      type: sqlite
      database: ":memory:"
`

func TestBatchRunOptions(t *testing.T) {
	opts, err := batchRunOptions(config.BatchConfig{
		DayGb:         "month",
		Include:       "101,102",
		Exclude:       "102",
		ScheduleGroup: "PM2",
		DryRun:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RunOptions{
		DayGb:         model.DayGbMonth,
		Include:       []int{101, 102},
		Exclude:       []int{102},
		ScheduleGroup: "PM2",
		DryRun:        true,
	}, opts)

	_, err = batchRunOptions(config.BatchConfig{Include: "101,abc"})
	assert.ErrorContains(t, err, "batch.include")
	_, err = batchRunOptions(config.BatchConfig{DayGb: "YEAR"})
	assert.Error(t, err)
}

func TestReferenceDate(t *testing.T) {
	cfg := config.NewConfig()
	cfg.WeekReport.Batch.AsOf = "20241113"
	d, err := referenceDate(cfg)
	require.NoError(t, err)
	assert.Equal(t, model.Date(2024, 11, 13), d)

	cfg.WeekReport.Batch.AsOf = "13/11/2024"
	_, err = referenceDate(cfg)
	assert.Error(t, err)
}

func TestApplicationGraph(t *testing.T) {
	invokes := map[string]fx.Option{
		config.ModeRun:    fx.Invoke(fx.Annotate(startBatch, fx.ParamTags("", "", "", "", `name:"appCtx"`))),
		config.ModeSingle: fx.Invoke(fx.Annotate(startSingle, fx.ParamTags("", "", "", "", `name:"appCtx"`))),
		config.ModeServe:  fx.Invoke(startServe),
	}
	for mode, invoke := range invokes {
		t.Run(mode, func(t *testing.T) {
			err := fx.ValidateApp(
				fx.Supply(
					config.EmbeddedConfig(testYAML),
					fx.Annotate(context.Background(), fx.As(new(context.Context)), fx.ResultTags(`name:"appCtx"`)),
				),
				DBProviderMap["sqlite"],
				logger.Module,
				config.Module,
				metrics.Module,
				Module,
				invoke,
			)
			assert.NoError(t, err)
		})
	}
}
