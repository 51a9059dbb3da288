package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/tigerroll/weekreport/internal/api"
	"github.com/tigerroll/weekreport/internal/domain/model"
	"github.com/tigerroll/weekreport/internal/orchestrator"
	"github.com/tigerroll/weekreport/internal/scheduler"
	"github.com/tigerroll/weekreport/pkg/config"
	"github.com/tigerroll/weekreport/pkg/metrics"
	"github.com/tigerroll/weekreport/pkg/support/logger"
)

// RunApplication loads the configuration and runs the mode selected by weekreport.batch.mode.
// In run and single mode the process exits with 1 when the pass could not complete.
func RunApplication(appCtx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig, dbProviderOptions []fx.Option) {
	cfg, err := config.LoadConfig(envFilePath, embeddedConfig)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetLogLevel(cfg.WeekReport.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.WeekReport.System.Logging.Level)

	var start fx.Option
	switch cfg.WeekReport.Batch.Mode {
	case config.ModeRun, "":
		start = fx.Invoke(fx.Annotate(startBatch, fx.ParamTags("", "", "", "", `name:"appCtx"`)))
	case config.ModeSingle:
		start = fx.Invoke(fx.Annotate(startSingle, fx.ParamTags("", "", "", "", `name:"appCtx"`)))
	case config.ModeServe:
		start = fx.Invoke(startServe)
	default:
		logger.Fatalf("Unknown batch.mode '%s'.", cfg.WeekReport.Batch.Mode)
	}

	app := fx.New(
		fx.Supply(
			embeddedConfig,
			fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
			fx.Annotate(
				appCtx,
				fx.As(new(context.Context)),
				fx.ResultTags(`name:"appCtx"`),
			),
		),
		fx.Options(dbProviderOptions...),
		logger.Module,
		config.Module,
		metrics.Module,
		Module,
		start,
	)

	app.Run()

	if app.Err() != nil {
		logger.Fatalf("Application run failed: %v", app.Err())
	}
}

// referenceDate is batch.as_of, or today in the configured timezone.
func referenceDate(cfg *config.Config) (time.Time, error) {
	if cfg.WeekReport.Batch.AsOf == "" {
		return model.DateOf(time.Now(), cfg.Location()), nil
	}
	return model.ParseYMD(cfg.WeekReport.Batch.AsOf)
}

// startBatch runs one batch pass after startup and then shuts the application down.
func startBatch(lc fx.Lifecycle, shutdowner fx.Shutdowner, o *orchestrator.Orchestrator, cfg *config.Config, appCtx context.Context) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			hint, err := referenceDate(cfg)
			if err != nil {
				return fmt.Errorf("batch.as_of: %w", err)
			}
			opts, err := batchRunOptions(cfg.WeekReport.Batch)
			if err != nil {
				return err
			}
			go func() {
				code := 0
				defer func() {
					if r := recover(); r != nil {
						logger.Errorf("Panic recovered in batch pass: %v", r)
						code = 1
					}
					logger.Infof("Requesting application shutdown after the batch pass.")
					if err := shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
						logger.Errorf("Failed to shutdown application: %v", err)
					}
				}()

				res, err := o.Run(appCtx, hint, opts)
				if err != nil {
					logger.Errorf("Batch pass failed: %v", err)
					code = 1
					return
				}
				logger.Infof("Batch pass %s finished with %s: %d target, %d complete, %d error.",
					res.Period, res.Status, res.TargetCnt, res.CompleteCnt, res.ErrorCnt)
			}()
			return nil
		},
		OnStop: onStopApplication(),
	})
}

// startSingle builds one farm's report after startup and then shuts the application down.
func startSingle(lc fx.Lifecycle, shutdowner fx.Shutdowner, o *orchestrator.Orchestrator, cfg *config.Config, appCtx context.Context) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			b := cfg.WeekReport.Batch
			if b.FarmNo <= 0 {
				return fmt.Errorf("batch.farm_no is required in single mode")
			}
			asOf, err := referenceDate(cfg)
			if err != nil {
				return fmt.Errorf("batch.as_of: %w", err)
			}
			dayGb, err := model.ParseDayGb(b.DayGb)
			if err != nil {
				return err
			}
			go func() {
				code := 0
				defer func() {
					if r := recover(); r != nil {
						logger.Errorf("Panic recovered in single run: %v", r)
						code = 1
					}
					if err := shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
						logger.Errorf("Failed to shutdown application: %v", err)
					}
				}()

				res, err := o.RunSingle(appCtx, b.FarmNo, dayGb, asOf)
				if err != nil {
					logger.Errorf("Single run of farm %d failed: %v", b.FarmNo, err)
					code = 1
				}
				if res != nil && !res.OK() {
					code = 1
				}
			}()
			return nil
		},
		OnStop: onStopApplication(),
	})
}

// startServe runs the HTTP trigger and, when enabled, the cron trigger until the process is signalled.
func startServe(lc fx.Lifecycle, cfg *config.Config, server *api.Server, o *orchestrator.Orchestrator) error {
	var sched *scheduler.Scheduler
	if cfg.WeekReport.Scheduler.Enabled {
		s, err := NewScheduler(cfg, o)
		if err != nil {
			return err
		}
		sched = s
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := server.Start(); err != nil {
				return err
			}
			if sched != nil {
				sched.Start()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if sched != nil {
				if err := sched.Stop(ctx); err != nil {
					logger.Warnf("Scheduler did not stop cleanly: %v", err)
				}
			}
			err := server.Shutdown(ctx)
			logger.Infof("Application is shutting down.")
			return err
		},
	})
	return nil
}

func onStopApplication() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		logger.Infof("Application is shutting down.")
		return nil
	}
}
