// Package app assembles the report service with uber-fx: configuration, the report database,
// the pipeline and orchestrator, the archive, and the HTTP and cron triggers.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/tigerroll/weekreport/internal/api"
	"github.com/tigerroll/weekreport/internal/domain/model"
	"github.com/tigerroll/weekreport/internal/export"
	"github.com/tigerroll/weekreport/internal/orchestrator"
	"github.com/tigerroll/weekreport/internal/pipeline"
	"github.com/tigerroll/weekreport/internal/scheduler"
	"github.com/tigerroll/weekreport/internal/store/migrations"
	"github.com/tigerroll/weekreport/pkg/adapter/database"
	gormadapter "github.com/tigerroll/weekreport/pkg/adapter/database/gorm"
	"github.com/tigerroll/weekreport/pkg/adapter/database/gorm/mysql"
	"github.com/tigerroll/weekreport/pkg/adapter/database/gorm/postgres"
	"github.com/tigerroll/weekreport/pkg/adapter/database/gorm/sqlite"
	"github.com/tigerroll/weekreport/pkg/adapter/storage"
	"github.com/tigerroll/weekreport/pkg/config"
	"github.com/tigerroll/weekreport/pkg/metrics"
	"github.com/tigerroll/weekreport/pkg/migration"
	"github.com/tigerroll/weekreport/pkg/support/logger"
)

// DBProviderMap is used by main.go to select the dialect providers to register.
var DBProviderMap = map[string]fx.Option{
	"postgres": postgres.Module,
	"mysql":    mysql.Module,
	"sqlite":   sqlite.Module,
}

// ReportDBParams defines the dependencies for NewReportDB.
type ReportDBParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Cfg       *config.Config
	Resolver  database.Resolver
	Providers []database.Provider `group:"db_providers"`
}

// NewReportDB opens the report database named by report.db_ref and brings its schema up to date.
func NewReportDB(p ReportDBParams) (*gorm.DB, error) {
	ctx := context.Background()
	name := p.Cfg.WeekReport.Report.DBRef

	conn, err := p.Resolver.ResolveConnection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open report database '%s': %w", name, err)
	}
	sqlDB, err := conn.SQLDB()
	if err != nil {
		return nil, err
	}
	if err := migration.NewMigrator(sqlDB, conn.Type(), "").Up(migrations.FS, migrations.Dir); err != nil {
		return nil, fmt.Errorf("failed to migrate report database '%s': %w", name, err)
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Infof("Closing all database connections...")
			var errs error
			for _, provider := range p.Providers {
				if err := provider.CloseAll(); err != nil {
					errs = multierror.Append(errs, fmt.Errorf("provider %s: %w", provider.Type(), err))
				}
			}
			return errs
		},
	})
	return conn.DB(ctx), nil
}

// NewConnPool sizes the lease pool to the farm worker count.
func NewConnPool(db *gorm.DB, cfg *config.Config, recorder metrics.MetricRecorder) *gormadapter.ConnPool {
	return gormadapter.NewConnPool(db, cfg.WeekReport.Report.MaxFarmWorkers, recorder.SetPoolInUse)
}

// NewPipeline creates the per-farm pipeline with the default aggregators.
func NewPipeline(report *config.ReportConfig, recorder metrics.MetricRecorder, tracer metrics.Tracer) *pipeline.Pipeline {
	return pipeline.New(pipeline.Options{
		LookbackDays:    report.LookbackDays,
		ForwardDays:     report.ForwardDays,
		TokenExpireDays: report.TokenExpireDays,
	}, nil, recorder, tracer)
}

// NewArchiver returns nil when the archive is disabled.
func NewArchiver(lc fx.Lifecycle, cfg *config.Config, db *gorm.DB) (*export.Archiver, error) {
	ac := cfg.WeekReport.Archive
	if !ac.Enabled {
		return nil, nil
	}
	objects, err := storage.Open(context.Background(), ac)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive storage: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return objects.Close() }})
	logger.Infof("Archiving completed passes to %s storage.", objects.Type())
	return export.NewArchiver(db, objects, ac.Compression)
}

// OrchestratorParams defines the dependencies for NewOrchestrator.
type OrchestratorParams struct {
	fx.In
	Cfg      *config.Config
	DB       *gorm.DB
	Pool     *gormadapter.ConnPool
	Pipeline *pipeline.Pipeline
	Archiver *export.Archiver `optional:"true"`
	Recorder metrics.MetricRecorder
	Tracer   metrics.Tracer
}

// NewOrchestrator creates the batch orchestrator.
func NewOrchestrator(p OrchestratorParams) *orchestrator.Orchestrator {
	o := orchestrator.New(p.DB, orchestrator.NewPoolLeaser(p.Pool), p.Pipeline, orchestrator.Options{
		Workers:              p.Cfg.WeekReport.Report.MaxFarmWorkers,
		DefaultScheduleGroup: p.Cfg.WeekReport.Report.DefaultScheduleGroup,
		Location:             p.Cfg.Location(),
	}, p.Recorder, p.Tracer)
	if p.Archiver != nil {
		o.SetArchiver(p.Archiver)
	}
	return o
}

// NewServer creates the HTTP trigger. /metrics serves the Prometheus registry.
func NewServer(cfg *config.Config, o *orchestrator.Orchestrator, prom *metrics.PrometheusRecorder) *api.Server {
	var h http.Handler
	if prom != nil {
		h = prom.Handler()
	}
	return api.NewServer(cfg.WeekReport.Server, o, h, cfg.Location())
}

// NewScheduler creates the cron trigger. It runs every target farm with the batch defaults.
func NewScheduler(cfg *config.Config, o *orchestrator.Orchestrator) (*scheduler.Scheduler, error) {
	opts, err := batchRunOptions(cfg.WeekReport.Batch)
	if err != nil {
		return nil, err
	}
	return scheduler.New(cfg.WeekReport.Scheduler.Spec, cfg.Location(), o, opts)
}

func batchRunOptions(b config.BatchConfig) (model.RunOptions, error) {
	dayGb, err := model.ParseDayGb(b.DayGb)
	if err != nil {
		return model.RunOptions{}, err
	}
	include, err := config.ParseFarmList(b.Include)
	if err != nil {
		return model.RunOptions{}, fmt.Errorf("batch.include: %w", err)
	}
	exclude, err := config.ParseFarmList(b.Exclude)
	if err != nil {
		return model.RunOptions{}, fmt.Errorf("batch.exclude: %w", err)
	}
	return model.RunOptions{
		DayGb:         dayGb,
		Include:       include,
		Exclude:       exclude,
		ScheduleGroup: b.ScheduleGroup,
		Force:         b.Force,
		DryRun:        b.DryRun,
	}, nil
}

// Module provides every component of the report service.
var Module = fx.Options(
	gormadapter.Module,
	fx.Provide(NewReportDB),
	fx.Provide(NewConnPool),
	fx.Provide(NewPipeline),
	fx.Provide(NewArchiver),
	fx.Provide(NewOrchestrator),
	fx.Provide(NewServer),
)
