// Package orchestrator runs batch passes: it resolves the period, prepares the job and farm
// records, fans the farms out over a fixed pool of workers and records the outcome.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tigerroll/weekreport/internal/domain/model"
	"github.com/tigerroll/weekreport/internal/period"
	"github.com/tigerroll/weekreport/internal/pipeline"
	"github.com/tigerroll/weekreport/internal/store"
	"github.com/tigerroll/weekreport/pkg/metrics"
	"github.com/tigerroll/weekreport/pkg/support/exception"
	"github.com/tigerroll/weekreport/pkg/support/logger"
)

const moduleName = "orchestrator"

// FarmProcessor builds the report of one farm on a leased connection.
type FarmProcessor interface {
	Process(ctx context.Context, db *gorm.DB, job pipeline.Job) model.FarmResult
}

// PassArchiver receives every finished batch pass.
type PassArchiver interface {
	ArchivePass(ctx context.Context, result *model.JobResult) error
}

// Options configures an Orchestrator.
type Options struct {
	// Workers is the number of farms processed concurrently.
	Workers int
	// DefaultScheduleGroup is the group of farms without one.
	DefaultScheduleGroup string
	// Location is the timezone of the run date. nil means UTC.
	Location *time.Location
}

// Orchestrator runs batch passes and single-farm runs.
type Orchestrator struct {
	store     *store.Store
	leaser    ConnLeaser
	processor FarmProcessor
	opts      Options
	recorder  metrics.MetricRecorder
	tracer    metrics.Tracer
	archiver  PassArchiver
	inflight  *inflight
	now       func() time.Time
}

// New creates an Orchestrator. db is used for the setup and bookkeeping statements; farms run on
// connections taken from leaser.
func New(db *gorm.DB, leaser ConnLeaser, processor FarmProcessor, opts Options, recorder metrics.MetricRecorder, tracer metrics.Tracer) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.DefaultScheduleGroup == "" {
		opts.DefaultScheduleGroup = "AM7"
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	if tracer == nil {
		tracer = metrics.NewNoOpTracer()
	}
	return &Orchestrator{
		store:     store.New(db),
		leaser:    leaser,
		processor: processor,
		opts:      opts,
		recorder:  recorder,
		tracer:    tracer,
		inflight:  newInflight(),
		now:       time.Now,
	}
}

// SetArchiver registers the archiver called after each completed pass.
func (o *Orchestrator) SetArchiver(a PassArchiver) {
	o.archiver = a
}

// Run executes one batch pass for the period before hint. Setup failures are returned as fatal
// errors; farm failures are reported in the result.
func (o *Orchestrator) Run(ctx context.Context, hint time.Time, opts model.RunOptions) (*model.JobResult, error) {
	start := o.now()
	runID := uuid.NewString()
	dayGb := opts.DayGb
	if dayGb == "" {
		dayGb = model.DayGbWeek
	}

	// 1. System flag.
	if !opts.Force {
		enabled, err := o.store.ScheduleEnabled(ctx)
		if err != nil {
			return nil, exception.NewSetupError(moduleName, "failed to read the schedule flag", err)
		}
		if !enabled {
			logger.Warnf("Batch pass skipped: ins_schedule_yn is N.")
			return &model.JobResult{RunID: runID, Status: model.JobSkipped}, nil
		}
	}

	// 2. Period.
	per, err := period.Resolve(dayGb, hint)
	if err != nil {
		return nil, exception.NewSetupError(moduleName, "failed to resolve the reporting period", err)
	}
	ctx, endSpan := o.tracer.StartRunSpan(ctx, string(dayGb), per.Key())
	result, err := o.run(ctx, per, runID, start, opts)
	endSpan(err)
	return result, err
}

func (o *Orchestrator) run(ctx context.Context, per model.ReportingPeriod, runID string, start time.Time, opts model.RunOptions) (*model.JobResult, error) {
	// 3. Target farms.
	farms, err := o.store.ListTargetFarms(ctx, per, store.FarmFilter{
		Include:       opts.Include,
		Exclude:       opts.Exclude,
		ScheduleGroup: opts.ScheduleGroup,
		DefaultGroup:  o.opts.DefaultScheduleGroup,
	})
	if err != nil {
		return nil, exception.NewSetupError(moduleName, "failed to enumerate target farms", err)
	}
	result := &model.JobResult{
		RunID:     runID,
		Period:    per,
		TargetCnt: len(farms),
		Farms:     farmNos(farms),
	}
	if opts.DryRun {
		result.Status = model.JobDryRun
		logger.Infof("Dry run %s: %d target farms %v.", per, len(farms), result.Farms)
		return result, nil
	}

	// 4. Job and placeholders.
	o.recorder.RecordRunStart(ctx, string(per.DayGb))
	job, err := o.store.UpsertJob(ctx, per, runID)
	if err != nil {
		return nil, exception.NewSetupError(moduleName, "failed to upsert the job record", err)
	}
	result.MasterSeq = job.Seq
	if err := o.store.UpsertPlaceholders(ctx, job.Seq, farms); err != nil {
		return nil, exception.NewSetupError(moduleName, "failed to create farm placeholders", err)
	}
	if err := o.store.MarkJobRunning(ctx, job.Seq, len(farms), start); err != nil {
		return nil, exception.NewSetupError(moduleName, "failed to mark the job running", err)
	}
	shared, err := o.sharedContext(ctx, per, runID)
	if err != nil {
		return nil, exception.NewSetupError(moduleName, "failed to build the shared context", err)
	}
	logger.Infof("Batch pass %s started: job %d, %d farms, %d workers (run %s).", per, job.Seq, len(farms), o.opts.Workers, runID)

	// 5. Farms. Once dispatch starts the pass runs to the end.
	detached := context.WithoutCancel(ctx)
	result.Results = o.dispatch(detached, job.Seq, per, shared, farms)

	// 6. Outcome.
	counts := store.JobCounts{Target: len(farms)}
	for _, r := range result.Results {
		if r.OK() {
			counts.Complete++
		} else {
			counts.Error++
		}
	}
	result.CompleteCnt = counts.Complete
	result.ErrorCnt = counts.Error
	result.Status = counts.Status()
	result.Elapsed = o.now().Sub(start)
	if err := o.store.FinishJob(detached, job.Seq, counts, o.now(), result.Elapsed); err != nil {
		return result, exception.NewSetupError(moduleName, "failed to record the job outcome", err)
	}
	o.recorder.RecordRunEnd(detached, string(per.DayGb), result.Status, result.Elapsed)
	logger.Infof("Batch pass %s finished: %s, %d complete, %d failed in %s.", per, result.Status, counts.Complete, counts.Error, result.Elapsed)

	if o.archiver != nil {
		if err := o.archiver.ArchivePass(detached, result); err != nil {
			logger.Errorf("Batch pass %s: archive failed: %v", per, err)
		}
	}
	return result, nil
}

// dispatch processes farms on a fixed number of workers and returns results in farm order.
func (o *Orchestrator) dispatch(ctx context.Context, masterSeq int64, per model.ReportingPeriod, shared *model.SharedContext, farms []model.Farm) []model.FarmResult {
	results := make([]model.FarmResult, len(farms))
	work := make(chan int)
	workers := min(o.opts.Workers, len(farms))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				results[i] = o.runFarm(ctx, pipeline.Job{
					MasterSeq: masterSeq,
					Farm:      farms[i],
					Period:    per,
					Shared:    shared,
				})
			}
		}()
	}
	for i := range farms {
		work <- i
	}
	close(work)
	wg.Wait()
	return results
}

// runFarm leases a connection, runs the pipeline and always releases the lease.
func (o *Orchestrator) runFarm(ctx context.Context, job pipeline.Job) model.FarmResult {
	key := inflightKey(job.Period, job.Farm.FarmNo)
	if !o.inflight.claim(key) {
		logger.Warnf("Farm %d: %s is already being processed, skipped.", job.Farm.FarmNo, job.Period.Key())
		return o.failed(job, exception.ErrFarmInFlight)
	}
	defer o.inflight.release(key)

	lease, err := o.leaser.Acquire(ctx)
	if err != nil {
		if !errors.Is(err, exception.ErrConnectionUnavailable) {
			err = fmt.Errorf("%w: %v", exception.ErrConnectionUnavailable, err)
		}
		logger.Errorf("Farm %d: %v", job.Farm.FarmNo, err)
		o.recordAcquireFailure(ctx, job, err)
		return o.failed(job, err)
	}
	return o.process(ctx, lease, job)
}

func (o *Orchestrator) process(ctx context.Context, lease ConnLease, job pipeline.Job) model.FarmResult {
	defer lease.Release()
	return o.processor.Process(ctx, lease.DB(), job)
}

func (o *Orchestrator) failed(job pipeline.Job, err error) model.FarmResult {
	return model.FarmResult{
		MasterSeq: job.MasterSeq,
		FarmNo:    job.Farm.FarmNo,
		Status:    model.FarmError,
		Period:    job.Period,
		DtFrom:    job.Period.DtFrom(),
		DtTo:      job.Period.DtTo(),
		Err:       err,
	}
}

// recordAcquireFailure marks the farm ERROR on the shared handle. It may fail for the same reason
// the lease did; that is only logged.
func (o *Orchestrator) recordAcquireFailure(ctx context.Context, job pipeline.Job, cause error) {
	if err := o.store.SetFarmStatus(ctx, job.MasterSeq, job.Farm.FarmNo, model.FarmError); err != nil {
		logger.Errorf("Farm %d: failed to mark ERROR: %v", job.Farm.FarmNo, err)
		return
	}
	err := o.store.InsertJobLog(ctx, model.JobLog{
		MasterSeq: job.MasterSeq,
		FarmNo:    job.Farm.FarmNo,
		ProcNm:    moduleName + ".acquire",
		StatusCd:  model.FarmError,
		ErrorMsg:  exception.Truncate(exception.ExtractErrorMessage(cause), exception.MaxLogMessageLength),
	})
	if err != nil {
		logger.Errorf("Farm %d: failed to write job log: %v", job.Farm.FarmNo, err)
	}
}

// RunSingle builds the report of one farm for the period of dayGb before asOf. An existing job
// of that period is reused without resetting the other farms.
func (o *Orchestrator) RunSingle(ctx context.Context, farmNo int, dayGb model.DayGb, asOf time.Time) (*model.FarmResult, error) {
	if dayGb == "" {
		dayGb = model.DayGbWeek
	}
	per, err := period.Resolve(dayGb, asOf)
	if err != nil {
		return nil, exception.NewSetupError(moduleName, "failed to resolve the reporting period", err)
	}
	farm, ok, err := o.store.FindFarm(ctx, farmNo, o.opts.DefaultScheduleGroup)
	if err != nil {
		return nil, exception.NewSetupError(moduleName, "failed to read the farm", err)
	}
	if !ok {
		return nil, exception.NewSetupError(moduleName, fmt.Sprintf("farm %d", farmNo), exception.ErrFarmNotFound)
	}

	key := inflightKey(per, farmNo)
	if !o.inflight.claim(key) {
		return nil, exception.NewReportError(moduleName, fmt.Sprintf("farm %d, %s", farmNo, per.Key()), exception.ErrFarmInFlight)
	}
	defer o.inflight.release(key)

	job, err := o.store.FindJob(ctx, per)
	if err != nil {
		return nil, exception.NewSetupError(moduleName, "failed to read the job record", err)
	}
	if job == nil {
		if job, err = o.store.UpsertJob(ctx, per, uuid.NewString()); err != nil {
			return nil, exception.NewSetupError(moduleName, "failed to create the job record", err)
		}
	}
	if err := o.store.UpsertPlaceholders(ctx, job.Seq, []model.Farm{farm}); err != nil {
		return nil, exception.NewSetupError(moduleName, "failed to create the farm placeholder", err)
	}
	shared, err := o.sharedContext(ctx, per, job.RunID)
	if err != nil {
		return nil, exception.NewSetupError(moduleName, "failed to build the shared context", err)
	}

	// The caller may give up while waiting for a lease; once one is held the farm runs to the end.
	pj := pipeline.Job{MasterSeq: job.Seq, Farm: farm, Period: per, Shared: shared}
	lease, err := o.leaser.Acquire(ctx)
	if err != nil && ctx.Err() != nil {
		return nil, exception.NewReportError(moduleName, fmt.Sprintf("farm %d: gave up waiting for a connection", farmNo), err)
	}
	detached := context.WithoutCancel(ctx)
	var res model.FarmResult
	if err != nil {
		o.recordAcquireFailure(detached, pj, err)
		res = o.failed(pj, err)
	} else {
		res = o.process(detached, lease, pj)
	}

	counts, err := o.store.CountFarmStatuses(detached, job.Seq)
	if err != nil {
		return &res, exception.NewReportError(moduleName, "failed to recount the job", err)
	}
	if err := o.store.RefreshJobCounts(detached, job.Seq, counts); err != nil {
		return &res, exception.NewReportError(moduleName, "failed to update the job counts", err)
	}
	logger.Infof("Farm %d: single run %s finished with %s.", farmNo, per, res.Status)
	return &res, nil
}

func (o *Orchestrator) sharedContext(ctx context.Context, per model.ReportingPeriod, runID string) (*model.SharedContext, error) {
	price, err := o.store.NationalAvgPrice(ctx, per.From, per.To)
	if err != nil {
		return nil, err
	}
	return &model.SharedContext{
		RunID:            runID,
		Today:            model.DateOf(o.now(), o.opts.Location),
		NationalAvgPrice: price,
	}, nil
}

func farmNos(farms []model.Farm) []int {
	out := make([]int, len(farms))
	for i, f := range farms {
		out[i] = f.FarmNo
	}
	return out
}
