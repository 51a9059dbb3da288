// Package pipeline builds the report of one farm for one job on a leased connection.
//
// Every write of a farm happens in one transaction. The delete of the old topic rows and the
// RUNNING mark precede the savepoint "farm_work"; loading, derivation, projection and the
// aggregators run after it. When any of those fail the transaction is rolled back to the
// savepoint, the farm is marked ERROR, the failure is written to the job log and the transaction
// is committed, so a failed farm never keeps partial topic rows.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tigerroll/weekreport/internal/aggregate"
	"github.com/tigerroll/weekreport/internal/domain/model"
	"github.com/tigerroll/weekreport/internal/lifecycle"
	"github.com/tigerroll/weekreport/internal/period"
	"github.com/tigerroll/weekreport/internal/schedule"
	"github.com/tigerroll/weekreport/internal/store"
	"github.com/tigerroll/weekreport/pkg/metrics"
	"github.com/tigerroll/weekreport/pkg/support/exception"
	"github.com/tigerroll/weekreport/pkg/support/logger"
	"github.com/tigerroll/weekreport/pkg/tx"
)

const moduleName = "pipeline"

// savepointName marks the start of the work that is undone when a farm fails.
const savepointName = "farm_work"

// Options are the tunables of a farm run.
type Options struct {
	// LookbackDays is how far before the period start raw data is loaded.
	LookbackDays int
	// ForwardDays is the length of the forward projection window.
	ForwardDays int
	// TokenExpireDays is added to the run date to get the share token expiry.
	TokenExpireDays int
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{LookbackDays: 730, ForwardDays: 7, TokenExpireDays: 6}
}

// Job identifies one farm run.
type Job struct {
	MasterSeq int64
	Farm      model.Farm
	Period    model.ReportingPeriod
	Shared    *model.SharedContext
}

// Pipeline runs the farm report steps.
type Pipeline struct {
	opts     Options
	registry aggregate.Registry
	recorder metrics.MetricRecorder
	tracer   metrics.Tracer
	now      func() time.Time
}

// New creates a Pipeline. A nil registry means aggregate.Default(); nil recorder and tracer are no-ops.
func New(opts Options, registry aggregate.Registry, recorder metrics.MetricRecorder, tracer metrics.Tracer) *Pipeline {
	if registry == nil {
		registry = aggregate.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	if tracer == nil {
		tracer = metrics.NewNoOpTracer()
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = DefaultOptions().LookbackDays
	}
	if opts.ForwardDays <= 0 {
		opts.ForwardDays = DefaultOptions().ForwardDays
	}
	if opts.TokenExpireDays < 0 {
		opts.TokenExpireDays = DefaultOptions().TokenExpireDays
	}
	return &Pipeline{opts: opts, registry: registry, recorder: recorder, tracer: tracer, now: time.Now}
}

// Process runs the report of job.Farm on db, which should be a leased connection. The outcome is
// always returned as a FarmResult; errors are carried in FarmResult.Err.
func (p *Pipeline) Process(ctx context.Context, db *gorm.DB, job Job) model.FarmResult {
	start := p.now()
	farmNo := job.Farm.FarmNo
	result := model.FarmResult{
		MasterSeq: job.MasterSeq,
		FarmNo:    farmNo,
		Period:    job.Period,
		DtFrom:    job.Period.DtFrom(),
		DtTo:      job.Period.DtTo(),
	}

	ctx, endSpan := p.tracer.StartFarmSpan(ctx, farmNo)
	logger.Debugf("Farm %d: building report %s (job %d).", farmNo, job.Period.Key(), job.MasterSeq)

	err := p.process(ctx, db, job, &result)
	result.Elapsed = p.now().Sub(start)
	if err != nil {
		result.Status = model.FarmError
		result.Err = err
		result.ShareToken = ""
		result.RowCount = 0
		logger.Errorf("Farm %d: report %s failed: %v", farmNo, job.Period.Key(), err)
	} else {
		result.Status = model.FarmComplete
		logger.Infof("Farm %d: report %s complete (%d rows, %s).", farmNo, job.Period.Key(), result.RowCount, result.Elapsed)
	}
	p.recorder.RecordFarm(ctx, string(job.Period.DayGb), result.Status, result.Elapsed)
	endSpan(err)
	return result
}

func (p *Pipeline) process(ctx context.Context, db *gorm.DB, job Job, result *model.FarmResult) error {
	tm := tx.NewTransactionManager(db)
	t, err := tm.Begin(ctx)
	if err != nil {
		err = exception.NewReportError(moduleName, "failed to begin farm transaction", err)
		p.recordFailureOutside(ctx, db, job, "begin", err)
		return err
	}
	st := store.New(db).WithTx(t.DB())

	// 1. Clear the rows of a previous run and mark the farm running.
	if err := st.DeleteTopicRows(ctx, job.MasterSeq, job.Farm.FarmNo); err != nil {
		return p.abort(ctx, tm, t, db, job, "delete", err)
	}
	if err := st.SetFarmStatus(ctx, job.MasterSeq, job.Farm.FarmNo, model.FarmRunning); err != nil {
		return p.abort(ctx, tm, t, db, job, "running", err)
	}
	if err := t.Savepoint(savepointName); err != nil {
		return p.abort(ctx, tm, t, db, job, "savepoint", err)
	}

	// 2. Build and write every topic.
	rows, stage, buildErr := p.build(ctx, st, job)
	if buildErr != nil {
		if rbErr := t.RollbackToSavepoint(savepointName); rbErr != nil {
			return p.abort(ctx, tm, t, db, job, stage, fmt.Errorf("%w (rollback to savepoint failed: %v)", buildErr, rbErr))
		}
		if err := p.markFailed(ctx, st, job, stage, buildErr); err != nil {
			return p.abort(ctx, tm, t, db, job, stage, buildErr)
		}
		if err := tm.Commit(t); err != nil {
			logger.Errorf("Farm %d: failed to commit the error state: %v", job.Farm.FarmNo, err)
		}
		return buildErr
	}

	// 3. Summary, token and commit.
	token := p.shareToken(job.MasterSeq, job.Farm.FarmNo)
	expire := model.YMD(model.AddDays(p.today(job), p.opts.TokenExpireDays))
	if err := st.CompleteFarm(ctx, job.MasterSeq, job.Farm.FarmNo, aggregate.Summarize(rows), token, expire); err != nil {
		return p.abort(ctx, tm, t, db, job, "complete", err)
	}
	if err := tm.Commit(t); err != nil {
		err = exception.NewReportError(moduleName, "failed to commit farm report", err)
		p.recordFailureOutside(ctx, db, job, "commit", err)
		return err
	}
	result.ShareToken = token
	result.RowCount = len(rows)
	return nil
}

// build loads, derives, projects and aggregates. stage names the step that failed.
func (p *Pipeline) build(ctx context.Context, st *store.Store, job Job) (rows []model.TopicRow, stage string, err error) {
	stage = "load"
	defer func() {
		if r := recover(); r != nil {
			err = exception.NewReportErrorf(moduleName, "panic in %s: %v", stage, r)
			rows = nil
		}
	}()

	per := job.Period
	raw, err := st.LoadRawData(ctx, store.RawDataQuery{
		FarmNo:   job.Farm.FarmNo,
		From:     model.AddDays(per.From, -p.opts.LookbackDays),
		To:       per.To,
		Previous: period.Previous(per),
	})
	if err != nil {
		return nil, stage, err
	}

	stage = "derive"
	statuses := lifecycle.DeriveAll(raw.Animals, raw.Events, per.To)
	startStatuses := lifecycle.DeriveAll(raw.Animals, raw.Events, model.AddDays(per.From, -1))
	timelines := lifecycle.TimelineAll(raw.Animals, raw.Events, per.To)

	stage = "project"
	projections := schedule.Project(schedule.Input{
		Period:        per,
		Raw:           raw,
		Statuses:      statuses,
		StartStatuses: startStatuses,
		ForwardDays:   p.opts.ForwardDays,
	})

	shared := job.Shared
	if shared == nil {
		shared = &model.SharedContext{Today: p.today(job)}
	}
	in := aggregate.Input{
		Farm:          job.Farm,
		Period:        per,
		Raw:           raw,
		Statuses:      statuses,
		StartStatuses: startStatuses,
		Timelines:     timelines,
		Projections:   projections,
		Shared:        shared,
	}
	for _, agg := range p.registry {
		stage = "aggregate:" + agg.Topic()
		topicRows, err := p.aggregate(ctx, agg, in)
		if err != nil {
			return nil, stage, err
		}
		for i := range topicRows {
			topicRows[i].MasterSeq = job.MasterSeq
			topicRows[i].FarmNo = job.Farm.FarmNo
		}
		if err := st.InsertTopicRows(ctx, topicRows); err != nil {
			return nil, stage, err
		}
		rows = append(rows, topicRows...)
		in.Prior = rows
	}
	return rows, "", nil
}

func (p *Pipeline) aggregate(ctx context.Context, agg aggregate.Aggregator, in aggregate.Input) (rows []model.TopicRow, err error) {
	topic := agg.Topic()
	ctx, endSpan := p.tracer.StartTopicSpan(ctx, topic)
	start := p.now()
	defer func() {
		if r := recover(); r != nil {
			err = exception.NewReportErrorf(moduleName, "aggregator %s panicked: %v", topic, r)
			rows = nil
		}
		p.recorder.RecordTopic(ctx, topic, len(rows), p.now().Sub(start))
		endSpan(err)
	}()
	rows, err = agg.Aggregate(in)
	if err != nil {
		return nil, exception.NewReportErrorf(moduleName, "aggregator %s failed", topic, err)
	}
	return rows, nil
}

// markFailed records the failure inside the farm transaction.
func (p *Pipeline) markFailed(ctx context.Context, st *store.Store, job Job, stage string, cause error) error {
	if err := st.SetFarmStatus(ctx, job.MasterSeq, job.Farm.FarmNo, model.FarmError); err != nil {
		return err
	}
	return st.InsertJobLog(ctx, jobLog(job, stage, cause))
}

// abort rolls the whole transaction back and records the failure on a fresh one.
func (p *Pipeline) abort(ctx context.Context, tm tx.TransactionManager, t tx.Tx, db *gorm.DB, job Job, stage string, cause error) error {
	if err := tm.Rollback(t); err != nil {
		logger.Errorf("Farm %d: rollback failed: %v", job.Farm.FarmNo, err)
	}
	p.recordFailureOutside(ctx, db, job, stage, cause)
	return cause
}

// recordFailureOutside marks the farm ERROR without the farm transaction. Failures are only logged.
func (p *Pipeline) recordFailureOutside(ctx context.Context, db *gorm.DB, job Job, stage string, cause error) {
	st := store.New(db)
	if err := st.SetFarmStatus(ctx, job.MasterSeq, job.Farm.FarmNo, model.FarmError); err != nil {
		logger.Errorf("Farm %d: failed to mark ERROR: %v", job.Farm.FarmNo, err)
	}
	if err := st.InsertJobLog(ctx, jobLog(job, stage, cause)); err != nil {
		logger.Errorf("Farm %d: failed to write job log: %v", job.Farm.FarmNo, err)
	}
}

func jobLog(job Job, stage string, cause error) model.JobLog {
	return model.JobLog{
		MasterSeq: job.MasterSeq,
		FarmNo:    job.Farm.FarmNo,
		ProcNm:    moduleName + "." + stage,
		StatusCd:  model.FarmError,
		ErrorMsg:  exception.Truncate(exception.ExtractErrorMessage(cause), exception.MaxLogMessageLength),
	}
}

func (p *Pipeline) today(job Job) time.Time {
	if job.Shared != nil && !job.Shared.Today.IsZero() {
		return job.Shared.Today
	}
	now := p.now()
	return model.Date(now.Year(), now.Month(), now.Day())
}

// shareToken is the hex sha256 of "masterSeq-farmNo-timestamp-random".
func (p *Pipeline) shareToken(masterSeq int64, farmNo int) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	seed := fmt.Sprintf("%d-%d-%s-%s", masterSeq, farmNo, p.now().Format("20060102150405"), random)
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}
