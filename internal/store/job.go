package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tigerroll/weekreport/internal/domain/model"
)

// UpsertJob returns the job of period p, creating it or resetting it to PENDING.
func (s *Store) UpsertJob(ctx context.Context, p model.ReportingPeriod, runID string) (*model.JobRecord, error) {
	const op = "Store.UpsertJob"
	var rec model.JobRecord
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("day_gb = ? AND report_year = ? AND report_no = ?", string(p.DayGb), p.Year, p.No).Take(&rec).Error
		if notFound(err) {
			rec = model.JobRecord{
				DayGb:      string(p.DayGb),
				ReportYear: p.Year,
				ReportNo:   p.No,
				DtFrom:     p.DtFrom(),
				DtTo:       p.DtTo(),
				StatusCd:   model.JobPending,
				RunID:      runID,
			}
			return tx.Create(&rec).Error
		}
		if err != nil {
			return err
		}
		updates := map[string]interface{}{
			"dt_from":      p.DtFrom(),
			"dt_to":        p.DtTo(),
			"status_cd":    model.JobPending,
			"target_cnt":   0,
			"complete_cnt": 0,
			"error_cnt":    0,
			"start_dt":     nil,
			"end_dt":       nil,
			"elapsed_sec":  0,
			"run_id":       runID,
		}
		if err := tx.Model(&model.JobRecord{}).Where("seq = ?", rec.Seq).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("seq = ?", rec.Seq).Take(&rec).Error
	})
	if err != nil {
		return nil, wrap(op, err, "failed to upsert job for %s", p.Key())
	}
	return &rec, nil
}

// FindJob returns the job of period p, or nil when none exists.
func (s *Store) FindJob(ctx context.Context, p model.ReportingPeriod) (*model.JobRecord, error) {
	const op = "Store.FindJob"
	var rec model.JobRecord
	err := s.conn(ctx).Where("day_gb = ? AND report_year = ? AND report_no = ?", string(p.DayGb), p.Year, p.No).Take(&rec).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(op, err, "failed to read job for %s", p.Key())
	}
	return &rec, nil
}

// GetJob returns the job with the given sequence.
func (s *Store) GetJob(ctx context.Context, seq int64) (*model.JobRecord, error) {
	const op = "Store.GetJob"
	var rec model.JobRecord
	if err := s.conn(ctx).Where("seq = ?", seq).Take(&rec).Error; err != nil {
		return nil, wrap(op, err, "failed to read job %d", seq)
	}
	return &rec, nil
}

// MarkJobRunning records the start of a pass.
func (s *Store) MarkJobRunning(ctx context.Context, seq int64, target int, start time.Time) error {
	const op = "Store.MarkJobRunning"
	err := s.conn(ctx).Model(&model.JobRecord{}).Where("seq = ?", seq).Updates(map[string]interface{}{
		"status_cd":  model.JobRunning,
		"target_cnt": target,
		"start_dt":   start,
	}).Error
	return wrap(op, err, "failed to mark job %d running", seq)
}

// JobCounts are the farm outcomes of a job.
type JobCounts struct {
	Target   int
	Complete int
	Error    int
}

// Status is COMPLETE when no farm failed, ERROR otherwise.
func (c JobCounts) Status() string {
	if c.Error == 0 {
		return model.JobComplete
	}
	return model.JobError
}

// Settled reports whether every target farm reached COMPLETE or ERROR.
func (c JobCounts) Settled() bool {
	return c.Complete+c.Error >= c.Target
}

// FinishJob stores the final counts and status of a job.
func (s *Store) FinishJob(ctx context.Context, seq int64, counts JobCounts, end time.Time, elapsed time.Duration) error {
	const op = "Store.FinishJob"
	err := s.conn(ctx).Model(&model.JobRecord{}).Where("seq = ?", seq).Updates(map[string]interface{}{
		"status_cd":    counts.Status(),
		"target_cnt":   counts.Target,
		"complete_cnt": counts.Complete,
		"error_cnt":    counts.Error,
		"end_dt":       end,
		"elapsed_sec":  int(elapsed.Seconds()),
	}).Error
	return wrap(op, err, "failed to finish job %d", seq)
}

// CountFarmStatuses counts the farm report records of a job by status.
func (s *Store) CountFarmStatuses(ctx context.Context, masterSeq int64) (JobCounts, error) {
	const op = "Store.CountFarmStatuses"
	var rows []struct {
		StatusCd string
		Cnt      int
	}
	err := s.conn(ctx).Model(&model.FarmReportRecord{}).
		Select("status_cd, COUNT(*) AS cnt").
		Where("master_seq = ?", masterSeq).
		Group("status_cd").
		Scan(&rows).Error
	if err != nil {
		return JobCounts{}, wrap(op, err, "failed to count farms of job %d", masterSeq)
	}
	var c JobCounts
	for _, r := range rows {
		c.Target += r.Cnt
		switch r.StatusCd {
		case model.FarmComplete:
			c.Complete += r.Cnt
		case model.FarmError:
			c.Error += r.Cnt
		}
	}
	return c, nil
}

// InsertJobLog appends an error record.
func (s *Store) InsertJobLog(ctx context.Context, log model.JobLog) error {
	const op = "Store.InsertJobLog"
	if log.LogDt.IsZero() {
		log.LogDt = s.now()
	}
	return wrap(op, s.conn(ctx).Create(&log).Error, "failed to write job log for farm %d", log.FarmNo)
}

// JobLogs returns the error records of a job, oldest first.
func (s *Store) JobLogs(ctx context.Context, masterSeq int64) ([]model.JobLog, error) {
	const op = "Store.JobLogs"
	var logs []model.JobLog
	err := s.conn(ctx).Where("master_seq = ?", masterSeq).Order("seq").Find(&logs).Error
	return logs, wrap(op, err, "failed to read job logs of job %d", masterSeq)
}

// RefreshJobCounts rewrites the counts of a job, leaving its timestamps alone. The status is only
// rewritten once counts are settled; a job with READY or RUNNING farms keeps its status.
func (s *Store) RefreshJobCounts(ctx context.Context, seq int64, counts JobCounts) error {
	const op = "Store.RefreshJobCounts"
	updates := map[string]interface{}{
		"target_cnt":   counts.Target,
		"complete_cnt": counts.Complete,
		"error_cnt":    counts.Error,
	}
	if counts.Settled() {
		updates["status_cd"] = counts.Status()
	}
	err := s.conn(ctx).Model(&model.JobRecord{}).Where("seq = ?", seq).Updates(updates).Error
	return wrap(op, err, "failed to refresh counts of job %d", seq)
}
