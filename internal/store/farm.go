package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tigerroll/weekreport/internal/domain/model"
)

// FarmFilter narrows the target farms of a pass.
type FarmFilter struct {
	Include []int
	Exclude []int
	// ScheduleGroup keeps only farms of that group. Farms without a group belong to DefaultGroup.
	ScheduleGroup string
	DefaultGroup  string
}

type farmSnapshotRow struct {
	FarmNo        int
	FarmNm        string
	OwnerNm       string
	SigunguCd     string
	ScheduleGroup string
}

func (s *Store) farmQuery(ctx context.Context) *gorm.DB {
	return s.conn(ctx).Table("ta_farm AS f").
		Select("f.farm_no, f.farm_nm, f.owner_nm, f.sigungu_cd, COALESCE(s.schedule_group, '') AS schedule_group").
		Joins("JOIN ts_ins_service s ON s.farm_no = f.farm_no")
}

// ListTargetFarms returns the service-enabled farms whose service window covers the period end,
// ordered by farm number.
func (s *Store) ListTargetFarms(ctx context.Context, p model.ReportingPeriod, f FarmFilter) ([]model.Farm, error) {
	const op = "Store.ListTargetFarms"
	dtTo := p.DtTo()
	q := s.farmQuery(ctx).
		Where("s.use_yn = ? AND f.use_yn = ?", "Y", "Y").
		Where("(s.start_dt = '' OR s.start_dt <= ?)", dtTo).
		Where("(s.end_dt = '' OR s.end_dt >= ?)", dtTo)
	if len(f.Include) > 0 {
		q = q.Where("f.farm_no IN ?", f.Include)
	}
	if len(f.Exclude) > 0 {
		q = q.Where("f.farm_no NOT IN ?", f.Exclude)
	}
	var rows []farmSnapshotRow
	if err := q.Order("f.farm_no").Scan(&rows).Error; err != nil {
		return nil, wrap(op, err, "failed to list target farms for %s", p.Key())
	}

	seen := make(map[int]bool, len(rows))
	farms := make([]model.Farm, 0, len(rows))
	for _, r := range rows {
		farm := toFarm(r, f.DefaultGroup)
		if seen[farm.FarmNo] {
			continue
		}
		if f.ScheduleGroup != "" && farm.ScheduleGroup != f.ScheduleGroup {
			continue
		}
		seen[farm.FarmNo] = true
		farms = append(farms, farm)
	}
	return farms, nil
}

// FindFarm returns the snapshot of one farm regardless of its service state. ok is false when the
// farm does not exist.
func (s *Store) FindFarm(ctx context.Context, farmNo int, defaultGroup string) (model.Farm, bool, error) {
	const op = "Store.FindFarm"
	var rows []farmSnapshotRow
	err := s.conn(ctx).Table("ta_farm AS f").
		Select("f.farm_no, f.farm_nm, f.owner_nm, f.sigungu_cd, COALESCE(s.schedule_group, '') AS schedule_group").
		Joins("LEFT JOIN ts_ins_service s ON s.farm_no = f.farm_no").
		Where("f.farm_no = ?", farmNo).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return model.Farm{}, false, wrap(op, err, "failed to read farm %d", farmNo)
	}
	if len(rows) == 0 {
		return model.Farm{}, false, nil
	}
	return toFarm(rows[0], defaultGroup), true, nil
}

func toFarm(r farmSnapshotRow, defaultGroup string) model.Farm {
	group := r.ScheduleGroup
	if group == "" {
		group = defaultGroup
	}
	return model.Farm{
		FarmNo:        r.FarmNo,
		FarmNm:        r.FarmNm,
		OwnerNm:       r.OwnerNm,
		SigunguCd:     r.SigunguCd,
		ScheduleGroup: group,
	}
}

// UpsertPlaceholders creates or refreshes the READY report record of every farm in one transaction.
func (s *Store) UpsertPlaceholders(ctx context.Context, masterSeq int64, farms []model.Farm) error {
	const op = "Store.UpsertPlaceholders"
	if len(farms) == 0 {
		return nil
	}
	now := s.now()
	records := make([]model.FarmReportRecord, len(farms))
	for i, f := range farms {
		records[i] = model.FarmReportRecord{
			MasterSeq:     masterSeq,
			FarmNo:        f.FarmNo,
			FarmNm:        f.FarmNm,
			OwnerNm:       f.OwnerNm,
			SigunguCd:     f.SigunguCd,
			ScheduleGroup: f.ScheduleGroup,
			StatusCd:      model.FarmReady,
			UpdDt:         now,
		}
	}
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "master_seq"}, {Name: "farm_no"}},
			DoUpdates: clause.AssignmentColumns([]string{"farm_nm", "owner_nm", "sigungu_cd", "schedule_group", "status_cd", "upd_dt"}),
		}).CreateInBatches(records, 200).Error
	})
	return wrap(op, err, "failed to create report placeholders for job %d", masterSeq)
}

// SetFarmStatus changes the status of a farm report record.
func (s *Store) SetFarmStatus(ctx context.Context, masterSeq int64, farmNo int, status string) error {
	const op = "Store.SetFarmStatus"
	err := s.conn(ctx).Model(&model.FarmReportRecord{}).
		Where("master_seq = ? AND farm_no = ?", masterSeq, farmNo).
		Updates(map[string]interface{}{"status_cd": status, "upd_dt": s.now()}).Error
	return wrap(op, err, "failed to set farm %d of job %d to %s", farmNo, masterSeq, status)
}

// CompleteFarm stores the summary and share token of a finished farm.
func (s *Store) CompleteFarm(ctx context.Context, masterSeq int64, farmNo int, sum model.FarmSummary, token, expireDt string) error {
	const op = "Store.CompleteFarm"
	updates := summaryColumns(sum)
	updates["status_cd"] = model.FarmComplete
	updates["share_token"] = token
	updates["token_expire_dt"] = expireDt
	updates["upd_dt"] = s.now()
	err := s.conn(ctx).Model(&model.FarmReportRecord{}).
		Where("master_seq = ? AND farm_no = ?", masterSeq, farmNo).
		Updates(updates).Error
	return wrap(op, err, "failed to complete farm %d of job %d", farmNo, masterSeq)
}

// FarmReport returns one farm report record, or nil.
func (s *Store) FarmReport(ctx context.Context, masterSeq int64, farmNo int) (*model.FarmReportRecord, error) {
	const op = "Store.FarmReport"
	var rec model.FarmReportRecord
	err := s.conn(ctx).Where("master_seq = ? AND farm_no = ?", masterSeq, farmNo).Take(&rec).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(op, err, "failed to read farm %d of job %d", farmNo, masterSeq)
	}
	return &rec, nil
}

// FarmReports returns every report record of a job ordered by farm.
func (s *Store) FarmReports(ctx context.Context, masterSeq int64) ([]model.FarmReportRecord, error) {
	const op = "Store.FarmReports"
	var recs []model.FarmReportRecord
	err := s.conn(ctx).Where("master_seq = ?", masterSeq).Order("farm_no").Find(&recs).Error
	return recs, wrap(op, err, "failed to read farm reports of job %d", masterSeq)
}

// DeleteTopicRows removes every topic row of a farm in a job.
func (s *Store) DeleteTopicRows(ctx context.Context, masterSeq int64, farmNo int) error {
	const op = "Store.DeleteTopicRows"
	err := s.conn(ctx).Where("master_seq = ? AND farm_no = ?", masterSeq, farmNo).Delete(&model.TopicRow{}).Error
	return wrap(op, err, "failed to delete topic rows of farm %d", farmNo)
}

// InsertTopicRows writes topic rows.
func (s *Store) InsertTopicRows(ctx context.Context, rows []model.TopicRow) error {
	const op = "Store.InsertTopicRows"
	if len(rows) == 0 {
		return nil
	}
	return wrap(op, s.conn(ctx).CreateInBatches(rows, 100).Error, "failed to insert %d topic rows", len(rows))
}

// TopicRows returns the rows of a farm in a job in a stable order.
func (s *Store) TopicRows(ctx context.Context, masterSeq int64, farmNo int) ([]model.TopicRow, error) {
	const op = "Store.TopicRows"
	var rows []model.TopicRow
	err := s.conn(ctx).
		Where("master_seq = ? AND farm_no = ?", masterSeq, farmNo).
		Order("gubun, sub_gubun, sort_no").
		Find(&rows).Error
	return rows, wrap(op, err, "failed to read topic rows of farm %d", farmNo)
}

// JobTopicRows returns every row of a job ordered by farm.
func (s *Store) JobTopicRows(ctx context.Context, masterSeq int64) ([]model.TopicRow, error) {
	const op = "Store.JobTopicRows"
	var rows []model.TopicRow
	err := s.conn(ctx).
		Where("master_seq = ?", masterSeq).
		Order("farm_no, gubun, sub_gubun, sort_no").
		Find(&rows).Error
	return rows, wrap(op, err, "failed to read topic rows of job %d", masterSeq)
}

func summaryColumns(sum model.FarmSummary) map[string]interface{} {
	return map[string]interface{}{
		"modon_cnt":        sum.ModonCnt,
		"last_gb_cnt":      sum.LastGbCnt,
		"last_gb_sum":      sum.LastGbSum,
		"last_bm_cnt":      sum.LastBmCnt,
		"last_bm_live_avg": sum.LastBmLiveAvg,
		"last_eu_cnt":      sum.LastEuCnt,
		"last_eu_sum":      sum.LastEuSum,
		"last_sg_cnt":      sum.LastSgCnt,
		"last_cull_cnt":    sum.LastCullCnt,
		"last_ship_cnt":    sum.LastShipCnt,
		"last_ship_price":  sum.LastShipPrice,
		"alert_cnt":        sum.AlertCnt,
		"this_gb_sum":      sum.ThisGbSum,
		"this_bm_sum":      sum.ThisBmSum,
		"this_eu_sum":      sum.ThisEuSum,
		"this_vc_sum":      sum.ThisVcSum,
		"this_im_sum":      sum.ThisImSum,
	}
}
