package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/weekreport/internal/domain/model"
	"github.com/tigerroll/weekreport/internal/period"
	"github.com/tigerroll/weekreport/internal/store"
	"github.com/tigerroll/weekreport/internal/store/migrations"
	"github.com/tigerroll/weekreport/internal/store/storetest"
	"github.com/tigerroll/weekreport/pkg/migration"
)

var week45 = period.Week(model.Date(2024, 11, 6))

func TestMigrationsUpDown(t *testing.T) {
	db := storetest.Open(t, 1)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	m := migration.NewMigrator(sqlDB, "sqlite", "")

	v, ok, err := m.Version(migrations.FS, migrations.Dir)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint(1), v)
	assert.True(t, db.Migrator().HasTable("ts_ins_week_sub"))

	require.NoError(t, m.Down(migrations.FS, migrations.Dir))
	assert.False(t, db.Migrator().HasTable("ts_ins_week_sub"))

	require.NoError(t, m.Up(migrations.FS, migrations.Dir))
	assert.True(t, db.Migrator().HasTable("ts_ins_week_sub"))
}

func TestScheduleEnabled(t *testing.T) {
	ctx := context.Background()
	db := storetest.Open(t, 1)
	s := store.New(db)

	on, err := s.ScheduleEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, on, "missing flag enables the batch")

	storetest.Seed(t, db, &store.SysConfigRow{Seq: 1, InsScheduleYn: "N"})
	on, err = s.ScheduleEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, db.Model(&store.SysConfigRow{}).Where("seq = 1").Update("ins_schedule_yn", "T").Error)
	on, err = s.ScheduleEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, on)
}

func TestUpsertJobReusesRecord(t *testing.T) {
	ctx := context.Background()
	s := store.New(storetest.Open(t, 1))

	first, err := s.UpsertJob(ctx, week45, "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobPending, first.StatusCd)
	assert.Equal(t, "20241104", first.DtFrom)

	require.NoError(t, s.MarkJobRunning(ctx, first.Seq, 5, time.Now()))
	require.NoError(t, s.FinishJob(ctx, first.Seq, store.JobCounts{Target: 5, Complete: 4, Error: 1}, time.Now(), 3*time.Second))

	done, err := s.GetJob(ctx, first.Seq)
	require.NoError(t, err)
	assert.Equal(t, model.JobError, done.StatusCd)
	assert.Equal(t, 3, done.ElapsedSec)

	again, err := s.UpsertJob(ctx, week45, "run-2")
	require.NoError(t, err)
	assert.Equal(t, first.Seq, again.Seq)
	assert.Equal(t, model.JobPending, again.StatusCd)
	assert.Zero(t, again.ErrorCnt)
	assert.Nil(t, again.EndDt)
	assert.Equal(t, "run-2", again.RunID)

	missing, err := s.FindJob(ctx, period.Previous(week45))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func seedFarms(t *testing.T, s *store.Store) {
	storetest.Seed(t, s.DB(),
		&store.FarmRow{FarmNo: 101, FarmNm: "Green", OwnerNm: "Kim", SigunguCd: "41", UseYn: "Y"},
		&store.FarmRow{FarmNo: 102, FarmNm: "Hill", OwnerNm: "Lee", SigunguCd: "42", UseYn: "Y"},
		&store.FarmRow{FarmNo: 103, FarmNm: "Expired", UseYn: "Y"},
		&store.FarmRow{FarmNo: 104, FarmNm: "Late", UseYn: "Y"},
		&store.FarmRow{FarmNo: 105, FarmNm: "Off", UseYn: "Y"},
		&store.FarmRow{FarmNo: 106, FarmNm: "PM group", UseYn: "Y"},
		&store.ServiceRow{FarmNo: 101, UseYn: "Y", StartDt: "20240101"},
		&store.ServiceRow{FarmNo: 102, UseYn: "Y"},
		&store.ServiceRow{FarmNo: 103, UseYn: "Y", EndDt: "20241031"},
		&store.ServiceRow{FarmNo: 104, UseYn: "Y", StartDt: "20241201"},
		&store.ServiceRow{FarmNo: 105, UseYn: "N"},
		&store.ServiceRow{FarmNo: 106, UseYn: "Y", ScheduleGroup: "PM2"},
	)
}

func farmNos(farms []model.Farm) []int {
	out := make([]int, len(farms))
	for i, f := range farms {
		out[i] = f.FarmNo
	}
	return out
}

func TestListTargetFarms(t *testing.T) {
	ctx := context.Background()
	s := store.New(storetest.Open(t, 1))
	seedFarms(t, s)

	all, err := s.ListTargetFarms(ctx, week45, store.FarmFilter{DefaultGroup: "AM7"})
	require.NoError(t, err)
	assert.Equal(t, []int{101, 102, 106}, farmNos(all))
	assert.Equal(t, "AM7", all[0].ScheduleGroup)
	assert.Equal(t, "Green", all[0].FarmNm)

	included, err := s.ListTargetFarms(ctx, week45, store.FarmFilter{Include: []int{102, 103, 106}, Exclude: []int{106}, DefaultGroup: "AM7"})
	require.NoError(t, err)
	assert.Equal(t, []int{102}, farmNos(included))

	pm, err := s.ListTargetFarms(ctx, week45, store.FarmFilter{ScheduleGroup: "PM2", DefaultGroup: "AM7"})
	require.NoError(t, err)
	assert.Equal(t, []int{106}, farmNos(pm))

	farm, ok, err := s.FindFarm(ctx, 105, "AM7")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Off", farm.FarmNm)

	_, ok, err = s.FindFarm(ctx, 999, "AM7")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPlaceholdersAndCompletion(t *testing.T) {
	ctx := context.Background()
	s := store.New(storetest.Open(t, 1))
	job, err := s.UpsertJob(ctx, week45, "run")
	require.NoError(t, err)

	farms := []model.Farm{{FarmNo: 101, FarmNm: "Green", ScheduleGroup: "AM7"}, {FarmNo: 102, FarmNm: "Hill", ScheduleGroup: "AM7"}}
	require.NoError(t, s.UpsertPlaceholders(ctx, job.Seq, farms))

	farms[0].FarmNm = "Green Renamed"
	require.NoError(t, s.SetFarmStatus(ctx, job.Seq, 101, model.FarmComplete))
	require.NoError(t, s.UpsertPlaceholders(ctx, job.Seq, farms))

	recs, err := s.FarmReports(ctx, job.Seq)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Green Renamed", recs[0].FarmNm)
	assert.Equal(t, model.FarmReady, recs[0].StatusCd)

	sum := model.FarmSummary{ModonCnt: 120, LastGbCnt: 7, LastShipPrice: 5300.5}
	require.NoError(t, s.CompleteFarm(ctx, job.Seq, 101, sum, "tok", "20241117"))
	require.NoError(t, s.SetFarmStatus(ctx, job.Seq, 102, model.FarmError))

	rec, err := s.FarmReport(ctx, job.Seq, 101)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, model.FarmComplete, rec.StatusCd)
	assert.Equal(t, 120, rec.ModonCnt)
	assert.InDelta(t, 5300.5, rec.LastShipPrice, 1e-9)
	assert.Equal(t, "tok", rec.ShareToken)

	counts, err := s.CountFarmStatuses(ctx, job.Seq)
	require.NoError(t, err)
	assert.Equal(t, store.JobCounts{Target: 2, Complete: 1, Error: 1}, counts)
	assert.Equal(t, model.JobError, counts.Status())
}

func TestRefreshJobCountsKeepsStatusUntilSettled(t *testing.T) {
	ctx := context.Background()
	s := store.New(storetest.Open(t, 1))
	job, err := s.UpsertJob(ctx, week45, "run")
	require.NoError(t, err)
	require.NoError(t, s.MarkJobRunning(ctx, job.Seq, 3, time.Now()))

	pending := store.JobCounts{Target: 3, Complete: 1}
	assert.False(t, pending.Settled())
	require.NoError(t, s.RefreshJobCounts(ctx, job.Seq, pending))
	got, err := s.GetJob(ctx, job.Seq)
	require.NoError(t, err)
	assert.Equal(t, model.JobRunning, got.StatusCd)
	assert.Equal(t, 1, got.CompleteCnt)

	settled := store.JobCounts{Target: 3, Complete: 2, Error: 1}
	assert.True(t, settled.Settled())
	require.NoError(t, s.RefreshJobCounts(ctx, job.Seq, settled))
	got, err = s.GetJob(ctx, job.Seq)
	require.NoError(t, err)
	assert.Equal(t, model.JobError, got.StatusCd)
	assert.Equal(t, 1, got.ErrorCnt)
}

func TestTopicRowsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.New(storetest.Open(t, 1))

	r1 := model.NewTopicRow("GB", "-", 1)
	r1.MasterSeq, r1.FarmNo, r1.Cnt1, r1.Val1 = 1, 101, 4, model.Float(80)
	r2 := model.NewTopicRow("BM", "-", 1)
	r2.MasterSeq, r2.FarmNo = 1, 101
	require.NoError(t, s.InsertTopicRows(ctx, []model.TopicRow{r1, r2}))

	rows, err := s.TopicRows(ctx, 1, 101)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "BM", rows[0].Gubun)
	assert.Nil(t, rows[0].Val1, "NULL survives the round trip")
	require.NotNil(t, rows[1].Val1)
	assert.InDelta(t, 80.0, *rows[1].Val1, 1e-9)

	require.NoError(t, s.DeleteTopicRows(ctx, 1, 101))
	rows, err = s.TopicRows(ctx, 1, 101)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLoadRawData(t *testing.T) {
	ctx := context.Background()
	db := storetest.Open(t, 1)
	s := store.New(db)

	prev := period.Previous(week45)
	prevJob, err := s.UpsertJob(ctx, prev, "prev")
	require.NoError(t, err)
	sched := model.NewTopicRow("SCHEDULE", "-", 1)
	sched.MasterSeq, sched.FarmNo, sched.Cnt1, sched.Str1 = prevJob.Seq, 101, 3, "20241104"
	other := model.NewTopicRow("GB", "-", 1)
	other.MasterSeq, other.FarmNo = prevJob.Seq, 101
	require.NoError(t, s.InsertTopicRows(ctx, []model.TopicRow{sched, other}))

	storetest.Seed(t, db,
		&store.AnimalRow{PigNo: 1, FarmNo: 101, FarmPigNo: "A1", BirthDt: "20230101", InDt: "20230601"},
		&store.AnimalRow{PigNo: 2, FarmNo: 101, FarmPigNo: "A2", InDt: "20230601", OutDt: "20200101"},
		&store.AnimalRow{PigNo: 3, FarmNo: 102, FarmPigNo: "B1", InDt: "20230601"},
		&store.EventRow{FarmNo: 101, PigNo: 1, Seq: 1, WkGubun: "G", WkDt: "20241105"},
		&store.EventRow{FarmNo: 101, PigNo: 1, Seq: 2, WkGubun: "B", WkDt: "20241201"},
		&store.ShipRow{FarmNo: 101, ShipDt: "20241106", Dusu: 10, TotalKg: 880, Price: 5000},
		&store.FarmConfigRow{FarmNo: 101, Code: model.ConfGestation, Value: 114},
		&store.InsConfRow{FarmNo: 101, ConfKey: "mating", ConfJSON: `{"method":"modon","tasks":[]}`},
		&store.InsConfRow{FarmNo: 101, ConfKey: "weaning", ConfJSON: `not json`},
		&store.InsConfRow{FarmNo: 101, ConfKey: "farrowing", ConfJSON: `{"method":"farm"}`},
		&store.PlanTaskRow{FarmNo: 101, Seq: 1, WkNm: "re-mating", JobGubunCd: "150005", BaseStatusCd: "010005", PassDay: 5, UseYn: "Y"},
	)

	raw, err := s.LoadRawData(ctx, store.RawDataQuery{
		FarmNo:   101,
		From:     model.Date(2022, 11, 10),
		To:       week45.To,
		Previous: prev,
	})
	require.NoError(t, err)

	require.Len(t, raw.Animals, 1, "animals gone before the lookback are skipped")
	assert.Equal(t, model.Date(2023, 1, 1), raw.Animals[0].BirthDt)
	assert.True(t, raw.Animals[0].OutDt.IsZero())
	require.Len(t, raw.Events, 1, "events after the period end are not loaded")
	assert.Equal(t, model.EventMating, raw.Events[0].WkGubun)
	require.Len(t, raw.Shipments, 1)
	assert.Equal(t, 114, raw.Config.Gestation)
	assert.Equal(t, 21, raw.Config.Lactation)

	gb := raw.Methods[model.KindMating]
	assert.Equal(t, model.MethodModon, gb.Method)
	assert.NotNil(t, gb.Tasks)
	assert.Empty(t, gb.Tasks)
	assert.Equal(t, model.MethodFarm, raw.Methods[model.KindFarrowing].Method)
	assert.Nil(t, raw.Methods[model.KindFarrowing].Tasks)
	assert.Equal(t, model.MethodModon, raw.Methods[model.KindWeaning].Method, "unreadable setting keeps the default")

	require.Len(t, raw.Tasks, 1)
	require.Len(t, raw.PreviousSchedule, 1)
	assert.Equal(t, 3, raw.PreviousSchedule[0].Cnt1)
}

func TestNationalAvgPrice(t *testing.T) {
	ctx := context.Background()
	db := storetest.Open(t, 1)
	s := store.New(db)

	price, err := s.NationalAvgPrice(ctx, week45.From, week45.To)
	require.NoError(t, err)
	assert.Zero(t, price)

	storetest.Seed(t, db,
		&store.MarketPriceRow{MarketDt: "20241104", Dusu: 100, AvgPrice: 5000},
		&store.MarketPriceRow{MarketDt: "20241105", Dusu: 300, AvgPrice: 5400},
		&store.MarketPriceRow{MarketDt: "20241111", Dusu: 999, AvgPrice: 1},
	)
	price, err = s.NationalAvgPrice(ctx, week45.From, week45.To)
	require.NoError(t, err)
	assert.InDelta(t, 5300.0, price, 1e-9)
}

func TestJobLogs(t *testing.T) {
	ctx := context.Background()
	s := store.New(storetest.Open(t, 1))
	require.NoError(t, s.InsertJobLog(ctx, model.JobLog{MasterSeq: 1, FarmNo: 101, ProcNm: "pipeline", StatusCd: model.FarmError, ErrorMsg: "boom"}))

	logs, err := s.JobLogs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "boom", logs[0].ErrorMsg)
	assert.False(t, logs[0].LogDt.IsZero())
}
