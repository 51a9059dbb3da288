package aggregate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/weekreport/internal/aggregate"
	"github.com/tigerroll/weekreport/internal/domain/model"
	"github.com/tigerroll/weekreport/internal/lifecycle"
	"github.com/tigerroll/weekreport/internal/period"
	"github.com/tigerroll/weekreport/internal/schedule"
)

var week45 = period.Week(model.Date(2024, 11, 6))

func d(m time.Month, day int) time.Time { return model.Date(2024, m, day) }

func sow(pigNo int64, farmPigNo string, inSancha int) model.Animal {
	return model.Animal{PigNo: pigNo, FarmNo: 101, FarmPigNo: farmPigNo, BirthDt: model.Date(2023, 1, 1), InDt: model.Date(2023, 6, 1), InSancha: inSancha}
}

// fixture: a small herd with activity inside week 45 (2024-11-04 .. 2024-11-10).
func fixture() *model.RawData {
	return &model.RawData{
		Animals: []model.Animal{
			sow(1, "A-1", 1), // weaned 10-28, mated 11-04: after weaning, 7 days return
			sow(2, "A-2", 0), // candidate mated 11-05
			sow(3, "A-3", 1), // mated 07-15, farrowed 11-06
			sow(4, "A-4", 2), // farrowed 10-10, weaned 11-07
			sow(5, "A-5", 1), // mated 10-01, abortion 11-08
			sow(6, "A-6", 1), // culled 11-09
			{PigNo: 7, FarmNo: 101, FarmPigNo: "A-7", BirthDt: model.Date(2023, 1, 1), InDt: model.Date(2023, 6, 1), OutDt: d(11, 10)},
		},
		Events: []model.Event{
			{PigNo: 1, Seq: 1, WkGubun: model.EventWeaning, WkDate: d(10, 28), EuDusu: 10, EuKg: 70},
			{PigNo: 1, Seq: 2, WkGubun: model.EventMating, WkDate: d(11, 4)},
			{PigNo: 2, Seq: 1, WkGubun: model.EventMating, WkDate: d(11, 5)},
			{PigNo: 3, Seq: 1, WkGubun: model.EventMating, WkDate: d(7, 15)},
			{PigNo: 3, Seq: 2, WkGubun: model.EventFarrowing, WkDate: d(11, 6), Silsan: 12, Sasan: 1, Mila: 1},
			{PigNo: 4, Seq: 1, WkGubun: model.EventFarrowing, WkDate: d(10, 10), Silsan: 11},
			{PigNo: 4, Seq: 2, WkGubun: model.EventWeaning, WkDate: d(11, 7), EuDusu: 11, EuKg: 77},
			{PigNo: 5, Seq: 1, WkGubun: model.EventMating, WkDate: d(10, 1)},
			{PigNo: 5, Seq: 2, WkGubun: model.EventIncident, WkDate: d(11, 8), SagoGubunCd: model.IncidentAbortion},
			{PigNo: 6, Seq: 1, WkGubun: model.EventCull, WkDate: d(11, 9), OutReasonCd: "LEG"},
		},
		Shipments: []model.Shipment{
			{FarmNo: 101, ShipDt: d(11, 5), Dusu: 10, TotalKg: 880, Price: 5000, Grade1PlusDusu: 6},
			{FarmNo: 101, ShipDt: d(11, 8), Dusu: 30, TotalKg: 2640, Price: 5400, Grade1PlusDusu: 12},
			{FarmNo: 101, ShipDt: d(11, 12), Dusu: 99, TotalKg: 1, Price: 1},
		},
		Config:  model.DefaultFarmConfig(),
		Methods: map[model.Kind]model.MethodConf{model.KindMating: {Method: model.MethodFarm}},
	}
}

func buildInput(raw *model.RawData) aggregate.Input {
	dayBefore := week45.From.AddDate(0, 0, -1)
	in := aggregate.Input{
		Farm:          model.Farm{FarmNo: 101, FarmNm: "farm"},
		Period:        week45,
		Raw:           raw,
		Statuses:      lifecycle.DeriveAll(raw.Animals, raw.Events, week45.To),
		StartStatuses: lifecycle.DeriveAll(raw.Animals, raw.Events, dayBefore),
		Timelines:     lifecycle.TimelineAll(raw.Animals, raw.Events, week45.To),
		Shared:        &model.SharedContext{NationalAvgPrice: 5200},
	}
	in.Projections = schedule.Project(schedule.Input{
		Period: week45, Raw: raw, Statuses: in.Statuses, StartStatuses: in.StartStatuses, ForwardDays: 7,
	})
	return in
}

func runAll(t *testing.T, in aggregate.Input) []model.TopicRow {
	t.Helper()
	for _, a := range aggregate.Default() {
		rows, err := a.Aggregate(in)
		require.NoError(t, err, a.Topic())
		in.Prior = append(in.Prior, rows...)
	}
	return in.Prior
}

func summaryOf(t *testing.T, rows []model.TopicRow, gubun string) model.TopicRow {
	t.Helper()
	for _, r := range rows {
		if r.Gubun == gubun && r.SubGubun == aggregate.SubSummary {
			return r
		}
	}
	t.Fatalf("no summary row for %s", gubun)
	return model.TopicRow{}
}

func TestRegistryOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"CONFIG", "ALERT", "MODON", "GB", "BM", "EU", "SG", "CULL", "SHIP", "SCHEDULE"},
		aggregate.Default().Topics())
}

func TestAggregatorsOnFixture(t *testing.T) {
	rows := runAll(t, buildInput(fixture()))

	cfg := summaryOf(t, rows, aggregate.TopicConfig)
	assert.Equal(t, 115, cfg.Cnt1)
	assert.Equal(t, "farm", cfg.Str1)
	assert.Equal(t, "modon", cfg.Str2)

	gb := summaryOf(t, rows, aggregate.TopicMating)
	assert.Equal(t, 2, gb.Cnt1)
	assert.Equal(t, 1, gb.Cnt2) // candidate
	assert.Equal(t, 1, gb.Cnt3) // after weaning
	assert.Equal(t, 4, gb.Cnt7) // year to date: 07-15, 10-01, 11-04, 11-05
	require.NotNil(t, gb.Val2)
	assert.InDelta(t, 7.0, *gb.Val2, 1e-9)

	bm := summaryOf(t, rows, aggregate.TopicFarrow)
	assert.Equal(t, 1, bm.Cnt1)
	assert.Equal(t, 14, bm.Cnt2)
	assert.Equal(t, 12, bm.Cnt3)
	require.NotNil(t, bm.Val2)
	assert.InDelta(t, 12.0, *bm.Val2, 1e-9)
	require.NotNil(t, bm.Val4)
	assert.InDelta(t, 114.0, *bm.Val4, 1e-9)

	eu := summaryOf(t, rows, aggregate.TopicWeaning)
	assert.Equal(t, 1, eu.Cnt1)
	assert.Equal(t, 11, eu.Cnt2)
	require.NotNil(t, eu.Val2)
	assert.InDelta(t, 7.0, *eu.Val2, 1e-9)
	require.NotNil(t, eu.Val3)
	assert.InDelta(t, 28.0, *eu.Val3, 1e-9)

	sg := summaryOf(t, rows, aggregate.TopicIncident)
	assert.Equal(t, 1, sg.Cnt1)
	assert.Equal(t, 1, sg.Cnt3)
	require.NotNil(t, sg.Val1)
	assert.InDelta(t, 38.0, *sg.Val1, 1e-9)

	cull := summaryOf(t, rows, aggregate.TopicCull)
	assert.Equal(t, 2, cull.Cnt1) // A-6 by event, A-7 by out date
	assert.Equal(t, 7, cull.Cnt2)

	ship := summaryOf(t, rows, aggregate.TopicShip)
	assert.Equal(t, 2, ship.Cnt1)
	assert.Equal(t, 40, ship.Cnt2)
	require.NotNil(t, ship.Val2)
	assert.InDelta(t, 5300.0, *ship.Val2, 1e-9)
	require.NotNil(t, ship.Val4)
	assert.InDelta(t, 100.0, *ship.Val4, 1e-9)
	require.NotNil(t, ship.Val5)
	assert.InDelta(t, 45.0, *ship.Val5, 1e-9)

	modon := summaryOf(t, rows, aggregate.TopicModon)
	assert.Equal(t, 5, modon.Cnt8)

	sched := summaryOf(t, rows, aggregate.TopicSchedule)
	assert.Equal(t, gb.Cnt1, sched.Cnt6)

	s := aggregate.Summarize(rows)
	assert.Equal(t, 2, s.LastGbCnt)
	assert.Equal(t, 1, s.LastBmCnt)
	assert.InDelta(t, 12.0, s.LastBmLiveAvg, 1e-9)
	assert.Equal(t, 11, s.LastEuSum)
	assert.Equal(t, 40, s.LastShipCnt)
	assert.Equal(t, 5, s.ModonCnt)
	assert.Equal(t, sched.Cnt1, s.ThisGbSum)
}

func TestAggregatorsOnEmptyFarm(t *testing.T) {
	raw := &model.RawData{Config: model.DefaultFarmConfig()}
	in := buildInput(raw)
	in.Shared = &model.SharedContext{}
	rows := runAll(t, in)

	for _, r := range rows {
		if r.SubGubun != aggregate.SubSummary || r.Gubun == aggregate.TopicConfig || r.Gubun == aggregate.TopicSchedule {
			continue
		}
		assert.Zero(t, r.Cnt1, r.Gubun)
		assert.Nil(t, r.Val1, r.Gubun)
		assert.Nil(t, r.Val2, r.Gubun)
		assert.Nil(t, r.Val3, r.Gubun)
		assert.Nil(t, r.Val4, r.Gubun)
	}
	assert.Equal(t, model.FarmSummary{}, aggregate.Summarize(rows))
}

func TestAlertList(t *testing.T) {
	raw := &model.RawData{
		Animals: []model.Animal{
			sow(1, "OLD-WEANED", 1),
			sow(2, "LATE-FARROW", 0),
			sow(3, "ON-TIME", 1),
		},
		Events: []model.Event{
			{PigNo: 1, Seq: 1, WkGubun: model.EventWeaning, WkDate: d(10, 1)},
			{PigNo: 2, Seq: 1, WkGubun: model.EventMating, WkDate: d(6, 1)},
			{PigNo: 3, Seq: 1, WkGubun: model.EventWeaning, WkDate: d(11, 6)},
		},
		Config: model.DefaultFarmConfig(),
	}
	rows, err := aggregate.AlertAggregator{}.Aggregate(buildInput(raw))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 2, rows[0].Cnt1)
	assert.Equal(t, 1, rows[0].Cnt3)
	assert.Equal(t, 1, rows[0].Cnt4)

	// 06-01 .. 11-10 is 162 days, 42 past gestation + 5; 10-01 .. 11-10 is 40 days, 26 past return + 7.
	assert.Equal(t, "LATE-FARROW", rows[1].Str1)
	assert.Equal(t, 42, rows[1].Cnt2)
	assert.Equal(t, "OLD-WEANED", rows[2].Str1)
	assert.Equal(t, 26, rows[2].Cnt2)
}

func planRow(t *testing.T, rows []model.TopicRow) model.TopicRow {
	t.Helper()
	for _, r := range rows {
		if r.SubGubun == "PLAN" {
			return r
		}
	}
	t.Fatal("no GB plan row")
	return model.TopicRow{}
}

func TestMatingPlanSplit(t *testing.T) {
	in := buildInput(fixture())
	in.Projections.Current.Plans = map[model.Kind]model.KindPlan{
		model.KindMating: {Kind: model.KindMating, Count: 5, Details: []model.PlanDetail{
			{TaskName: "first mating", BaseStatus: model.StatusCandidate, Count: 2},
			{TaskName: "after weaning", BaseStatus: model.StatusWeaned, Count: 3},
		}},
	}
	rows, err := aggregate.MatingAggregator{}.Aggregate(in)
	require.NoError(t, err)

	plan := planRow(t, rows)
	assert.Equal(t, 2, plan.Cnt1)
	assert.Equal(t, 3, plan.Cnt2)
	assert.Equal(t, 1, plan.Cnt3)
	assert.Equal(t, 1, plan.Cnt4)
	require.NotNil(t, plan.Val1)
	assert.InDelta(t, 50.0, *plan.Val1, 1e-9)
	require.NotNil(t, plan.Val2)
	assert.InDelta(t, 100.0/3, *plan.Val2, 1e-9)
	assert.Equal(t, 5, rows[0].Cnt6)

	t.Run("plan without details counts as other matings", func(t *testing.T) {
		in.Projections.Current.Plans[model.KindMating] = model.KindPlan{Kind: model.KindMating, Count: 4}
		rows, err := aggregate.MatingAggregator{}.Aggregate(in)
		require.NoError(t, err)
		plan := planRow(t, rows)
		assert.Zero(t, plan.Cnt1)
		assert.Equal(t, 4, plan.Cnt2)
		assert.Nil(t, plan.Val1)
	})
}
