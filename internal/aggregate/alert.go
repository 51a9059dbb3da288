package aggregate

import (
	"sort"
	"time"

	"github.com/tigerroll/weekreport/internal/domain/model"
)

// Grace days past the biological norm before an animal is overdue.
const (
	alertWeanedGrace    = 7
	alertPregnantGrace  = 5
	alertLactatingGrace = 7
	alertListSize       = 20
)

// AlertAggregator lists animals that are overdue for their next event at the end of the period.
//
//	"-"    Cnt1 total, Cnt2 candidates, Cnt3 weaned, Cnt4 pregnant, Cnt5 lactating
//	"LIST" Str1 farm pig no, Str2 status, Str3 anchor date, Cnt1 elapsed days, Cnt2 overdue days
type AlertAggregator struct{}

func (AlertAggregator) Topic() string { return TopicAlert }

type alert struct {
	animal  model.Animal
	status  model.StatusCode
	anchor  time.Time
	elapsed int
	over    int
}

func (AlertAggregator) Aggregate(in Input) ([]model.TopicRow, error) {
	cfg := farmConfig(in)
	to := in.Period.To
	summary := model.NewTopicRow(TopicAlert, SubSummary, 1)

	var alerts []alert
	for _, a := range animals(in) {
		st, ok := in.Statuses[a.PigNo]
		if !ok || st.Culled || !a.InHerd(to) {
			continue
		}
		var anchor time.Time
		var limit, bucket int
		switch st.Status {
		case model.StatusCandidate:
			anchor, limit, bucket = a.BirthDt, cfg.FirstMatingAge+cfg.ReHeat, 2
		case model.StatusWeaned:
			anchor, limit, bucket = st.Since, cfg.AvgReturn+alertWeanedGrace, 3
		case model.StatusPregnant:
			anchor, limit, bucket = st.LastMatingDate, cfg.Gestation+alertPregnantGrace, 4
		case model.StatusLactating:
			anchor, limit, bucket = st.Since, cfg.Lactation+alertLactatingGrace, 5
		default:
			continue
		}
		if anchor.IsZero() {
			continue
		}
		elapsed := model.DaysBetween(anchor, to)
		if elapsed <= limit {
			continue
		}
		summary.Cnt1++
		summary.SetCnt(bucket, summary.Cnt(bucket)+1)
		alerts = append(alerts, alert{animal: a, status: st.Status, anchor: anchor, elapsed: elapsed, over: elapsed - limit})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].over != alerts[j].over {
			return alerts[i].over > alerts[j].over
		}
		return alerts[i].animal.PigNo < alerts[j].animal.PigNo
	})

	rows := []model.TopicRow{summary}
	for i, al := range alerts {
		if i == alertListSize {
			break
		}
		r := model.NewTopicRow(TopicAlert, "LIST", i+1)
		r.Str1 = al.animal.FarmPigNo
		r.Str2 = string(al.status)
		r.Str3 = model.YMD(al.anchor)
		r.Cnt1 = al.elapsed
		r.Cnt2 = al.over
		rows = append(rows, r)
	}
	return rows, nil
}
