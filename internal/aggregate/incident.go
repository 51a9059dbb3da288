package aggregate

import (
	"sort"

	"github.com/tigerroll/weekreport/internal/domain/model"
)

// IncidentAggregator reports reproductive incidents of the period.
//
//	"-"   Cnt1 incidents, Cnt2 relapses, Cnt3 abortions, Cnt4 other; Val1 average days from mating
//	"SUB" Str1 incident subtype, Cnt1 incidents
type IncidentAggregator struct{}

func (IncidentAggregator) Topic() string { return TopicIncident }

func (IncidentAggregator) Aggregate(in Input) ([]model.TopicRow, error) {
	summary := model.NewTopicRow(TopicIncident, SubSummary, 1)
	bySub := make(map[string]int)
	var fromMating avg
	for _, tr := range inPeriod(in, model.EventIncident) {
		ev := tr.Event
		summary.Cnt1++
		switch ev.SagoGubunCd {
		case model.IncidentRelapse:
			summary.Cnt2++
		case model.IncidentAbortion:
			summary.Cnt3++
		default:
			summary.Cnt4++
		}
		bySub[ev.SagoGubunCd]++
		if !tr.PrevMating.IsZero() {
			fromMating.add(float64(model.DaysBetween(tr.PrevMating, ev.WkDate)))
		}
	}
	summary.Val1 = fromMating.value()

	subs := make([]string, 0, len(bySub))
	for s := range bySub {
		subs = append(subs, s)
	}
	sort.Strings(subs)

	rows := []model.TopicRow{summary}
	for i, s := range subs {
		r := model.NewTopicRow(TopicIncident, "SUB", i+1)
		r.Str1 = s
		r.Cnt1 = bySub[s]
		rows = append(rows, r)
	}
	return rows, nil
}
