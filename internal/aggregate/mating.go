package aggregate

import (
	"github.com/tigerroll/weekreport/internal/domain/model"
)

// returnBuckets are the return-to-estrus interval classes of the GB chart, upper bounds inclusive.
var returnBuckets = []struct {
	label string
	max   int
}{
	{"0-3", 3}, {"4", 4}, {"5", 5}, {"6", 6}, {"7", 7}, {"8-10", 10}, {"11-15", 15}, {"16+", -1},
}

// MatingAggregator reports the matings of the period.
//
//	"-"     Cnt1 matings, Cnt2 first, Cnt3 after weaning, Cnt4 after incident, Cnt5 repeat,
//	        Cnt6 planned, Cnt7 year to date, Cnt8 return samples;
//	        Val1 achievement (%), Val2 average return-to-estrus days
//	"CHART" Str1 interval class, Cnt1 matings
//	"PLAN"  Cnt1 planned first, Cnt2 planned other, Cnt3 first, Cnt4 other;
//	        Val1 first achievement (%), Val2 other achievement (%)
type MatingAggregator struct{}

func (MatingAggregator) Topic() string { return TopicMating }

func (MatingAggregator) Aggregate(in Input) ([]model.TopicRow, error) {
	summary := model.NewTopicRow(TopicMating, SubSummary, 1)
	chart := make([]int, len(returnBuckets))
	var ret avg

	for _, tr := range inPeriod(in, model.EventMating) {
		summary.Cnt1++
		switch tr.Before {
		case model.StatusCandidate:
			summary.Cnt2++
		case model.StatusWeaned, model.StatusFoster:
			summary.Cnt3++
			if !tr.PrevWeaning.IsZero() {
				days := model.DaysBetween(tr.PrevWeaning, tr.Event.WkDate)
				ret.add(float64(days))
				chart[returnBucket(days)]++
			}
		case model.StatusRelapse, model.StatusAbortion:
			summary.Cnt4++
		default:
			summary.Cnt5++
		}
	}

	yearStart := model.Date(in.Period.To.Year(), 1, 1)
	summary.Cnt7 = len(transitions(in, model.EventMating, yearStart, in.Period.To))
	summary.Cnt8 = ret.n

	planned := in.Projections.Current.Count(model.KindMating)
	summary.Cnt6 = planned
	summary.Val1 = model.Percent(float64(summary.Cnt1), float64(planned))
	summary.Val2 = ret.value()

	plan := model.NewTopicRow(TopicMating, "PLAN", 1)
	plan.Cnt1, plan.Cnt2 = splitPlanned(in.Projections.Current.Plans[model.KindMating])
	plan.Cnt3 = summary.Cnt2
	plan.Cnt4 = summary.Cnt1 - summary.Cnt2
	plan.Val1 = model.Percent(float64(plan.Cnt3), float64(plan.Cnt1))
	plan.Val2 = model.Percent(float64(plan.Cnt4), float64(plan.Cnt2))

	rows := []model.TopicRow{summary, plan}
	for i, b := range returnBuckets {
		r := model.NewTopicRow(TopicMating, "CHART", i+1)
		r.Str1 = b.label
		r.Cnt1 = chart[i]
		rows = append(rows, r)
	}
	return rows, nil
}

// splitPlanned divides planned matings into first matings of candidates and the rest.
// A plan without details counts as all other.
func splitPlanned(p model.KindPlan) (first, other int) {
	if len(p.Details) == 0 {
		return 0, p.Count
	}
	for _, d := range p.Details {
		if d.BaseStatus == model.StatusCandidate {
			first += d.Count
		} else {
			other += d.Count
		}
	}
	return first, other
}

func returnBucket(days int) int {
	for i, b := range returnBuckets {
		if b.max < 0 || days <= b.max {
			return i
		}
	}
	return len(returnBuckets) - 1
}
