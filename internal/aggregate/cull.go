package aggregate

import (
	"sort"

	"github.com/tigerroll/weekreport/internal/domain/model"
)

// unknownReason labels culls recorded only through the animal's out date.
const unknownReason = "-"

// CullAggregator reports animals culled or dead during the period.
//
//	"-"      Cnt1 culls, Cnt2 herd at period start; Val1 culling rate (%)
//	"REASON" Str1 reason code, Cnt1 culls
type CullAggregator struct{}

func (CullAggregator) Topic() string { return TopicCull }

func (CullAggregator) Aggregate(in Input) ([]model.TopicRow, error) {
	summary := model.NewTopicRow(TopicCull, SubSummary, 1)
	byReason := make(map[string]int)

	culled := make(map[int64]string)
	for _, tr := range inPeriod(in, model.EventCull) {
		reason := tr.Event.OutReasonCd
		if reason == "" {
			reason = unknownReason
		}
		culled[tr.Event.PigNo] = reason
	}

	dayBefore := model.AddDays(in.Period.From, -1)
	for _, a := range animals(in) {
		if _, ok := culled[a.PigNo]; !ok && !a.OutDt.IsZero() && in.Period.Contains(a.OutDt) {
			if st, ok := in.StartStatuses[a.PigNo]; !ok || !st.Culled {
				culled[a.PigNo] = unknownReason
			}
		}
		if a.InHerd(dayBefore) {
			if st, ok := in.StartStatuses[a.PigNo]; !ok || !st.Culled {
				summary.Cnt2++
			}
		}
	}
	for _, reason := range culled {
		summary.Cnt1++
		byReason[reason]++
	}
	summary.Val1 = model.Percent(float64(summary.Cnt1), float64(summary.Cnt2))

	reasons := make([]string, 0, len(byReason))
	for r := range byReason {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool {
		if byReason[reasons[i]] != byReason[reasons[j]] {
			return byReason[reasons[i]] > byReason[reasons[j]]
		}
		return reasons[i] < reasons[j]
	})

	rows := []model.TopicRow{summary}
	for i, r := range reasons {
		row := model.NewTopicRow(TopicCull, "REASON", i+1)
		row.Str1 = r
		row.Cnt1 = byReason[r]
		rows = append(rows, row)
	}
	return rows, nil
}
