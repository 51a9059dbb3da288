package aggregate

import (
	"strconv"

	"github.com/tigerroll/weekreport/internal/domain/model"
)

// maxParityBucket is the last parity with its own row; higher parities are grouped.
const maxParityBucket = 8

// ModonAggregator describes the herd at the end of the period.
//
//	"-"      Cnt1..Cnt7 head count per status (010001..010007), Cnt8 total, Val1 average parity
//	"PARITY" Str1 parity label, Cnt1 head count, Val1 share of the herd (%)
type ModonAggregator struct{}

func (ModonAggregator) Topic() string { return TopicModon }

func (ModonAggregator) Aggregate(in Input) ([]model.TopicRow, error) {
	summary := model.NewTopicRow(TopicModon, SubSummary, 1)
	parity := make([]int, maxParityBucket+1)
	var paritySum avg

	for _, a := range animals(in) {
		st, ok := in.Statuses[a.PigNo]
		if !ok || st.Culled || !a.InHerd(in.Period.To) {
			continue
		}
		for i, s := range model.HerdStatuses {
			if s == st.Status {
				summary.SetCnt(i+1, summary.Cnt(i+1)+1)
			}
		}
		summary.Cnt8++
		p := st.Parity
		if p > maxParityBucket {
			p = maxParityBucket
		}
		if p < 0 {
			p = 0
		}
		parity[p]++
		paritySum.add(float64(st.Parity))
	}
	summary.Val1 = paritySum.value()

	rows := []model.TopicRow{summary}
	for p, n := range parity {
		r := model.NewTopicRow(TopicModon, "PARITY", p+1)
		r.Str1 = strconv.Itoa(p)
		if p == maxParityBucket {
			r.Str1 += "+"
		}
		r.Cnt1 = n
		r.Val1 = model.Percent(float64(n), float64(summary.Cnt8))
		rows = append(rows, r)
	}
	return rows, nil
}
