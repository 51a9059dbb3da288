package aggregate

import (
	"github.com/tigerroll/weekreport/internal/domain/model"
)

// WeaningAggregator reports the weanings of the period.
//
//	"-" Cnt1 weanings, Cnt2 piglets, Cnt3 planned, Cnt4 foster weanings;
//	    Val1 piglets per litter, Val2 weight per piglet (kg), Val3 average lactation days,
//	    Val4 achievement (%)
type WeaningAggregator struct{}

func (WeaningAggregator) Topic() string { return TopicWeaning }

func (WeaningAggregator) Aggregate(in Input) ([]model.TopicRow, error) {
	row := model.NewTopicRow(TopicWeaning, SubSummary, 1)
	var kg float64
	var lactation avg
	for _, tr := range inPeriod(in, model.EventWeaning) {
		ev := tr.Event
		row.Cnt1++
		row.Cnt2 += ev.EuDusu
		kg += ev.EuKg
		if ev.Foster() {
			row.Cnt4++
		}
		if !tr.PrevFarrowing.IsZero() {
			lactation.add(float64(model.DaysBetween(tr.PrevFarrowing, ev.WkDate)))
		}
	}
	row.Cnt3 = in.Projections.Current.Count(model.KindWeaning)
	row.Val1 = model.Ratio(float64(row.Cnt2), float64(row.Cnt1))
	row.Val2 = model.Ratio(kg, float64(row.Cnt2))
	row.Val3 = lactation.value()
	row.Val4 = model.Percent(float64(row.Cnt1), float64(row.Cnt3))
	return []model.TopicRow{row}, nil
}
