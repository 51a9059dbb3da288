package aggregate

import (
	"github.com/tigerroll/weekreport/internal/domain/model"
)

// FarrowingAggregator reports the farrowings of the period.
//
//	"-" Cnt1 litters, Cnt2 total born, Cnt3 live, Cnt4 stillborn, Cnt5 mummified, Cnt6 planned;
//	    Val1 total born per litter, Val2 live born per litter, Val3 achievement (%),
//	    Val4 average gestation days
type FarrowingAggregator struct{}

func (FarrowingAggregator) Topic() string { return TopicFarrow }

func (FarrowingAggregator) Aggregate(in Input) ([]model.TopicRow, error) {
	row := model.NewTopicRow(TopicFarrow, SubSummary, 1)
	var gestation avg
	for _, tr := range inPeriod(in, model.EventFarrowing) {
		ev := tr.Event
		row.Cnt1++
		row.Cnt2 += ev.Silsan + ev.Sasan + ev.Mila
		row.Cnt3 += ev.Silsan
		row.Cnt4 += ev.Sasan
		row.Cnt5 += ev.Mila
		if !tr.PrevMating.IsZero() {
			gestation.add(float64(model.DaysBetween(tr.PrevMating, ev.WkDate)))
		}
	}
	row.Cnt6 = in.Projections.Current.Count(model.KindFarrowing)
	row.Val1 = model.Ratio(float64(row.Cnt2), float64(row.Cnt1))
	row.Val2 = model.Ratio(float64(row.Cnt3), float64(row.Cnt1))
	row.Val3 = model.Percent(float64(row.Cnt1), float64(row.Cnt6))
	row.Val4 = gestation.value()
	return []model.TopicRow{row}, nil
}
