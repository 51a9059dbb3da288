package aggregate

import (
	"github.com/tigerroll/weekreport/internal/domain/model"
)

// ShipAggregator reports market pig shipments of the period against the national price.
//
//	"-" Cnt1 lots, Cnt2 heads, Cnt3 heads graded 1+;
//	    Val1 carcass kg per head, Val2 farm price, Val3 national price, Val4 farm minus national,
//	    Val5 1+ grade rate (%)
type ShipAggregator struct{}

func (ShipAggregator) Topic() string { return TopicShip }

func (ShipAggregator) Aggregate(in Input) ([]model.TopicRow, error) {
	row := model.NewTopicRow(TopicShip, SubSummary, 1)
	var kg, priced float64
	if in.Raw != nil {
		for _, s := range in.Raw.Shipments {
			if !in.Period.Contains(s.ShipDt) {
				continue
			}
			row.Cnt1++
			row.Cnt2 += s.Dusu
			row.Cnt3 += s.Grade1PlusDusu
			kg += s.TotalKg
			priced += s.Price * float64(s.Dusu)
		}
	}
	heads := float64(row.Cnt2)
	row.Val1 = model.Ratio(kg, heads)
	row.Val2 = model.Ratio(priced, heads)
	if in.Shared != nil && in.Shared.NationalAvgPrice > 0 {
		row.Val3 = model.Float(in.Shared.NationalAvgPrice)
	}
	if row.Val2 != nil && row.Val3 != nil {
		row.Val4 = model.Float(*row.Val2 - *row.Val3)
	}
	row.Val5 = model.Percent(float64(row.Cnt3), heads)
	return []model.TopicRow{row}, nil
}
