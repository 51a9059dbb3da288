// Package aggregate turns the derived state of a farm into topic rows.
//
// Every aggregator is a pure function of its Input. The registry order is fixed: rows produced by
// an aggregator are visible to the later ones through Input.Prior.
package aggregate

import (
	"sort"
	"time"

	"github.com/tigerroll/weekreport/internal/domain/model"
)

// Topic names (gubun).
const (
	TopicConfig   = "CONFIG"
	TopicAlert    = "ALERT"
	TopicModon    = "MODON"
	TopicMating   = "GB"
	TopicFarrow   = "BM"
	TopicWeaning  = "EU"
	TopicIncident = "SG"
	TopicCull     = "CULL"
	TopicShip     = "SHIP"
	TopicSchedule = "SCHEDULE"
)

// SubSummary is the sub gubun of the summary row every topic starts with.
const SubSummary = "-"

// Input is what every aggregator reads.
type Input struct {
	Farm   model.Farm
	Period model.ReportingPeriod
	Raw    *model.RawData
	// Statuses are derived as of Period.To, StartStatuses as of the day before Period.From.
	Statuses      map[int64]model.DerivedStatus
	StartStatuses map[int64]model.DerivedStatus
	// Timelines hold every transition up to Period.To per animal.
	Timelines   map[int64][]model.Transition
	Projections model.ProjectionSet
	Shared      *model.SharedContext
	// Prior holds the rows of the aggregators that already ran.
	Prior []model.TopicRow
}

// Aggregator computes the rows of one topic.
type Aggregator interface {
	Topic() string
	Aggregate(in Input) ([]model.TopicRow, error)
}

// Registry is an ordered list of aggregators.
type Registry []Aggregator

// Default returns the aggregators in execution order.
func Default() Registry {
	return Registry{
		ConfigAggregator{},
		AlertAggregator{},
		ModonAggregator{},
		MatingAggregator{},
		FarrowingAggregator{},
		WeaningAggregator{},
		IncidentAggregator{},
		CullAggregator{},
		ShipAggregator{},
		ScheduleAggregator{},
	}
}

// Topics returns the topic names in order.
func (r Registry) Topics() []string {
	out := make([]string, len(r))
	for i, a := range r {
		out[i] = a.Topic()
	}
	return out
}

// transitions returns the transitions of type t dated inside [from, to], ordered by date, animal
// and sequence so floating point sums come out the same on every run.
func transitions(in Input, t model.EventType, from, to time.Time) []model.Transition {
	var out []model.Transition
	for _, tl := range in.Timelines {
		for _, tr := range tl {
			if tr.Event.WkGubun == t && model.InRange(tr.Event.WkDate, from, to) {
				out = append(out, tr)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Event, out[j].Event
		if !a.WkDate.Equal(b.WkDate) {
			return a.WkDate.Before(b.WkDate)
		}
		if a.PigNo != b.PigNo {
			return a.PigNo < b.PigNo
		}
		return a.Seq < b.Seq
	})
	return out
}

// inPeriod is transitions over the report period.
func inPeriod(in Input, t model.EventType) []model.Transition {
	return transitions(in, t, in.Period.From, in.Period.To)
}

// animals returns the farm's animals ordered by PigNo.
func animals(in Input) []model.Animal {
	if in.Raw == nil {
		return nil
	}
	out := append([]model.Animal(nil), in.Raw.Animals...)
	sort.Slice(out, func(i, j int) bool { return out[i].PigNo < out[j].PigNo })
	return out
}

func farmConfig(in Input) model.FarmConfig {
	if in.Raw == nil {
		return model.DefaultFarmConfig()
	}
	return in.Raw.Config
}

// findRow returns the first prior row of gubun/subGubun.
func findRow(rows []model.TopicRow, gubun, subGubun string) (model.TopicRow, bool) {
	for _, r := range rows {
		if r.Gubun == gubun && r.SubGubun == subGubun {
			return r, true
		}
	}
	return model.TopicRow{}, false
}

// avg accumulates a mean.
type avg struct {
	sum float64
	n   int
}

func (a *avg) add(v float64) {
	a.sum += v
	a.n++
}

func (a avg) value() *float64 { return model.Ratio(a.sum, float64(a.n)) }

// Summarize extracts the denormalized report summary from a farm's rows.
func Summarize(rows []model.TopicRow) model.FarmSummary {
	var s model.FarmSummary
	for _, r := range rows {
		if r.SubGubun != SubSummary {
			continue
		}
		switch r.Gubun {
		case TopicAlert:
			s.AlertCnt = r.Cnt1
		case TopicModon:
			s.ModonCnt = r.Cnt8
		case TopicMating:
			s.LastGbCnt = r.Cnt1
			s.LastGbSum = r.Cnt7
		case TopicFarrow:
			s.LastBmCnt = r.Cnt1
			s.LastBmLiveAvg = model.ValueOr(r.Val2, 0)
		case TopicWeaning:
			s.LastEuCnt = r.Cnt1
			s.LastEuSum = r.Cnt2
		case TopicIncident:
			s.LastSgCnt = r.Cnt1
		case TopicCull:
			s.LastCullCnt = r.Cnt1
		case TopicShip:
			s.LastShipCnt = r.Cnt2
			s.LastShipPrice = model.ValueOr(r.Val2, 0)
		case TopicSchedule:
			s.ThisGbSum = r.Cnt1
			s.ThisBmSum = r.Cnt2
			s.ThisEuSum = r.Cnt3
			s.ThisVcSum = r.Cnt4
			s.ThisImSum = r.Cnt5
		}
	}
	return s
}
