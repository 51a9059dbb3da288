package aggregate

import (
	"github.com/tigerroll/weekreport/internal/domain/model"
	"github.com/tigerroll/weekreport/internal/schedule"
)

// ScheduleAggregator persists the forward projection. It runs last so the period's actual
// matings can be read from the GB summary row.
type ScheduleAggregator struct{}

func (ScheduleAggregator) Topic() string { return TopicSchedule }

func (ScheduleAggregator) Aggregate(in Input) ([]model.TopicRow, error) {
	actual := 0
	if gb, ok := findRow(in.Prior, TopicMating, SubSummary); ok {
		actual = gb.Cnt1
	}
	return schedule.Rows(in.Projections.Forward, actual), nil
}
