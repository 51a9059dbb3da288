package aggregate

import (
	"strconv"
	"strings"

	"github.com/tigerroll/weekreport/internal/domain/model"
)

// ConfigAggregator records the farm settings the report was computed with.
//
//	"-" Cnt1 gestation, Cnt2 lactation, Cnt3 ship day, Cnt4 avg return, Cnt5 first mating age,
//	    Cnt6 re-heat days, Cnt7 rearing rate, Cnt8 active tasks; Str1..Str5 method per kind
type ConfigAggregator struct{}

func (ConfigAggregator) Topic() string { return TopicConfig }

func (ConfigAggregator) Aggregate(in Input) ([]model.TopicRow, error) {
	cfg := farmConfig(in)
	row := model.NewTopicRow(TopicConfig, SubSummary, 1)
	row.Cnt1 = cfg.Gestation
	row.Cnt2 = cfg.Lactation
	row.Cnt3 = cfg.ShipDay
	row.Cnt4 = cfg.AvgReturn
	row.Cnt5 = cfg.FirstMatingAge
	row.Cnt6 = cfg.ReHeat
	row.Cnt7 = cfg.RearingRate

	methods := model.DefaultMethods()
	if in.Raw != nil {
		for _, t := range in.Raw.Tasks {
			if t.Active() {
				row.Cnt8++
			}
		}
		for k, c := range in.Raw.Methods {
			methods[k] = c
		}
	}
	for i, k := range model.Kinds {
		row.SetStr(i+1, describeMethod(methods[k]))
	}
	return []model.TopicRow{row}, nil
}

// describeMethod renders "farm", "modon" or "modon:1,3" for a task subset.
func describeMethod(c model.MethodConf) string {
	if c.Method != model.MethodModon || c.Tasks == nil {
		return c.Method
	}
	seqs := make([]string, len(c.Tasks))
	for i, s := range c.Tasks {
		seqs[i] = strconv.Itoa(s)
	}
	return c.Method + ":" + strings.Join(seqs, ",")
}
