// Package schedule projects the work due on a farm from the derived status of its animals.
//
// Two windows are produced. The forward window starts the day after the period and feeds the
// SCHEDULE topic. The current window is the period itself; it supplies the planned counts the
// mating, farrowing and weaning topics compare their actuals against.
package schedule

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/tigerroll/weekreport/internal/domain/model"
)

// pregnancyCheckDays is the fixed offset from mating of a pregnancy check.
const pregnancyCheckDays = 25

// Input is everything a projection reads.
type Input struct {
	Period model.ReportingPeriod
	Raw    *model.RawData
	// Statuses are derived as of Period.To; StartStatuses as of the day before Period.From.
	Statuses      map[int64]model.DerivedStatus
	StartStatuses map[int64]model.DerivedStatus
	ForwardDays   int
}

// Project builds the current and forward windows of a farm.
func Project(in Input) model.ProjectionSet {
	raw := in.Raw
	if raw == nil {
		raw = &model.RawData{}
	}
	methods := effectiveMethods(raw.Methods)
	forwardDays := in.ForwardDays
	if forwardDays <= 0 {
		forwardDays = 7
	}

	forward := model.ProjectionWindow{
		From:  model.AddDays(in.Period.To, 1),
		To:    model.AddDays(in.Period.To, forwardDays),
		Plans: make(map[model.Kind]model.KindPlan, len(model.Kinds)),
	}
	for _, k := range model.Kinds {
		forward.Plans[k] = predict(k, methods[k], raw, in.Statuses, forward.From, forward.To)
	}

	current := model.ProjectionWindow{
		From:  in.Period.From,
		To:    in.Period.To,
		Plans: make(map[model.Kind]model.KindPlan, len(model.Kinds)),
	}
	prev := ParsePrevious(raw.PreviousSchedule)
	if prev != nil && (!prev.From.Equal(current.From) || !prev.To.Equal(current.To)) {
		// Only a weekly forward window covers the whole of the next period.
		prev = nil
	}
	for _, k := range model.Kinds {
		if prev.Reusable(k) {
			current.Plans[k] = reuse(k, prev, methods[k], raw, current.Days())
			continue
		}
		current.Plans[k] = predict(k, methods[k], raw, in.StartStatuses, current.From, current.To)
	}

	return model.ProjectionSet{Current: current, Forward: forward}
}

func effectiveMethods(stored map[model.Kind]model.MethodConf) map[model.Kind]model.MethodConf {
	out := model.DefaultMethods()
	for k, c := range stored {
		out[k] = c
	}
	return out
}

// HasMethod reports whether kind k can be projected with conf.
func HasMethod(k model.Kind, conf model.MethodConf) bool {
	switch conf.Method {
	case model.MethodModon:
		return true
	case model.MethodFarm:
		return k != model.KindVaccine
	}
	return false
}

func reuse(k model.Kind, prev *Previous, conf model.MethodConf, raw *model.RawData, days int) model.KindPlan {
	plan := model.KindPlan{
		Kind:   k,
		Method: prev.Methods[k],
		Count:  prev.Counts[k],
		Daily:  fit(prev.Daily[k], days),
		Note:   prev.Notes[k],
		Reused: true,
	}
	for _, d := range prev.Details[k] {
		d.Daily = fit(d.Daily, days)
		plan.Details = append(plan.Details, d)
	}
	if strings.TrimSpace(plan.Note) == "" {
		plan.Note = Note(k, conf, raw.Config, selectTasks(k, conf, raw.Tasks))
	}
	if plan.Method == "" && HasMethod(k, conf) {
		plan.Method = conf.Method
	}
	return plan
}

func fit(daily []int, days int) []int {
	out := make([]int, days)
	copy(out, daily)
	return out
}

// predict projects kind k over [from, to] for the animals in statuses.
func predict(k model.Kind, conf model.MethodConf, raw *model.RawData, statuses map[int64]model.DerivedStatus, from, to time.Time) model.KindPlan {
	days := model.DaysBetween(from, to) + 1
	plan := model.KindPlan{Kind: k, Daily: make([]int, days)}
	if !HasMethod(k, conf) {
		return plan
	}
	plan.Method = conf.Method

	animals := append([]model.Animal(nil), raw.Animals...)
	sort.Slice(animals, func(i, j int) bool { return animals[i].PigNo < animals[j].PigNo })

	var tasks []model.PlanTask
	if conf.Method == model.MethodModon {
		tasks = selectTasks(k, conf, raw.Tasks)
	}
	plan.Note = Note(k, conf, raw.Config, tasks)

	for _, a := range animals {
		st, ok := statuses[a.PigNo]
		if !ok || st.Culled || !a.InHerd(to) {
			continue
		}
		var items []model.Projection
		if conf.Method == model.MethodModon {
			items = byTasks(k, a, st, tasks)
		} else {
			items = byFarmOffsets(k, a, st, raw.Config)
		}
		for _, p := range items {
			if k == model.KindMating && p.Date.Before(from) {
				p.Date = from
				p.Overdue = true
			}
			if !model.InRange(p.Date, from, to) {
				continue
			}
			plan.Items = append(plan.Items, p)
		}
	}

	detailIdx := make(map[string]int)
	for _, p := range plan.Items {
		day := model.DaysBetween(from, p.Date)
		plan.Count++
		plan.Daily[day]++
		key := p.TaskName + "\x00" + string(p.BaseStatus)
		i, ok := detailIdx[key]
		if !ok {
			i = len(plan.Details)
			detailIdx[key] = i
			plan.Details = append(plan.Details, model.PlanDetail{TaskName: p.TaskName, BaseStatus: p.BaseStatus, Daily: make([]int, days)})
		}
		plan.Details[i].Count++
		plan.Details[i].Daily[day]++
	}
	return plan
}

// selectTasks returns the active tasks of kind k chosen by conf, ordered by Seq.
// A nil selection means every active task; an empty one means none.
func selectTasks(k model.Kind, conf model.MethodConf, all []model.PlanTask) []model.PlanTask {
	var out []model.PlanTask
	for _, t := range all {
		if t.JobGubunCd != k.JobGubunCd() || !t.Active() {
			continue
		}
		if conf.Tasks != nil && !slices.Contains(conf.Tasks, t.Seq) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func byTasks(k model.Kind, a model.Animal, st model.DerivedStatus, tasks []model.PlanTask) []model.Projection {
	var out []model.Projection
	for _, t := range tasks {
		if t.BaseStatusCd != "" && t.BaseStatusCd != st.Status {
			continue
		}
		if st.Since.IsZero() {
			continue
		}
		out = append(out, model.Projection{
			AnimalID:   a.PigNo,
			Kind:       k,
			Date:       model.AddDays(st.Since, t.PassDay),
			TaskName:   t.WkNm,
			BaseStatus: st.Status,
		})
	}
	return out
}

// Task names of fixed-offset predictions.
const (
	taskAfterWeaning  = "after weaning"
	taskCandidate     = "candidate"
	taskAfterIncident = "after incident"
	taskFarrowing     = "farrowing"
	taskWeaning       = "weaning"
	taskPregnancy     = "pregnancy check"
)

func byFarmOffsets(k model.Kind, a model.Animal, st model.DerivedStatus, cfg model.FarmConfig) []model.Projection {
	if st.Since.IsZero() {
		return nil
	}
	var offset int
	var task string
	switch k {
	case model.KindMating:
		switch st.Status {
		case model.StatusWeaned:
			offset, task = cfg.AvgReturn, taskAfterWeaning
		case model.StatusCandidate:
			offset, task = cfg.FirstMatingAge, taskCandidate
		case model.StatusRelapse, model.StatusAbortion:
			offset, task = 1, taskAfterIncident
		default:
			return nil
		}
	case model.KindFarrowing:
		if st.Status != model.StatusPregnant {
			return nil
		}
		offset, task = cfg.Gestation, taskFarrowing
	case model.KindWeaning:
		if st.Status != model.StatusLactating && st.Status != model.StatusFoster {
			return nil
		}
		offset, task = cfg.Lactation, taskWeaning
	case model.KindPregnancy:
		if st.Status != model.StatusPregnant {
			return nil
		}
		offset, task = pregnancyCheckDays, taskPregnancy
	default:
		return nil
	}
	return []model.Projection{{
		AnimalID:   a.PigNo,
		Kind:       k,
		Date:       model.AddDays(st.Since, offset),
		TaskName:   task,
		BaseStatus: st.Status,
	}}
}

// Note describes how kind k is projected. It is empty when the kind has no method.
func Note(k model.Kind, conf model.MethodConf, cfg model.FarmConfig, tasks []model.PlanTask) string {
	if !HasMethod(k, conf) {
		return ""
	}
	if conf.Method == model.MethodModon {
		if len(tasks) == 0 {
			return "sow tasks: none selected"
		}
		names := make([]string, 0, len(tasks))
		for _, t := range tasks {
			names = append(names, fmt.Sprintf("%s(%dd)", t.WkNm, t.PassDay))
		}
		return "sow tasks: " + strings.Join(names, ", ")
	}
	switch k {
	case model.KindMating:
		return fmt.Sprintf("farm default: weaning+%dd, first mating at %d days of age, incident+1d", cfg.AvgReturn, cfg.FirstMatingAge)
	case model.KindFarrowing:
		return fmt.Sprintf("farm default: mating+%dd", cfg.Gestation)
	case model.KindWeaning:
		return fmt.Sprintf("farm default: farrowing+%dd", cfg.Lactation)
	case model.KindPregnancy:
		return fmt.Sprintf("farm default: mating+%dd", pregnancyCheckDays)
	}
	return ""
}
