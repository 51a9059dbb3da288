package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/tigerroll/weekreport/internal/domain/model"
)

// Topic is the gubun of the schedule rows.
const Topic = "SCHEDULE"

// Sub gubun values of the schedule rows. Per-kind detail rows use the kind code itself.
const (
	SubSummary = "-"
	SubCal     = "CAL"
	SubHelp    = "HELP"
	SubMethod  = "METHOD"
)

// calDays is the number of day columns a CAL row can hold.
const calDays = 7

// Rows renders a forward window as schedule topic rows.
//
//	"-"      Cnt1..Cnt5 count per kind (GB BM EU VC IM), Cnt6 actual matings of the period,
//	         Cnt7 ISO week of the window start, Str1/Str2 window from/to (YYYYMMDD)
//	"CAL"    sort 0: day of month per window day; sort 1..5: daily counts per kind, Str1 kind
//	<kind>   one row per task: Str1 task, Str2 base status, Cnt1 total, Cnt2..Cnt8 daily
//	"HELP"   Str1..Str5 note per kind
//	"METHOD" Str1..Str5 method per kind
func Rows(w model.ProjectionWindow, actualMatings int) []model.TopicRow {
	var rows []model.TopicRow

	summary := model.NewTopicRow(Topic, SubSummary, 1)
	for i, k := range model.Kinds {
		summary.SetCnt(i+1, w.Count(k))
	}
	summary.Cnt6 = actualMatings
	_, week := w.From.ISOWeek()
	summary.Cnt7 = week
	summary.Str1 = model.YMD(w.From)
	summary.Str2 = model.YMD(w.To)
	rows = append(rows, summary)

	days := model.NewTopicRow(Topic, SubCal, 0)
	days.Str1 = "DAY"
	for d := 0; d < w.Days() && d < calDays; d++ {
		days.SetCnt(d+1, model.AddDays(w.From, d).Day())
	}
	rows = append(rows, days)
	for i, k := range model.Kinds {
		cal := model.NewTopicRow(Topic, SubCal, i+1)
		cal.Str1 = string(k)
		for d, n := range w.Plans[k].Daily {
			if d >= calDays {
				break
			}
			cal.SetCnt(d+1, n)
		}
		rows = append(rows, cal)
	}

	for _, k := range model.Kinds {
		for i, det := range w.Plans[k].Details {
			row := model.NewTopicRow(Topic, string(k), i+1)
			row.Str1 = det.TaskName
			row.Str2 = string(det.BaseStatus)
			row.Cnt1 = det.Count
			for d, n := range det.Daily {
				if d >= calDays {
					break
				}
				row.SetCnt(d+2, n)
			}
			rows = append(rows, row)
		}
	}

	help := model.NewTopicRow(Topic, SubHelp, 1)
	method := model.NewTopicRow(Topic, SubMethod, 1)
	for i, k := range model.Kinds {
		help.SetStr(i+1, w.Plans[k].Note)
		method.SetStr(i+1, w.Plans[k].Method)
	}
	rows = append(rows, help, method)
	return rows
}

// Previous is a forward window persisted by an earlier run.
type Previous struct {
	From    time.Time
	To      time.Time
	Counts  map[model.Kind]int
	Daily   map[model.Kind][]int
	Details map[model.Kind][]model.PlanDetail
	Notes   map[model.Kind]string
	Methods map[model.Kind]string
}

// ParsePrevious reads schedule rows written by Rows. It returns nil when the summary row is missing.
func ParsePrevious(rows []model.TopicRow) *Previous {
	var summary *model.TopicRow
	for i := range rows {
		if rows[i].Gubun == Topic && rows[i].SubGubun == SubSummary {
			summary = &rows[i]
			break
		}
	}
	if summary == nil {
		return nil
	}
	p := &Previous{
		Counts:  make(map[model.Kind]int),
		Daily:   make(map[model.Kind][]int),
		Details: make(map[model.Kind][]model.PlanDetail),
		Notes:   make(map[model.Kind]string),
		Methods: make(map[model.Kind]string),
	}
	p.From, _ = model.ParseYMD(summary.Str1)
	p.To, _ = model.ParseYMD(summary.Str2)
	for i, k := range model.Kinds {
		p.Counts[k] = summary.Cnt(i + 1)
	}

	sorted := append([]model.TopicRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SortNo < sorted[j].SortNo })
	for _, r := range sorted {
		if r.Gubun != Topic {
			continue
		}
		switch r.SubGubun {
		case SubCal:
			k := model.Kind(r.Str1)
			if model.KindIndex(k) < 0 {
				continue
			}
			daily := make([]int, calDays)
			for d := range daily {
				daily[d] = r.Cnt(d + 1)
			}
			p.Daily[k] = daily
		case SubHelp:
			for i, k := range model.Kinds {
				p.Notes[k] = r.Str(i + 1)
			}
		case SubMethod:
			for i, k := range model.Kinds {
				p.Methods[k] = r.Str(i + 1)
			}
		default:
			k := model.Kind(r.SubGubun)
			if model.KindIndex(k) < 0 {
				continue
			}
			daily := make([]int, calDays)
			for d := range daily {
				daily[d] = r.Cnt(d + 2)
			}
			p.Details[k] = append(p.Details[k], model.PlanDetail{
				TaskName:   r.Str1,
				BaseStatus: model.StatusCode(r.Str2),
				Count:      r.Cnt1,
				Daily:      daily,
			})
		}
	}
	return p
}

// Reusable reports whether kind k of the previous window may stand in for a fresh projection:
// a positive count or a non-blank note. A blank note with no count means nothing was projected.
func (p *Previous) Reusable(k model.Kind) bool {
	if p == nil {
		return false
	}
	return p.Counts[k] > 0 || strings.TrimSpace(p.Notes[k]) != ""
}
