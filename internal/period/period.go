// Package period resolves the reporting period a batch pass reports on.
package period

import (
	"fmt"
	"time"

	"github.com/tigerroll/weekreport/internal/domain/model"
)

// Resolve returns the most recent full period of the given granularity that ended before hint's
// own period. hint must already be a calendar date (see model.DateOf).
func Resolve(dayGb model.DayGb, hint time.Time) (model.ReportingPeriod, error) {
	hint = model.Date(hint.Year(), hint.Month(), hint.Day())
	switch dayGb {
	case model.DayGbWeek:
		return Week(weekStart(hint).AddDate(0, 0, -7)), nil
	case model.DayGbMonth:
		first := model.Date(hint.Year(), hint.Month(), 1)
		return Month(first.AddDate(0, -1, 0)), nil
	case model.DayGbQuarter:
		q := quarterStart(hint)
		return Quarter(q.AddDate(0, -3, 0)), nil
	}
	return model.ReportingPeriod{}, fmt.Errorf("unsupported day_gb %q", dayGb)
}

// Week returns the ISO week containing d.
func Week(d time.Time) model.ReportingPeriod {
	from := weekStart(d)
	year, week := from.ISOWeek()
	return model.ReportingPeriod{
		DayGb: model.DayGbWeek,
		Year:  year,
		No:    week,
		From:  from,
		To:    from.AddDate(0, 0, 6),
	}
}

// Month returns the calendar month containing d.
func Month(d time.Time) model.ReportingPeriod {
	from := model.Date(d.Year(), d.Month(), 1)
	return model.ReportingPeriod{
		DayGb: model.DayGbMonth,
		Year:  from.Year(),
		No:    int(from.Month()),
		From:  from,
		To:    from.AddDate(0, 1, -1),
	}
}

// Quarter returns the calendar quarter containing d.
func Quarter(d time.Time) model.ReportingPeriod {
	from := quarterStart(d)
	return model.ReportingPeriod{
		DayGb: model.DayGbQuarter,
		Year:  from.Year(),
		No:    (int(from.Month())-1)/3 + 1,
		From:  from,
		To:    from.AddDate(0, 3, -1),
	}
}

// Previous returns the period immediately before p, of the same granularity.
func Previous(p model.ReportingPeriod) model.ReportingPeriod {
	before := p.From.AddDate(0, 0, -1)
	switch p.DayGb {
	case model.DayGbMonth:
		return Month(before)
	case model.DayGbQuarter:
		return Quarter(before)
	default:
		return Week(before)
	}
}

// Today returns the current calendar date in loc.
func Today(loc *time.Location) time.Time {
	return model.DateOf(time.Now(), loc)
}

// Hint parses an optional YYYYMMDD reference date, defaulting to today in loc.
func Hint(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return Today(loc), nil
	}
	return model.ParseYMD(s)
}

func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return model.Date(d.Year(), d.Month(), d.Day()-offset)
}

func quarterStart(d time.Time) time.Time {
	m := ((int(d.Month())-1)/3)*3 + 1
	return model.Date(d.Year(), time.Month(m), 1)
}
