package model

import (
	"fmt"
	"strings"
	"time"
)

// DayGb is the granularity of a reporting period.
type DayGb string

const (
	DayGbWeek    DayGb = "WEEK"
	DayGbMonth   DayGb = "MONTH"
	DayGbQuarter DayGb = "QUARTER"
)

// ParseDayGb accepts WEEK, MONTH or QUARTER in any case. Empty means WEEK.
func ParseDayGb(s string) (DayGb, error) {
	switch DayGb(strings.ToUpper(strings.TrimSpace(s))) {
	case "", DayGbWeek:
		return DayGbWeek, nil
	case DayGbMonth:
		return DayGbMonth, nil
	case DayGbQuarter:
		return DayGbQuarter, nil
	}
	return "", fmt.Errorf("unknown day_gb %q", s)
}

// ReportingPeriod is a closed date range identified by (DayGb, Year, No).
// For weeks Year and No are the ISO year and week of From.
type ReportingPeriod struct {
	DayGb DayGb
	Year  int
	No    int
	From  time.Time
	To    time.Time
}

// Key returns a printable identity of the period, e.g. "WEEK-2024-45".
func (p ReportingPeriod) Key() string {
	return fmt.Sprintf("%s-%d-%02d", p.DayGb, p.Year, p.No)
}

// DtFrom returns From as YYYYMMDD.
func (p ReportingPeriod) DtFrom() string { return YMD(p.From) }

// DtTo returns To as YYYYMMDD.
func (p ReportingPeriod) DtTo() string { return YMD(p.To) }

// Days returns the number of days in the period.
func (p ReportingPeriod) Days() int { return DaysBetween(p.From, p.To) + 1 }

// Contains reports whether t falls inside the period.
func (p ReportingPeriod) Contains(t time.Time) bool { return InRange(t, p.From, p.To) }

func (p ReportingPeriod) String() string {
	return fmt.Sprintf("%s(%s~%s)", p.Key(), p.DtFrom(), p.DtTo())
}
