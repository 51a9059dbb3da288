package model

import (
	"fmt"
	"time"
)

// Calendar dates are carried as time.Time values at midnight UTC. The configured timezone is only
// applied once, when "now" is turned into a date (see DateOf). All day arithmetic is then free of DST.

// YMDLayout is the persisted form of dates (YYYYMMDD).
const YMDLayout = "20060102"

// Date returns the calendar date y-m-d.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateOf returns the calendar date of t as observed in loc.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return Date(lt.Year(), lt.Month(), lt.Day())
}

// ParseYMD parses a YYYYMMDD string. Dashes are tolerated ("2024-11-04").
func ParseYMD(s string) (time.Time, error) {
	clean := make([]byte, 0, 8)
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			clean = append(clean, s[i])
		}
	}
	t, err := time.Parse(YMDLayout, string(clean))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// YMD formats a date as YYYYMMDD. The zero time formats as "".
func YMD(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(YMDLayout)
}

// AddDays returns t shifted by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// DaysBetween returns the number of calendar days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// InRange reports whether from <= t <= to.
func InRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}
