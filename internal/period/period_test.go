package period_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/weekreport/internal/domain/model"
	"github.com/tigerroll/weekreport/internal/period"
)

func TestResolveWeek(t *testing.T) {
	// Wednesday of ISO week 46 of 2024 reports on week 45.
	p, err := period.Resolve(model.DayGbWeek, model.Date(2024, 11, 13))
	require.NoError(t, err)
	assert.Equal(t, model.DayGbWeek, p.DayGb)
	assert.Equal(t, 2024, p.Year)
	assert.Equal(t, 45, p.No)
	assert.Equal(t, "20241104", p.DtFrom())
	assert.Equal(t, "20241110", p.DtTo())
	assert.Equal(t, 7, p.Days())

	// A Monday hint still reports on the previous full week.
	p2, err := period.Resolve(model.DayGbWeek, model.Date(2024, 11, 11))
	require.NoError(t, err)
	assert.Equal(t, p, p2)
}

func TestResolveWeekAcrossISOYear(t *testing.T) {
	// 2021-01-04 is the Monday of ISO week 1 of 2021; the previous week is 2020-W53.
	p, err := period.Resolve(model.DayGbWeek, model.Date(2021, 1, 6))
	require.NoError(t, err)
	assert.Equal(t, 2020, p.Year)
	assert.Equal(t, 53, p.No)
	assert.Equal(t, "20201228", p.DtFrom())
	assert.Equal(t, "20210103", p.DtTo())
}

func TestResolveMonthAndQuarter(t *testing.T) {
	m, err := period.Resolve(model.DayGbMonth, model.Date(2024, 3, 15))
	require.NoError(t, err)
	assert.Equal(t, 2, m.No)
	assert.Equal(t, "20240201", m.DtFrom())
	assert.Equal(t, "20240229", m.DtTo())

	jan, err := period.Resolve(model.DayGbMonth, model.Date(2024, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, 2023, jan.Year)
	assert.Equal(t, 12, jan.No)

	q, err := period.Resolve(model.DayGbQuarter, model.Date(2024, 2, 10))
	require.NoError(t, err)
	assert.Equal(t, 2023, q.Year)
	assert.Equal(t, 4, q.No)
	assert.Equal(t, "20231001", q.DtFrom())
	assert.Equal(t, "20231231", q.DtTo())

	_, err = period.Resolve("DAY", model.Date(2024, 2, 10))
	assert.Error(t, err)
}

func TestPrevious(t *testing.T) {
	w := period.Week(model.Date(2024, 11, 6))
	prev := period.Previous(w)
	assert.Equal(t, 44, prev.No)
	assert.Equal(t, w.From.AddDate(0, 0, -7), prev.From)

	q := period.Quarter(model.Date(2024, 1, 1))
	assert.Equal(t, 4, period.Previous(q).No)
	assert.Equal(t, 2023, period.Previous(q).Year)
}

func TestHint(t *testing.T) {
	d, err := period.Hint("20241113", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, model.Date(2024, 11, 13), d)

	_, err = period.Hint("2024-13-40", time.UTC)
	assert.Error(t, err)

	seoul := time.FixedZone("KST", 9*60*60)
	today, err := period.Hint("", seoul)
	require.NoError(t, err)
	assert.Equal(t, period.Today(seoul), today)
}
