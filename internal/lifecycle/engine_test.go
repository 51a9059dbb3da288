package lifecycle_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/weekreport/internal/domain/model"
	"github.com/tigerroll/weekreport/internal/lifecycle"
)

func sow(pigNo int64) model.Animal {
	return model.Animal{PigNo: pigNo, FarmPigNo: "S1", FarmNo: 101, BirthDt: model.Date(2023, 1, 1), InDt: model.Date(2023, 6, 1)}
}

func ev(pigNo int64, seq int, typ model.EventType, y, m, d int) model.Event {
	return model.Event{FarmNo: 101, PigNo: pigNo, Seq: seq, WkGubun: typ, WkDate: model.Date(y, time.Month(m), d)}
}

func TestDeriveTransitions(t *testing.T) {
	a := sow(1)
	asOf := model.Date(2024, 12, 31)

	cases := []struct {
		name   string
		events []model.Event
		status model.StatusCode
		parity int
	}{
		{"no events", nil, model.StatusCandidate, 0},
		{"mated", []model.Event{ev(1, 1, model.EventMating, 2024, 1, 10)}, model.StatusPregnant, 0},
		{"farrowed", []model.Event{
			ev(1, 1, model.EventMating, 2024, 1, 10),
			ev(1, 2, model.EventFarrowing, 2024, 5, 4),
		}, model.StatusLactating, 1},
		{"weaned", []model.Event{
			ev(1, 1, model.EventMating, 2024, 1, 10),
			ev(1, 2, model.EventFarrowing, 2024, 5, 4),
			ev(1, 3, model.EventWeaning, 2024, 5, 25),
		}, model.StatusWeaned, 1},
		{"relapse", []model.Event{
			ev(1, 1, model.EventMating, 2024, 1, 10),
			{PigNo: 1, Seq: 2, WkGubun: model.EventIncident, WkDate: model.Date(2024, 2, 1), SagoGubunCd: model.IncidentRelapse},
		}, model.StatusRelapse, 0},
		{"other incident is relapse", []model.Event{
			{PigNo: 1, Seq: 1, WkGubun: model.EventIncident, WkDate: model.Date(2024, 2, 1), SagoGubunCd: "020009"},
		}, model.StatusRelapse, 0},
		{"abortion", []model.Event{
			ev(1, 1, model.EventMating, 2024, 1, 10),
			{PigNo: 1, Seq: 2, WkGubun: model.EventIncident, WkDate: model.Date(2024, 3, 1), SagoGubunCd: model.IncidentAbortion},
		}, model.StatusAbortion, 0},
		{"culled is terminal", []model.Event{
			ev(1, 1, model.EventMating, 2024, 1, 10),
			ev(1, 2, model.EventCull, 2024, 2, 1),
			ev(1, 3, model.EventMating, 2024, 3, 1),
		}, model.StatusCulled, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := lifecycle.Derive(a, tc.events, asOf)
			assert.Equal(t, tc.status, st.Status)
			assert.Equal(t, tc.parity, st.Parity)
			assert.Equal(t, tc.status == model.StatusCulled, st.Culled)
		})
	}
}

func TestDeriveFosterWeaning(t *testing.T) {
	events := []model.Event{
		ev(1, 1, model.EventFarrowing, 2024, 5, 4),
		{PigNo: 1, Seq: 2, WkGubun: model.EventWeaning, WkDate: model.Date(2024, 5, 25), DaeriYn: "Y"},
	}
	st := lifecycle.Derive(sow(1), events, model.Date(2024, 6, 1))
	assert.Equal(t, model.StatusFoster, st.Status)
	assert.Equal(t, model.Date(2024, 5, 25), st.Since)
}

func TestDeriveInitialStateFromAdmissionParity(t *testing.T) {
	a := sow(1)
	a.InSancha = 3
	st := lifecycle.Derive(a, nil, model.Date(2024, 6, 1))
	assert.Equal(t, model.StatusWeaned, st.Status)
	assert.Equal(t, 3, st.Parity)
	assert.Equal(t, a.InDt, st.Since)

	// A candidate is anchored on its birth date.
	st = lifecycle.Derive(sow(2), nil, model.Date(2024, 6, 1))
	assert.Equal(t, model.Date(2023, 1, 1), st.Since)
}

func TestDeriveOutDateCulls(t *testing.T) {
	a := sow(1)
	a.OutDt = model.Date(2024, 4, 1)
	events := []model.Event{ev(1, 1, model.EventMating, 2024, 1, 10)}

	before := lifecycle.Derive(a, events, model.Date(2024, 3, 31))
	assert.Equal(t, model.StatusPregnant, before.Status)

	on := lifecycle.Derive(a, events, model.Date(2024, 4, 1))
	assert.Equal(t, model.StatusCulled, on.Status)
	assert.True(t, on.Culled)
}

func TestDeriveTemporalBoundary(t *testing.T) {
	events := []model.Event{
		ev(1, 1, model.EventMating, 2024, 1, 10),
		ev(1, 2, model.EventFarrowing, 2024, 5, 4),
	}
	dayBefore := lifecycle.Derive(sow(1), events, model.Date(2024, 5, 3))
	assert.Equal(t, model.StatusPregnant, dayBefore.Status)
	assert.Equal(t, 0, dayBefore.Parity)
	_, hasFarrowing := dayBefore.Last(model.EventFarrowing)
	assert.False(t, hasFarrowing)

	sameDay := lifecycle.Derive(sow(1), events, model.Date(2024, 5, 4))
	assert.Equal(t, model.StatusLactating, sameDay.Status)
	assert.Equal(t, model.Date(2024, 1, 10), sameDay.LastMatingDate)
}

func TestDeriveTieBreaksBySeq(t *testing.T) {
	// Same day: farrowing (seq 1) then weaning of a foster litter (seq 2).
	events := []model.Event{
		{PigNo: 1, Seq: 2, WkGubun: model.EventWeaning, WkDate: model.Date(2024, 5, 4)},
		{PigNo: 1, Seq: 1, WkGubun: model.EventFarrowing, WkDate: model.Date(2024, 5, 4)},
	}
	st := lifecycle.Derive(sow(1), events, model.Date(2024, 5, 4))
	assert.Equal(t, model.StatusWeaned, st.Status)
	assert.Equal(t, 1, st.Parity)
}

func TestDerivePermutationInvariant(t *testing.T) {
	animals := []model.Animal{sow(1), sow(2), sow(3)}
	events := []model.Event{
		ev(1, 1, model.EventMating, 2024, 1, 10),
		ev(1, 2, model.EventFarrowing, 2024, 5, 4),
		ev(1, 3, model.EventWeaning, 2024, 5, 25),
		ev(1, 4, model.EventMating, 2024, 6, 1),
		ev(2, 1, model.EventMating, 2024, 2, 10),
		{PigNo: 2, Seq: 2, WkGubun: model.EventIncident, WkDate: model.Date(2024, 3, 1), SagoGubunCd: model.IncidentAbortion},
		ev(2, 3, model.EventMating, 2024, 3, 1),
		ev(3, 1, model.EventCull, 2024, 1, 1),
		ev(3, 2, model.EventMating, 2024, 1, 1),
	}
	asOf := model.Date(2024, 12, 31)
	want := lifecycle.DeriveAll(animals, events, asOf)
	require.Len(t, want, 3)
	assert.Equal(t, model.StatusPregnant, want[1].Status)
	assert.Equal(t, model.StatusPregnant, want[2].Status)
	assert.Equal(t, model.StatusCulled, want[3].Status)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := append([]model.Event(nil), events...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, lifecycle.DeriveAll(animals, shuffled, asOf))
	}
}

func TestTimeline(t *testing.T) {
	events := []model.Event{
		ev(1, 1, model.EventMating, 2024, 1, 10),
		ev(1, 2, model.EventFarrowing, 2024, 5, 4),
		ev(1, 3, model.EventWeaning, 2024, 5, 25),
		ev(1, 4, model.EventMating, 2024, 6, 1),
	}
	tl := lifecycle.Timeline(sow(1), events, model.Date(2024, 12, 31))
	require.Len(t, tl, 4)

	assert.Equal(t, model.StatusCandidate, tl[0].Before)
	assert.Equal(t, model.StatusPregnant, tl[0].After)
	assert.True(t, tl[0].PrevMating.IsZero())

	last := tl[3]
	assert.Equal(t, model.StatusWeaned, last.Before)
	assert.Equal(t, model.Date(2024, 5, 25), last.PrevWeaning)
	assert.Equal(t, model.Date(2024, 1, 10), last.PrevMating)
	assert.Equal(t, 1, last.Parity)
}
