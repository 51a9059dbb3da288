// Package lifecycle derives the lifecycle status of breeding animals from their event history.
//
// The derivation is a pure fold over the animal's events ordered by (WkDate, Seq). It reads nothing
// but its arguments, so the same input always yields the same status whatever order the slice has.
package lifecycle

import (
	"cmp"
	"slices"
	"time"

	"github.com/tigerroll/weekreport/internal/domain/model"
)

// Derive returns the status of animal as of asOf. Events of other animals and events dated after
// asOf are ignored.
func Derive(animal model.Animal, events []model.Event, asOf time.Time) model.DerivedStatus {
	s := newState(animal)
	for _, ev := range ordered(animal.PigNo, events, asOf) {
		if s.status == model.StatusCulled {
			break
		}
		s.apply(ev)
	}
	if animal.OutBy(asOf) && s.status != model.StatusCulled {
		s.status = model.StatusCulled
		s.since = animal.OutDt
	}
	return s.result(animal.PigNo)
}

// DeriveAll derives every animal as of asOf, keyed by PigNo.
func DeriveAll(animals []model.Animal, events []model.Event, asOf time.Time) map[int64]model.DerivedStatus {
	byPig := GroupByAnimal(events)
	out := make(map[int64]model.DerivedStatus, len(animals))
	for _, a := range animals {
		out[a.PigNo] = Derive(a, byPig[a.PigNo], asOf)
	}
	return out
}

// Timeline returns every event applied to animal up to asOf with the status before and after it.
// Events after a cull are not part of the timeline.
func Timeline(animal model.Animal, events []model.Event, asOf time.Time) []model.Transition {
	s := newState(animal)
	var out []model.Transition
	for _, ev := range ordered(animal.PigNo, events, asOf) {
		if s.status == model.StatusCulled {
			break
		}
		tr := model.Transition{
			Event:         ev,
			Before:        s.status,
			PrevMating:    s.lastDate(model.EventMating),
			PrevFarrowing: s.lastDate(model.EventFarrowing),
			PrevWeaning:   s.lastDate(model.EventWeaning),
		}
		s.apply(ev)
		tr.After = s.status
		tr.Parity = s.parity
		out = append(out, tr)
	}
	return out
}

// TimelineAll returns the timeline of every animal, keyed by PigNo.
func TimelineAll(animals []model.Animal, events []model.Event, asOf time.Time) map[int64][]model.Transition {
	byPig := GroupByAnimal(events)
	out := make(map[int64][]model.Transition, len(animals))
	for _, a := range animals {
		out[a.PigNo] = Timeline(a, byPig[a.PigNo], asOf)
	}
	return out
}

// GroupByAnimal splits events by PigNo.
func GroupByAnimal(events []model.Event) map[int64][]model.Event {
	out := make(map[int64][]model.Event)
	for _, ev := range events {
		out[ev.PigNo] = append(out[ev.PigNo], ev)
	}
	return out
}

type state struct {
	status model.StatusCode
	parity int
	since  time.Time
	last   map[model.EventType]model.Event
}

func newState(animal model.Animal) *state {
	s := &state{
		status: model.StatusCandidate,
		parity: animal.InSancha,
		since:  animal.BirthDt,
		last:   make(map[model.EventType]model.Event),
	}
	if s.since.IsZero() {
		s.since = animal.InDt
	}
	if animal.InSancha > 0 {
		s.status = model.StatusWeaned
		s.since = animal.InDt
	}
	return s
}

func (s *state) apply(ev model.Event) {
	switch ev.WkGubun {
	case model.EventMating:
		s.status = model.StatusPregnant
	case model.EventFarrowing:
		s.status = model.StatusLactating
		s.parity++
	case model.EventWeaning:
		if ev.Foster() {
			s.status = model.StatusFoster
		} else {
			s.status = model.StatusWeaned
		}
	case model.EventIncident:
		if ev.SagoGubunCd == model.IncidentAbortion {
			s.status = model.StatusAbortion
		} else {
			s.status = model.StatusRelapse
		}
	case model.EventCull:
		s.status = model.StatusCulled
	default:
		return
	}
	s.since = ev.WkDate
	s.last[ev.WkGubun] = ev
}

func (s *state) lastDate(t model.EventType) time.Time {
	return s.last[t].WkDate
}

func (s *state) result(pigNo int64) model.DerivedStatus {
	return model.DerivedStatus{
		AnimalID:       pigNo,
		Status:         s.status,
		LastByType:     s.last,
		LastMatingDate: s.lastDate(model.EventMating),
		Parity:         s.parity,
		Culled:         s.status == model.StatusCulled,
		Since:          s.since,
	}
}

// ordered copies the events of pigNo dated on or before asOf and sorts them by (WkDate, Seq).
// The remaining fields only break ties between malformed duplicates, keeping the order total.
func ordered(pigNo int64, events []model.Event, asOf time.Time) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.PigNo == pigNo && !ev.WkDate.After(asOf) {
			out = append(out, ev)
		}
	}
	slices.SortFunc(out, compareEvents)
	return out
}

func compareEvents(a, b model.Event) int {
	if c := a.WkDate.Compare(b.WkDate); c != 0 {
		return c
	}
	return cmp.Or(
		cmp.Compare(a.Seq, b.Seq),
		cmp.Compare(a.WkGubun, b.WkGubun),
		cmp.Compare(a.SagoGubunCd, b.SagoGubunCd),
		cmp.Compare(a.DaeriYn, b.DaeriYn),
		cmp.Compare(a.Silsan, b.Silsan),
		cmp.Compare(a.Sasan, b.Sasan),
		cmp.Compare(a.Mila, b.Mila),
		cmp.Compare(a.EuDusu, b.EuDusu),
		cmp.Compare(a.EuKg, b.EuKg),
		cmp.Compare(a.OutReasonCd, b.OutReasonCd),
	)
}
