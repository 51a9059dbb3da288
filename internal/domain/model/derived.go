package model

import "time"

// DerivedStatus is the lifecycle state of an animal as of a date.
type DerivedStatus struct {
	AnimalID       int64
	Status         StatusCode
	LastByType     map[EventType]Event
	LastMatingDate time.Time
	Parity         int
	Culled         bool
	// Since is the date the animal entered Status; it anchors task-table predictions.
	Since time.Time
}

// Last returns the most recent event of type t.
func (d DerivedStatus) Last(t EventType) (Event, bool) {
	ev, ok := d.LastByType[t]
	return ev, ok
}

// Transition is one event applied to an animal, with the state around it.
type Transition struct {
	Event  Event
	Before StatusCode
	After  StatusCode
	// Dates of the latest mating, farrowing and weaning strictly before Event (zero if none).
	PrevMating    time.Time
	PrevFarrowing time.Time
	PrevWeaning   time.Time
	// Parity after the event.
	Parity int
}

// InHerd reports whether the animal was admitted on or before d and had not left by d.
func (a Animal) InHerd(d time.Time) bool {
	if !a.InDt.IsZero() && a.InDt.After(d) {
		return false
	}
	return !a.OutBy(d)
}
