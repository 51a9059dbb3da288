package model

import "time"

// Projection is one predicted task of one animal.
type Projection struct {
	AnimalID   int64
	Kind       Kind
	Date       time.Time
	TaskName   string
	BaseStatus StatusCode
	// Overdue marks a mating moved from before the window to its first day.
	Overdue bool
}

// PlanDetail groups the predictions of one task within a window.
type PlanDetail struct {
	TaskName   string
	BaseStatus StatusCode
	Count      int
	Daily      []int
}

// KindPlan is the projection of one kind over a window.
type KindPlan struct {
	Kind   Kind
	Method string
	Count  int
	// Daily holds the count per day of the window, index 0 being the window start.
	Daily   []int
	Details []PlanDetail
	Items   []Projection
	Note    string
	// Reused marks a plan copied from the previous period's persisted schedule.
	Reused bool
}

// ProjectionWindow is a date range with a plan per kind.
type ProjectionWindow struct {
	From  time.Time
	To    time.Time
	Plans map[Kind]KindPlan
}

// Days returns the window length.
func (w ProjectionWindow) Days() int {
	if w.From.IsZero() {
		return 0
	}
	return DaysBetween(w.From, w.To) + 1
}

// Count returns the planned count of k, 0 when absent.
func (w ProjectionWindow) Count(k Kind) int {
	return w.Plans[k].Count
}

// ProjectionSet holds the current-period plan (planned vs actual) and the forward schedule.
type ProjectionSet struct {
	Current ProjectionWindow
	Forward ProjectionWindow
}
