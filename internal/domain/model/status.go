package model

// StatusCode is the lifecycle status of a breeding animal.
type StatusCode string

const (
	StatusCandidate StatusCode = "010001"
	StatusPregnant  StatusCode = "010002"
	StatusLactating StatusCode = "010003"
	StatusFoster    StatusCode = "010004"
	StatusWeaned    StatusCode = "010005"
	StatusRelapse   StatusCode = "010006"
	StatusAbortion  StatusCode = "010007"
	StatusCulled    StatusCode = "010008"
)

// HerdStatuses lists the non-terminal statuses in display order.
var HerdStatuses = []StatusCode{
	StatusCandidate, StatusPregnant, StatusLactating, StatusFoster,
	StatusWeaned, StatusRelapse, StatusAbortion,
}

// EventType is the work type of an event record.
type EventType string

const (
	EventMating    EventType = "G"
	EventFarrowing EventType = "B"
	EventWeaning   EventType = "E"
	EventIncident  EventType = "F"
	EventCull      EventType = "Z"
)

// Incident subtypes (SagoGubunCd).
const (
	IncidentRelapse  = "020001"
	IncidentAbortion = "020002"
)

// Kind is a kind of scheduled work.
type Kind string

const (
	KindMating    Kind = "GB"
	KindFarrowing Kind = "BM"
	KindWeaning   Kind = "EU"
	KindVaccine   Kind = "VC"
	KindPregnancy Kind = "IM"
)

// Kinds lists every kind in the order the schedule topic persists them.
var Kinds = []Kind{KindMating, KindFarrowing, KindWeaning, KindVaccine, KindPregnancy}

// JobGubunCd returns the task-table job code of the kind.
func (k Kind) JobGubunCd() string {
	switch k {
	case KindMating:
		return "150005"
	case KindFarrowing:
		return "150002"
	case KindWeaning:
		return "150003"
	case KindVaccine:
		return "150004"
	case KindPregnancy:
		return "150001"
	}
	return ""
}

// ConfKey returns the ts_ins_conf key holding the kind's method settings.
func (k Kind) ConfKey() string {
	switch k {
	case KindMating:
		return "mating"
	case KindFarrowing:
		return "farrowing"
	case KindWeaning:
		return "weaning"
	case KindVaccine:
		return "vaccine"
	case KindPregnancy:
		return "pregnancy"
	}
	return ""
}

// KindIndex returns the position of k in Kinds, or -1.
func KindIndex(k Kind) int {
	for i, kk := range Kinds {
		if kk == k {
			return i
		}
	}
	return -1
}

// Job statuses.
const (
	JobPending  = "PENDING"
	JobRunning  = "RUNNING"
	JobComplete = "COMPLETE"
	JobError    = "ERROR"
	JobSkipped  = "SKIPPED"
	JobDryRun   = "DRY_RUN"
)

// Farm report statuses.
const (
	FarmReady    = "READY"
	FarmRunning  = "RUNNING"
	FarmComplete = "COMPLETE"
	FarmError    = "ERROR"
)

// Methods of schedule projection.
const (
	MethodFarm  = "farm"
	MethodModon = "modon"
)
