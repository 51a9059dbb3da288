package model

import "time"

// Farm is the snapshot of a farm copied onto its report record.
type Farm struct {
	FarmNo        int
	FarmNm        string
	OwnerNm       string
	SigunguCd     string
	ScheduleGroup string
}

// Animal is a breeding sow.
type Animal struct {
	PigNo     int64
	FarmPigNo string
	FarmNo    int
	// BirthDt may be zero when unknown.
	BirthDt time.Time
	InDt    time.Time
	// OutDt is zero while the animal is in the herd.
	OutDt    time.Time
	InSancha int
}

// OutBy reports whether the animal left the herd on or before d.
func (a Animal) OutBy(d time.Time) bool {
	return !a.OutDt.IsZero() && !a.OutDt.After(d)
}

// Event is one immutable work record of an animal.
type Event struct {
	FarmNo      int
	PigNo       int64
	Seq         int
	WkGubun     EventType
	WkDate      time.Time
	SagoGubunCd string
	DaeriYn     string
	Silsan      int
	Sasan       int
	Mila        int
	EuDusu      int
	EuKg        float64
	OutReasonCd string
}

// Foster reports whether a weaning event is a foster (nurse sow) weaning.
func (e Event) Foster() bool {
	return e.WkGubun == EventWeaning && e.DaeriYn == "Y"
}

// Shipment is one shipped lot of market pigs.
type Shipment struct {
	FarmNo int
	ShipDt time.Time
	Dusu   int
	// TotalKg is the carcass weight of the lot.
	TotalKg float64
	// Price is the average price per carcass kg.
	Price float64
	// Grade1PlusDusu is the number of heads graded 1+.
	Grade1PlusDusu int
}

// Farm configuration codes (tc_farm_config).
const (
	ConfGestation      = "140002"
	ConfLactation      = "140003"
	ConfShipDay        = "140005"
	ConfRearingRate    = "140006"
	ConfFirstMatingAge = "140007"
	ConfAvgReturn      = "140008"
)

// FarmConfig holds the effective per-farm biological settings.
type FarmConfig struct {
	Gestation      int
	Lactation      int
	ShipDay        int
	RearingRate    int
	FirstMatingAge int
	AvgReturn      int
	// ReHeat is the grace period after FirstMatingAge before a candidate is overdue.
	ReHeat int
}

// DefaultFarmConfig returns the values used when a farm has no override.
func DefaultFarmConfig() FarmConfig {
	return FarmConfig{
		Gestation:      115,
		Lactation:      21,
		ShipDay:        180,
		RearingRate:    90,
		FirstMatingAge: 240,
		AvgReturn:      7,
		ReHeat:         20,
	}
}

// Apply overrides a setting by its configuration code. Unknown codes are ignored.
func (c *FarmConfig) Apply(code string, value int) {
	switch code {
	case ConfGestation:
		c.Gestation = value
	case ConfLactation:
		c.Lactation = value
	case ConfShipDay:
		c.ShipDay = value
	case ConfRearingRate:
		c.RearingRate = value
	case ConfFirstMatingAge:
		c.FirstMatingAge = value
	case ConfAvgReturn:
		c.AvgReturn = value
	}
}

// MethodConf is the projection setting of one kind.
type MethodConf struct {
	Method string
	// Tasks is the selected task subset. Nil selects every active task, an empty slice selects none.
	Tasks []int
}

// DefaultMethods returns the settings used when a farm stored none.
func DefaultMethods() map[Kind]MethodConf {
	return map[Kind]MethodConf{
		KindMating:    {Method: MethodModon},
		KindFarrowing: {Method: MethodModon},
		KindWeaning:   {Method: MethodModon},
		KindVaccine:   {Method: MethodModon},
		KindPregnancy: {Method: MethodFarm},
	}
}

// PlanTask is a row of the farm's task table (tb_plan_modon).
type PlanTask struct {
	FarmNo       int
	Seq          int
	WkNm         string
	JobGubunCd   string
	BaseStatusCd StatusCode
	PassDay      int
	UseYn        string
}

// Active reports whether the task is enabled.
func (t PlanTask) Active() bool { return t.UseYn != "N" }

// RawData is everything the pipeline loads for one farm, once.
type RawData struct {
	Animals   []Animal
	Events    []Event
	Shipments []Shipment
	Config    FarmConfig
	Methods   map[Kind]MethodConf
	Tasks     []PlanTask
	// PreviousSchedule holds the previous period's SCHEDULE rows for the farm.
	PreviousSchedule []TopicRow
}
