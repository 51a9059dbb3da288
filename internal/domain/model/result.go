package model

import "time"

// SharedContext is built once per batch pass and read by every farm.
type SharedContext struct {
	RunID string
	// Today is the run date in the configured timezone.
	Today time.Time
	// NationalAvgPrice is the head-weighted national carcass price over the period, 0 when unknown.
	NationalAvgPrice float64
}

// FarmResult is the outcome of one farm run.
type FarmResult struct {
	MasterSeq  int64
	FarmNo     int
	Status     string
	ShareToken string
	Period     ReportingPeriod
	DtFrom     string
	DtTo       string
	RowCount   int
	Err        error
	Elapsed    time.Duration
}

// OK reports whether the farm completed.
func (r FarmResult) OK() bool { return r.Status == FarmComplete }

// JobResult is the outcome of one batch pass.
type JobResult struct {
	MasterSeq   int64
	RunID       string
	Period      ReportingPeriod
	Status      string
	TargetCnt   int
	CompleteCnt int
	ErrorCnt    int
	Farms       []int
	Results     []FarmResult
	Elapsed     time.Duration
}

// RunOptions narrows and alters a batch pass.
type RunOptions struct {
	DayGb         DayGb
	Include       []int
	Exclude       []int
	ScheduleGroup string
	// Force ignores the system schedule flag.
	Force  bool
	DryRun bool
}
