package model

import "time"

// JobRecord is one batch pass over a reporting period (ts_ins_master).
type JobRecord struct {
	Seq         int64      `gorm:"column:seq;primaryKey;autoIncrement"`
	DayGb       string     `gorm:"column:day_gb;size:10;not null;uniqueIndex:ux_ins_master_period"`
	ReportYear  int        `gorm:"column:report_year;not null;uniqueIndex:ux_ins_master_period"`
	ReportNo    int        `gorm:"column:report_no;not null;uniqueIndex:ux_ins_master_period"`
	DtFrom      string     `gorm:"column:dt_from;size:8;not null"`
	DtTo        string     `gorm:"column:dt_to;size:8;not null"`
	StatusCd    string     `gorm:"column:status_cd;size:10;not null"`
	TargetCnt   int        `gorm:"column:target_cnt;not null;default:0"`
	CompleteCnt int        `gorm:"column:complete_cnt;not null;default:0"`
	ErrorCnt    int        `gorm:"column:error_cnt;not null;default:0"`
	StartDt     *time.Time `gorm:"column:start_dt"`
	EndDt       *time.Time `gorm:"column:end_dt"`
	ElapsedSec  int        `gorm:"column:elapsed_sec;not null;default:0"`
	RunID       string     `gorm:"column:run_id;size:36"`
}

func (JobRecord) TableName() string { return "ts_ins_master" }

// FarmSummary is the denormalized topic summary stored on the farm report record.
type FarmSummary struct {
	ModonCnt      int     `gorm:"column:modon_cnt;not null;default:0"`
	LastGbCnt     int     `gorm:"column:last_gb_cnt;not null;default:0"`
	LastGbSum     int     `gorm:"column:last_gb_sum;not null;default:0"`
	LastBmCnt     int     `gorm:"column:last_bm_cnt;not null;default:0"`
	LastBmLiveAvg float64 `gorm:"column:last_bm_live_avg;not null;default:0"`
	LastEuCnt     int     `gorm:"column:last_eu_cnt;not null;default:0"`
	LastEuSum     int     `gorm:"column:last_eu_sum;not null;default:0"`
	LastSgCnt     int     `gorm:"column:last_sg_cnt;not null;default:0"`
	LastCullCnt   int     `gorm:"column:last_cull_cnt;not null;default:0"`
	LastShipCnt   int     `gorm:"column:last_ship_cnt;not null;default:0"`
	LastShipPrice float64 `gorm:"column:last_ship_price;not null;default:0"`
	AlertCnt      int     `gorm:"column:alert_cnt;not null;default:0"`
	ThisGbSum     int     `gorm:"column:this_gb_sum;not null;default:0"`
	ThisBmSum     int     `gorm:"column:this_bm_sum;not null;default:0"`
	ThisEuSum     int     `gorm:"column:this_eu_sum;not null;default:0"`
	ThisVcSum     int     `gorm:"column:this_vc_sum;not null;default:0"`
	ThisImSum     int     `gorm:"column:this_im_sum;not null;default:0"`
}

// FarmReportRecord is the report of one farm within a job (ts_ins_week).
type FarmReportRecord struct {
	MasterSeq     int64  `gorm:"column:master_seq;primaryKey;autoIncrement:false"`
	FarmNo        int    `gorm:"column:farm_no;primaryKey;autoIncrement:false"`
	FarmNm        string `gorm:"column:farm_nm;size:100"`
	OwnerNm       string `gorm:"column:owner_nm;size:50"`
	SigunguCd     string `gorm:"column:sigungu_cd;size:10"`
	ScheduleGroup string `gorm:"column:schedule_group;size:10"`
	StatusCd      string `gorm:"column:status_cd;size:10;not null"`
	ShareToken    string `gorm:"column:share_token;size:64"`
	TokenExpireDt string `gorm:"column:token_expire_dt;size:8"`
	FarmSummary   `gorm:"embedded"`
	UpdDt         time.Time `gorm:"column:upd_dt"`
}

func (FarmReportRecord) TableName() string { return "ts_ins_week" }

// Snapshot returns the farm fields copied onto the record.
func (r FarmReportRecord) Snapshot() Farm {
	return Farm{FarmNo: r.FarmNo, FarmNm: r.FarmNm, OwnerNm: r.OwnerNm, SigunguCd: r.SigunguCd, ScheduleGroup: r.ScheduleGroup}
}

// TopicRow is one generic row of a topic (ts_ins_week_sub).
// Cnt columns are never NULL; a nil Val means the value could not be computed.
type TopicRow struct {
	MasterSeq int64    `gorm:"column:master_seq;primaryKey;autoIncrement:false"`
	FarmNo    int      `gorm:"column:farm_no;primaryKey;autoIncrement:false"`
	Gubun     string   `gorm:"column:gubun;primaryKey;size:20"`
	SubGubun  string   `gorm:"column:sub_gubun;primaryKey;size:20"`
	SortNo    int      `gorm:"column:sort_no;primaryKey;autoIncrement:false"`
	Cnt1      int      `gorm:"column:cnt_1;not null;default:0"`
	Cnt2      int      `gorm:"column:cnt_2;not null;default:0"`
	Cnt3      int      `gorm:"column:cnt_3;not null;default:0"`
	Cnt4      int      `gorm:"column:cnt_4;not null;default:0"`
	Cnt5      int      `gorm:"column:cnt_5;not null;default:0"`
	Cnt6      int      `gorm:"column:cnt_6;not null;default:0"`
	Cnt7      int      `gorm:"column:cnt_7;not null;default:0"`
	Cnt8      int      `gorm:"column:cnt_8;not null;default:0"`
	Val1      *float64 `gorm:"column:val_1"`
	Val2      *float64 `gorm:"column:val_2"`
	Val3      *float64 `gorm:"column:val_3"`
	Val4      *float64 `gorm:"column:val_4"`
	Val5      *float64 `gorm:"column:val_5"`
	Val6      *float64 `gorm:"column:val_6"`
	Str1      string   `gorm:"column:str_1;size:200;not null;default:''"`
	Str2      string   `gorm:"column:str_2;size:200;not null;default:''"`
	Str3      string   `gorm:"column:str_3;size:200;not null;default:''"`
	Str4      string   `gorm:"column:str_4;size:200;not null;default:''"`
	Str5      string   `gorm:"column:str_5;size:500;not null;default:''"`
}

func (TopicRow) TableName() string { return "ts_ins_week_sub" }

// NewTopicRow returns an empty row with its identity set. MasterSeq and FarmNo are filled by the pipeline.
func NewTopicRow(gubun, subGubun string, sortNo int) TopicRow {
	return TopicRow{Gubun: gubun, SubGubun: subGubun, SortNo: sortNo}
}

// SetCnt sets Cnt1..Cnt8 by position (1-based). Out of range positions are ignored.
func (r *TopicRow) SetCnt(pos, v int) {
	if p := r.cntPtr(pos); p != nil {
		*p = v
	}
}

// Cnt returns Cnt1..Cnt8 by position (1-based).
func (r TopicRow) Cnt(pos int) int {
	if p := r.cntPtr(pos); p != nil {
		return *p
	}
	return 0
}

func (r *TopicRow) cntPtr(pos int) *int {
	switch pos {
	case 1:
		return &r.Cnt1
	case 2:
		return &r.Cnt2
	case 3:
		return &r.Cnt3
	case 4:
		return &r.Cnt4
	case 5:
		return &r.Cnt5
	case 6:
		return &r.Cnt6
	case 7:
		return &r.Cnt7
	case 8:
		return &r.Cnt8
	}
	return nil
}

// SetStr sets Str1..Str5 by position (1-based).
func (r *TopicRow) SetStr(pos int, v string) {
	switch pos {
	case 1:
		r.Str1 = v
	case 2:
		r.Str2 = v
	case 3:
		r.Str3 = v
	case 4:
		r.Str4 = v
	case 5:
		r.Str5 = v
	}
}

// Str returns Str1..Str5 by position (1-based).
func (r TopicRow) Str(pos int) string {
	switch pos {
	case 1:
		return r.Str1
	case 2:
		return r.Str2
	case 3:
		return r.Str3
	case 4:
		return r.Str4
	case 5:
		return r.Str5
	}
	return ""
}

// JobLog is an error record of a farm run (ts_ins_job_log).
type JobLog struct {
	Seq       int64     `gorm:"column:seq;primaryKey;autoIncrement"`
	MasterSeq int64     `gorm:"column:master_seq;not null"`
	FarmNo    int       `gorm:"column:farm_no;not null"`
	ProcNm    string    `gorm:"column:proc_nm;size:50"`
	StatusCd  string    `gorm:"column:status_cd;size:10"`
	ErrorMsg  string    `gorm:"column:error_msg;size:4000"`
	LogDt     time.Time `gorm:"column:log_dt"`
}

func (JobLog) TableName() string { return "ts_ins_job_log" }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Ratio returns num/den, or nil when den is zero.
func Ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	return Float(num / den)
}

// Percent returns num/den*100, or nil when den is zero.
func Percent(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	return Float(num / den * 100)
}

// ValueOr dereferences v, returning def when nil.
func ValueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
