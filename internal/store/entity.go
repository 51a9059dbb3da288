package store

// Rows of the read-only source tables. Dates are stored as YYYYMMDD strings, "" when unknown.

// SysConfigRow is the system flag table.
type SysConfigRow struct {
	Seq           int    `gorm:"column:seq;primaryKey;autoIncrement:false"`
	InsScheduleYn string `gorm:"column:ins_schedule_yn"`
}

func (SysConfigRow) TableName() string { return "ta_sys_config" }

// FarmRow is a farm master row.
type FarmRow struct {
	FarmNo    int    `gorm:"column:farm_no;primaryKey;autoIncrement:false"`
	FarmNm    string `gorm:"column:farm_nm"`
	OwnerNm   string `gorm:"column:owner_nm"`
	SigunguCd string `gorm:"column:sigungu_cd"`
	UseYn     string `gorm:"column:use_yn"`
}

func (FarmRow) TableName() string { return "ta_farm" }

// ServiceRow is the report service subscription of a farm.
type ServiceRow struct {
	FarmNo        int    `gorm:"column:farm_no;primaryKey;autoIncrement:false"`
	UseYn         string `gorm:"column:use_yn"`
	StartDt       string `gorm:"column:start_dt"`
	EndDt         string `gorm:"column:end_dt"`
	ScheduleGroup string `gorm:"column:schedule_group"`
}

func (ServiceRow) TableName() string { return "ts_ins_service" }

// AnimalRow is a sow.
type AnimalRow struct {
	PigNo     int64  `gorm:"column:pig_no;primaryKey;autoIncrement:false"`
	FarmNo    int    `gorm:"column:farm_no"`
	FarmPigNo string `gorm:"column:farm_pig_no"`
	BirthDt   string `gorm:"column:birth_dt"`
	InDt      string `gorm:"column:in_dt"`
	OutDt     string `gorm:"column:out_dt"`
	InSancha  int    `gorm:"column:in_sancha"`
}

func (AnimalRow) TableName() string { return "tb_modon" }

// EventRow is a work record of a sow.
type EventRow struct {
	FarmNo      int     `gorm:"column:farm_no"`
	PigNo       int64   `gorm:"column:pig_no;primaryKey;autoIncrement:false"`
	Seq         int     `gorm:"column:seq;primaryKey;autoIncrement:false"`
	WkGubun     string  `gorm:"column:wk_gubun"`
	WkDt        string  `gorm:"column:wk_dt"`
	SagoGubunCd string  `gorm:"column:sago_gubun_cd"`
	DaeriYn     string  `gorm:"column:daeri_yn"`
	Silsan      int     `gorm:"column:silsan"`
	Sasan       int     `gorm:"column:sasan"`
	Mila        int     `gorm:"column:mila"`
	EuDusu      int     `gorm:"column:eu_dusu"`
	EuKg        float64 `gorm:"column:eu_kg"`
	OutReasonCd string  `gorm:"column:out_reason_cd"`
}

func (EventRow) TableName() string { return "tb_modon_wk" }

// ShipRow is a shipped lot.
type ShipRow struct {
	Seq         int64   `gorm:"column:seq;primaryKey;autoIncrement"`
	FarmNo      int     `gorm:"column:farm_no"`
	ShipDt      string  `gorm:"column:ship_dt"`
	Dusu        int     `gorm:"column:dusu"`
	TotalKg     float64 `gorm:"column:total_kg"`
	Price       float64 `gorm:"column:price"`
	Grade1pDusu int     `gorm:"column:grade1p_dusu"`
}

func (ShipRow) TableName() string { return "tb_ship" }

// FarmConfigRow overrides one biological setting of a farm.
type FarmConfigRow struct {
	FarmNo int    `gorm:"column:farm_no;primaryKey;autoIncrement:false"`
	Code   string `gorm:"column:code;primaryKey"`
	Value  int    `gorm:"column:value"`
}

func (FarmConfigRow) TableName() string { return "tc_farm_config" }

// InsConfRow holds the projection setting of one kind as JSON.
type InsConfRow struct {
	FarmNo   int    `gorm:"column:farm_no;primaryKey;autoIncrement:false"`
	ConfKey  string `gorm:"column:conf_key;primaryKey"`
	ConfJSON string `gorm:"column:conf_json"`
}

func (InsConfRow) TableName() string { return "ts_ins_conf" }

// PlanTaskRow is a task of the farm's task table.
type PlanTaskRow struct {
	FarmNo       int    `gorm:"column:farm_no;primaryKey;autoIncrement:false"`
	Seq          int    `gorm:"column:seq;primaryKey;autoIncrement:false"`
	WkNm         string `gorm:"column:wk_nm"`
	JobGubunCd   string `gorm:"column:job_gubun_cd"`
	BaseStatusCd string `gorm:"column:base_status_cd"`
	PassDay      int    `gorm:"column:pass_day"`
	UseYn        string `gorm:"column:use_yn"`
}

func (PlanTaskRow) TableName() string { return "tb_plan_modon" }

// MarketPriceRow is the national carcass price of a market day.
type MarketPriceRow struct {
	MarketDt string  `gorm:"column:market_dt;primaryKey"`
	Dusu     int     `gorm:"column:dusu"`
	AvgPrice float64 `gorm:"column:avg_price"`
}

func (MarketPriceRow) TableName() string { return "tm_market_price" }
