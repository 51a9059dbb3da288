package export

import "github.com/tigerroll/weekreport/internal/domain/model"

// farmRecord is the parquet layout of a farm report record.
type farmRecord struct {
	MasterSeq     int64   `parquet:"name=master_seq, type=INT64"`
	FarmNo        int32   `parquet:"name=farm_no, type=INT32"`
	FarmNm        string  `parquet:"name=farm_nm, type=BYTE_ARRAY, convertedtype=UTF8"`
	ScheduleGroup string  `parquet:"name=schedule_group, type=BYTE_ARRAY, convertedtype=UTF8"`
	StatusCd      string  `parquet:"name=status_cd, type=BYTE_ARRAY, convertedtype=UTF8"`
	TokenExpireDt string  `parquet:"name=token_expire_dt, type=BYTE_ARRAY, convertedtype=UTF8"`
	ModonCnt      int32   `parquet:"name=modon_cnt, type=INT32"`
	LastGbCnt     int32   `parquet:"name=last_gb_cnt, type=INT32"`
	LastGbSum     int32   `parquet:"name=last_gb_sum, type=INT32"`
	LastBmCnt     int32   `parquet:"name=last_bm_cnt, type=INT32"`
	LastBmLiveAvg float64 `parquet:"name=last_bm_live_avg, type=DOUBLE"`
	LastEuCnt     int32   `parquet:"name=last_eu_cnt, type=INT32"`
	LastEuSum     int32   `parquet:"name=last_eu_sum, type=INT32"`
	LastSgCnt     int32   `parquet:"name=last_sg_cnt, type=INT32"`
	LastCullCnt   int32   `parquet:"name=last_cull_cnt, type=INT32"`
	LastShipCnt   int32   `parquet:"name=last_ship_cnt, type=INT32"`
	LastShipPrice float64 `parquet:"name=last_ship_price, type=DOUBLE"`
	AlertCnt      int32   `parquet:"name=alert_cnt, type=INT32"`
	ThisGbSum     int32   `parquet:"name=this_gb_sum, type=INT32"`
	ThisBmSum     int32   `parquet:"name=this_bm_sum, type=INT32"`
	ThisEuSum     int32   `parquet:"name=this_eu_sum, type=INT32"`
	ThisVcSum     int32   `parquet:"name=this_vc_sum, type=INT32"`
	ThisImSum     int32   `parquet:"name=this_im_sum, type=INT32"`
}

// topicRecord is the parquet layout of a topic row. Share tokens are never archived.
type topicRecord struct {
	MasterSeq int64    `parquet:"name=master_seq, type=INT64"`
	FarmNo    int32    `parquet:"name=farm_no, type=INT32"`
	Gubun     string   `parquet:"name=gubun, type=BYTE_ARRAY, convertedtype=UTF8"`
	SubGubun  string   `parquet:"name=sub_gubun, type=BYTE_ARRAY, convertedtype=UTF8"`
	SortNo    int32    `parquet:"name=sort_no, type=INT32"`
	Cnt1      int32    `parquet:"name=cnt_1, type=INT32"`
	Cnt2      int32    `parquet:"name=cnt_2, type=INT32"`
	Cnt3      int32    `parquet:"name=cnt_3, type=INT32"`
	Cnt4      int32    `parquet:"name=cnt_4, type=INT32"`
	Cnt5      int32    `parquet:"name=cnt_5, type=INT32"`
	Cnt6      int32    `parquet:"name=cnt_6, type=INT32"`
	Cnt7      int32    `parquet:"name=cnt_7, type=INT32"`
	Cnt8      int32    `parquet:"name=cnt_8, type=INT32"`
	Val1      *float64 `parquet:"name=val_1, type=DOUBLE, repetitiontype=OPTIONAL"`
	Val2      *float64 `parquet:"name=val_2, type=DOUBLE, repetitiontype=OPTIONAL"`
	Val3      *float64 `parquet:"name=val_3, type=DOUBLE, repetitiontype=OPTIONAL"`
	Val4      *float64 `parquet:"name=val_4, type=DOUBLE, repetitiontype=OPTIONAL"`
	Val5      *float64 `parquet:"name=val_5, type=DOUBLE, repetitiontype=OPTIONAL"`
	Val6      *float64 `parquet:"name=val_6, type=DOUBLE, repetitiontype=OPTIONAL"`
	Str1      string   `parquet:"name=str_1, type=BYTE_ARRAY, convertedtype=UTF8"`
	Str2      string   `parquet:"name=str_2, type=BYTE_ARRAY, convertedtype=UTF8"`
	Str3      string   `parquet:"name=str_3, type=BYTE_ARRAY, convertedtype=UTF8"`
	Str4      string   `parquet:"name=str_4, type=BYTE_ARRAY, convertedtype=UTF8"`
	Str5      string   `parquet:"name=str_5, type=BYTE_ARRAY, convertedtype=UTF8"`
}

func toFarmRecord(r model.FarmReportRecord) farmRecord {
	s := r.FarmSummary
	return farmRecord{
		MasterSeq:     r.MasterSeq,
		FarmNo:        int32(r.FarmNo),
		FarmNm:        r.FarmNm,
		ScheduleGroup: r.ScheduleGroup,
		StatusCd:      r.StatusCd,
		TokenExpireDt: r.TokenExpireDt,
		ModonCnt:      int32(s.ModonCnt),
		LastGbCnt:     int32(s.LastGbCnt),
		LastGbSum:     int32(s.LastGbSum),
		LastBmCnt:     int32(s.LastBmCnt),
		LastBmLiveAvg: s.LastBmLiveAvg,
		LastEuCnt:     int32(s.LastEuCnt),
		LastEuSum:     int32(s.LastEuSum),
		LastSgCnt:     int32(s.LastSgCnt),
		LastCullCnt:   int32(s.LastCullCnt),
		LastShipCnt:   int32(s.LastShipCnt),
		LastShipPrice: s.LastShipPrice,
		AlertCnt:      int32(s.AlertCnt),
		ThisGbSum:     int32(s.ThisGbSum),
		ThisBmSum:     int32(s.ThisBmSum),
		ThisEuSum:     int32(s.ThisEuSum),
		ThisVcSum:     int32(s.ThisVcSum),
		ThisImSum:     int32(s.ThisImSum),
	}
}

func toTopicRecord(r model.TopicRow) topicRecord {
	return topicRecord{
		MasterSeq: r.MasterSeq,
		FarmNo:    int32(r.FarmNo),
		Gubun:     r.Gubun,
		SubGubun:  r.SubGubun,
		SortNo:    int32(r.SortNo),
		Cnt1:      int32(r.Cnt1),
		Cnt2:      int32(r.Cnt2),
		Cnt3:      int32(r.Cnt3),
		Cnt4:      int32(r.Cnt4),
		Cnt5:      int32(r.Cnt5),
		Cnt6:      int32(r.Cnt6),
		Cnt7:      int32(r.Cnt7),
		Cnt8:      int32(r.Cnt8),
		Val1:      r.Val1,
		Val2:      r.Val2,
		Val3:      r.Val3,
		Val4:      r.Val4,
		Val5:      r.Val5,
		Val6:      r.Val6,
		Str1:      r.Str1,
		Str2:      r.Str2,
		Str3:      r.Str3,
		Str4:      r.Str4,
		Str5:      r.Str5,
	}
}
