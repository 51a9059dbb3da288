package store

import (
	"time"

	"github.com/tigerroll/weekreport/internal/domain/model"
)

func ymd(t time.Time) string { return model.YMD(t) }

// optionalDate parses a possibly empty YYYYMMDD column.
func optionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return model.ParseYMD(s)
}

func toAnimal(r AnimalRow) (model.Animal, error) {
	birth, err := optionalDate(r.BirthDt)
	if err != nil {
		return model.Animal{}, err
	}
	in, err := optionalDate(r.InDt)
	if err != nil {
		return model.Animal{}, err
	}
	out, err := optionalDate(r.OutDt)
	if err != nil {
		return model.Animal{}, err
	}
	return model.Animal{
		PigNo:     r.PigNo,
		FarmPigNo: r.FarmPigNo,
		FarmNo:    r.FarmNo,
		BirthDt:   birth,
		InDt:      in,
		OutDt:     out,
		InSancha:  r.InSancha,
	}, nil
}

func toEvent(r EventRow) (model.Event, error) {
	d, err := model.ParseYMD(r.WkDt)
	if err != nil {
		return model.Event{}, err
	}
	return model.Event{
		FarmNo:      r.FarmNo,
		PigNo:       r.PigNo,
		Seq:         r.Seq,
		WkGubun:     model.EventType(r.WkGubun),
		WkDate:      d,
		SagoGubunCd: r.SagoGubunCd,
		DaeriYn:     r.DaeriYn,
		Silsan:      r.Silsan,
		Sasan:       r.Sasan,
		Mila:        r.Mila,
		EuDusu:      r.EuDusu,
		EuKg:        r.EuKg,
		OutReasonCd: r.OutReasonCd,
	}, nil
}

func toShipment(r ShipRow) (model.Shipment, error) {
	d, err := model.ParseYMD(r.ShipDt)
	if err != nil {
		return model.Shipment{}, err
	}
	return model.Shipment{
		FarmNo:         r.FarmNo,
		ShipDt:         d,
		Dusu:           r.Dusu,
		TotalKg:        r.TotalKg,
		Price:          r.Price,
		Grade1PlusDusu: r.Grade1pDusu,
	}, nil
}

func toPlanTask(r PlanTaskRow) model.PlanTask {
	return model.PlanTask{
		FarmNo:       r.FarmNo,
		Seq:          r.Seq,
		WkNm:         r.WkNm,
		JobGubunCd:   r.JobGubunCd,
		BaseStatusCd: model.StatusCode(r.BaseStatusCd),
		PassDay:      r.PassDay,
		UseYn:        r.UseYn,
	}
}
