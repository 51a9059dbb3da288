package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tigerroll/weekreport/internal/domain/model"
	"github.com/tigerroll/weekreport/internal/schedule"
	"github.com/tigerroll/weekreport/pkg/support/logger"
)

// RawDataQuery selects the raw data of one farm.
type RawDataQuery struct {
	FarmNo int
	// From and To bound events and shipments. Animals that left before From are skipped.
	From time.Time
	To   time.Time
	// Previous is the period whose persisted SCHEDULE rows are loaded.
	Previous model.ReportingPeriod
}

// LoadRawData reads everything a farm report needs in one pass.
func (s *Store) LoadRawData(ctx context.Context, q RawDataQuery) (*model.RawData, error) {
	const op = "Store.LoadRawData"
	db := s.conn(ctx)
	from, to := ymd(q.From), ymd(q.To)

	var animals []AnimalRow
	err := db.Where("farm_no = ? AND (out_dt = '' OR out_dt >= ?)", q.FarmNo, from).
		Order("pig_no").Find(&animals).Error
	if err != nil {
		return nil, wrap(op, err, "failed to load animals of farm %d", q.FarmNo)
	}

	var events []EventRow
	err = db.Where("farm_no = ? AND wk_dt BETWEEN ? AND ?", q.FarmNo, from, to).
		Order("pig_no, wk_dt, seq").Find(&events).Error
	if err != nil {
		return nil, wrap(op, err, "failed to load events of farm %d", q.FarmNo)
	}

	var ships []ShipRow
	err = db.Where("farm_no = ? AND ship_dt BETWEEN ? AND ?", q.FarmNo, from, to).
		Order("ship_dt, seq").Find(&ships).Error
	if err != nil {
		return nil, wrap(op, err, "failed to load shipments of farm %d", q.FarmNo)
	}

	var configs []FarmConfigRow
	if err := db.Where("farm_no = ?", q.FarmNo).Find(&configs).Error; err != nil {
		return nil, wrap(op, err, "failed to load configuration of farm %d", q.FarmNo)
	}

	var confs []InsConfRow
	if err := db.Where("farm_no = ?", q.FarmNo).Find(&confs).Error; err != nil {
		return nil, wrap(op, err, "failed to load schedule settings of farm %d", q.FarmNo)
	}

	var tasks []PlanTaskRow
	if err := db.Where("farm_no = ?", q.FarmNo).Order("seq").Find(&tasks).Error; err != nil {
		return nil, wrap(op, err, "failed to load task table of farm %d", q.FarmNo)
	}

	prevRows, err := s.previousSchedule(ctx, q.FarmNo, q.Previous)
	if err != nil {
		return nil, wrap(op, err, "failed to load previous schedule of farm %d", q.FarmNo)
	}

	raw := &model.RawData{
		Config:           model.DefaultFarmConfig(),
		Methods:          model.DefaultMethods(),
		PreviousSchedule: prevRows,
	}
	for _, a := range animals {
		m, err := toAnimal(a)
		if err != nil {
			return nil, wrap(op, err, "invalid animal %d", a.PigNo)
		}
		raw.Animals = append(raw.Animals, m)
	}
	for _, e := range events {
		m, err := toEvent(e)
		if err != nil {
			return nil, wrap(op, err, "invalid event %d/%d", e.PigNo, e.Seq)
		}
		raw.Events = append(raw.Events, m)
	}
	for _, sh := range ships {
		m, err := toShipment(sh)
		if err != nil {
			return nil, wrap(op, err, "invalid shipment %d", sh.Seq)
		}
		raw.Shipments = append(raw.Shipments, m)
	}
	for _, c := range configs {
		raw.Config.Apply(c.Code, c.Value)
	}
	for _, c := range confs {
		kind, conf, ok := toMethodConf(c)
		if !ok {
			continue
		}
		raw.Methods[kind] = conf
	}
	for _, t := range tasks {
		raw.Tasks = append(raw.Tasks, toPlanTask(t))
	}
	return raw, nil
}

func (s *Store) previousSchedule(ctx context.Context, farmNo int, prev model.ReportingPeriod) ([]model.TopicRow, error) {
	if prev.DayGb == "" {
		return nil, nil
	}
	job, err := s.FindJob(ctx, prev)
	if err != nil || job == nil {
		return nil, err
	}
	var rows []model.TopicRow
	err = s.conn(ctx).
		Where("master_seq = ? AND farm_no = ? AND gubun = ?", job.Seq, farmNo, schedule.Topic).
		Order("sub_gubun, sort_no").
		Find(&rows).Error
	return rows, err
}

type methodJSON struct {
	Method string `json:"method"`
	Tasks  []int  `json:"tasks"`
}

// toMethodConf decodes a ts_ins_conf row. Unknown keys and unreadable JSON fall back to the default.
func toMethodConf(c InsConfRow) (model.Kind, model.MethodConf, bool) {
	var kind model.Kind
	for _, k := range model.Kinds {
		if k.ConfKey() == c.ConfKey {
			kind = k
		}
	}
	if kind == "" {
		return "", model.MethodConf{}, false
	}
	var m methodJSON
	if err := json.Unmarshal([]byte(c.ConfJSON), &m); err != nil {
		logger.Warnf("Farm %d: unreadable %s setting %q, using the default: %v", c.FarmNo, c.ConfKey, c.ConfJSON, err)
		return "", model.MethodConf{}, false
	}
	switch m.Method {
	case model.MethodFarm, model.MethodModon:
	default:
		logger.Warnf("Farm %d: unknown %s method %q, using the default.", c.FarmNo, c.ConfKey, m.Method)
		return "", model.MethodConf{}, false
	}
	return kind, model.MethodConf{Method: m.Method, Tasks: m.Tasks}, true
}
