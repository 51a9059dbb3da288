// Package store reads the farm source tables and writes the job, farm report and topic tables
// through gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tigerroll/weekreport/pkg/support/exception"
)

// Store is the report repository. A Store bound to a transaction (see WithTx) runs every
// statement inside it.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// New creates a Store over db.
func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithTx returns a Store that uses tx.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx, now: s.now}
}

// DB returns the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func wrap(op string, err error, format string, a ...interface{}) error {
	if err == nil {
		return nil
	}
	return exception.NewReportError(op, fmt.Sprintf(format, a...), err)
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ScheduleEnabled reads the system flag that allows batch passes. A missing row enables them;
// only "N" disables.
func (s *Store) ScheduleEnabled(ctx context.Context) (bool, error) {
	const op = "Store.ScheduleEnabled"
	var row SysConfigRow
	err := s.conn(ctx).Order("seq").Take(&row).Error
	if notFound(err) {
		return true, nil
	}
	if err != nil {
		return false, wrap(op, err, "failed to read ins_schedule_yn")
	}
	return row.InsScheduleYn != "N", nil
}

// NationalAvgPrice returns the head-weighted national carcass price over [from, to], 0 without data.
func (s *Store) NationalAvgPrice(ctx context.Context, from, to time.Time) (float64, error) {
	const op = "Store.NationalAvgPrice"
	var agg struct {
		Priced float64
		Heads  int64
	}
	err := s.conn(ctx).Model(&MarketPriceRow{}).
		Select("COALESCE(SUM(avg_price * dusu), 0) AS priced, COALESCE(SUM(dusu), 0) AS heads").
		Where("market_dt BETWEEN ? AND ?", ymd(from), ymd(to)).
		Scan(&agg).Error
	if err != nil {
		return 0, wrap(op, err, "failed to aggregate market prices")
	}
	if agg.Heads == 0 {
		return 0, nil
	}
	return agg.Priced / float64(agg.Heads), nil
}
