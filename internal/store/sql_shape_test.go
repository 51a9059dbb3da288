package store_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tigerroll/weekreport/internal/domain/model"
	"github.com/tigerroll/weekreport/internal/store"
)

func setupMySQLMock(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	t.Cleanup(func() {
		mock.ExpectClose()
		_ = sqlDB.Close()
	})
	return store.New(gormDB), mock
}

func TestDeleteTopicRowsSQL(t *testing.T) {
	s, mock := setupMySQLMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `ts_ins_week_sub` WHERE master_seq = ? AND farm_no = ?")).
		WithArgs(7, 101).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectCommit()

	require.NoError(t, s.DeleteTopicRows(context.Background(), 7, 101))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetFarmStatusSQL(t *testing.T) {
	s, mock := setupMySQLMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `ts_ins_week` SET `status_cd`=?,`upd_dt`=? WHERE master_seq = ? AND farm_no = ?")).
		WithArgs(model.FarmRunning, sqlmock.AnyArg(), 7, 101).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.SetFarmStatus(context.Background(), 7, 101, model.FarmRunning))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertPlaceholdersSQL(t *testing.T) {
	s, mock := setupMySQLMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `ts_ins_week` .* ON DUPLICATE KEY UPDATE `farm_nm`=").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := s.UpsertPlaceholders(context.Background(), 7, []model.Farm{{FarmNo: 101}, {FarmNo: 102}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleEnabledSQL(t *testing.T) {
	s, mock := setupMySQLMock(t)
	mock.ExpectQuery("SELECT \\* FROM `ta_sys_config` ORDER BY seq LIMIT").
		WillReturnRows(sqlmock.NewRows([]string{"seq", "ins_schedule_yn"}).AddRow(1, "N"))

	on, err := s.ScheduleEnabled(context.Background())
	require.NoError(t, err)
	assert.False(t, on)
	assert.NoError(t, mock.ExpectationsWereMet())
}
