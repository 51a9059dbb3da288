package tx_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tigerroll/weekreport/pkg/tx"
)

type item struct {
	ID   int `gorm:"primaryKey"`
	Name string
}

func openDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&item{}))
	return db
}

func count(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&item{}).Count(&n).Error)
	return n
}

func TestSavepointRollbackKeepsEarlierWork(t *testing.T) {
	db := openDB(t)
	tm := tx.NewTransactionManager(db)

	err := tx.WithTransaction(context.Background(), tm, func(t2 tx.Tx) error {
		require.NoError(t, t2.DB().Create(&item{ID: 1, Name: "status"}).Error)
		require.NoError(t, t2.Savepoint("work"))
		require.NoError(t, t2.DB().Create(&item{ID: 2, Name: "partial"}).Error)
		require.NoError(t, t2.RollbackToSavepoint("work"))
		return t2.DB().Create(&item{ID: 3, Name: "log"}).Error
	})
	require.NoError(t, err)

	var names []string
	require.NoError(t, db.Model(&item{}).Order("id").Pluck("name", &names).Error)
	assert.Equal(t, []string{"status", "log"}, names)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db := openDB(t)
	tm := tx.NewTransactionManager(db)
	boom := errors.New("boom")

	err := tx.WithTransaction(context.Background(), tm, func(t2 tx.Tx) error {
		require.NoError(t, t2.DB().Create(&item{ID: 1}).Error)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), count(t, db))
}

func TestWithTransaction_RollsBackOnPanic(t *testing.T) {
	db := openDB(t)
	tm := tx.NewTransactionManager(db)

	assert.Panics(t, func() {
		_ = tx.WithTransaction(context.Background(), tm, func(t2 tx.Tx) error {
			_ = t2.DB().Create(&item{ID: 1}).Error
			panic("bad row")
		})
	})
	assert.Equal(t, int64(0), count(t, db))
}
