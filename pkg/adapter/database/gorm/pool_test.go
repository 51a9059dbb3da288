package gorm_test

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormio "gorm.io/gorm"

	"github.com/tigerroll/weekreport/pkg/adapter/database"
	gormadapter "github.com/tigerroll/weekreport/pkg/adapter/database/gorm"
	_ "github.com/tigerroll/weekreport/pkg/adapter/database/gorm/sqlite"
	"github.com/tigerroll/weekreport/pkg/support/exception"
)

func openFileDB(t *testing.T, maxOpen int) *gormio.DB {
	t.Helper()
	db, err := gormadapter.Open(database.DatabaseConfig{
		Type:     "sqlite",
		Database: filepath.Join(t.TempDir(), "pool.db"),
		Pool:     database.PoolConfig{MaxOpenConns: maxOpen},
	}, "SILENT")
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func TestConnPool_BoundsConcurrentLeases(t *testing.T) {
	db := openFileDB(t, 5)
	var observed int32
	pool := gormadapter.NewConnPool(db, 2, func(inUse int) {
		for {
			cur := atomic.LoadInt32(&observed)
			if int32(inUse) <= cur || atomic.CompareAndSwapInt32(&observed, cur, int32(inUse)) {
				return
			}
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lease, err := pool.Acquire(context.Background())
			require.NoError(t, err)
			defer lease.Release()
			var one int
			require.NoError(t, lease.DB().Raw("SELECT 1").Scan(&one).Error)
			time.Sleep(20 * time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, pool.InUse())
	assert.LessOrEqual(t, pool.MaxInUse(), 2)
	assert.GreaterOrEqual(t, pool.MaxInUse(), 1)
	assert.LessOrEqual(t, int(atomic.LoadInt32(&observed)), 2)
}

func TestConnPool_LeaseIsPinnedToOneConnection(t *testing.T) {
	db := openFileDB(t, 4)
	pool := gormadapter.NewConnPool(db, 1, nil)

	lease, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer lease.Release()

	// TEMP tables are private to the connection that created them.
	require.NoError(t, lease.DB().Exec("CREATE TEMP TABLE pinned (v INTEGER)").Error)
	require.NoError(t, lease.DB().Exec("INSERT INTO pinned (v) VALUES (7)").Error)
	var v int
	require.NoError(t, lease.DB().Raw("SELECT v FROM pinned").Scan(&v).Error)
	assert.Equal(t, 7, v)
}

func TestConnPool_AcquireHonoursContext(t *testing.T) {
	db := openFileDB(t, 2)
	pool := gormadapter.NewConnPool(db, 1, nil)

	held, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	defer held.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = pool.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, exception.ErrConnectionUnavailable)
}

func TestLease_ReleaseTwice(t *testing.T) {
	db := openFileDB(t, 2)
	pool := gormadapter.NewConnPool(db, 1, nil)
	lease, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	lease.Release()
	lease.Release()
	assert.Equal(t, 0, pool.InUse())

	again, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	again.Release()
}
