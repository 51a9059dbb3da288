// Package storetest opens migrated sqlite report databases for tests.
package storetest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tigerroll/weekreport/internal/store/migrations"
	"github.com/tigerroll/weekreport/pkg/adapter/database"
	gormadapter "github.com/tigerroll/weekreport/pkg/adapter/database/gorm"
	_ "github.com/tigerroll/weekreport/pkg/adapter/database/gorm/sqlite"
	"github.com/tigerroll/weekreport/pkg/migration"
)

// Open returns a file-backed sqlite database with the report schema applied. maxOpen bounds the
// connection pool; file databases let several connections see the same data.
func Open(t testing.TB, maxOpen int) *gorm.DB {
	t.Helper()
	db, err := gormadapter.Open(database.DatabaseConfig{
		Type:     "sqlite",
		Database: filepath.Join(t.TempDir(), "report.db"),
		Pool:     database.PoolConfig{MaxOpenConns: maxOpen},
	}, "SILENT")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.NewMigrator(sqlDB, "sqlite", "").Up(migrations.FS, migrations.Dir))
	return db
}

// Seed inserts every value, failing the test on the first error.
func Seed(t testing.TB, db *gorm.DB, values ...interface{}) {
	t.Helper()
	for _, v := range values {
		require.NoError(t, db.Create(v).Error)
	}
}
