// Package sqlite registers the SQLite dialect. It backs local runs and the test suite.
package sqlite

import (
	"errors"

	"gorm.io/driver/sqlite"
	gormio "gorm.io/gorm"

	"github.com/tigerroll/weekreport/pkg/adapter/database"
	gormadapter "github.com/tigerroll/weekreport/pkg/adapter/database/gorm"
	"github.com/tigerroll/weekreport/pkg/config"
)

func init() {
	gormadapter.RegisterDialector("sqlite", func(cfg database.DatabaseConfig) (gormio.Dialector, error) {
		if cfg.Database == "" {
			return nil, errors.New("SQLite database path cannot be empty")
		}
		return sqlite.Open(DSN(cfg)), nil
	})
}

// DSN returns the file path; foreign keys are switched on for file databases.
func DSN(c database.DatabaseConfig) string {
	if c.Database == ":memory:" {
		return c.Database
	}
	return "file:" + c.Database + "?_foreign_keys=on&_busy_timeout=5000"
}

// NewProvider creates the SQLite provider.
func NewProvider(cfg *config.Config) database.Provider {
	return gormadapter.NewBaseProvider(cfg, "sqlite")
}
