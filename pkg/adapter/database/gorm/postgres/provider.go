// Package postgres registers the PostgreSQL dialect.
package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	gormio "gorm.io/gorm"

	"github.com/tigerroll/weekreport/pkg/adapter/database"
	gormadapter "github.com/tigerroll/weekreport/pkg/adapter/database/gorm"
	"github.com/tigerroll/weekreport/pkg/config"
)

func init() {
	gormadapter.RegisterDialector("postgres", func(cfg database.DatabaseConfig) (gormio.Dialector, error) {
		return postgres.Open(DSN(cfg)), nil
	})
}

// DSN builds the key/value connection string expected by gorm.io/driver/postgres.
func DSN(c database.DatabaseConfig) string {
	sslmode := c.Sslmode
	if sslmode == "" {
		sslmode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, sslmode)
	if c.Schema != "" {
		dsn += " search_path=" + c.Schema
	}
	return dsn
}

// NewProvider creates the PostgreSQL provider.
func NewProvider(cfg *config.Config) database.Provider {
	return gormadapter.NewBaseProvider(cfg, "postgres")
}
