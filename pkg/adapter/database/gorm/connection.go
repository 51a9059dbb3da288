package gorm

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/tigerroll/weekreport/pkg/adapter/database"
)

// Connection implements database.Connection over a *gorm.DB.
type Connection struct {
	db   *gorm.DB
	cfg  database.DatabaseConfig
	name string
}

// NewConnection wraps an opened gorm.DB.
func NewConnection(db *gorm.DB, cfg database.DatabaseConfig, name string) *Connection {
	return &Connection{db: db, cfg: cfg, name: name}
}

func (c *Connection) Name() string { return c.name }
func (c *Connection) Type() string { return c.cfg.Type }

// DB returns a gorm session carrying ctx.
func (c *Connection) DB(ctx context.Context) *gorm.DB {
	return c.db.WithContext(ctx)
}

func (c *Connection) SQLDB() (*sql.DB, error) { return c.db.DB() }

func (c *Connection) Config() database.DatabaseConfig { return c.cfg }

// Close closes the underlying *sql.DB.
func (c *Connection) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
