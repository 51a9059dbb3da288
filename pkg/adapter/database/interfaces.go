// Package database defines the connection abstractions used by the report store.
// Concrete providers live under database/gorm.
package database

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Connection is a named, configured database handle.
type Connection interface {
	// Name is the key of this connection under weekreport.database.
	Name() string
	// Type is the dialect (postgres, mysql, sqlite).
	Type() string
	// DB returns a gorm handle bound to ctx.
	DB(ctx context.Context) *gorm.DB
	// SQLDB returns the underlying *sql.DB.
	SQLDB() (*sql.DB, error)
	Config() DatabaseConfig
	Close() error
}

// Provider opens and caches connections of one dialect.
type Provider interface {
	// GetConnection retrieves a connection with the specified name, opening it on first use.
	GetConnection(name string) (Connection, error)
	// ForceReconnect closes and reopens the named connection.
	ForceReconnect(name string) (Connection, error)
	CloseAll() error
	Type() string
}

// Resolver selects the Provider for a connection name from its configured type.
type Resolver interface {
	ResolveConnection(ctx context.Context, name string) (Connection, error)
}

// ProviderGroup is the Fx value group collecting every Provider.
const ProviderGroup = "db_providers"
