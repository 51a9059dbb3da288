// Package migration applies the embedded SQL migrations with golang-migrate.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/tigerroll/weekreport/pkg/support/logger"
)

// DefaultTable is the schema version table.
const DefaultTable = "schema_migrations"

// Migrator applies migrations for one dialect to one *sql.DB.
type Migrator struct {
	db     *sql.DB
	dbType string
	table  string
}

// NewMigrator creates a Migrator. An empty table means DefaultTable.
func NewMigrator(db *sql.DB, dbType, table string) *Migrator {
	if table == "" {
		table = DefaultTable
	}
	return &Migrator{db: db, dbType: dbType, table: table}
}

func (m *Migrator) databaseDriver() (migratedb.Driver, error) {
	switch m.dbType {
	case "postgres":
		return postgres.WithInstance(m.db, &postgres.Config{MigrationsTable: m.table})
	case "mysql":
		return mysql.WithInstance(m.db, &mysql.Config{MigrationsTable: m.table})
	case "sqlite":
		return sqlite.WithInstance(m.db, &sqlite.Config{MigrationsTable: m.table})
	default:
		return nil, fmt.Errorf("unsupported database type for migration: %s", m.dbType)
	}
}

// Up applies every pending migration found under dir/<dbType> in fsys. dir may be ".".
func (m *Migrator) Up(fsys fs.FS, dir string) error {
	return m.run(fsys, dir, func(mi *migrate.Migrate) error { return mi.Up() })
}

// Down reverts every applied migration.
func (m *Migrator) Down(fsys fs.FS, dir string) error {
	return m.run(fsys, dir, func(mi *migrate.Migrate) error { return mi.Down() })
}

// Version returns the applied schema version. ok is false when nothing has been applied.
func (m *Migrator) Version(fsys fs.FS, dir string) (version uint, ok bool, err error) {
	err = m.run(fsys, dir, func(mi *migrate.Migrate) error {
		v, dirty, verr := mi.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			return nil
		}
		if verr != nil {
			return verr
		}
		if dirty {
			return fmt.Errorf("schema version %d is dirty", v)
		}
		version, ok = v, true
		return nil
	})
	return version, ok, err
}

func (m *Migrator) run(fsys fs.FS, dir string, op func(*migrate.Migrate) error) error {
	root := path.Join(dir, m.dbType)
	source, err := iofs.New(fsys, root)
	if err != nil {
		return fmt.Errorf("failed to open migrations at %s: %w", root, err)
	}

	driver, err := m.databaseDriver()
	if err != nil {
		return err
	}
	mi, err := migrate.NewWithInstance("iofs", source, m.dbType, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer source.Close()
	// mi.Close is skipped: the drivers close m.db, which the rest of the process keeps using.

	if err := op(mi); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed (DB: %s, Path: %s): %w", m.dbType, root, err)
	}
	logger.Infof("Migrations at %s applied to %s.", root, m.dbType)
	return nil
}
