// Package mysql registers the MySQL dialect.
package mysql

import (
	"net"
	"strconv"
	"time"

	drv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	gormio "gorm.io/gorm"

	"github.com/tigerroll/weekreport/pkg/adapter/database"
	gormadapter "github.com/tigerroll/weekreport/pkg/adapter/database/gorm"
	"github.com/tigerroll/weekreport/pkg/config"
)

func init() {
	gormadapter.RegisterDialector("mysql", func(cfg database.DatabaseConfig) (gormio.Dialector, error) {
		return mysql.Open(DSN(cfg)), nil
	})
}

// DSN formats the connection string with go-sql-driver's Config so special characters in credentials are escaped.
func DSN(c database.DatabaseConfig) string {
	mc := drv.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = c.Host
	if c.Port > 0 {
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	}
	mc.DBName = c.Database
	mc.ParseTime = true
	mc.MultiStatements = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// NewProvider creates the MySQL provider.
func NewProvider(cfg *config.Config) database.Provider {
	return gormadapter.NewBaseProvider(cfg, "mysql")
}
