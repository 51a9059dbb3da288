package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/weekreport/pkg/adapter/database"
)

func TestDSN(t *testing.T) {
	dsn := DSN(database.DatabaseConfig{Host: "db", Port: 3306, User: "report", Password: "p@ss", Database: "farm"})
	assert.Contains(t, dsn, "report:p@ss@tcp(db:3306)/farm")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}
