package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
weekreport:
  system:
    timezone: ${TEST_WR_TZ:-Asia/Seoul}
    logging:
      level: DEBUG
  report:
    max_farm_workers: 8
  batch:
    include: "101, 102"
  database:
    main:
      type: sqlite
      database: ":memory:"
`

func TestLoadConfig_DefaultsYAMLAndEnv(t *testing.T) {
	t.Setenv("WEEKREPORT_REPORT_LOOKBACK_DAYS", "365")
	t.Setenv("WEEKREPORT_BATCH_DRY_RUN", "true")
	t.Setenv("WEEKREPORT_DATABASE_MAIN_POOL_MAX_IDLE_CONNS", "3")

	cfg, err := LoadConfig("", EmbeddedConfig(testYAML))
	require.NoError(t, err)

	wr := cfg.WeekReport
	assert.Equal(t, "Asia/Seoul", wr.System.Timezone)
	assert.Equal(t, "DEBUG", wr.System.Logging.Level)
	assert.Equal(t, 8, wr.Report.MaxFarmWorkers)
	assert.Equal(t, 365, wr.Report.LookbackDays)
	assert.Equal(t, 7, wr.Report.ForwardDays, "default survives the merge")
	assert.True(t, wr.Batch.DryRun)
	assert.Equal(t, 10, cfg.PoolSize())

	main, ok := wr.AdapterConfigs["main"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "sqlite", main["type"])
	pool, ok := main["pool"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 3, pool["max_idle_conns"])

	include, err := ParseFarmList(wr.Batch.Include)
	require.NoError(t, err)
	assert.Equal(t, []int{101, 102}, include)

	assert.NoError(t, cfg.Validate())
}

func TestExpander_DefaultAndOverride(t *testing.T) {
	e := &OsEnvironmentExpander{lookup: func(name string) (string, bool) {
		if name == "SET" {
			return "value", true
		}
		return "", false
	}}
	out, err := e.Expand([]byte("a=${SET} b=${UNSET:-fallback} c=${UNSET}"))
	require.NoError(t, err)
	assert.Equal(t, "a=value b=fallback c=", string(out))
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := NewConfig()
	cfg.WeekReport.Batch.Mode = "bogus"
	cfg.WeekReport.Batch.DayGb = "YEAR"
	cfg.WeekReport.Report.MaxFarmWorkers = 0
	cfg.WeekReport.Report.ForwardDays = 8

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "batch.mode")
	assert.Contains(t, msg, "batch.day_gb")
	assert.Contains(t, msg, "max_farm_workers")
	assert.Contains(t, msg, "db_ref")
	assert.Contains(t, msg, "forward_days")
}

func TestParseFarmList_Invalid(t *testing.T) {
	_, err := ParseFarmList("1,x")
	assert.Error(t, err)
	list, err := ParseFarmList("")
	assert.NoError(t, err)
	assert.Empty(t, list)
}
