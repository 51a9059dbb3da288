// Package config provides the configuration structures of weekreport and the loader that
// builds them from the embedded YAML, a .env file and environment variables.
package config

import (
	"strconv"
	"strings"
	"time"
)

// EmbeddedConfig holds the content of the configuration file, passed from main.go.
type EmbeddedConfig []byte

// Run modes selected by weekreport.batch.mode.
const (
	ModeRun    = "run"    // one batch pass, then exit
	ModeSingle = "single" // one farm, then exit
	ModeServe  = "serve"  // HTTP trigger + cron scheduler until signalled
)

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (DEBUG, INFO, WARN, ERROR).
	Level string `yaml:"level"`
	// SQLLevel is the gorm log level (SILENT, ERROR, WARN, INFO).
	SQLLevel string `yaml:"sql_level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is used for period resolution, token expiry and the cron schedule.
	Timezone string        `yaml:"timezone"`
	Logging  LoggingConfig `yaml:"logging"`
}

// BatchConfig describes what the process does when it starts.
type BatchConfig struct {
	Mode string `yaml:"mode"`
	// AsOf is the reference date (YYYYMMDD). Empty means today in the configured timezone.
	AsOf  string `yaml:"as_of"`
	DayGb string `yaml:"day_gb"`
	// FarmNo is the farm processed in single mode.
	FarmNo int `yaml:"farm_no"`
	// Include and Exclude are comma separated farm numbers.
	Include       string `yaml:"include"`
	Exclude       string `yaml:"exclude"`
	ScheduleGroup string `yaml:"schedule_group"`
	Force         bool   `yaml:"force"`
	DryRun        bool   `yaml:"dry_run"`
}

// ReportConfig holds the tunables of the report pipeline.
type ReportConfig struct {
	// MaxFarmWorkers is the number of farms processed concurrently.
	MaxFarmWorkers int `yaml:"max_farm_workers"`
	// LookbackDays is the raw-data window loaded per farm.
	LookbackDays int `yaml:"lookback_days"`
	// ForwardDays is the length of the schedule projection window.
	ForwardDays int `yaml:"forward_days"`
	// TokenExpireDays is added to the run date to compute the share token expiry.
	TokenExpireDays      int    `yaml:"token_expire_days"`
	DefaultScheduleGroup string `yaml:"default_schedule_group"`
	// DBRef names the entry under weekreport.database used for report data.
	DBRef string `yaml:"db_ref"`
	// PoolSlack is added to MaxFarmWorkers to size the database pool.
	PoolSlack int `yaml:"pool_slack"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name"`
	// Exporter is one of none, otlp.
	Exporter string `yaml:"exporter"`
	// Protocol is one of grpc, http.
	Protocol              string `yaml:"protocol"`
	Endpoint              string `yaml:"endpoint"`
	Insecure              bool   `yaml:"insecure"`
	MetricIntervalSeconds int    `yaml:"metric_interval_seconds"`
}

// ArchiveConfig configures the parquet archive of completed passes.
type ArchiveConfig struct {
	Enabled bool `yaml:"enabled"`
	// Storage is one of local, gcs, s3.
	Storage         string `yaml:"storage"`
	BaseDir         string `yaml:"base_dir"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	CredentialsFile string `yaml:"credentials_file"`
	Compression     string `yaml:"compression"`
}

// ServerConfig configures the HTTP trigger.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// AllowedOrigins is a comma separated CORS origin list.
	AllowedOrigins      string `yaml:"allowed_origins"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

// SchedulerConfig configures the cron trigger used in serve mode.
type SchedulerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Spec    string `yaml:"spec"`
}

// WeekReportConfig holds all configuration under the "weekreport" top-level key.
type WeekReportConfig struct {
	System    SystemConfig    `yaml:"system"`
	Batch     BatchConfig     `yaml:"batch"`
	Report    ReportConfig    `yaml:"report"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Server    ServerConfig    `yaml:"server"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	// AdapterConfigs holds raw database configurations keyed by connection name.
	AdapterConfigs map[string]interface{} `yaml:"database"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	WeekReport     WeekReportConfig `yaml:"weekreport"`
	EmbeddedConfig EmbeddedConfig   `yaml:"-"`
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		WeekReport: WeekReportConfig{
			System: SystemConfig{
				Timezone: "Asia/Seoul",
				Logging:  LoggingConfig{Level: "INFO", SQLLevel: "SILENT"},
			},
			Batch: BatchConfig{
				Mode:  ModeRun,
				DayGb: "WEEK",
			},
			Report: ReportConfig{
				MaxFarmWorkers:       4,
				LookbackDays:         730,
				ForwardDays:          7,
				TokenExpireDays:      6,
				DefaultScheduleGroup: "AM7",
				DBRef:                "main",
				PoolSlack:            2,
			},
			Telemetry: TelemetryConfig{
				ServiceName:           "weekreport",
				Exporter:              "none",
				Protocol:              "grpc",
				MetricIntervalSeconds: 30,
			},
			Archive: ArchiveConfig{
				Storage:     "local",
				BaseDir:     "./archive",
				Compression: "SNAPPY",
			},
			Server: ServerConfig{
				Addr:                ":8080",
				AllowedOrigins:      "*",
				ReadTimeoutSeconds:  30,
				WriteTimeoutSeconds: 600,
			},
			Scheduler: SchedulerConfig{
				Enabled: true,
				Spec:    "0 2 * * 1",
			},
			AdapterConfigs: map[string]interface{}{},
		},
	}
}

// Location returns the configured timezone, falling back to UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.WeekReport.System.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// PoolSize is the number of database connections the report database needs.
func (c *Config) PoolSize() int {
	return c.WeekReport.Report.MaxFarmWorkers + c.WeekReport.Report.PoolSlack
}

// ParseFarmList parses a comma separated list of farm numbers, ignoring blanks.
func ParseFarmList(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
