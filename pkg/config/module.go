package config

import "go.uber.org/fx"

// NewReportConfigProvider exposes the report section on its own so consumers need not carry the whole Config.
func NewReportConfigProvider(cfg *Config) *ReportConfig {
	return &cfg.WeekReport.Report
}

// Module provides *Config and its commonly used sections to Fx.
var Module = fx.Options(
	fx.Provide(NewConfigProvider),
	fx.Provide(NewReportConfigProvider),
)
