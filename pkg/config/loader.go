package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tigerroll/weekreport/pkg/support/exception"
	"github.com/tigerroll/weekreport/pkg/support/logger"

	"go.uber.org/fx"
)

const moduleName = "config"

// envRoot prefixes every environment override, e.g. WEEKREPORT_REPORT_MAX_FARM_WORKERS.
const envRoot = "WEEKREPORT_"

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	EmbeddedConfig EmbeddedConfig
	EnvFilePath    string `name:"envFilePath" optional:"true"`
}

// loadConfig loads configuration from the embedded YAML and environment variables.
//
// Parameters:
//
//	envFilePath: The path to the .env file.
//	embeddedConfig: The embedded configuration bytes.
func loadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Debugf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	}

	// 1. Defaults.
	cfg := NewConfig()

	// 2. Embedded YAML with ${VAR} placeholders expanded.
	expanded, err := NewOsEnvironmentExpander().Expand(embeddedConfig)
	if err != nil {
		return nil, exception.NewReportError(moduleName, "failed to expand environment placeholders", err)
	}
	var yamlConfig Config
	if err := yaml.Unmarshal(expanded, &yamlConfig); err != nil {
		return nil, exception.NewReportError(moduleName, "failed to unmarshal embedded config", err)
	}
	mergeConfig(cfg, &yamlConfig)

	// 3. Environment overrides.
	if err := loadStructFromEnv(reflect.ValueOf(&cfg.WeekReport).Elem(), envRoot); err != nil {
		return nil, exception.NewReportError(moduleName, "failed to load config from environment variables", err)
	}
	loadAdapterConfigsFromEnv(cfg.WeekReport.AdapterConfigs, envRoot+"DATABASE_")

	cfg.EmbeddedConfig = embeddedConfig
	return cfg, nil
}

// NewConfigProvider is an fx provider that loads, validates and provides *Config.
// It also sets the global log level.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := loadConfig(params.EnvFilePath, params.EmbeddedConfig)
	if err != nil {
		return nil, err
	}
	logger.SetLogLevel(cfg.WeekReport.System.Logging.Level)
	if err := cfg.Validate(); err != nil {
		return nil, exception.NewReportError(moduleName, "invalid configuration", err)
	}
	return cfg, nil
}

// LoadConfig loads configuration from the embedded YAML, .env file and environment.
// It is expected to be called once during application startup.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	return loadConfig(envFilePath, embeddedConfig)
}

// Validate checks the values the pipeline cannot run without. All problems are reported together.
func (c *Config) Validate() error {
	var result *multierror.Error
	wr := c.WeekReport

	switch wr.Batch.Mode {
	case ModeRun, ModeSingle, ModeServe:
	default:
		result = multierror.Append(result, fmt.Errorf("batch.mode must be one of run, single, serve (got %q)", wr.Batch.Mode))
	}
	switch strings.ToUpper(wr.Batch.DayGb) {
	case "WEEK", "MONTH", "QUARTER":
	default:
		result = multierror.Append(result, fmt.Errorf("batch.day_gb must be one of WEEK, MONTH, QUARTER (got %q)", wr.Batch.DayGb))
	}
	if wr.Batch.Mode == ModeSingle && wr.Batch.FarmNo <= 0 {
		result = multierror.Append(result, fmt.Errorf("batch.farm_no is required in single mode"))
	}
	if _, err := ParseFarmList(wr.Batch.Include); err != nil {
		result = multierror.Append(result, fmt.Errorf("batch.include: %w", err))
	}
	if _, err := ParseFarmList(wr.Batch.Exclude); err != nil {
		result = multierror.Append(result, fmt.Errorf("batch.exclude: %w", err))
	}
	if wr.Report.MaxFarmWorkers < 1 {
		result = multierror.Append(result, fmt.Errorf("report.max_farm_workers must be at least 1"))
	}
	if wr.Report.LookbackDays < 1 {
		result = multierror.Append(result, fmt.Errorf("report.lookback_days must be positive"))
	}
	if wr.Report.ForwardDays < 1 || wr.Report.ForwardDays > 7 {
		result = multierror.Append(result, fmt.Errorf("report.forward_days must be between 1 and 7 (got %d)", wr.Report.ForwardDays))
	}
	if _, ok := wr.AdapterConfigs[wr.Report.DBRef]; !ok {
		result = multierror.Append(result, fmt.Errorf("report.db_ref %q has no entry under database", wr.Report.DBRef))
	}
	return result.ErrorOrNil()
}

// mergeConfig copies every non-zero value of source into dest.
func mergeConfig(dest, source *Config) {
	mergeStruct(reflect.ValueOf(&dest.WeekReport).Elem(), reflect.ValueOf(&source.WeekReport).Elem())
}

// mergeStruct walks two values of the same struct type and overwrites dest fields with
// non-zero source fields. Maps are merged key by key.
func mergeStruct(dest, source reflect.Value) {
	for i := 0; i < source.NumField(); i++ {
		sf := source.Field(i)
		df := dest.Field(i)
		if !df.CanSet() {
			continue
		}
		switch sf.Kind() {
		case reflect.Struct:
			mergeStruct(df, sf)
		case reflect.Map:
			if sf.IsNil() {
				continue
			}
			if df.IsNil() {
				df.Set(reflect.MakeMap(sf.Type()))
			}
			iter := sf.MapRange()
			for iter.Next() {
				df.SetMapIndex(iter.Key(), iter.Value())
			}
		default:
			if !sf.IsZero() {
				df.Set(sf)
			}
		}
	}
}

// loadStructFromEnv recursively loads configuration values into a struct from environment variables.
// The variable name is the prefix plus the upper-cased yaml tag path.
//
// Parameters:
//
//	val: The reflect.Value of the struct to populate.
//	prefix: The prefix for environment variable names (e.g., "WEEKREPORT_REPORT_").
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		if field.Kind() == reflect.Struct {
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		}
		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}
		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set field '%s' from env var '%s': %w", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// loadAdapterConfigsFromEnv overrides database settings from variables of the form
// WEEKREPORT_DATABASE_<NAME>_<FIELD>=value, e.g. WEEKREPORT_DATABASE_MAIN_HOST=db.internal.
// Nested pool fields use WEEKREPORT_DATABASE_MAIN_POOL_MAX_OPEN_CONNS.
func loadAdapterConfigsFromEnv(configs map[string]interface{}, prefix string) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, prefix) {
			continue
		}
		parts := strings.SplitN(strings.TrimPrefix(env, prefix), "=", 2)
		if len(parts) != 2 {
			continue
		}
		keyAndField := strings.SplitN(parts[0], "_", 2)
		if len(keyAndField) != 2 {
			continue
		}
		name := strings.ToLower(keyAndField[0])
		field := strings.ToLower(keyAndField[1])

		entry, _ := configs[name].(map[string]interface{})
		if entry == nil {
			entry = map[string]interface{}{}
		}
		if strings.HasPrefix(field, "pool_") {
			pool, _ := entry["pool"].(map[string]interface{})
			if pool == nil {
				pool = map[string]interface{}{}
			}
			pool[strings.TrimPrefix(field, "pool_")] = parseScalar(parts[1])
			entry["pool"] = pool
		} else {
			entry[field] = parseScalar(parts[1])
		}
		configs[name] = entry
	}
}

// parseScalar keeps numbers numeric so mapstructure can decode them into int fields.
func parseScalar(s string) interface{} {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// setField sets the value of a reflect.Value field based on its kind.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)
	case reflect.Float64, reflect.Float32:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolValue)
	}
	return nil
}
