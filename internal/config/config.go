package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// storage backends
const (
	StorageCSV    = "csv"
	StorageSheets = "sheets"
	StoragePsql   = "psql"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	LogMaxSizeMB  int    `toml:"log_max_size_mb"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// prometheus metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// sessions
	RedisHost                   string `toml:"redis_host"`
	RedisPort                   string `toml:"redis_port"`
	SessionTTLHours             int    `toml:"session_ttl_hours"`
	LoginRateLimitAllowedPerMin int    `toml:"login_rate_limit_allowed_per_min"`

	// observations storage
	StorageBackend        string `toml:"storage_backend"`
	CsvPath               string `toml:"csv_path"`
	SheetsSpreadsheetID   string `toml:"sheets_spreadsheet_id"`
	SheetsCredentialsFile string `toml:"sheets_credentials_file"`
	PostgresHost          string `toml:"postgres_host"`
	PostgresPort          string `toml:"postgres_port"`
	PostgresDBName        string `toml:"postgres_db_name"`
	CacheSizeMB           int    `toml:"cache_size_mb"`
	CacheTTLSeconds       int    `toml:"cache_ttl_seconds"`

	// metrics where a smaller value is better, on top of the built-in drill times
	LowerIsBetterMetrics []string `toml:"lower_is_better_metrics"`
}

type Toml struct {
	Development *Config
	Production  *Config
	DockerDev   *Config `toml:"dockerdev"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the config of env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg.Environment == "" {
		cfg.Environment = strings.ToLower(env)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", env, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 {
		return errors.New("port not set")
	}

	switch c.StorageBackend {
	case StorageCSV:
		if c.CsvPath == "" {
			return errors.New("csv_path not set")
		}
	case StorageSheets:
		if c.SheetsSpreadsheetID == "" {
			return errors.New("sheets_spreadsheet_id not set")
		}
	case StoragePsql:
		if c.PostgresHost == "" || c.PostgresDBName == "" {
			return errors.New("postgres_host and postgres_db_name must be set")
		}
	default:
		return fmt.Errorf("unknown storage backend: [%s]", c.StorageBackend)
	}

	return nil
}

func (c *Config) SessionTTL() time.Duration {
	if c.SessionTTLHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
