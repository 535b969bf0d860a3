package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"-"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// redis, used for rate limiting; leave host empty to disable
	RedisHost                     string `toml:"redis_host"`
	RedisPort                     string `toml:"redis_port"`
	AnalyzeRateLimitAllowedPerMin int    `toml:"analyze_rate_limit_allowed_per_min"`

	// analysis
	PoseServiceURL        string   `toml:"pose_service_url"`
	PoseServiceTimeoutSec int      `toml:"pose_service_timeout_sec"`
	MaxUploadMB           int64    `toml:"max_upload_mb"`
	UploadTempDir         string   `toml:"upload_temp_dir"`
	StrictExerciseLookup  bool     `toml:"strict_exercise_lookup"`
	ResultCacheSizeMB     int      `toml:"result_cache_size_mb"`
	ResultCacheTTLSec     int      `toml:"result_cache_ttl_sec"`
	SimulationSeed        int64    `toml:"simulation_seed"`
	AllowedOrigins        []string `toml:"allowed_origins"`
	BreakerMaxFailures    uint32   `toml:"breaker_max_failures"`
	BreakerOpenTimeoutSec int      `toml:"breaker_open_timeout_sec"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env,
// with defaults applied to the fields left empty.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.Environment = strings.ToLower(env)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 5000
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = "localhost"
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.AnalyzeRateLimitAllowedPerMin == 0 {
		c.AnalyzeRateLimitAllowedPerMin = 30
	}
	if c.PoseServiceTimeoutSec == 0 {
		c.PoseServiceTimeoutSec = 120
	}
	if c.MaxUploadMB == 0 {
		c.MaxUploadMB = 100
	}
	if c.ResultCacheSizeMB == 0 {
		c.ResultCacheSizeMB = 32
	}
	if c.ResultCacheTTLSec == 0 {
		c.ResultCacheTTLSec = 3600
	}
	if c.BreakerMaxFailures == 0 {
		c.BreakerMaxFailures = 5
	}
	if c.BreakerOpenTimeoutSec == 0 {
		c.BreakerOpenTimeoutSec = 30
	}
}

func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MaxUploadMB < 0 {
		return fmt.Errorf("invalid max_upload_mb: %d", c.MaxUploadMB)
	}
	if c.PoseServiceURL != "" &&
		!strings.HasPrefix(c.PoseServiceURL, "http://") &&
		!strings.HasPrefix(c.PoseServiceURL, "https://") {
		return fmt.Errorf("invalid pose_service_url: %s", c.PoseServiceURL)
	}
	return nil
}
