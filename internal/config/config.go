package config

import (
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "LISTING_CRAWLER_CONFIG"
	dbDriverEnv   = "LISTING_CRAWLER_DB_DRIVER"
	dbDSNEnv      = "LISTING_CRAWLER_DB_DSN"
	logLevelEnv   = "LISTING_CRAWLER_LOG_LEVEL"

	defaultTimezone    = "UTC"
	defaultHTTPTimeout = 30 * time.Second

	defaultStartURL = "https://www.imdb.com/search/keyword/?keywords=rock-%27n%27-roll%2Crock-music&ref_=kw_ref_key&" +
		"mode=detail&page=1&sort=moviemeter,asc"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	HTTP       HTTPConfig       `yaml:"http"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Targets    []TargetConfig   `yaml:"targets"`
	Storage    StorageConfig    `yaml:"storage"`
	Output     OutputConfig     `yaml:"output"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
}

// LoggingConfig selects the log level and an optional rotating log file.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

// HTTPConfig tunes the page transport. An unset timeout means 30s, zero
// disables the client timeout.
type HTTPConfig struct {
	TimeoutSeconds *int `yaml:"timeoutSeconds"`
}

// Timeout converts the configured seconds to a duration.
func (h HTTPConfig) Timeout() time.Duration {
	if h.TimeoutSeconds == nil {
		return defaultHTTPTimeout
	}
	return time.Duration(*h.TimeoutSeconds) * time.Second
}

// ExtractionConfig controls how header/poster count mismatches are handled.
type ExtractionConfig struct {
	MismatchPolicy string `yaml:"mismatchPolicy"`
}

// TargetConfig describes one paginated listing to crawl.
type TargetConfig struct {
	Name      string        `yaml:"name"`
	Profile   string        `yaml:"profile"`
	StartURL  string        `yaml:"startUrl"`
	MaxPages  int           `yaml:"maxPages"`
	Overrides ProfileConfig `yaml:"overrides"`
}

// ProfileConfig overrides individual fields of a registered site profile.
type ProfileConfig struct {
	BaseURL         string `yaml:"baseUrl"`
	HeaderSelector  string `yaml:"headerSelector"`
	TrailingHeaders *int   `yaml:"trailingHeaders"`
	TitleSelector   string `yaml:"titleSelector"`
	YearSelector    string `yaml:"yearSelector"`
	PosterSelector  string `yaml:"posterSelector"`
	ImageSelector   string `yaml:"imageSelector"`
	PosterAttr      string `yaml:"posterAttr"`
}

// StorageConfig describes the optional listing store. Empty driver disables it.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Enabled reports whether a listing store is configured.
func (s StorageConfig) Enabled() bool {
	return s.Driver != ""
}

// OutputConfig selects how listings are rendered. Empty path means stdout.
type OutputConfig struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

// SchedulerConfig defines when the watch mode re-runs the pipeline.
type SchedulerConfig struct {
	CronExpression string `yaml:"cronExpression"`
	Timezone       string `yaml:"timezone"`
}

// Location resolves the configured timezone; empty means UTC.
func (s SchedulerConfig) Location() (*time.Location, error) {
	tz := s.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %s: %w", tz, err)
	}
	return loc, nil
}

// Load reads YAML configuration (if present), merges it over the defaults
// and applies environment overrides. An empty path falls back to the
// LISTING_CRAWLER_CONFIG variable; no file at all yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		fileCfg, err := Parse(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
		if err := mergo.Merge(&cfg, fileCfg, mergo.WithOverride); err != nil {
			return Config{}, fmt.Errorf("merge config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(dbDriverEnv); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv(dbDSNEnv); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if len(c.Targets) == 0 {
		return fmt.Errorf("at least one target is required")
	}
	seen := map[string]struct{}{}
	for i, t := range c.Targets {
		if t.Name == "" {
			return fmt.Errorf("targets[%d].name is required", i)
		}
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("target %s is declared twice", t.Name)
		}
		seen[t.Name] = struct{}{}
		if t.StartURL == "" {
			return fmt.Errorf("target %s: startUrl is required", t.Name)
		}
		if t.MaxPages < 1 {
			return fmt.Errorf("target %s: maxPages must be >= 1", t.Name)
		}
		if t.Overrides.TrailingHeaders != nil && *t.Overrides.TrailingHeaders < 0 {
			return fmt.Errorf("target %s: trailingHeaders must be >= 0", t.Name)
		}
	}

	switch c.Extraction.MismatchPolicy {
	case "strict", "truncate":
	default:
		return fmt.Errorf("extraction.mismatchPolicy must be 'strict' or 'truncate'")
	}

	switch c.Storage.Driver {
	case "":
	case "sqlite", "postgres", "sqlserver":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for driver %s", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("storage.driver must be 'sqlite', 'postgres' or 'sqlserver'")
	}

	switch c.Output.Format {
	case "table", "csv", "markdown", "json", "lines":
	default:
		return fmt.Errorf("output.format %q is not supported", c.Output.Format)
	}

	if c.HTTP.TimeoutSeconds != nil && *c.HTTP.TimeoutSeconds < 0 {
		return fmt.Errorf("http.timeoutSeconds must be >= 0")
	}
	if _, err := cron.ParseStandard(c.Scheduler.CronExpression); err != nil {
		return fmt.Errorf("scheduler.cronExpression %q: %w", c.Scheduler.CronExpression, err)
	}
	if _, err := c.Scheduler.Location(); err != nil {
		return fmt.Errorf("scheduler.timezone: %w", err)
	}

	return nil
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Extraction: ExtractionConfig{MismatchPolicy: "strict"},
		Targets: []TargetConfig{
			{
				Name:     "rock-music",
				Profile:  "imdb-keyword",
				StartURL: defaultStartURL,
				MaxPages: 3,
			},
		},
		Output:    OutputConfig{Format: "table"},
		Scheduler: SchedulerConfig{CronExpression: "@every 24h", Timezone: defaultTimezone},
	}
}
