package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything a single fetch-and-append run needs
type Config struct {
	Latitude      float64       `yaml:"latitude"`
	Longitude     float64       `yaml:"longitude"`
	CSVPath       string        `yaml:"csv_path"`
	WindSpeedUnit string        `yaml:"wind_speed_unit"` // ms | kmh | mph | kn
	APIURL        string        `yaml:"api_url"`
	CachePath     string        `yaml:"cache_path"`
	CacheTTL      time.Duration `yaml:"-"`
	MaxAttempts   int           `yaml:"max_attempts"`
	BackoffBase   time.Duration `yaml:"-"`
	DatabaseURL   string        `yaml:"database_url"`
	LogLevel      string        `yaml:"log_level"`
}

// LoadOptions selects the optional files layered under the process environment
type LoadOptions struct {
	// ConfigFile is a YAML file. Empty means none; a missing file is an error.
	ConfigFile string
	// EnvFile is a dotenv file. A missing file is skipped.
	EnvFile string
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Latitude:      44.34,
		Longitude:     10.99,
		CSVPath:       "data/wind_data.csv",
		WindSpeedUnit: "ms",
		APIURL:        "https://api.open-meteo.com/v1/forecast",
		CachePath:     ".cache.sqlite",
		CacheTTL:      3600 * time.Second,
		MaxAttempts:   5,
		BackoffBase:   200 * time.Millisecond,
		LogLevel:      "warning",
	}
}

// Load builds the configuration from defaults, the YAML file, the dotenv
// file and the process environment, in increasing order of precedence.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.ConfigFile != "" {
		if err := cfg.mergeYAML(opts.ConfigFile); err != nil {
			return nil, err
		}
	}

	dotenv := map[string]string{}
	if opts.EnvFile != "" {
		values, err := godotenv.Read(opts.EnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file %s: %w", opts.EnvFile, err)
		}
		if values != nil {
			dotenv = values
		}
	}

	lookup := func(key string) (string, bool) {
		if value, exists := os.LookupEnv(key); exists {
			return value, true
		}
		value, exists := dotenv[key]
		return value, exists
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) mergeYAML(path string) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(f, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// durations take the same syntax as the environment
	var durations struct {
		CacheTTL    *string `yaml:"cache_ttl"`
		BackoffBase *string `yaml:"backoff_base"`
	}
	if err := yaml.Unmarshal(f, &durations); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if durations.CacheTTL != nil {
		if c.CacheTTL, err = parseDuration("cache_ttl", *durations.CacheTTL); err != nil {
			return fmt.Errorf("config file %s: %w", path, err)
		}
	}
	if durations.BackoffBase != nil {
		if c.BackoffBase, err = parseDuration("backoff_base", *durations.BackoffBase); err != nil {
			return fmt.Errorf("config file %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields with the values lookup reports as set.
// Numeric values must parse; ranges are not checked.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var err error

	if v, ok := lookup("LAT"); ok {
		if c.Latitude, err = parseFloat("LAT", v); err != nil {
			return err
		}
	}
	if v, ok := lookup("LON"); ok {
		if c.Longitude, err = parseFloat("LON", v); err != nil {
			return err
		}
	}
	if v, ok := lookup("CSV_PATH"); ok {
		c.CSVPath = v
	}
	if v, ok := lookup("WIND_SPEED_UNIT"); ok {
		c.WindSpeedUnit = v
	}
	if v, ok := lookup("API_URL"); ok {
		c.APIURL = v
	}
	if v, ok := lookup("CACHE_PATH"); ok {
		c.CachePath = v
	}
	if v, ok := lookup("CACHE_TTL"); ok {
		if c.CacheTTL, err = parseDuration("CACHE_TTL", v); err != nil {
			return err
		}
	}
	if v, ok := lookup("MAX_ATTEMPTS"); ok {
		n, convErr := strconv.Atoi(strings.TrimSpace(v))
		if convErr != nil {
			return fmt.Errorf("invalid MAX_ATTEMPTS %q: %w", v, convErr)
		}
		c.MaxAttempts = n
	}
	if v, ok := lookup("BACKOFF_BASE"); ok {
		if c.BackoffBase, err = parseDuration("BACKOFF_BASE", v); err != nil {
			return err
		}
	}
	if v, ok := lookup("DATABASE_URL"); ok {
		c.DatabaseURL = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.LogLevel = v
	}

	return nil
}

func parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}

// parseDuration accepts Go durations ("90s") and bare seconds ("3600")
func parseDuration(key, value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
