package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix = "TRADEANALYSER"
	appDir    = "tradeanalyser"
	fileName  = "config.yaml"
)

type Config struct {
	BackendURL string        `yaml:"backend_url" default:"http://127.0.0.1:8000" validate:"required,url"`
	Debounce   time.Duration `yaml:"debounce" default:"300ms" validate:"min=10ms,max=5s"`
	Timeout    time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`

	// SearchCacheTTL keeps search responses in memory; zero disables it.
	SearchCacheTTL time.Duration `yaml:"search_cache_ttl" validate:"min=0"`

	LogLevel  string `yaml:"log_level" default:"warn" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" default:"console" validate:"oneof=console json"`
	LogOutput string `yaml:"log_output" default:"stderr"`

	MetricsAddr string `yaml:"metrics_addr,omitempty" validate:"omitempty,hostname_port"`
	NoColor     bool   `yaml:"no_color"`
	Debug       bool   `yaml:"debug"`
}

// envOverrides mirrors the overridable keys. Unset variables leave the
// corresponding field zero so they never clobber file values.
type envOverrides struct {
	BackendURL  string        `envconfig:"BACKEND_URL"`
	Debounce    time.Duration `envconfig:"DEBOUNCE"`
	Timeout     time.Duration `envconfig:"TIMEOUT"`
	SearchCache time.Duration `envconfig:"SEARCH_CACHE_TTL"`
	LogLevel    string        `envconfig:"LOG_LEVEL"`
	LogFormat   string        `envconfig:"LOG_FORMAT"`
	LogOutput   string        `envconfig:"LOG_OUTPUT"`
	MetricsAddr string        `envconfig:"METRICS_ADDR"`
	NoColor     *bool         `envconfig:"NO_COLOR"`
	Debug       *bool         `envconfig:"DEBUG"`
}

var validate = validator.New()

func DefaultConfig() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (if any), then .env and TRADEANALYSER_* environment variables.
// An empty path falls back to the per-user config file when it exists.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}

	if path != "" {
		if err := loadConfigFromFile(path, cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("load config: %w", err)
			}
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	if env.BackendURL != "" {
		c.BackendURL = env.BackendURL
	}
	if env.Debounce != 0 {
		c.Debounce = env.Debounce
	}
	if env.Timeout != 0 {
		c.Timeout = env.Timeout
	}
	if env.SearchCache != 0 {
		c.SearchCacheTTL = env.SearchCache
	}
	if env.LogLevel != "" {
		c.LogLevel = strings.ToLower(env.LogLevel)
	}
	if env.LogFormat != "" {
		c.LogFormat = strings.ToLower(env.LogFormat)
	}
	if env.LogOutput != "" {
		c.LogOutput = env.LogOutput
	}
	if env.MetricsAddr != "" {
		c.MetricsAddr = env.MetricsAddr
	}
	if env.NoColor != nil {
		c.NoColor = *env.NoColor
	}
	if env.Debug != nil {
		c.Debug = *env.Debug
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// EffectiveLogLevel returns debug when debug mode is on.
func (c *Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, appDir, fileName), nil
}

func loadConfigFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
