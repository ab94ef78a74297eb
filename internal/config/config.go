// Package config loads the service configuration from an optional YAML file
// and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/ff-events/internal/refresh"
	"github.com/pfrederiksen/ff-events/internal/render"
	"github.com/pfrederiksen/ff-events/internal/scraper"
	"github.com/pfrederiksen/ff-events/internal/storage"
)

// Storage drivers
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

type Scraper struct {
	URL               string        `yaml:"url"`
	Timezone          string        `yaml:"timezone"`
	Currencies        []string      `yaml:"currencies"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	SettleDelay       time.Duration `yaml:"settle_delay"`
	TopDelay          time.Duration `yaml:"top_delay"`
	StepDelay         time.Duration `yaml:"step_delay"`
	ScrollStep        int           `yaml:"scroll_step"`
	UserAgent         string        `yaml:"user_agent"`
	Locale            string        `yaml:"locale"`
	// MinRows left unset means scraper.DefaultMinRows; 0 disables the row count check.
	MinRows     *int          `yaml:"min_rows"`
	RunTimeout  time.Duration `yaml:"run_timeout"`
	ShowBrowser bool          `yaml:"show_browser"`
	ChromePath  string        `yaml:"chrome_path"`
}

type Server struct {
	ListenAddress   string        `yaml:"listen_address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type Storage struct {
	Driver   string `yaml:"driver"`
	DataDir  string `yaml:"data_dir"`
	FileName string `yaml:"file_name"`
	DSN      string `yaml:"dsn"`
}

type Schedule struct {
	Cron           string `yaml:"cron"`
	SkipInitialRun bool   `yaml:"skip_initial_run"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type Twitter struct {
	Enabled bool `yaml:"enabled"`
}

type Telegram struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	Scraper  Scraper  `yaml:"scraper"`
	Server   Server   `yaml:"server"`
	Storage  Storage  `yaml:"storage"`
	Schedule Schedule `yaml:"schedule"`
	Kafka    Kafka    `yaml:"kafka"`
	Twitter  Twitter  `yaml:"twitter"`
	Telegram Telegram `yaml:"telegram"`
	LogLevel string   `yaml:"log_level"`
}

// Load reads path (skipped when empty), applies environment overrides, fills
// defaults and validates the result.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	c.applyEnv()
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	c.Scraper.URL = getEnv("FFEVENTS_URL", c.Scraper.URL)
	c.Scraper.Timezone = getEnv("FFEVENTS_TIMEZONE", c.Scraper.Timezone)
	if v := getEnv("FFEVENTS_CURRENCIES", ""); v != "" {
		c.Scraper.Currencies = splitAndTrim(v)
	}
	c.Scraper.NavigationTimeout = getDuration("FFEVENTS_NAVIGATION_TIMEOUT", c.Scraper.NavigationTimeout)
	c.Scraper.StepDelay = getDuration("FFEVENTS_STEP_DELAY", c.Scraper.StepDelay)
	c.Scraper.ScrollStep = getInt("FFEVENTS_SCROLL_STEP", c.Scraper.ScrollStep)
	if v, ok := os.LookupEnv("FFEVENTS_MIN_ROWS"); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Scraper.MinRows = &parsed
		}
	}
	c.Scraper.RunTimeout = getDuration("FFEVENTS_RUN_TIMEOUT", c.Scraper.RunTimeout)
	c.Scraper.ChromePath = getEnv("CHROME_PATH", c.Scraper.ChromePath)
	c.Scraper.ShowBrowser = getBool("FFEVENTS_SHOW_BROWSER", c.Scraper.ShowBrowser)

	c.Server.ListenAddress = getEnv("FFEVENTS_LISTEN_ADDR", c.Server.ListenAddress)
	// PORT is set by most hosting platforms and wins over the listen address
	if port := getEnv("PORT", ""); port != "" {
		c.Server.ListenAddress = "0.0.0.0:" + port
	}

	c.Storage.Driver = getEnv("FFEVENTS_STORAGE", c.Storage.Driver)
	c.Storage.DataDir = getEnv("FFEVENTS_DATA_DIR", c.Storage.DataDir)
	c.Storage.DSN = getEnv("DATABASE_URL", c.Storage.DSN)

	c.Schedule.Cron = getEnv("FFEVENTS_SCHEDULE", c.Schedule.Cron)
	c.Schedule.SkipInitialRun = getBool("FFEVENTS_SKIP_INITIAL_RUN", c.Schedule.SkipInitialRun)

	if v := getEnv("KAFKA_BROKERS", ""); v != "" {
		c.Kafka.Brokers = splitAndTrim(v)
	}
	c.Kafka.Topic = getEnv("KAFKA_TOPIC", c.Kafka.Topic)

	c.Twitter.Enabled = getBool("FFEVENTS_TWITTER", c.Twitter.Enabled)
	c.Telegram.Enabled = getBool("FFEVENTS_TELEGRAM", c.Telegram.Enabled)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

func (c *Config) applyDefaults() {
	// Defaults
	if c.Scraper.URL == "" {
		c.Scraper.URL = render.DefaultURL
	}
	if c.Scraper.Timezone == "" {
		c.Scraper.Timezone = scraper.DefaultTimezone
	}
	if len(c.Scraper.Currencies) == 0 {
		c.Scraper.Currencies = append([]string(nil), scraper.DefaultCurrencies...)
	}
	if c.Scraper.NavigationTimeout == 0 {
		c.Scraper.NavigationTimeout = render.DefaultNavigationTimeout
	}
	if c.Scraper.SettleDelay == 0 {
		c.Scraper.SettleDelay = render.DefaultSettleDelay
	}
	if c.Scraper.TopDelay == 0 {
		c.Scraper.TopDelay = render.DefaultTopDelay
	}
	if c.Scraper.StepDelay == 0 {
		c.Scraper.StepDelay = render.DefaultStepDelay
	}
	if c.Scraper.ScrollStep == 0 {
		c.Scraper.ScrollStep = render.DefaultScrollStep
	}
	if c.Scraper.UserAgent == "" {
		c.Scraper.UserAgent = render.DefaultUserAgent
	}
	if c.Scraper.Locale == "" {
		c.Scraper.Locale = render.DefaultLocale
	}
	if c.Scraper.MinRows == nil {
		minRows := scraper.DefaultMinRows
		c.Scraper.MinRows = &minRows
	}
	if c.Scraper.RunTimeout == 0 {
		c.Scraper.RunTimeout = scraper.DefaultRunTimeout
	}
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = "0.0.0.0:5000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		// lazy and manual runs answer synchronously
		c.Server.WriteTimeout = c.Scraper.RunTimeout + time.Minute
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverFile
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "."
	}
	if c.Storage.FileName == "" {
		c.Storage.FileName = storage.DefaultFileName
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = refresh.DefaultSchedule
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "ff-calendar-events"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Scraper.Timezone); err != nil {
		return fmt.Errorf("scraper.timezone %q: %w", c.Scraper.Timezone, err)
	}
	if c.Scraper.ScrollStep < 0 {
		return fmt.Errorf("scraper.scroll_step must be positive")
	}
	if c.Scraper.MinRows != nil && *c.Scraper.MinRows < 0 {
		return fmt.Errorf("scraper.min_rows cannot be negative")
	}
	if c.Scraper.NavigationTimeout < 0 || c.Scraper.RunTimeout < 0 {
		return fmt.Errorf("scraper timeouts cannot be negative")
	}
	switch c.Storage.Driver {
	case DriverFile:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when brokers are set")
	}
	return nil
}

// Location returns the calendar's source timezone
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Scraper.Timezone)
}

// ScraperConfig builds the pipeline configuration
func (c *Config) ScraperConfig() (scraper.Config, error) {
	loc, err := c.Location()
	if err != nil {
		return scraper.Config{}, fmt.Errorf("loading timezone %s: %w", c.Scraper.Timezone, err)
	}
	minRows := scraper.DefaultMinRows
	if c.Scraper.MinRows != nil {
		minRows = *c.Scraper.MinRows
	}
	return scraper.Config{
		Render: render.Options{
			URL:               c.Scraper.URL,
			UserAgent:         c.Scraper.UserAgent,
			Locale:            c.Scraper.Locale,
			Headless:          !c.Scraper.ShowBrowser,
			NavigationTimeout: c.Scraper.NavigationTimeout,
			SettleDelay:       c.Scraper.SettleDelay,
			TopDelay:          c.Scraper.TopDelay,
			StepDelay:         c.Scraper.StepDelay,
			ScrollStep:        c.Scraper.ScrollStep,
		},
		Location:   loc,
		Currencies: append([]string(nil), c.Scraper.Currencies...),
		MinRows:    minRows,
		RunTimeout: c.Scraper.RunTimeout,
	}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
