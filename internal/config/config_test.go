package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/ff-events/internal/refresh"
	"github.com/pfrederiksen/ff-events/internal/render"
	"github.com/pfrederiksen/ff-events/internal/scraper"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FFEVENTS_URL", "FFEVENTS_TIMEZONE", "FFEVENTS_CURRENCIES", "FFEVENTS_NAVIGATION_TIMEOUT",
		"FFEVENTS_STEP_DELAY", "FFEVENTS_SCROLL_STEP", "FFEVENTS_MIN_ROWS", "FFEVENTS_RUN_TIMEOUT",
		"CHROME_PATH", "FFEVENTS_SHOW_BROWSER", "FFEVENTS_LISTEN_ADDR", "PORT", "FFEVENTS_STORAGE",
		"FFEVENTS_DATA_DIR", "DATABASE_URL", "FFEVENTS_SCHEDULE", "FFEVENTS_SKIP_INITIAL_RUN",
		"KAFKA_BROKERS", "KAFKA_TOPIC", "FFEVENTS_TWITTER", "FFEVENTS_TELEGRAM", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, render.DefaultURL, c.Scraper.URL)
	assert.Equal(t, "Asia/Bangkok", c.Scraper.Timezone)
	assert.Equal(t, []string{"USD", "EUR", "GBP", "AUD", "NZD"}, c.Scraper.Currencies)
	assert.Equal(t, 60*time.Second, c.Scraper.NavigationTimeout)
	assert.Equal(t, 120*time.Millisecond, c.Scraper.StepDelay)
	assert.Equal(t, 100, c.Scraper.ScrollStep)
	assert.Equal(t, 10*time.Minute, c.Scraper.RunTimeout)
	assert.Equal(t, "0.0.0.0:5000", c.Server.ListenAddress)
	assert.Greater(t, c.Server.WriteTimeout, c.Scraper.RunTimeout)
	assert.Equal(t, DriverFile, c.Storage.Driver)
	assert.Equal(t, "weekly_ecocar.json", c.Storage.FileName)
	assert.Equal(t, refresh.DefaultSchedule, c.Schedule.Cron)
	assert.Empty(t, c.Kafka.Brokers)
	assert.False(t, c.Twitter.Enabled)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
scraper:
  timezone: America/New_York
  currencies: [usd, jpy]
  step_delay: 250ms
  scroll_step: 200
  run_timeout: 5m
server:
  listen_address: ":8080"
  write_timeout: 30s
storage:
  driver: postgres
  dsn: postgres://localhost/ffevents
schedule:
  cron: "30 1 * * 1"
  skip_initial_run: true
kafka:
  brokers: ["k1:9092", "k2:9092"]
  topic: calendar
twitter:
  enabled: true
telegram:
  enabled: true
log_level: debug
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "America/New_York", c.Scraper.Timezone)
	assert.Equal(t, []string{"usd", "jpy"}, c.Scraper.Currencies)
	assert.Equal(t, 250*time.Millisecond, c.Scraper.StepDelay)
	assert.Equal(t, 200, c.Scraper.ScrollStep)
	assert.Equal(t, 5*time.Minute, c.Scraper.RunTimeout)
	assert.Equal(t, ":8080", c.Server.ListenAddress)
	assert.Equal(t, 30*time.Second, c.Server.WriteTimeout)
	assert.Equal(t, DriverPostgres, c.Storage.Driver)
	assert.Equal(t, "postgres://localhost/ffevents", c.Storage.DSN)
	assert.Equal(t, "30 1 * * 1", c.Schedule.Cron)
	assert.True(t, c.Schedule.SkipInitialRun)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "calendar", c.Kafka.Topic)
	assert.True(t, c.Twitter.Enabled)
	assert.True(t, c.Telegram.Enabled)
	assert.Equal(t, "debug", c.LogLevel)
	// untouched fields still get defaults
	assert.Equal(t, render.DefaultUserAgent, c.Scraper.UserAgent)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
scraper:
  currencies: [USD]
server:
  listen_address: ":8080"
`)
	t.Setenv("FFEVENTS_CURRENCIES", "EUR, GBP")
	t.Setenv("FFEVENTS_STEP_DELAY", "300ms")
	t.Setenv("PORT", "9000")
	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	t.Setenv("FFEVENTS_SHOW_BROWSER", "true")
	t.Setenv("LOG_LEVEL", "warn")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"EUR", "GBP"}, c.Scraper.Currencies)
	assert.Equal(t, 300*time.Millisecond, c.Scraper.StepDelay)
	assert.Equal(t, "0.0.0.0:9000", c.Server.ListenAddress)
	assert.Equal(t, []string{"kafka:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Scraper.ShowBrowser)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestLoad_InvalidEnvValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("FFEVENTS_SCROLL_STEP", "lots")
	t.Setenv("FFEVENTS_RUN_TIMEOUT", "forever")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, render.DefaultScrollStep, c.Scraper.ScrollStep)
	assert.Equal(t, scraper.DefaultRunTimeout, c.Scraper.RunTimeout)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown timezone", "scraper:\n  timezone: Mars/Olympus\n"},
		{"negative scroll step", "scraper:\n  scroll_step: -5\n"},
		{"negative min rows", "scraper:\n  min_rows: -1\n"},
		{"unknown driver", "storage:\n  driver: redis\n"},
		{"postgres without dsn", "storage:\n  driver: postgres\n"},
		{"malformed yaml", "scraper: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MinRows(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  string
		want int
	}{
		{"unset uses default", "log_level: info\n", "", scraper.DefaultMinRows},
		{"explicit zero disables the check", "scraper:\n  min_rows: 0\n", "", 0},
		{"explicit value", "scraper:\n  min_rows: 25\n", "", 25},
		{"env zero overrides file", "scraper:\n  min_rows: 25\n", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("FFEVENTS_MIN_ROWS", tt.env)

			c, err := Load(writeConfig(t, tt.yaml))
			require.NoError(t, err)
			require.NotNil(t, c.Scraper.MinRows)
			assert.Equal(t, tt.want, *c.Scraper.MinRows)

			sc, err := c.ScraperConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.want, sc.MinRows)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestScraperConfig(t *testing.T) {
	clearEnv(t)
	c, err := Load("")
	require.NoError(t, err)

	sc, err := c.ScraperConfig()
	require.NoError(t, err)
	require.NoError(t, sc.Validate())

	assert.Equal(t, "Asia/Bangkok", sc.Location.String())
	assert.Equal(t, c.Scraper.Currencies, sc.Currencies)
	assert.True(t, sc.Render.Headless)
	assert.Equal(t, render.DefaultOptions(), sc.Render)
	assert.Equal(t, scraper.DefaultMinRows, sc.MinRows)

	// the scraper config owns its currency slice
	sc.Currencies[0] = "JPY"
	assert.Equal(t, "USD", c.Scraper.Currencies[0])
}
