package scraper

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/ff-events/internal/render"
)

const (
	DefaultTimezone   = "Asia/Bangkok"
	DefaultRunTimeout = 10 * time.Minute
	DefaultMinRows    = 1
)

// DefaultCurrencies is the allow-set used when none is configured.
var DefaultCurrencies = []string{"USD", "EUR", "GBP", "AUD", "NZD"}

// Config is the immutable input of a pipeline run
type Config struct {
	Render     render.Options
	Location   *time.Location
	Currencies []string
	// MinRows is the fewest distinct calendar rows a healthy run observes.
	MinRows    int
	RunTimeout time.Duration
}

// DefaultConfig returns the reference configuration
func DefaultConfig() (Config, error) {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return Config{}, fmt.Errorf("loading timezone %s: %w", DefaultTimezone, err)
	}
	return Config{
		Render:     render.DefaultOptions(),
		Location:   loc,
		Currencies: append([]string(nil), DefaultCurrencies...),
		MinRows:    DefaultMinRows,
		RunTimeout: DefaultRunTimeout,
	}, nil
}

// Validate checks the fields the pipeline cannot run without
func (c Config) Validate() error {
	if c.Location == nil {
		return fmt.Errorf("source timezone is required")
	}
	if len(c.Currencies) == 0 {
		return fmt.Errorf("at least one target currency is required")
	}
	for _, cur := range c.Currencies {
		if len(strings.TrimSpace(cur)) != 3 {
			return fmt.Errorf("invalid currency code: %q", cur)
		}
	}
	if c.MinRows < 0 {
		return fmt.Errorf("min rows cannot be negative")
	}
	return nil
}

// currencySet builds the upper-cased allow-set
func (c Config) currencySet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Currencies))
	for _, cur := range c.Currencies {
		set[strings.ToUpper(strings.TrimSpace(cur))] = struct{}{}
	}
	return set
}
