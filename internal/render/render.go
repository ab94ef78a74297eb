package render

import (
	"context"
	"errors"
	"time"
)

// RowSelector matches one calendar row in the rendered document.
const RowSelector = "tr.calendar__row"

const (
	DefaultURL               = "https://www.forexfactory.com/calendar"
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
	DefaultLocale            = "en-US"
	DefaultNavigationTimeout = 60 * time.Second
	DefaultSettleDelay       = 3 * time.Second
	DefaultTopDelay          = 1 * time.Second
	DefaultStepDelay         = 120 * time.Millisecond
	DefaultScrollStep        = 100
)

var (
	// ErrSession is returned when the browser session cannot be started.
	ErrSession = errors.New("browser session failed")
	// ErrNavigation is returned when the page cannot be loaded within the navigation timeout.
	ErrNavigation = errors.New("navigation failed")
	// ErrNoHeight is returned when the content height cannot be read after navigation.
	ErrNoHeight = errors.New("content height unavailable")
)

// Options configures a traversal. UserAgent and Locale are passed to the
// browser untouched.
type Options struct {
	URL               string
	UserAgent         string
	Locale            string
	Headless          bool
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	TopDelay          time.Duration
	StepDelay         time.Duration
	ScrollStep        int
}

// DefaultOptions returns the options tuned for the Forex Factory calendar
func DefaultOptions() Options {
	return Options{
		URL:               DefaultURL,
		UserAgent:         DefaultUserAgent,
		Locale:            DefaultLocale,
		Headless:          true,
		NavigationTimeout: DefaultNavigationTimeout,
		SettleDelay:       DefaultSettleDelay,
		TopDelay:          DefaultTopDelay,
		StepDelay:         DefaultStepDelay,
		ScrollStep:        DefaultScrollStep,
	}
}

// Page is a single rendered document that can be scrolled and captured.
type Page interface {
	Navigate(ctx context.Context, url string) error
	ScrollTo(ctx context.Context, y int) error
	ScrollHeight(ctx context.Context) (int, error)
	HTML(ctx context.Context) (string, error)
	Close() error
}

// Browser opens pages.
type Browser interface {
	Open(ctx context.Context, opts Options) (Page, error)
}
