package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/pfrederiksen/ff-events/internal/event"
	"github.com/pfrederiksen/ff-events/internal/logger"
	"github.com/pfrederiksen/ff-events/internal/render"
)

// ErrLayoutChanged is returned when a run sees too few calendar rows, or rows
// without any date header, which means the page no longer has the expected shape.
var ErrLayoutChanged = errors.New("calendar layout not recognized")

// Traverser yields the calendar rows of each scroll step
type Traverser interface {
	Traverse(ctx context.Context, yield func(rows *goquery.Selection)) (render.Stats, error)
}

// Result is the outcome of one successful run
type Result struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Events    []*event.Event
	Stats     Stats
	Render    render.Stats
}

// Snapshot wraps the events as a snapshot stamped with the run's start time
func (r *Result) Snapshot() *event.Snapshot {
	return event.NewSnapshot(r.Events, r.StartedAt)
}

// Scraper runs the scrape-and-normalize pipeline
type Scraper struct {
	cfg    Config
	driver Traverser
	now    func() time.Time
}

// New creates a Scraper over a validated configuration
func New(cfg Config, driver Traverser) (*Scraper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scraper config: %w", err)
	}
	return &Scraper{
		cfg:    cfg,
		driver: driver,
		now:    time.Now,
	}, nil
}

// NewWithBrowser creates a Scraper that drives browser with the configured render options
func NewWithBrowser(cfg Config, browser render.Browser) (*Scraper, error) {
	return New(cfg, render.NewDriver(browser, cfg.Render))
}

// Run performs one full traversal and returns the events in discovery order.
// Any error means the run produced nothing usable.
func (s *Scraper) Run(ctx context.Context) (*Result, error) {
	started := s.now().UTC()
	runID := uuid.NewString()

	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	logger.Info("Scrape started", logger.Fields{
		"run_id": runID,
		"url":    s.cfg.Render.URL,
	})

	x := newExtractor(s.cfg, started.Year())
	renderStats, err := s.driver.Traverse(ctx, x.addRows)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	stats := x.stats()
	if err := s.checkLayout(stats); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	result := &Result{
		RunID:     runID,
		StartedAt: started,
		Duration:  s.now().Sub(started),
		Events:    x.events,
		Stats:     stats,
		Render:    renderStats,
	}

	fields := logger.Fields{
		"run_id":       runID,
		"events":       stats.Emitted,
		"rows":         stats.Rows,
		"steps":        renderStats.Steps,
		"failed_steps": renderStats.FailedSteps,
		"duration":     result.Duration.String(),
	}
	for reason, n := range stats.Skipped {
		fields["skipped_"+string(reason)] = n
	}
	logger.Info("Scrape finished", fields)

	return result, nil
}

func (s *Scraper) checkLayout(stats Stats) error {
	if stats.Rows < s.cfg.MinRows {
		return fmt.Errorf("%w: saw %d rows, expected at least %d", ErrLayoutChanged, stats.Rows, s.cfg.MinRows)
	}
	if stats.Rows > 0 && stats.DatedRows == 0 {
		return fmt.Errorf("%w: no row resolved a date header", ErrLayoutChanged)
	}
	return nil
}
