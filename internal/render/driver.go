package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/ff-events/internal/logger"
)

// Stats describes one traversal
type Stats struct {
	Steps       int
	FailedSteps int
	FinalHeight int
}

// Driver scrolls a page from top to bottom and hands each step's rows to a callback
type Driver struct {
	browser Browser
	opts    Options
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewDriver creates a Driver. Zero-valued options fall back to the defaults.
func NewDriver(browser Browser, opts Options) *Driver {
	def := DefaultOptions()
	if opts.URL == "" {
		opts.URL = def.URL
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = def.NavigationTimeout
	}
	if opts.ScrollStep <= 0 {
		opts.ScrollStep = def.ScrollStep
	}
	return &Driver{
		browser: browser,
		opts:    opts,
		sleep:   sleepContext,
	}
}

// Options returns the effective options
func (d *Driver) Options() Options {
	return d.opts
}

// Traverse navigates to the calendar and scrolls through it. After every
// scroll step, yield receives the rows attached to the document at that moment,
// in document order. The page is closed before Traverse returns.
func (d *Driver) Traverse(ctx context.Context, yield func(rows *goquery.Selection)) (stats Stats, err error) {
	page, err := d.browser.Open(ctx, d.opts)
	if err != nil {
		return stats, fmt.Errorf("%w: %v", ErrSession, err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			logger.Warn("Closing browser page failed", logger.Fields{"error": cerr.Error()})
		}
	}()

	navCtx, cancel := context.WithTimeout(ctx, d.opts.NavigationTimeout)
	err = page.Navigate(navCtx, d.opts.URL)
	cancel()
	if err != nil {
		return stats, fmt.Errorf("%w: %s: %v", ErrNavigation, d.opts.URL, err)
	}

	if err := d.sleep(ctx, d.opts.SettleDelay); err != nil {
		return stats, err
	}
	if err := page.ScrollTo(ctx, 0); err != nil {
		logger.Warn("Scroll to top failed", logger.Fields{"error": err.Error()})
	}
	if err := d.sleep(ctx, d.opts.TopDelay); err != nil {
		return stats, err
	}

	height, err := page.ScrollHeight(ctx)
	if err != nil {
		return stats, fmt.Errorf("%w: %v", ErrNoHeight, err)
	}

	for y := 0; y < height; y += d.opts.ScrollStep {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Steps++

		rows, stepErr := d.step(ctx, page, y)
		if stepErr != nil {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			stats.FailedSteps++
			logger.Debug("Scroll step skipped", logger.Fields{"offset": y, "error": stepErr.Error()})
		} else {
			yield(rows)
		}

		// Lazy rows grow the document; a failed read keeps the last known height.
		if h, err := page.ScrollHeight(ctx); err == nil {
			height = h
		} else if ctx.Err() != nil {
			return stats, ctx.Err()
		}
	}

	stats.FinalHeight = height
	if stats.FailedSteps > 0 {
		logger.Warn("Some scroll steps failed", logger.Fields{
			"steps":  stats.Steps,
			"failed": stats.FailedSteps,
		})
	}
	return stats, nil
}

// step scrolls to y, waits for lazy content to mount and captures the rows
func (d *Driver) step(ctx context.Context, page Page, y int) (*goquery.Selection, error) {
	if err := page.ScrollTo(ctx, y); err != nil {
		return nil, fmt.Errorf("scrolling to %d: %w", y, err)
	}
	if err := d.sleep(ctx, d.opts.StepDelay); err != nil {
		return nil, err
	}
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return doc.Find(RowSelector), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
