package render

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

// ChromeBrowser launches a local Chrome through chromedp. Each Open starts a
// dedicated browser process that is torn down by Page.Close.
type ChromeBrowser struct {
	// ExecPath overrides chromedp's Chrome lookup when set.
	ExecPath string
}

// Open starts Chrome and attaches a tab
func (b *ChromeBrowser) Open(ctx context.Context, opts Options) (Page, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("lang", opts.Locale),
		chromedp.UserAgent(opts.UserAgent),
		chromedp.WindowSize(1366, 900),
	)
	if b.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(b.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// The first Run starts the browser and binds it to tabCtx.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}

	return &chromePage{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}, nil
}

type chromePage struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// run executes actions on the tab, bounded by the caller's deadline and cancellation
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *chromePage) ScrollTo(ctx context.Context, y int) error {
	var pos float64
	return p.run(ctx, chromedp.Evaluate(fmt.Sprintf("window.scrollTo(0, %d); window.scrollY", y), &pos))
}

func (p *chromePage) ScrollHeight(ctx context.Context) (int, error) {
	var height float64
	if err := p.run(ctx, chromedp.Evaluate("document.body.scrollHeight", &height)); err != nil {
		return 0, err
	}
	return int(height), nil
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Close shuts the tab down gracefully, then kills the browser process
func (p *chromePage) Close() error {
	err := chromedp.Cancel(p.ctx)
	p.cancelTab()
	p.cancelAlloc()
	return err
}
