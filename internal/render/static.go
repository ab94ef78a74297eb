package render

import (
	"context"
	"fmt"
	"os"
)

// StaticBrowser serves a fixed, fully rendered document. It is used to run the
// pipeline against a saved copy of the calendar.
type StaticBrowser struct {
	HTML string
}

// NewStaticBrowserFromFile reads a saved calendar page
func NewStaticBrowserFromFile(path string) (*StaticBrowser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading saved page: %w", err)
	}
	return &StaticBrowser{HTML: string(data)}, nil
}

// Open returns a page over the saved document
func (b *StaticBrowser) Open(ctx context.Context, _ Options) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &staticPage{html: b.HTML}, nil
}

type staticPage struct {
	html string
}

func (p *staticPage) Navigate(ctx context.Context, _ string) error { return ctx.Err() }

func (p *staticPage) ScrollTo(ctx context.Context, _ int) error { return ctx.Err() }

// ScrollHeight reports a single viewport so the document is captured once.
func (p *staticPage) ScrollHeight(ctx context.Context) (int, error) { return 1, ctx.Err() }

func (p *staticPage) HTML(ctx context.Context) (string, error) { return p.html, ctx.Err() }

func (p *staticPage) Close() error { return nil }
