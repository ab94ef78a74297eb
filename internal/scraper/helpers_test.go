package scraper

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/ff-events/internal/render"
)

// ict is UTC+7, the offset of the calendar's display timezone.
var ict = time.FixedZone("ICT", 7*60*60)

func testConfig() Config {
	return Config{
		Render:     render.DefaultOptions(),
		Location:   ict,
		Currencies: []string{"USD", "EUR", "GBP", "AUD", "NZD"},
		MinRows:    1,
	}
}

type calRow struct {
	id       string
	date     string // "Mon Jan 15", rendered as the day header of the group
	clock    string // raw time column text
	currency string
	impact   string // "High", "Medium", "Low" or ""
	title    string
	noTitle  bool
}

// render produces a row in the calendar's markup
func (r calRow) render() string {
	var b strings.Builder
	b.WriteString(`<tr class="calendar__row"`)
	if r.id != "" {
		fmt.Fprintf(&b, ` data-event-id="%s"`, r.id)
	}
	b.WriteString(`>`)

	b.WriteString(`<td class="calendar__cell calendar__date">`)
	if r.date != "" {
		weekday, rest, _ := strings.Cut(r.date, " ")
		fmt.Fprintf(&b, `<span class="date">%s<span>%s</span></span>`, weekday, rest)
	}
	b.WriteString(`</td>`)

	b.WriteString(`<td class="calendar__cell calendar__time">`)
	if r.clock != "" {
		fmt.Fprintf(&b, `<div><span>%s</span></div>`, r.clock)
	}
	b.WriteString(`</td>`)

	b.WriteString(`<td class="calendar__cell calendar__currency">`)
	if r.currency != "" {
		fmt.Fprintf(&b, `<span>%s</span>`, r.currency)
	}
	b.WriteString(`</td>`)

	b.WriteString(`<td class="calendar__cell calendar__impact">`)
	if r.impact != "" {
		fmt.Fprintf(&b, `<span title="%s Impact Expected" class="icon"></span>`, r.impact)
	}
	b.WriteString(`</td>`)

	if !r.noTitle {
		fmt.Fprintf(&b, `<td class="calendar__cell calendar__event"><span class="calendar__event-title">%s</span></td>`, r.title)
	}
	b.WriteString(`</tr>`)
	return b.String()
}

func table(rows ...calRow) string {
	var b strings.Builder
	b.WriteString(`<html><body><table class="calendar__table"><tbody>`)
	for _, r := range rows {
		b.WriteString(r.render())
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

func rowsOf(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc.Find(render.RowSelector)
}

func extractAll(t *testing.T, year int, pages ...string) *extractor {
	t.Helper()
	x := newExtractor(testConfig(), year)
	for _, page := range pages {
		x.addRows(rowsOf(t, page))
	}
	return x
}
