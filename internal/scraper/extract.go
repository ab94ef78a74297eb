package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/ff-events/internal/event"
)

const (
	identityAttr     = "data-event-id"
	currencySelector = ".calendar__currency span"
	impactSelector   = `.calendar__impact span[title="High Impact Expected"]`
	titleSelector    = ".calendar__event-title"

	headerDateLayout = "Mon Jan 2 2006"
	localTimeLayout  = "2006-01-02 3:04pm"
)

// clockPattern matches the first "H:MM am|pm" in a time column, e.g. "8:30am".
var clockPattern = regexp.MustCompile(`(?i)\b(\d{1,2}:\d{2}\s*(?:am|pm))\b`)

// Skip names the reason a row produced no event
type Skip string

const (
	SkipNone         Skip = ""
	SkipNoIdentity   Skip = "no_identity"
	SkipDuplicate    Skip = "duplicate"
	SkipNoDateHeader Skip = "no_date_header"
	SkipBadDate      Skip = "bad_date"
	SkipNoTimeHeader Skip = "no_time_header"
	SkipNoClockTime  Skip = "no_clock_time"
	SkipNoCurrency   Skip = "no_currency"
	SkipCurrency     Skip = "currency_filtered"
	SkipNotHigh      Skip = "not_high_impact"
	SkipBadTime      Skip = "bad_time"
)

// Stats aggregates the outcome of one run's rows
type Stats struct {
	Rows         int          `json:"rows"`         // distinct row identities observed
	DatedRows    int          `json:"dated_rows"`   // identities that resolved a date header
	Emitted      int          `json:"emitted"`      // events produced
	Skipped      map[Skip]int `json:"skipped"`      // final reason per identity never emitted
	Unidentified int          `json:"unidentified"` // row captures without an identity
}

// extractor holds the state of a single run. It is not safe for concurrent use.
type extractor struct {
	currencies map[string]struct{}
	loc        *time.Location
	year       int

	events       []*event.Event
	emitted      map[string]struct{}
	rejected     map[string]Skip
	dated        map[string]struct{}
	unidentified int
}

func newExtractor(cfg Config, year int) *extractor {
	return &extractor{
		currencies: cfg.currencySet(),
		loc:        cfg.Location,
		year:       year,
		events:     make([]*event.Event, 0),
		emitted:    make(map[string]struct{}),
		rejected:   make(map[string]Skip),
		dated:      make(map[string]struct{}),
	}
}

// addRows processes rows in document order
func (x *extractor) addRows(rows *goquery.Selection) {
	rows.Each(func(_ int, row *goquery.Selection) {
		x.add(row)
	})
}

// add processes one row, keeping the first event seen for each identity.
// A row rejected on one scroll step is evaluated again when it reappears,
// since more of its surroundings may have mounted by then.
func (x *extractor) add(row *goquery.Selection) Skip {
	id, ok := rowIdentity(row)
	if !ok {
		x.unidentified++
		return SkipNoIdentity
	}
	if _, dup := x.emitted[id]; dup {
		return SkipDuplicate
	}

	evt, skip := x.extract(id, row)
	if skip != SkipNone {
		x.rejected[id] = skip
		return skip
	}

	delete(x.rejected, id)
	x.emitted[id] = struct{}{}
	x.events = append(x.events, evt)
	return SkipNone
}

func (x *extractor) extract(id string, row *goquery.Selection) (*event.Event, Skip) {
	dateText, ok := headerDate(row)
	if !ok {
		return nil, SkipNoDateHeader
	}
	x.dated[id] = struct{}{}

	day, ok := parseHeaderDate(dateText, x.year)
	if !ok {
		return nil, SkipBadDate
	}

	timeText, ok := headerTime(row)
	if !ok {
		return nil, SkipNoTimeHeader
	}

	clock, ok := matchClock(timeText)
	if !ok {
		return nil, SkipNoClockTime
	}

	currency, ok := rowCurrency(row)
	if !ok {
		return nil, SkipNoCurrency
	}
	if _, allowed := x.currencies[currency]; !allowed {
		return nil, SkipCurrency
	}

	if !isHighImpact(row) {
		return nil, SkipNotHigh
	}

	title := rowTitle(row)

	at, ok := localToUTC(day, clock, x.loc)
	if !ok {
		return nil, SkipBadTime
	}

	return event.NewEvent(id, at, currency, title), SkipNone
}

func (x *extractor) stats() Stats {
	skipped := make(map[Skip]int)
	for _, reason := range x.rejected {
		skipped[reason]++
	}
	return Stats{
		Rows:         len(x.emitted) + len(x.rejected),
		DatedRows:    len(x.dated),
		Emitted:      len(x.events),
		Skipped:      skipped,
		Unidentified: x.unidentified,
	}
}

func rowIdentity(row *goquery.Selection) (string, bool) {
	id, ok := row.Attr(identityAttr)
	id = strings.TrimSpace(id)
	return id, ok && id != ""
}

// parseHeaderDate reads "Mon Jan 15" in the given year
func parseHeaderDate(text string, year int) (time.Time, bool) {
	t, err := time.Parse(headerDateLayout, text+" "+strconv.Itoa(year))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// matchClock extracts the first 12-hour clock time, lower-cased with spaces removed
func matchClock(text string) (string, bool) {
	m := clockPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	clock := strings.ToLower(strings.Join(strings.Fields(m[1]), ""))
	return clock, true
}

func rowCurrency(row *goquery.Selection) (string, bool) {
	cell := row.Find(currencySelector).First()
	if cell.Length() == 0 {
		return "", false
	}
	currency := strings.ToUpper(strings.TrimSpace(cell.Text()))
	return currency, currency != ""
}

func isHighImpact(row *goquery.Selection) bool {
	return row.Find(impactSelector).Length() > 0
}

func rowTitle(row *goquery.Selection) string {
	return strings.TrimSpace(row.Find(titleSelector).First().Text())
}

// localToUTC interprets day + clock as wall time in loc and returns the UTC instant
func localToUTC(day time.Time, clock string, loc *time.Location) (time.Time, bool) {
	local, err := time.ParseInLocation(localTimeLayout, day.Format("2006-01-02")+" "+clock, loc)
	if err != nil {
		return time.Time{}, false
	}
	return local.UTC(), true
}
