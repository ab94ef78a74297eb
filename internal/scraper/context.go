package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	dateHeaderSelector = ".calendar__date .date"
	timeHeaderSelector = ".calendar__cell.calendar__time span"
)

// lookBack finds the nearest element matching selector at or before row in
// document order. It searches the row, then its previous siblings, then the
// previous siblings of each ancestor in turn. An ancestor itself is never
// searched since it also contains content after the row. Inside a preceding
// subtree the last match is the nearest one.
func lookBack(row *goquery.Selection, selector string) (string, bool) {
	if found := row.Find(selector).First(); found.Length() > 0 {
		return innerText(found), true
	}
	level := row
	candidate := row.Prev()
	for {
		for el := candidate; el.Length() > 0; el = el.Prev() {
			if found := el.Find(selector).Last(); found.Length() > 0 {
				return innerText(found), true
			}
		}
		level = level.Parent()
		if level.Length() == 0 {
			return "", false
		}
		candidate = level.Prev()
	}
}

// headerDate returns the date header a row inherits, line breaks collapsed.
func headerDate(row *goquery.Selection) (string, bool) {
	text, ok := lookBack(row, dateHeaderSelector)
	if !ok {
		return "", false
	}
	return strings.Join(strings.Fields(text), " "), true
}

// headerTime returns the raw time column text a row inherits.
func headerTime(row *goquery.Selection) (string, bool) {
	return lookBack(row, timeHeaderSelector)
}

// innerText approximates the browser's innerText: each non-blank text node
// becomes its own trimmed line.
func innerText(sel *goquery.Selection) string {
	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				lines = append(lines, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(lines, "\n")
}
