package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

var (
	selectorRows = cascadia.MustCompile(selectorRowSelector)
	positionRows = cascadia.MustCompile(positionRowSelector)
	teamNames    = cascadia.MustCompile(teamNameSelector)
)

// Probe picks the layout a document supports. The FootyStats matches table
// (table.matches-table rows carrying a.team-name links) selects
// LayoutBySelector; anything else is read by position.
//
// Probe runs once per scraping session, on the first document fetched.
func Probe(doc *goquery.Document) Layout {
	if doc == nil {
		return LayoutByPosition
	}
	rows := doc.FindMatcher(selectorRows)
	if rows.Length() > 0 && rows.FindMatcher(teamNames).Length() > 0 {
		return LayoutBySelector
	}
	return LayoutByPosition
}

// Rows returns the row-shaped nodes of a document for a layout, in
// document order.
func Rows(doc *goquery.Document, layout Layout) *goquery.Selection {
	if layout == LayoutBySelector {
		return doc.FindMatcher(selectorRows)
	}
	return doc.FindMatcher(positionRows)
}

