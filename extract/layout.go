package extract

import (
	"fmt"
	"strings"
)

// Layout names how the cells of a listing row map to record fields.
// A scraping session uses one layout for every row it reads.
type Layout int

const (
	// LayoutAuto defers the choice to Probe on the first fetched document.
	LayoutAuto Layout = iota

	// LayoutByPosition reads plain cell text by index:
	// date, time, home team, score, away team.
	LayoutByPosition

	// LayoutBySelector reads the FootyStats matches table markup:
	// date in cell 0, a.team-name in cell 1, the score link in cell 2 and
	// a.team-name in cell 3.
	LayoutBySelector
)

// Row-shaped node selectors per layout.
const (
	positionRowSelector = "tr"
	selectorRowSelector = "table.matches-table tbody tr"

	teamNameSelector = "a.team-name"
	scoreSelector    = "a"
)

func (l Layout) String() string {
	switch l {
	case LayoutByPosition:
		return "position"
	case LayoutBySelector:
		return "selector"
	default:
		return "auto"
	}
}

// RowSelector returns the CSS selector of row-shaped nodes for the layout.
// LayoutAuto has no row selector of its own and falls back to every <tr>.
func (l Layout) RowSelector() string {
	if l == LayoutBySelector {
		return selectorRowSelector
	}
	return positionRowSelector
}

// ParseLayout accepts "auto", "position" and "selector" (case-insensitive).
// The empty string means auto.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return LayoutAuto, nil
	case "position", "byposition", "by-position":
		return LayoutByPosition, nil
	case "selector", "byselector", "by-selector":
		return LayoutBySelector, nil
	default:
		return LayoutAuto, fmt.Errorf("unknown layout %q", s)
	}
}
