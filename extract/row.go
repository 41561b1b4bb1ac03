package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"github.com/use-agent/footyscrape/models"
)

// MinCells is the fewest cells a row must have before it is read at all.
// Shorter rows are headers, spacers or ads.
const MinCells = 5

// Extractor turns listing rows into match records using one layout.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	layout Layout
}

// NewExtractor returns an Extractor for the given layout. LayoutAuto is
// resolved to LayoutByPosition; callers that want probing should call Probe
// first.
func NewExtractor(layout Layout) *Extractor {
	if layout == LayoutAuto {
		layout = LayoutByPosition
	}
	return &Extractor{layout: layout}
}

// Layout returns the layout this extractor reads.
func (e *Extractor) Layout() Layout { return e.layout }

// Extract reads one row. The season label is stamped on the record at
// construction. A row that does not look like a match yields Skipped; this
// method never fails.
func (e *Extractor) Extract(row *goquery.Selection, season string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("row unreadable", "season", season, "panic", r)
			out = Skipped(SkipUnreadable)
		}
	}()

	cells := row.ChildrenFiltered("td")
	if cells.Length() < MinCells {
		return Skipped(SkipTooFewCells)
	}

	var f fields
	switch e.layout {
	case LayoutBySelector:
		f = readBySelector(cells)
	default:
		f = readByPosition(cells)
		if f.date == "" {
			return Skipped(SkipNoDate)
		}
	}

	switch {
	case f.home == "":
		return Skipped(SkipNoHomeTeam)
	case f.away == "":
		return Skipped(SkipNoAwayTeam)
	case f.score == "":
		return Skipped(SkipNoScore)
	}

	rec := models.MatchRecord{
		Season:   season,
		Date:     f.date,
		Time:     f.time,
		HomeTeam: f.home,
		AwayTeam: f.away,
		Score:    f.score,
	}
	if home, away, ok := ParseScore(f.score); ok {
		rec.HomeGoals = &home
		rec.AwayGoals = &away
	} else {
		slog.Debug("score unparseable, keeping record without goals",
			"season", season, "score", f.score,
			"home", f.home, "away", f.away,
		)
	}

	stats := ExtractStats(rowText(cells))
	if p, ok := stats[MetricExpectedGoals]; ok {
		rec.ExpectedGoalsHome, rec.ExpectedGoalsAway = p.Home, p.Away
	}
	if p, ok := stats[MetricShots]; ok {
		rec.ShotsHome, rec.ShotsAway = p.Home, p.Away
	}
	if p, ok := stats[MetricPossession]; ok {
		rec.PossessionHome, rec.PossessionAway = p.Home, p.Away
	}

	return Matched(rec)
}

type fields struct {
	date, time string
	home, away string
	score      string
}

func readByPosition(cells *goquery.Selection) fields {
	return fields{
		date:  cellText(cells.Eq(0)),
		time:  cellText(cells.Eq(1)),
		home:  cellText(cells.Eq(2)),
		score: cellText(cells.Eq(3)),
		away:  cellText(cells.Eq(4)),
	}
}

func readBySelector(cells *goquery.Selection) fields {
	return fields{
		date:  cellText(cells.Eq(0)),
		home:  cellText(cells.Eq(1).Find(teamNameSelector).First()),
		score: cellText(cells.Eq(2).Find(scoreSelector).First()),
		away:  cellText(cells.Eq(3).Find(teamNameSelector).First()),
	}
}

// cellText returns the normalised visible text of a selection. An empty
// selection yields "".
func cellText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	return Clean(s.Text())
}

// rowText joins cell texts with a space so numbers from adjacent cells
// never run together.
func rowText(cells *goquery.Selection) string {
	parts := make([]string, 0, cells.Length())
	cells.Each(func(_ int, c *goquery.Selection) {
		parts = append(parts, c.Text())
	})
	return strings.Join(parts, " ")
}

// Clean collapses runs of whitespace (non-breaking spaces included) to a
// single space, trims the result and applies NFC normalisation so that the
// same team name always compares equal.
func Clean(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
