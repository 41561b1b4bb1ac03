package inspect

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/footyscrape/engine"
	"github.com/use-agent/footyscrape/extract"
	"github.com/use-agent/footyscrape/models"
)

type backendFunc func(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error)

func (f backendFunc) Dispatch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	return f(ctx, req)
}

func footyRow(date, home, score, away string) string {
	return `<tr class="match complete">
		<td class="date" data-stat="date">` + date + `</td>
		<td class="team-home"><a class="team-name" href="#">` + home + `</a></td>
		<td class="ft-score"><a href="#">` + score + `</a></td>
		<td class="team-away"><a class="team-name" href="#">` + away + `</a></td>
		<td class="stats">1.1 xG 0.9 xG</td>
		<td class="extra">A very long cell text that is certainly longer than fifty runes in total</td>
	</tr>`
}

func footyPage(rows ...string) string {
	return `<html><head><title>Botola Pro Fixtures &amp; Results | FootyStats</title></head><body>
	<div class="match-header">Morocco</div>
	<table class="matches-table"><thead><tr><th>Date</th><th>Home</th><th>Score</th><th>Away</th><th>Stats</th></tr></thead>
	<tbody>` + strings.Join(rows, "") + `</tbody></table>
	<div class="load_more"><a>Load more</a></div>
	</body></html>`
}

func TestAnalyzeHTML(t *testing.T) {
	page := footyPage(
		footyRow("Aug 18", "Raja Casablanca", "2 - 1", "Wydad Casablanca"),
		footyRow("Aug 19", "FUS Rabat", "1 - 1", "AS FAR"),
		footyRow("Aug 20", "Moghreb Tetouan", "0 - 0", "Hassania Agadir"),
		footyRow("Aug 21", "RS Berkane", "3 - 0", "Olympic Safi"),
	)
	r, err := AnalyzeHTML(page, "https://footystats.org/morocco/botola-pro/matches")
	require.NoError(t, err)

	assert.Contains(t, r.Title, "Botola Pro")
	assert.Equal(t, 1, r.Tables)
	assert.Equal(t, []string{"Date", "Home", "Score", "Away", "Stats"}, r.Headers)
	require.Len(t, r.Rows, 3)
	assert.Len(t, r.Rows[0], 6)
	assert.Equal(t, "Raja Casablanca", r.Rows[0][1])
	assert.Equal(t, 50, len([]rune(r.Rows[0][5])))
	assert.Equal(t, 4, r.DataStat)

	byKeyword := map[string]ClassHits{}
	for _, h := range r.Classes {
		byKeyword[h.Keyword] = h
	}
	assert.Equal(t, 6, byKeyword["match"].Count) // header div, table, 4 rows
	assert.Len(t, byKeyword["match"].Samples, 3)
	assert.Equal(t, 16, byKeyword["team"].Count)
	assert.Equal(t, 4, byKeyword["score"].Count)

	assert.Equal(t, extract.LayoutBySelector.String(), r.Layout)
	assert.Equal(t, 4, r.LayoutRows)
	assert.Equal(t, 4, r.Matched)
	assert.Len(t, r.Fingerprint, 16)
}

func TestRowFingerprint(t *testing.T) {
	rowsOf := func(html string) *goquery.Selection {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		require.NoError(t, err)
		return extract.Rows(doc, extract.LayoutBySelector)
	}

	a := RowFingerprint(rowsOf(footyPage(
		footyRow("Aug 18", "Raja", "2 - 1", "Wydad"),
		footyRow("Aug 19", "FUS", "1 - 1", "FAR"),
	)))
	b := RowFingerprint(rowsOf(footyPage(
		footyRow("Sep 02", "Berkane", "0 - 3", "Safi"),
		footyRow("Sep 03", "Tetouan", "2 - 2", "Agadir"),
	)))
	assert.Equal(t, a, b, "text does not affect the fingerprint")
	assert.False(t, a.Drifted(b))

	redesigned := RowFingerprint(rowsOf(`<table class="matches-table"><tbody>
		<tr><td><div class="fixture"><span class="h">Raja</span><span class="a">Wydad</span></div></td></tr>
		<tr><td><div class="fixture"><span class="h">FUS</span><span class="a">FAR</span></div></td></tr>
	</tbody></table>`))
	assert.NotEqual(t, a, redesigned)
	assert.Positive(t, a.Distance(redesigned))

	assert.Zero(t, RowFingerprint(rowsOf("<p>nothing</p>")))

	parsed, err := ParseFingerprint(a.String())
	require.NoError(t, err)
	assert.Equal(t, a, parsed)
	_, err = ParseFingerprint("not-hex")
	assert.Error(t, err)
}

func TestInspector(t *testing.T) {
	var got *engine.FetchRequest
	insp := New(backendFunc(func(_ context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
		got = req
		return &engine.FetchResult{HTML: `<html><head><title>Just a moment...</title></head><body></body></html>`}, nil
	}), 0)

	r, err := insp.Inspect(context.Background(), "https://footystats.org/x", true)
	require.NoError(t, err)
	assert.Empty(t, got.ReadySelector)
	assert.True(t, got.Stealth)
	assert.Equal(t, "Just a moment...", r.Title)
	assert.Zero(t, r.Tables)
	assert.Equal(t, extract.LayoutByPosition.String(), r.Layout)

	var buf bytes.Buffer
	Render(&buf, r)
	assert.Contains(t, buf.String(), "Just a moment...")

	failing := New(backendFunc(func(context.Context, *engine.FetchRequest) (*engine.FetchResult, error) {
		return nil, errors.New("blocked")
	}), 0)
	_, err = failing.Inspect(context.Background(), "https://footystats.org/x", false)
	var se *models.ScrapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.ErrCodeInspectFailed, se.Code)
}
