package analysis

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/use-agent/footyscrape/models"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// RenderSummary prints s as a two-column table.
func RenderSummary(w io.Writer, s Summary) {
	t := newTable(w)
	t.SetTitle("Summary")
	t.AppendRows([]table.Row{
		{"Matches", s.Records},
		{"Seasons", strings.Join(s.Seasons, ", ")},
		{"Teams", s.Teams},
		{"Scored matches", s.Scored},
		{"Home / draw / away", fmt.Sprintf("%d / %d / %d", s.HomeWins, s.Draws, s.AwayWins)},
		{"Mean home goals", fmt.Sprintf("%.2f", s.MeanHomeGoals)},
		{"Mean away goals", fmt.Sprintf("%.2f", s.MeanAwayGoals)},
	})
	t.Render()
}

// RenderTable prints one season's league table.
func RenderTable(w io.Writer, tbl Table) {
	t := newTable(w)
	t.SetTitle(tbl.Season)
	t.AppendHeader(table.Row{"#", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts"})
	for i, s := range tbl.Rows {
		t.AppendRow(table.Row{
			i + 1, s.Team, s.Played, s.Won, s.Drawn, s.Lost,
			s.GoalsFor, s.GoalsAgainst, fmt.Sprintf("%+d", s.GoalDifference()), s.Points,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignLeft},
		{Number: 10, Align: text.AlignRight},
	})
	t.Render()
}

// RenderRecords prints up to limit records; limit <= 0 prints all.
func RenderRecords(w io.Writer, records []models.MatchRecord, limit int) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Season", "Date", "Home", "Score", "Away", "xG"})
	for i, r := range records {
		if limit > 0 && i >= limit {
			t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d more", len(records)-limit)})
			break
		}
		xg := ""
		if r.ExpectedGoalsHome != "" || r.ExpectedGoalsAway != "" {
			xg = r.ExpectedGoalsHome + " - " + r.ExpectedGoalsAway
		}
		t.AppendRow(table.Row{r.Season, r.Date, r.HomeTeam, r.Score, r.AwayTeam, xg})
	}
	t.Render()
}
