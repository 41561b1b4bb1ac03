package analysis

import (
	"sort"

	"github.com/use-agent/footyscrape/models"
)

// Points per result.
const (
	PointsWin  = 3
	PointsDraw = 1
)

// Standing is one team's line in a league table.
type Standing struct {
	Team         string `json:"team"`
	Played       int    `json:"played"`
	Won          int    `json:"won"`
	Drawn        int    `json:"drawn"`
	Lost         int    `json:"lost"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	Points       int    `json:"points"`
}

// GoalDifference is GoalsFor minus GoalsAgainst.
func (s Standing) GoalDifference() int { return s.GoalsFor - s.GoalsAgainst }

// Table is the league table of one season.
type Table struct {
	Season string     `json:"season"`
	Rows   []Standing `json:"rows"`
}

// Standings builds one table per season, in first-seen season order.
// Records without a parsed score are ignored. Rows are ordered by points,
// goal difference, goals for, then team name.
func Standings(records []models.MatchRecord) []Table {
	var order []string
	bySeason := make(map[string]map[string]*Standing)

	for _, r := range records {
		h, a, ok := r.Goals()
		if !ok {
			continue
		}
		teams, seen := bySeason[r.Season]
		if !seen {
			teams = make(map[string]*Standing)
			bySeason[r.Season] = teams
			order = append(order, r.Season)
		}
		record(teams, r.HomeTeam, h, a)
		record(teams, r.AwayTeam, a, h)
	}

	tables := make([]Table, 0, len(order))
	for _, season := range order {
		rows := make([]Standing, 0, len(bySeason[season]))
		for _, s := range bySeason[season] {
			rows = append(rows, *s)
		}
		sort.Slice(rows, func(i, j int) bool { return ranksAbove(rows[i], rows[j]) })
		tables = append(tables, Table{Season: season, Rows: rows})
	}
	return tables
}

func record(teams map[string]*Standing, team string, scored, conceded int) {
	s, ok := teams[team]
	if !ok {
		s = &Standing{Team: team}
		teams[team] = s
	}
	s.Played++
	s.GoalsFor += scored
	s.GoalsAgainst += conceded
	switch {
	case scored > conceded:
		s.Won++
		s.Points += PointsWin
	case scored == conceded:
		s.Drawn++
		s.Points += PointsDraw
	default:
		s.Lost++
	}
}

func ranksAbove(a, b Standing) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if gd, other := a.GoalDifference(), b.GoalDifference(); gd != other {
		return gd > other
	}
	if a.GoalsFor != b.GoalsFor {
		return a.GoalsFor > b.GoalsFor
	}
	return a.Team < b.Team
}
