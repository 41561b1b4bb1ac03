// Package analysis summarises collected match records and derives league
// tables from them.
package analysis

import (
	"sort"

	"github.com/use-agent/footyscrape/models"
)

// Summary describes a set of records.
type Summary struct {
	Records int
	// Seasons in first-seen order.
	Seasons []string
	Teams   int
	// Scored counts records whose score was parsed.
	Scored        int
	MeanHomeGoals float64
	MeanAwayGoals float64
	HomeWins      int
	Draws         int
	AwayWins      int
}

// Summarize computes a Summary. Goal averages only cover scored records.
func Summarize(records []models.MatchRecord) Summary {
	s := Summary{Records: len(records)}
	seenSeason := make(map[string]struct{})
	teams := make(map[string]struct{})
	var home, away int

	for _, r := range records {
		if _, ok := seenSeason[r.Season]; !ok {
			seenSeason[r.Season] = struct{}{}
			s.Seasons = append(s.Seasons, r.Season)
		}
		teams[r.HomeTeam] = struct{}{}
		teams[r.AwayTeam] = struct{}{}

		h, a, ok := r.Goals()
		if !ok {
			continue
		}
		s.Scored++
		home += h
		away += a
		switch {
		case h > a:
			s.HomeWins++
		case h < a:
			s.AwayWins++
		default:
			s.Draws++
		}
	}
	s.Teams = len(teams)
	if s.Scored > 0 {
		s.MeanHomeGoals = float64(home) / float64(s.Scored)
		s.MeanAwayGoals = float64(away) / float64(s.Scored)
	}
	return s
}

// TeamNames returns the distinct team names, sorted.
func TeamNames(records []models.MatchRecord) []string {
	set := make(map[string]struct{})
	for _, r := range records {
		set[r.HomeTeam] = struct{}{}
		set[r.AwayTeam] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
