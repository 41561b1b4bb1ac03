package models

// MatchRecord is one observed fixture extracted from a season listing.
//
// HomeGoals and AwayGoals are derived from Score and are either both set or
// both nil. The statistic fields hold the source text as found in the row and
// stay empty when the row did not carry them.
type MatchRecord struct {
	Season   string `json:"season"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`

	// Score is the raw displayed score, e.g. "2-1".
	Score     string `json:"score"`
	HomeGoals *int   `json:"home_goals"`
	AwayGoals *int   `json:"away_goals"`

	ExpectedGoalsHome string `json:"xg_home,omitempty"`
	ExpectedGoalsAway string `json:"xg_away,omitempty"`
	ShotsHome         string `json:"shots_home,omitempty"`
	ShotsAway         string `json:"shots_away,omitempty"`
	PossessionHome    string `json:"possession_home,omitempty"`
	PossessionAway    string `json:"possession_away,omitempty"`
}

// Goals returns the parsed goal counts. ok is false when the score could not
// be parsed.
func (m MatchRecord) Goals() (home, away int, ok bool) {
	if m.HomeGoals == nil || m.AwayGoals == nil {
		return 0, 0, false
	}
	return *m.HomeGoals, *m.AwayGoals, true
}

// FixtureKey identifies a fixture within one season listing. Two rows with
// the same key are the same match rendered twice.
func (m MatchRecord) FixtureKey() string {
	return m.Date + "|" + m.HomeTeam + "|" + m.AwayTeam + "|" + m.Score
}

// Columns is the tabular column order shared by every export format.
var Columns = []string{
	"season",
	"date",
	"time",
	"home_team",
	"away_team",
	"score",
	"home_goals",
	"away_goals",
	"xg_home",
	"xg_away",
	"shots_home",
	"shots_away",
	"possession_home",
	"possession_away",
}
