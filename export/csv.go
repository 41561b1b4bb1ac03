package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/use-agent/footyscrape/models"
)

// WriteCSV writes a header row followed by one row per record. Missing
// goals are written as empty cells.
func WriteCSV(w io.Writer, records []models.MatchRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads records written by WriteCSV. Columns are matched by header
// name, so reordered or partial files load; unknown columns are ignored.
func ReadCSV(r io.Reader) ([]models.MatchRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRows(rows)
}

// fromRows maps a header row plus data rows to records.
func fromRows(rows [][]string) ([]models.MatchRecord, error) {
	records := []models.MatchRecord{}
	if len(rows) == 0 {
		return records, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"home_team", "away_team"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("no %q column", required)
		}
	}

	for n, fields := range rows[1:] {
		line := n + 2
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(fields) {
				return ""
			}
			return fields[i]
		}

		rec := models.MatchRecord{
			Season:            get("season"),
			Date:              get("date"),
			Time:              get("time"),
			HomeTeam:          get("home_team"),
			AwayTeam:          get("away_team"),
			Score:             get("score"),
			ExpectedGoalsHome: get("xg_home"),
			ExpectedGoalsAway: get("xg_away"),
			ShotsHome:         get("shots_home"),
			ShotsAway:         get("shots_away"),
			PossessionHome:    get("possession_home"),
			PossessionAway:    get("possession_away"),
		}
		var err error
		if rec.HomeGoals, err = parseGoals(get("home_goals")); err != nil {
			return nil, fmt.Errorf("line %d: home_goals: %w", line, err)
		}
		if rec.AwayGoals, err = parseGoals(get("away_goals")); err != nil {
			return nil, fmt.Errorf("line %d: away_goals: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseGoals(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if s[0] == '+' || s[0] == '-' {
		return nil, fmt.Errorf("signed goal count %q", s)
	}
	// Spreadsheet round trips turn 2 into 2.0.
	s = strings.TrimSuffix(s, ".0")
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
