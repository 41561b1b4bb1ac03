package extract

import "github.com/use-agent/footyscrape/models"

// SkipReason explains why a row produced no record.
type SkipReason string

const (
	SkipTooFewCells SkipReason = "too_few_cells"
	SkipNoDate      SkipReason = "missing_date"
	SkipNoHomeTeam  SkipReason = "missing_home_team"
	SkipNoAwayTeam  SkipReason = "missing_away_team"
	SkipNoScore     SkipReason = "missing_score"
	SkipUnreadable  SkipReason = "unreadable_row"
)

// Outcome is the result of reading one row: either a record or the reason
// the row was not a match row.
type Outcome struct {
	record *models.MatchRecord
	reason SkipReason
}

// Matched wraps an extracted record.
func Matched(rec models.MatchRecord) Outcome {
	return Outcome{record: &rec}
}

// Skipped records why a row was passed over.
func Skipped(reason SkipReason) Outcome {
	return Outcome{reason: reason}
}

// Record returns the extracted record; ok is false for a skipped row.
func (o Outcome) Record() (models.MatchRecord, bool) {
	if o.record == nil {
		return models.MatchRecord{}, false
	}
	return *o.record, true
}

// Reason returns the skip reason, or "" when the row matched.
func (o Outcome) Reason() SkipReason {
	return o.reason
}

// IsMatch reports whether the row produced a record.
func (o Outcome) IsMatch() bool {
	return o.record != nil
}
