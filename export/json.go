package export

import (
	"encoding/json"
	"io"

	"github.com/use-agent/footyscrape/models"
)

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []models.MatchRecord) error {
	if records == nil {
		records = []models.MatchRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

// ReadJSON reads an array written by WriteJSON.
func ReadJSON(r io.Reader) ([]models.MatchRecord, error) {
	var records []models.MatchRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}
