package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/use-agent/footyscrape/models"
)

// SheetName is the worksheet holding the records.
const SheetName = "Matches"

// Column positions in models.Columns.
const (
	colHomeTeam  = 3
	colAwayTeam  = 4
	colHomeGoals = 6
	colAwayGoals = 7
)

// WriteXLSX writes records to a single-sheet workbook. Goals are numeric
// cells; missing goals are left blank.
func WriteXLSX(w io.Writer, records []models.MatchRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}

	header := make([]any, len(models.Columns))
	for i, c := range models.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, r := range records {
		values := make([]any, 0, len(models.Columns))
		for _, v := range row(r) {
			values = append(values, v)
		}
		// Goals go in as numbers so spreadsheets can sum them.
		if r.HomeGoals != nil {
			values[colHomeGoals] = *r.HomeGoals
		}
		if r.AwayGoals != nil {
			values[colAwayGoals] = *r.AwayGoals
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return err
		}
	}

	for i := range models.Columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := 12.0
		if i == colHomeTeam || i == colAwayTeam {
			width = 26
		}
		_ = f.SetColWidth(SheetName, col, col, width)
	}
	_ = f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	_, err := f.WriteTo(w)
	return err
}

// ReadXLSX reads records from a workbook written by WriteXLSX.
func ReadXLSX(r io.Reader) ([]models.MatchRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}
