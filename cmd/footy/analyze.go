package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/use-agent/footyscrape/analysis"
	"github.com/use-agent/footyscrape/export"
	"github.com/use-agent/footyscrape/models"
)

func newAnalyzeCmd(_ *app) *cobra.Command {
	var (
		records   int
		standings bool
		season    string
	)
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Summarize saved match records (csv, json or xlsx)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := loadRecords(args[0])
			if err != nil {
				return err
			}
			if season != "" {
				recs = filterSeason(recs, season)
			}

			out := cmd.OutOrStdout()
			analysis.RenderSummary(out, analysis.Summarize(recs))
			if records > 0 {
				analysis.RenderRecords(out, recs, records)
			}
			if standings {
				for _, tbl := range analysis.Standings(recs) {
					analysis.RenderTable(out, tbl)
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&records, "records", 5, "records to print")
	f.BoolVar(&standings, "standings", true, "print a league table per season")
	f.StringVar(&season, "season", "", "only analyze this season")
	return cmd
}

// loadRecords reads a file saved by scrape, choosing the decoder from the
// extension.
func loadRecords(path string) ([]models.MatchRecord, error) {
	format, err := export.ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var read func(io.Reader) ([]models.MatchRecord, error)
	switch format {
	case export.FormatCSV:
		read = export.ReadCSV
	case export.FormatJSON:
		read = export.ReadJSON
	case export.FormatXLSX:
		read = export.ReadXLSX
	default:
		return nil, fmt.Errorf("%s: cannot read %s files", path, format)
	}
	recs, err := read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

func filterSeason(recs []models.MatchRecord, label string) []models.MatchRecord {
	out := recs[:0:0]
	for _, r := range recs {
		if r.Season == label {
			out = append(out, r)
		}
	}
	return out
}
