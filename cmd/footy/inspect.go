package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/footyscrape/inspect"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		file      string
		stealth   bool
		noBrowser bool
		asJSON    bool
		timeout   time.Duration
		baseline  string
	)
	cmd := &cobra.Command{
		Use:   "inspect [url]",
		Short: "Report the table structure of a listing page",
		Long: `Inspect fetches a page (or reads a saved one with --file) and prints its
tables, header cells, sample rows, match-related classes and the row layout
the scraper would pick. --baseline compares the structural fingerprint with
an earlier JSON report to flag markup drift.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				report *inspect.Report
				err    error
			)
			switch {
			case file != "":
				raw, rerr := os.ReadFile(file)
				if rerr != nil {
					return rerr
				}
				report, err = inspect.AnalyzeHTML(string(raw), "file://"+file)
			case len(args) == 1:
				b, berr := newBackend(a.cfg, !noBrowser)
				if berr != nil {
					return berr
				}
				defer b.Close()
				report, err = inspect.New(b.dispatcher, timeout).Inspect(cmd.Context(), args[0], stealth)
			default:
				return fmt.Errorf("give a URL or --file")
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				inspect.Render(out, report)
			}

			if baseline != "" {
				return compareBaseline(cmd, baseline, report)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&file, "file", "", "analyze a saved HTML file instead of fetching")
	f.BoolVar(&stealth, "stealth", false, "force stealth on browser fetches")
	f.BoolVar(&noBrowser, "no-browser", false, "fetch with the HTTP engine only")
	f.BoolVar(&asJSON, "json", false, "print the report as JSON")
	f.DurationVar(&timeout, "timeout", 60*time.Second, "fetch deadline")
	f.StringVar(&baseline, "baseline", "", "earlier JSON report to compare fingerprints with")
	return cmd
}

func compareBaseline(cmd *cobra.Command, path string, report *inspect.Report) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var old inspect.Report
	if err := json.Unmarshal(raw, &old); err != nil {
		return fmt.Errorf("read baseline %s: %w", path, err)
	}
	prev, err := inspect.ParseFingerprint(old.Fingerprint)
	if err != nil {
		return fmt.Errorf("baseline fingerprint: %w", err)
	}
	cur, err := inspect.ParseFingerprint(report.Fingerprint)
	if err != nil {
		return err
	}

	verdict := "unchanged"
	if cur.Drifted(prev) {
		verdict = "DRIFTED: row markup changed, check the layout before scraping"
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "fingerprint distance %d: %s\n", cur.Distance(prev), verdict)
	return nil
}
