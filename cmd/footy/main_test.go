package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/footyscrape/demo"
	"github.com/use-agent/footyscrape/export"
	"github.com/use-agent/footyscrape/inspect"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env"), "--log-level", "error"}, args...))
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestScrapeDemoToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.csv")
	stdout, stderr, err := execute(t, "scrape", "--demo", "--output", path,
		"--season", "2021/2022", "--season", "2023/2024")
	require.NoError(t, err, stderr)

	assert.Contains(t, stderr, "[1/2] 2021/2022: 4 matches")
	assert.Contains(t, stderr, "Saved 8 records to "+path)
	assert.Contains(t, stdout, "Raja Casablanca")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := export.ReadCSV(f)
	require.NoError(t, err)
	require.Len(t, recs, 8)
	assert.Equal(t, "2021/2022", recs[0].Season)
	assert.Equal(t, "2023/2024", recs[7].Season)
}

func TestScrapeDemoToStdout(t *testing.T) {
	stdout, stderr, err := execute(t, "scrape", "--demo", "--output", "-", "--format", "json")
	require.NoError(t, err, stderr)

	var recs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &recs), "stdout carries only the data")
	assert.Len(t, recs, 12)
}

func TestScrapeNoData(t *testing.T) {
	_, stderr, err := execute(t, "scrape", "--demo", "--season", "1999/2000", "--output", "-")
	assert.ErrorIs(t, err, errNoData)
	assert.Contains(t, stderr, "No data retrieved.")
}

func TestScrapeBadFlags(t *testing.T) {
	_, _, err := execute(t, "scrape", "--demo", "--format", "pdf")
	assert.Error(t, err)

	_, _, err = execute(t, "scrape", "--demo", "--layout", "grid")
	assert.Error(t, err)

	_, _, err = execute(t, "scrape", "--demo", "--season", "2023/2024", "--url", "a", "--url", "b")
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.xlsx")
	_, stderr, err := execute(t, "scrape", "--demo", "--format", "xlsx", "--output", path, "--preview", "0")
	require.NoError(t, err, stderr)

	stdout, _, err := execute(t, "analyze", path, "--season", "2023/2024")
	require.NoError(t, err)
	out := strings.ToLower(stdout)
	assert.Contains(t, out, "2023/2024")
	assert.Contains(t, out, "raja casablanca")

	_, _, err = execute(t, "analyze", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestInspectFile(t *testing.T) {
	html, err := demo.HTML("2022/2023")
	require.NoError(t, err)
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(page, html, 0o644))

	stdout, _, err := execute(t, "inspect", "--file", page, "--json")
	require.NoError(t, err)
	var r inspect.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &r))
	assert.Equal(t, "position", r.Layout)
	assert.Equal(t, 4, r.Matched)

	baseline := filepath.Join(dir, "baseline.json")
	require.NoError(t, os.WriteFile(baseline, []byte(stdout), 0o644))
	_, stderr, err := execute(t, "inspect", "--file", page, "--baseline", baseline)
	require.NoError(t, err)
	assert.Contains(t, stderr, "fingerprint distance 0: unchanged")

	_, _, err = execute(t, "inspect")
	assert.Error(t, err)
}

func TestConfigRedactsKeys(t *testing.T) {
	t.Setenv("FOOTY_API_KEYS", "secret-one,secret-two")
	stdout, _, err := execute(t, "config")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "secret-one")
	assert.Contains(t, stdout, `"***"`)
}
