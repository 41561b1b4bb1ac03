// Package demo serves bundled listing pages so the whole pipeline can run
// without network access.
package demo

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/footyscrape/season"
)

//go:embed pages/*.html
var pages embed.FS

// EngineName is reported as the engine of demo pages.
const EngineName = "demo"

// Seasons lists the bundled seasons, newest first.
var Seasons = []string{"2023/2024", "2022/2023", "2021/2022"}

// HTML returns the bundled page of a season.
func HTML(label string) ([]byte, error) {
	name := "pages/" + strings.ReplaceAll(strings.TrimSpace(label), "/", "-") + ".html"
	b, err := pages.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("demo: no bundled page for season %q", label)
	}
	return b, nil
}

// Fetcher implements season.Fetcher over the bundled pages.
type Fetcher struct{}

func (Fetcher) Fetch(ctx context.Context, src season.Source) (*season.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := HTML(src.Label)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("demo: parse %s: %w", src.Label, err)
	}
	return &season.Page{
		Document: doc,
		URL:      "demo://" + src.Label,
		Engine:   EngineName,
	}, nil
}
