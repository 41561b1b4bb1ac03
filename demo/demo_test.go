package demo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/footyscrape/extract"
	"github.com/use-agent/footyscrape/season"
)

func TestDemoPipeline(t *testing.T) {
	sources := make([]season.Source, 0, len(Seasons)+1)
	for _, s := range Seasons {
		sources = append(sources, season.Source{Label: s})
	}
	sources = append(sources, season.Source{Label: "2019/2020"})

	res := season.NewAggregator(Fetcher{}, season.WithPacer(season.NoPacer{})).
		Run(context.Background(), sources)

	require.Len(t, res.Records, 12)
	assert.Equal(t, extract.LayoutByPosition, res.Layout)
	require.Len(t, res.Seasons, 4)
	assert.Contains(t, res.Seasons[3].FetchError, "no bundled page")

	first := res.Records[0]
	assert.Equal(t, "2023/2024", first.Season)
	assert.Equal(t, "Raja Casablanca", first.HomeTeam)
	assert.Equal(t, "2-1", first.Score)
	assert.Equal(t, "1.8", first.ExpectedGoalsHome)
	assert.Equal(t, "6", first.ShotsAway)
	assert.Equal(t, "52", first.PossessionHome)

	last := res.Records[11]
	assert.Equal(t, "2021/2022", last.Season)
	assert.Equal(t, "Difaa Hassani", last.HomeTeam)
	h, a, ok := last.Goals()
	require.True(t, ok)
	assert.Equal(t, 3, h)
	assert.Equal(t, 1, a)

	for _, rep := range res.Seasons[:3] {
		assert.Equal(t, 4, rep.Matched)
		assert.Equal(t, EngineName, rep.EngineUsed)
		assert.Equal(t, 2, rep.Skipped[string(extract.SkipTooFewCells)], "header and matchday rows")
	}
}

func TestHTML(t *testing.T) {
	b, err := HTML(" 2022/2023 ")
	require.NoError(t, err)
	assert.Contains(t, string(b), "Wydad Casablanca")

	_, err = HTML("1999/2000")
	assert.Error(t, err)
}
