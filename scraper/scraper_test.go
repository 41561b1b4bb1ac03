package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/footyscrape/config"
	"github.com/use-agent/footyscrape/engine"
	"github.com/use-agent/footyscrape/extract"
	"github.com/use-agent/footyscrape/models"
	"github.com/use-agent/footyscrape/season"
)

const listingHTML = `<html><body><table class="matches-table"><tbody><tr>
	<td>Aug 18</td>
	<td><a class="team-name">Raja Casablanca</a></td>
	<td><a>2 - 1</a></td>
	<td><a class="team-name">Wydad Casablanca</a></td>
	<td>1.8 xG 1.2 xG</td>
</tr></tbody></table></body></html>`

func testFetcherConfig() config.FetcherConfig {
	return config.FetcherConfig{
		UserAgents:       []string{"ua-a", "ua-b"},
		Attempts:         3,
		ReadySelector:    "table.matches-table tbody tr",
		LoadMoreSelector: "div.load_more a",
		MaxLoadMore:      5,
	}
}

func zeroBackOff() backoff.BackOff { return &backoff.ZeroBackOff{} }

func TestSeasonURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		label    string
		explicit string
		want     string
	}{
		{"explicit wins", DefaultBaseURL, "2023/2024", "https://example.test/x", "https://example.test/x"},
		{"known season", DefaultBaseURL, "2022/2023", "", DefaultBaseURL + "/matches?season_id=8223"},
		{"known season default base", "", "2021/2022", "", DefaultBaseURL + "/matches?season_id=7235"},
		{"unknown season", DefaultBaseURL, "2019/2020", "", DefaultBaseURL + "/matches?season=2019%2F2020"},
		{"custom base", "https://mirror.test/botola/", "2023/2024", "", "https://mirror.test/botola/matches?season=2023%2F2024"},
		{"no label", "https://mirror.test/botola", "", "", "https://mirror.test/botola/matches"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SeasonURL(tt.base, tt.label, tt.explicit))
		})
	}

	u, ok := KnownSeason(" 2023/2024 ")
	assert.True(t, ok)
	assert.Contains(t, u, "season_id=9102")
}

func TestSeasonFetcher_Success(t *testing.T) {
	var got *engine.FetchRequest
	backend := BackendFunc(func(_ context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
		got = req
		return &engine.FetchResult{HTML: listingHTML, EngineName: "http", FinalURL: req.URL + "&page=1"}, nil
	})

	f := NewSeasonFetcher(backend, testFetcherConfig(), WithBackOff(zeroBackOff))
	page, err := f.Fetch(context.Background(), season.Source{Label: "2023/2024"})
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL+"/matches?season_id=9102", got.URL)
	assert.Equal(t, "2023/2024", got.Season)
	assert.Contains(t, []string{"ua-a", "ua-b"}, got.UserAgent)
	assert.Equal(t, "table.matches-table tbody tr", got.ReadySelector)
	assert.Equal(t, 5, got.MaxLoadMore)
	assert.Equal(t, "https://footystats.org/", got.Headers["Referer"])

	assert.Equal(t, "http", page.Engine)
	assert.Equal(t, got.URL+"&page=1", page.URL)
	assert.Equal(t, extract.LayoutBySelector, extract.Probe(page.Document))
}

func TestSeasonFetcher_RetriesRotateAgents(t *testing.T) {
	var agents []string
	calls := 0
	backend := BackendFunc(func(_ context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
		calls++
		agents = append(agents, req.UserAgent)
		if calls < 3 {
			return nil, fmt.Errorf("http_engine: %w", engine.ErrNotReady)
		}
		return &engine.FetchResult{HTML: listingHTML, EngineName: "rod"}, nil
	})

	i := 0
	pick := func(pool []string) string {
		ua := pool[i%len(pool)]
		i++
		return ua
	}

	f := NewSeasonFetcher(backend, testFetcherConfig(), WithBackOff(zeroBackOff), WithAgentPicker(pick))
	page, err := f.Fetch(context.Background(), season.Source{Label: "x", URL: "https://example.test/matches"})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []string{"ua-a", "ua-b", "ua-a"}, agents)
	assert.Equal(t, "https://example.test/matches", page.URL)
}

func TestSeasonFetcher_Exhausted(t *testing.T) {
	calls := 0
	backend := BackendFunc(func(context.Context, *engine.FetchRequest) (*engine.FetchResult, error) {
		calls++
		return nil, fmt.Errorf("rod: %w", engine.ErrNotReady)
	})

	f := NewSeasonFetcher(backend, testFetcherConfig(), WithBackOff(zeroBackOff))
	_, err := f.Fetch(context.Background(), season.Source{Label: "2022/2023"})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var se *models.ScrapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.ErrCodeNotReady, se.Code)
	assert.Contains(t, se.Message, "3 attempt(s)")
}

func TestSeasonFetcher_CanceledStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	backend := BackendFunc(func(context.Context, *engine.FetchRequest) (*engine.FetchResult, error) {
		calls++
		cancel()
		return nil, errors.New("connection reset")
	})

	f := NewSeasonFetcher(backend, testFetcherConfig(), WithBackOff(zeroBackOff))
	_, err := f.Fetch(ctx, season.Source{Label: "2022/2023"})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var se *models.ScrapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.ErrCodeTimeout, se.Code)
}

func TestSeasonFetcher_WithAggregator(t *testing.T) {
	backend := BackendFunc(func(_ context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
		if req.URL == DefaultBaseURL+"/matches?season_id=8223" {
			return nil, errors.New("503")
		}
		return &engine.FetchResult{HTML: listingHTML, EngineName: "http"}, nil
	})
	cfg := testFetcherConfig()
	cfg.Attempts = 1

	agg := season.NewAggregator(NewSeasonFetcher(backend, cfg), season.WithPacer(season.NoPacer{}))
	res := agg.Run(context.Background(), []season.Source{{Label: "2023/2024"}, {Label: "2022/2023"}})

	require.Len(t, res.Records, 1)
	assert.Equal(t, "Raja Casablanca", res.Records[0].HomeTeam)
	assert.Equal(t, "1.8", res.Records[0].ExpectedGoalsHome)
	assert.NotEmpty(t, res.Seasons[1].FetchError)
}

func TestIsTrackerHost(t *testing.T) {
	assert.True(t, isTrackerHost("pagead2.googlesyndication.com"))
	assert.True(t, isTrackerHost("Doubleclick.NET"))
	assert.False(t, isTrackerHost("footystats.org"))
	assert.False(t, isTrackerHost(""))
}

func TestBlockSet(t *testing.T) {
	set := blockSet([]string{"Image", "Font", "Script", "Bogus"})
	assert.Len(t, set, 2)
	_, ok := set[proto.NetworkResourceTypeImage]
	assert.True(t, ok)
	_, ok = set[proto.NetworkResourceTypeScript]
	assert.False(t, ok)
}

func TestBrowserEngine(t *testing.T) {
	var got *models.PageRequest
	html := listingHTML
	e := &BrowserEngine{
		stealth: true,
		load: func(_ context.Context, req *models.PageRequest) (*PageResult, error) {
			got = req
			return &PageResult{HTML: html, Title: "Botola Pro", FinalURL: req.URL, LoadMoreClicks: 2}, nil
		},
	}
	assert.Equal(t, engine.NameRodStealth, e.Name())
	assert.Equal(t, engine.NameRod, (&BrowserEngine{}).Name())

	req := &engine.FetchRequest{
		Season:           "2023/2024",
		URL:              "https://footystats.org/morocco/botola-pro/matches",
		Headers:          map[string]string{"DNT": "1"},
		UserAgent:        "ua-a",
		Timeout:          30 * time.Second,
		ReadySelector:    "table.matches-table tbody tr",
		LoadMoreSelector: "div.load_more a",
		MaxLoadMore:      5,
	}
	res, err := e.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, engine.NameRodStealth, res.EngineName)
	assert.True(t, got.Stealth)
	assert.True(t, got.BlockAds)
	assert.Equal(t, 30, got.Timeout)
	assert.Equal(t, "ua-a", got.Headers["User-Agent"])
	assert.Equal(t, "1", got.Headers["DNT"])
	assert.Equal(t, "div.load_more a", got.LoadMoreSelector)
	assert.Len(t, req.Headers, 1, "caller headers are not mutated")

	html = `<html><title>Just a moment...</title></html>`
	_, err = e.Fetch(context.Background(), req)
	assert.ErrorIs(t, err, engine.ErrNotReady)
	assert.ErrorContains(t, err, "2023/2024")

	e.load = func(context.Context, *models.PageRequest) (*PageResult, error) {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "pool", errors.New("closed"))
	}
	_, err = e.Fetch(context.Background(), req)
	var se *models.ScrapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.ErrCodeBrowserCrash, se.Code)
}
