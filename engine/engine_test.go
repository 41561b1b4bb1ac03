package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listing = `<html><head><title>Botola Pro Fixtures</title></head><body>
<table class="matches-table"><tbody><tr><td>Aug 18</td></tr></tbody></table>
</body></html>`

const challenge = `<html><head><title>Just a moment...</title></head><body><div id="cf"></div></body></html>`

type fakeEngine struct {
	name  string
	delay time.Duration
	err   error
	calls atomic.Int32
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &FetchResult{HTML: listing, EngineName: f.name, FinalURL: req.URL}, nil
}

func TestCheckReady(t *testing.T) {
	assert.NoError(t, CheckReady(challenge, ""))
	assert.NoError(t, CheckReady(listing, "table.matches-table tbody tr"))

	err := CheckReady(challenge, "table.matches-table tbody tr")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotReady)

	err = CheckReady(listing, "table[")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotReady)
}

func TestDispatcher_FirstSuccessWins(t *testing.T) {
	fast := &fakeEngine{name: NameHTTP, err: errors.New("blocked")}
	slow := &fakeEngine{name: NameRod}
	d := NewDispatcher([]Engine{fast, slow}, []time.Duration{0, 10 * time.Millisecond}, nil)

	res, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://footystats.org/x"})
	require.NoError(t, err)
	assert.Equal(t, NameRod, res.EngineName)
	assert.Equal(t, []string{NameHTTP, NameRod}, d.EngineNames())
}

func TestDispatcher_NotReadyEscalatesAtOnce(t *testing.T) {
	cheap := &fakeEngine{name: NameHTTP, err: fmt.Errorf("http: %w", ErrNotReady)}
	browser := &fakeEngine{name: NameRod}
	d := NewDispatcher([]Engine{cheap, browser}, []time.Duration{0, time.Minute}, nil)

	start := time.Now()
	res, err := d.Dispatch(context.Background(), &FetchRequest{Season: "2023/2024", URL: "https://footystats.org/x"})
	require.NoError(t, err)
	assert.Equal(t, NameRod, res.EngineName)
	assert.Less(t, time.Since(start), 5*time.Second, "the browser rung must not wait out its delay")
}

func TestDispatcher_AllFail(t *testing.T) {
	d := NewDispatcher([]Engine{
		&fakeEngine{name: NameHTTP, err: fmt.Errorf("http: %w", ErrNotReady)},
		&fakeEngine{name: NameRod, err: errors.New("timeout")},
	}, nil, nil)

	_, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://footystats.org/x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorContains(t, err, "timeout")

	_, err = NewDispatcher(nil, nil, nil).Dispatch(context.Background(), &FetchRequest{})
	assert.Error(t, err)
}

func TestDispatcher_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDispatcher([]Engine{&fakeEngine{name: NameHTTP, delay: time.Second}}, nil, nil)

	_, err := d.Dispatch(ctx, &FetchRequest{URL: "https://footystats.org/x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatcher_RemembersWinnerPerRoute(t *testing.T) {
	mem := NewRouteMemory(time.Minute)
	httpEng := &fakeEngine{name: NameHTTP, err: errors.New("blocked")}
	rodEng := &fakeEngine{name: NameRod}
	d := NewDispatcher([]Engine{httpEng, rodEng}, []time.Duration{0, 5 * time.Millisecond}, mem)

	ready := "table.matches-table tbody tr"
	_, err := d.Dispatch(context.Background(), &FetchRequest{URL: "https://footystats.org/a", ReadySelector: ready})
	require.NoError(t, err)
	assert.Equal(t, NameRod, mem.Winner(Route{Host: "footystats.org", ReadySelector: ready}))
	assert.Empty(t, mem.Winner(Route{Host: "footystats.org"}), "another ready selector is another route")

	// The remembered engine is tried alone.
	_, err = d.Dispatch(context.Background(), &FetchRequest{URL: "https://footystats.org/b", ReadySelector: ready})
	require.NoError(t, err)
	assert.EqualValues(t, 1, httpEng.calls.Load())
	assert.EqualValues(t, 2, rodEng.calls.Load())
}

func TestDispatcher_SkipsChallengedEngines(t *testing.T) {
	mem := NewRouteMemory(time.Minute)
	httpEng := &fakeEngine{name: NameHTTP, err: fmt.Errorf("http: %w", ErrNotReady)}
	rodEng := &fakeEngine{name: NameRod, err: errors.New("crashed")}
	stealthEng := &fakeEngine{name: NameRodStealth}
	d := NewDispatcher([]Engine{httpEng, rodEng, stealthEng}, []time.Duration{0, time.Minute, 2 * time.Minute}, mem)

	req := &FetchRequest{URL: "https://footystats.org/a"}
	res, err := d.Dispatch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, NameRodStealth, res.EngineName)

	route := RouteOf(req)
	assert.True(t, mem.Challenged(route, NameHTTP))
	assert.False(t, mem.Challenged(route, NameRod), "only bot checks mark an engine")

	// The winner stops serving: the ladder reruns without the challenged
	// HTTP engine, and the browser rung starts without its delay.
	stealthEng.err = fmt.Errorf("rod-stealth: %w", ErrNotReady)
	rodEng.err = nil
	start := time.Now()
	res, err = d.Dispatch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, NameRod, res.EngineName)
	assert.Less(t, time.Since(start), 30*time.Second)
	assert.EqualValues(t, 1, httpEng.calls.Load())
	assert.True(t, mem.Challenged(route, NameRodStealth))
}

func TestRouteMemory(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mem := NewRouteMemory(time.Minute)
	mem.now = func() time.Time { return now }
	r := Route{Host: "footystats.org", ReadySelector: "table"}

	mem.RecordWin(r, NameHTTP)
	assert.Equal(t, NameHTTP, mem.Winner(r))

	mem.RecordChallenge(r, NameHTTP)
	assert.Empty(t, mem.Winner(r), "a challenged winner is demoted")
	assert.True(t, mem.Challenged(r, NameHTTP))

	mem.RecordWin(r, NameRod)
	mem.Demote(r, NameHTTP)
	assert.Equal(t, NameRod, mem.Winner(r))
	assert.Equal(t, 1, mem.Len())

	now = now.Add(2 * time.Minute)
	assert.Empty(t, mem.Winner(r))
	assert.False(t, mem.Challenged(r, NameHTTP))
	assert.Zero(t, mem.Len())

	var nilMem *RouteMemory
	nilMem.RecordWin(r, NameRod)
	nilMem.RecordChallenge(r, NameRod)
	assert.Empty(t, nilMem.Winner(r))
	assert.False(t, nilMem.Challenged(r, NameRod))
}

func TestRouteOf(t *testing.T) {
	assert.Equal(t, Route{Host: "footystats.org", ReadySelector: "tr"},
		RouteOf(&FetchRequest{URL: "https://footystats.org/morocco/botola-pro?season_id=1", ReadySelector: "tr"}))
	assert.Equal(t, Route{Host: "not a url"}, RouteOf(&FetchRequest{URL: "not a url"}))
}

func TestHTTPEngine(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/matches":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(listing))
		case "/challenge":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(challenge))
		case "/json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	e := NewHTTPEngineWithClient(srv.Client())
	ready := "table.matches-table tbody tr"

	res, err := e.Fetch(context.Background(), &FetchRequest{URL: srv.URL + "/matches", ReadySelector: ready, UserAgent: "test-agent"})
	require.NoError(t, err)
	assert.Equal(t, "Botola Pro Fixtures", res.Title)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, NameHTTP, res.EngineName)
	assert.Equal(t, "test-agent", ua)

	_, err = e.Fetch(context.Background(), &FetchRequest{URL: srv.URL + "/matches"})
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, ua)

	_, err = e.Fetch(context.Background(), &FetchRequest{URL: srv.URL + "/challenge", ReadySelector: ready})
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = e.Fetch(context.Background(), &FetchRequest{URL: srv.URL + "/json"})
	assert.Error(t, err)

	_, err = e.Fetch(context.Background(), &FetchRequest{URL: srv.URL + "/missing"})
	assert.Error(t, err)
}
