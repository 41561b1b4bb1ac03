package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

type rung struct {
	engine Engine
	delay  time.Duration
}

// Dispatcher fetches listing pages through a ladder of engines, cheapest
// first. A rung starts when its delay elapses or as soon as every rung
// below it has failed, whichever comes first: a bot-check page answered
// in a few hundred milliseconds hands over to the browser at once. The
// first ready page wins and the rest are cancelled.
type Dispatcher struct {
	rungs  []rung
	memory *RouteMemory
}

// NewDispatcher creates a Dispatcher. engines[i] may start delays[i] after
// the climb begins; missing delays default to 0. memory may be nil.
func NewDispatcher(engines []Engine, delays []time.Duration, memory *RouteMemory) *Dispatcher {
	rungs := make([]rung, len(engines))
	for i, e := range engines {
		rungs[i].engine = e
		if i < len(delays) {
			rungs[i].delay = delays[i]
		}
	}
	return &Dispatcher{rungs: rungs, memory: memory}
}

// EngineNames lists the configured engines in ladder order.
func (d *Dispatcher) EngineNames() []string {
	names := make([]string, len(d.rungs))
	for i, r := range d.rungs {
		names[i] = r.engine.Name()
	}
	return names
}

// Dispatch returns the first ready page for req. The route's remembered
// winner is tried alone first; if it fails the ladder is climbed without
// the engines recently challenged on this route. When every engine fails
// the error joins all their errors, so errors.Is(err, ErrNotReady) holds
// if any of them met a bot check.
func (d *Dispatcher) Dispatch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if len(d.rungs) == 0 {
		return nil, fmt.Errorf("dispatcher: no engines configured")
	}
	route := RouteOf(req)
	log := slog.With("season", req.Season, "host", route.Host)

	if name := d.memory.Winner(route); name != "" {
		if e := d.engine(name); e != nil {
			res, err := d.try(ctx, e, req, route)
			if err == nil {
				d.memory.RecordWin(route, name)
				log.Debug("remembered engine served listing", "engine", name)
				return res, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Info("remembered engine failed, climbing ladder", "engine", name, "error", err)
			d.memory.Demote(route, name)
		}
	}

	return d.climb(ctx, req, route, d.ladder(route, log), log)
}

func (d *Dispatcher) engine(name string) Engine {
	for _, r := range d.rungs {
		if r.engine.Name() == name {
			return r.engine
		}
	}
	return nil
}

// ladder drops the engines challenged on route and shifts the remaining
// delays so the lowest one starts at once. With every engine challenged
// the full ladder runs again.
func (d *Dispatcher) ladder(route Route, log *slog.Logger) []rung {
	var out []rung
	for _, r := range d.rungs {
		if d.memory.Challenged(route, r.engine.Name()) {
			log.Debug("skipping challenged engine", "engine", r.engine.Name())
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return d.rungs
	}
	if base := out[0].delay; base > 0 {
		for i := range out {
			out[i].delay -= base
		}
	}
	return out
}

// try runs one engine and marks it challenged on a page without the match
// table.
func (d *Dispatcher) try(ctx context.Context, e Engine, req *FetchRequest, route Route) (*FetchResult, error) {
	res, err := e.Fetch(ctx, req)
	if err != nil {
		if errors.Is(err, ErrNotReady) {
			d.memory.RecordChallenge(route, e.Name())
		}
		return nil, err
	}
	return res, nil
}

func (d *Dispatcher) climb(ctx context.Context, req *FetchRequest, route Route, ladder []rung, log *slog.Logger) (*FetchResult, error) {
	type outcome struct {
		rung int
		res  *FetchResult
		err  error
	}

	climbCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// released[i] is closed once every rung below i has failed.
	released := make([]chan struct{}, len(ladder))
	for i := range released {
		released[i] = make(chan struct{})
	}
	close(released[0])
	nextRelease := 1

	results := make(chan outcome, len(ladder))
	for i, r := range ladder {
		go func() {
			if !waitTurn(climbCtx, r.delay, released[i]) {
				results <- outcome{rung: i, err: climbCtx.Err()}
				return
			}
			log.Debug("engine starting", "engine", r.engine.Name(), "url", req.URL)
			res, err := d.try(climbCtx, r.engine, req, route)
			results <- outcome{rung: i, res: res, err: err}
		}()
	}

	failed := make([]bool, len(ladder))
	lowest := 0
	var errs []error
	for range ladder {
		o := <-results
		if o.err == nil {
			cancel()
			d.memory.RecordWin(route, o.res.EngineName)
			log.Info("listing fetched", "engine", o.res.EngineName, "rung", o.rung, "url", req.URL)
			return o.res, nil
		}

		failed[o.rung] = true
		errs = append(errs, o.err)
		log.Debug("engine failed", "engine", ladder[o.rung].engine.Name(), "error", o.err)

		for lowest < len(ladder) && failed[lowest] {
			lowest++
		}
		for ; nextRelease <= lowest && nextRelease < len(ladder); nextRelease++ {
			close(released[nextRelease])
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("dispatcher: every engine failed for %s: %w", req.URL, errors.Join(errs...))
}

// waitTurn blocks until the rung may start: its delay elapsed or it was
// released early. It reports false when ctx ended first.
func waitTurn(ctx context.Context, delay time.Duration, released <-chan struct{}) bool {
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-released:
		case <-timer.C:
		}
	}
	return ctx.Err() == nil
}
