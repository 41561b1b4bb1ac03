package engine

import (
	"net/url"
	"sync"
	"time"
)

// Route identifies a listing source as the dispatcher sees it: the host
// serving it and the selector that proves a page carries the match table.
// Two listings on one host share a route only when they are proven ready
// the same way.
type Route struct {
	Host          string
	ReadySelector string
}

// RouteOf returns the route req belongs to.
func RouteOf(req *FetchRequest) Route {
	host := req.URL
	if u, err := url.Parse(req.URL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	return Route{Host: host, ReadySelector: req.ReadySelector}
}

type routeState struct {
	winner      string
	winnerUntil time.Time

	// challenged maps an engine to the time its bot-check mark expires.
	challenged map[string]time.Time
}

func (st *routeState) prune(now time.Time) {
	if st.winner != "" && now.After(st.winnerUntil) {
		st.winner = ""
	}
	for name, until := range st.challenged {
		if now.After(until) {
			delete(st.challenged, name)
		}
	}
}

func (st *routeState) empty() bool {
	return st.winner == "" && len(st.challenged) == 0
}

// RouteMemory remembers, per route, the engine that last delivered a ready
// listing and the engines that were answered with a page lacking the match
// table. Later seasons of a run go straight to the winner and skip
// challenged engines. Marks expire after the TTL. A nil *RouteMemory
// remembers nothing.
type RouteMemory struct {
	mu     sync.Mutex
	routes map[Route]*routeState
	ttl    time.Duration
	now    func() time.Time
}

// NewRouteMemory creates a RouteMemory whose marks last ttl.
func NewRouteMemory(ttl time.Duration) *RouteMemory {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RouteMemory{
		routes: make(map[Route]*routeState),
		ttl:    ttl,
		now:    time.Now,
	}
}

// state returns the live state of r, or nil. m.mu must be held.
func (m *RouteMemory) state(r Route, create bool) *routeState {
	now := m.now()
	st, ok := m.routes[r]
	if ok {
		st.prune(now)
		if st.empty() && !create {
			delete(m.routes, r)
			return nil
		}
		return st
	}
	if !create {
		return nil
	}
	st = &routeState{challenged: make(map[string]time.Time)}
	m.routes[r] = st
	return st
}

// Winner returns the engine that last served r, or "".
func (m *RouteMemory) Winner(r Route) string {
	if m == nil {
		return ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if st := m.state(r, false); st != nil {
		return st.winner
	}
	return ""
}

// Challenged reports whether engine was recently answered on r with a page
// lacking the match table.
func (m *RouteMemory) Challenged(r Route, engine string) bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.state(r, false)
	if st == nil {
		return false
	}
	_, ok := st.challenged[engine]
	return ok
}

// RecordWin marks engine as the one serving r and clears its challenge
// mark.
func (m *RouteMemory) RecordWin(r Route, engine string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.state(r, true)
	st.winner = engine
	st.winnerUntil = m.now().Add(m.ttl)
	delete(st.challenged, engine)
}

// RecordChallenge marks engine as challenged on r. A challenged winner is
// demoted.
func (m *RouteMemory) RecordChallenge(r Route, engine string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.state(r, true)
	st.challenged[engine] = m.now().Add(m.ttl)
	if st.winner == engine {
		st.winner = ""
	}
}

// Demote forgets engine as the winner of r, if it is.
func (m *RouteMemory) Demote(r Route, engine string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if st := m.state(r, false); st != nil && st.winner == engine {
		st.winner = ""
		if st.empty() {
			delete(m.routes, r)
		}
	}
}

// Len returns the number of routes with live marks.
func (m *RouteMemory) Len() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for r, st := range m.routes {
		st.prune(now)
		if st.empty() {
			delete(m.routes, r)
		}
	}
	return len(m.routes)
}
