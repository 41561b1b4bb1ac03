package engine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	selectorMu    sync.Mutex
	selectorCache = map[string]cascadia.Selector{}
)

func compileSelector(sel string) (cascadia.Selector, error) {
	selectorMu.Lock()
	defer selectorMu.Unlock()
	if s, ok := selectorCache[sel]; ok {
		return s, nil
	}
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil, err
	}
	selectorCache[sel] = s
	return s, nil
}

// CheckReady returns an error unless htmlStr contains an element matching
// selector. An empty selector always passes.
func CheckReady(htmlStr, selector string) error {
	if selector == "" {
		return nil
	}
	sel, err := compileSelector(selector)
	if err != nil {
		return fmt.Errorf("ready selector %q: %w", selector, err)
	}
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}
	if sel.MatchFirst(doc) == nil {
		return fmt.Errorf("%w: no element matches %q", ErrNotReady, selector)
	}
	return nil
}
