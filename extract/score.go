package extract

import (
	"strconv"
	"strings"
)

// ParseScore splits a displayed score such as "2-1" into goal counts.
//
// The string is split on the first ASCII hyphen and both sides, trimmed,
// must be non-negative integers. Typographic dashes are not accepted, so
// "2–1" is unparseable.
func ParseScore(s string) (home, away int, ok bool) {
	left, right, found := strings.Cut(s, "-")
	if !found {
		return 0, 0, false
	}
	home, ok = parseGoals(left)
	if !ok {
		return 0, 0, false
	}
	away, ok = parseGoals(right)
	if !ok {
		return 0, 0, false
	}
	return home, away, true
}

func parseGoals(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// Atoi accepts a leading sign; goal counts never carry one.
	if s[0] == '+' || s[0] == '-' {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
