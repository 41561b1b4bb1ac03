package extract

import "regexp"

// Metric names reported by ExtractStats.
const (
	MetricExpectedGoals = "xg"
	MetricShots         = "shots"
	MetricPossession    = "possession"
)

// Pair is a home/away value pair for one metric, as source text.
type Pair struct {
	Home string
	Away string
}

type metric struct {
	name    string
	pattern *regexp.Regexp
}

// metrics lists the recognised markers. Each pattern captures the number
// immediately preceding its marker. A bare percentage is not possession:
// listing rows also print BTTS and over/under rates.
var metrics = []metric{
	{MetricExpectedGoals, regexp.MustCompile(`(\d+(?:\.\d+)?)\s*xG\b`)},
	{MetricShots, regexp.MustCompile(`(?i)(\d+)\s*shots\b`)},
	{MetricPossession, regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%\s*poss(?:ession)?\b`)},
}

// ExtractStats scans the visible text of a row for numbers tagged with a
// known metric marker.
//
// For every metric with at least two occurrences the first is taken as the
// home value and the second as the away value. Later occurrences are
// ignored and nothing checks which team a number sits next to, so a row
// that prints the away side first is silently misattributed.
func ExtractStats(text string) map[string]Pair {
	out := make(map[string]Pair)
	for _, m := range metrics {
		found := m.pattern.FindAllStringSubmatch(text, 2)
		if len(found) < 2 {
			continue
		}
		out[m.name] = Pair{Home: found[0][1], Away: found[1][1]}
	}
	return out
}
