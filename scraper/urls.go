package scraper

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the Botola Pro league page on FootyStats.
const DefaultBaseURL = "https://footystats.org/morocco/botola-pro"

// knownSeasons maps labels to the FootyStats season_id listing URLs. The
// ?season= form is not honoured by the site for these seasons.
var knownSeasons = map[string]string{
	"2023/2024": DefaultBaseURL + "/matches?season_id=9102",
	"2022/2023": DefaultBaseURL + "/matches?season_id=8223",
	"2021/2022": DefaultBaseURL + "/matches?season_id=7235",
}

// KnownSeason returns the built-in listing URL for label, if any.
func KnownSeason(label string) (string, bool) {
	u, ok := knownSeasons[strings.TrimSpace(label)]
	return u, ok
}

// SeasonURL returns the listing URL of a season: explicit wins, then the
// built-in season_id table when baseURL is the default league page, then
// <baseURL>/matches?season=<label>.
func SeasonURL(baseURL, label, explicit string) string {
	if explicit != "" {
		return explicit
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if baseURL == DefaultBaseURL {
		if u, ok := KnownSeason(label); ok {
			return u
		}
	}
	u := baseURL + "/matches"
	if label = strings.TrimSpace(label); label != "" {
		u += "?season=" + url.QueryEscape(label)
	}
	return u
}
