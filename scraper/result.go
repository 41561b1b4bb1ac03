package scraper

// PageResult is a rendered listing page.
type PageResult struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string

	// LoadMoreClicks counts successful "load more" clicks.
	LoadMoreClicks int
}
