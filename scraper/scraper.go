package scraper

// Scraper is a result-page source for one search: Search runs the
// query, HTML returns the current page's content, Next advances to the
// following results page and reports false when there is none.
type Scraper interface {
	Search(keyword string) error
	HTML() (string, error)
	Next() (bool, error)
	Close() error
}
