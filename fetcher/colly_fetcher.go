// Package fetcher fetches result pages over plain HTTP using a saved
// session, skipping the headless browser entirely. Only usable while
// the saved cookies are fresh.
package fetcher

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/ReliProjectW/bidnet-hvac-scraper/auth"
	"github.com/ReliProjectW/bidnet-hvac-scraper/config"
)

// CollyFetcher implements the scraper.Scraper interface over HTTP
type CollyFetcher struct {
	collector *colly.Collector
	keyword   string
	pageNum   int
	html      string
	lastHTML  string
}

// NewCollyFetcher builds a rate-limited collector carrying the saved
// session cookies
func NewCollyFetcher(cfg *config.Config, authenticator *auth.Authenticator) (*CollyFetcher, error) {
	cookies, ok, err := authenticator.HTTPCookies()
	if err != nil {
		return nil, fmt.Errorf("failed to load session cookies: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("no fresh session cookies available: run with -mode browser first to log in")
	}

	c := colly.NewCollector(
		colly.UserAgent(cfg.Browser.UserAgent),
		colly.AllowURLRevisit(),
	)

	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*bidnetdirect.com*",
		Parallelism: 1,
		Delay:       4 * time.Second,
	}); err != nil {
		return nil, fmt.Errorf("failed to configure request rate limit: %w", err)
	}

	if err := c.SetCookies(config.BaseURL, cookies); err != nil {
		return nil, fmt.Errorf("failed to set session cookies: %w", err)
	}

	c.OnError(func(r *colly.Response, err error) {
		log.Printf("Error fetching %s: %v\n", r.Request.URL, err)
	})

	cf := &CollyFetcher{collector: c}
	c.OnResponse(func(r *colly.Response) {
		cf.html = string(r.Body)
	})

	return cf, nil
}

// Close implements the Scraper interface; colly holds no resources
// that outlive the collector
func (cf *CollyFetcher) Close() error {
	cf.collector.Wait()
	return nil
}

// Search fetches the first results page for the keyword
func (cf *CollyFetcher) Search(keyword string) error {
	cf.keyword = keyword
	cf.pageNum = 1
	return cf.fetch(1)
}

// HTML returns the most recently fetched page content
func (cf *CollyFetcher) HTML() (string, error) {
	if cf.html == "" {
		return "", fmt.Errorf("no page fetched yet")
	}
	return cf.html, nil
}

// Next fetches the following results page by pageNumber parameter.
// Returns false when the portal serves the same content again, which
// is how it answers out-of-range page numbers.
func (cf *CollyFetcher) Next() (bool, error) {
	cf.lastHTML = cf.html
	if err := cf.fetch(cf.pageNum + 1); err != nil {
		return false, err
	}
	if cf.html == cf.lastHTML {
		return false, nil
	}
	cf.pageNum++
	return true, nil
}

func (cf *CollyFetcher) fetch(pageNum int) error {
	query := url.Values{}
	query.Set("keywords", cf.keyword)
	if pageNum > 1 {
		query.Set("pageNumber", fmt.Sprint(pageNum))
	}
	target := config.SearchURL + "?" + query.Encode()

	if err := cf.collector.Visit(target); err != nil {
		return fmt.Errorf("failed to fetch results page %d: %w", pageNum, err)
	}
	cf.collector.Wait()

	log.Printf("Fetched results page %d: %s\n", pageNum, target)
	return nil
}
