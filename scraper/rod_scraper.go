package scraper

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/ReliProjectW/bidnet-hvac-scraper/auth"
	"github.com/ReliProjectW/bidnet-hvac-scraper/config"
)

// RodScraper implements the Scraper interface using rod (headless browser)
type RodScraper struct {
	browser *rod.Browser
	page    *rod.Page
	auth    *auth.Authenticator
	cfg     *config.Config
	pageNum int
}

// Selector cascades for the portal's UI. The first entries are the
// BidNet-specific ones found by page inspection; the rest cover markup
// drift.
var (
	searchFieldSelectors = []string{
		"textarea#solicitationSingleBoxSearch",
		"textarea[name='keywords']",
		"input[name*='search']",
		"input[name*='keyword']",
		"input[name*='query']",
		"textarea[placeholder*='search']",
		"input[placeholder*='search']",
		"#search",
		"#searchText",
		"#keyword",
		"input[type='search']",
	}

	searchButtonSelectors = []string{
		"button#topSearchButton",
		"button.topSearch",
		"button[type='submit']",
		"input[type='submit']",
		".search-button",
		"#searchButton",
		"button[name*='search']",
	}

	cookieBannerSelectors = []string{
		".cookie-banner button",
		"#cookie-banner button",
		"[class*='cookie'] button",
		"button[class*='cookie']",
		".cookie-banner .close",
		".cookie-banner [aria-label*='close']",
		".cookie-banner [aria-label*='dismiss']",
	}
)

func nextSelectors(nextPage int) []string {
	return []string{
		"a[rel='next']",
		"a[class*='next']",
		"a[title*='Next']",
		"a[aria-label*='Next']",
		fmt.Sprintf("a[href*='pageNumber=%d']", nextPage),
		".mets-pagination-page-icon.next",
		"a.next",
		"button[title*='Next']",
	}
}

// NewRodScraper launches a headless browser, restores any saved
// session cookies and logs in if required
func NewRodScraper(cfg *config.Config, authenticator *auth.Authenticator) (*RodScraper, error) {
	l := launcher.New().
		Headless(cfg.Browser.Headless).
		Set("disable-blink-features", "AutomationControlled").
		NoSandbox(true).
		Leakless(false).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("disable-background-networking").
		Set("mute-audio").
		Set("window-size", "1920,1080")

	// Prefer a system Chrome/Chromium over downloading one
	for _, path := range []string{
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/snap/bin/chromium",
	} {
		if _, err := os.Stat(path); err == nil {
			l = l.Bin(path)
			break
		}
	}

	browserURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	rs := &RodScraper{
		browser: browser,
		auth:    authenticator,
		cfg:     cfg,
	}

	if loaded, err := authenticator.LoadCookies(browser); err != nil {
		log.Printf("Warning: failed to load saved cookies: %v\n", err)
	} else if loaded {
		log.Println("Reusing saved session cookies")
	}

	rs.page = browser.MustPage()
	return rs, nil
}

// Login performs a fresh portal login and saves the session cookies
func (rs *RodScraper) Login() error {
	if err := rs.auth.Login(rs.page); err != nil {
		return err
	}
	return rs.auth.SaveCookies(rs.browser)
}

// Close closes the browser
func (rs *RodScraper) Close() error {
	if rs.browser != nil {
		return rs.browser.Close()
	}
	return nil
}

// Search navigates to the solicitations search page, enters the
// keyword and submits, leaving the page on the first results page
func (rs *RodScraper) Search(keyword string) error {
	log.Printf("Navigating to search page: %s\n", config.SearchURL)
	if err := rs.page.Navigate(config.SearchURL); err != nil {
		return fmt.Errorf("failed to navigate to search page: %w", err)
	}
	rs.page.WaitLoad()
	time.Sleep(3 * time.Second)

	rs.dismissCookieBanner()

	// The portal bounces expired sessions back to the credential form
	if rs.auth.IsLoginPage(rs.page) {
		if err := rs.auth.Login(rs.page); err != nil {
			return fmt.Errorf("auto-login failed on search page: %w", err)
		}
		if err := rs.auth.SaveCookies(rs.browser); err != nil {
			log.Printf("Warning: failed to save cookies: %v\n", err)
		}
		if err := rs.page.Navigate(config.SearchURL); err != nil {
			return fmt.Errorf("failed to return to search page after login: %w", err)
		}
		rs.page.WaitLoad()
		time.Sleep(3 * time.Second)
	}

	field, selector, err := rs.firstVisible(searchFieldSelectors)
	if err != nil {
		return fmt.Errorf("search field not found: %w", err)
	}
	log.Printf("Found search field with selector: %s\n", selector)

	log.Printf("Entering keyword: %s\n", keyword)
	if err := field.SelectAllText(); err != nil {
		return fmt.Errorf("failed to focus search field: %w", err)
	}
	if err := field.Input(keyword); err != nil {
		return fmt.Errorf("failed to enter search keyword: %w", err)
	}

	if button, selector, err := rs.firstVisible(searchButtonSelectors); err == nil {
		log.Printf("Found search button with selector: %s, clicking\n", selector)
		if err := button.Click("left", 1); err != nil {
			return fmt.Errorf("failed to click search button: %w", err)
		}
	} else {
		log.Println("No search button found, pressing Enter")
		if err := field.Type(input.Enter); err != nil {
			return fmt.Errorf("failed to submit search with Enter: %w", err)
		}
	}

	rs.page.WaitLoad()
	time.Sleep(5 * time.Second) // dynamic content
	rs.page.Timeout(10 * time.Second).MustWaitStable()

	rs.pageNum = 1
	return nil
}

// HTML returns the current page content
func (rs *RodScraper) HTML() (string, error) {
	html, err := rs.page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get page HTML: %w", err)
	}
	return html, nil
}

// Next clicks through to the following results page. If clicking
// fails it retries via the link's href directly. Returns false when no
// next-page control exists.
func (rs *RodScraper) Next() (bool, error) {
	next, selector, err := rs.firstVisible(nextSelectors(rs.pageNum + 1))
	if err != nil {
		return false, nil
	}
	log.Printf("Found next page button: %s\n", selector)

	rs.dismissCookieBanner()
	next.ScrollIntoView()
	time.Sleep(1 * time.Second)

	if err := next.Click("left", 1); err != nil {
		log.Printf("Click on next button failed: %v, trying direct navigation\n", err)
		href, attrErr := next.Attribute("href")
		if attrErr != nil || href == nil || *href == "" {
			return false, fmt.Errorf("failed to click next page button: %w", err)
		}
		target := *href
		if target[0] == '/' {
			target = config.BaseURL + target
		}
		if err := rs.page.Navigate(target); err != nil {
			return false, fmt.Errorf("failed to navigate to next page: %w", err)
		}
	}

	rs.page.WaitLoad()
	time.Sleep(3 * time.Second)
	rs.page.Timeout(10 * time.Second).MustWaitStable()

	rs.pageNum++
	return true, nil
}

// firstVisible returns the first visible element matching any selector
// in the cascade
func (rs *RodScraper) firstVisible(selectors []string) (*rod.Element, string, error) {
	for _, selector := range selectors {
		el, err := rs.page.Timeout(2 * time.Second).Element(selector)
		if err != nil {
			continue
		}
		if visible, err := el.Visible(); err == nil && visible {
			return el, selector, nil
		}
	}
	return nil, "", fmt.Errorf("no visible element for selectors %v", selectors)
}

// dismissCookieBanner clicks away the cookie banner when present so it
// cannot block later clicks
func (rs *RodScraper) dismissCookieBanner() {
	for _, selector := range cookieBannerSelectors {
		el, err := rs.page.Timeout(1 * time.Second).Element(selector)
		if err != nil {
			continue
		}
		if visible, err := el.Visible(); err != nil || !visible {
			continue
		}
		log.Printf("Dismissing cookie banner with selector: %s\n", selector)
		if err := el.Click("left", 1); err == nil {
			time.Sleep(1 * time.Second)
		}
		return
	}
}
