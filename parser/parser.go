package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ReliProjectW/bidnet-hvac-scraper/config"
	"github.com/ReliProjectW/bidnet-hvac-scraper/models"

	"github.com/PuerkitoBio/goquery"
)

// Parser extracts contract data from search results HTML
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// Result row selectors, most specific first. BidNet renders results as
// table rows with mets-table-row classes; the rest are fallbacks for
// markup drift.
var rowSelectors = []string{
	"tr.mets-table-row",
	"tr[class*='mets-table-row']",
	"tr[data-solicitation-id]",
	"tbody tr",
	"div[class*='solicitation']",
	"div[class*='opportunity']",
	"div[data-solicitation-id]",
	".search-result",
	".result-item",
}

// ParseResults extracts contract postings from a results page
func (p *Parser) ParseResults(htmlContent, searchKeyword string) ([]models.Contract, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var rows *goquery.Selection
	for _, selector := range rowSelectors {
		found := doc.Find(selector)
		// A single match is usually a header or an empty-state row
		if found.Length() > 1 {
			rows = found
			break
		}
	}

	if rows == nil {
		// Last resort: the largest table on the page, minus its header
		doc.Find("table").EachWithBreak(func(i int, table *goquery.Selection) bool {
			trs := table.Find("tr")
			if trs.Length() > 3 {
				rows = trs.Slice(1, trs.Length())
				return false
			}
			return true
		})
	}

	if rows == nil {
		return nil, nil
	}

	var contracts []models.Contract
	rows.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(contracts) >= 50 {
			return false
		}
		if contract := p.extractContract(s, searchKeyword, i); contract != nil {
			contracts = append(contracts, *contract)
		}
		return true
	})

	return contracts, nil
}

// extractContract extracts a single contract from a result row
func (p *Parser) extractContract(s *goquery.Selection, searchKeyword string, index int) *models.Contract {
	fullText := strings.TrimSpace(s.Text())
	if fullText == "" {
		return nil
	}

	contract := &models.Contract{
		ContractID:    fmt.Sprintf("%s_%d_%d", searchKeyword, index, time.Now().Unix()),
		SearchKeyword: searchKeyword,
		FullText:      truncate(fullText, 500),
	}

	contract.Title = p.extractTitle(s, searchKeyword)
	contract.Agency = p.extractAgency(s)
	contract.Location = p.extractLocation(s)
	contract.Dates = p.extractDates(s)
	contract.URL = p.extractURL(s)
	contract.EstimatedValue = p.extractValue(fullText)

	return contract
}

var titleSelectors = []string{
	"h1", "h2", "h3", "h4", "h5",
	"strong", "b",
	".title", ".name", ".description", ".project-title",
	"a[href*='solicitation']", "a[href*='opportunity']", "a[href*='bid']",
	"td:first-child",
	"[class*='title']", "[class*='name']", "[id*='title']",
}

// extractTitle tries heading/link selectors first, then falls back to
// the longest meaningful text block in the row
func (p *Parser) extractTitle(s *goquery.Selection, searchKeyword string) string {
	for _, selector := range titleSelectors {
		text := strings.TrimSpace(s.Find(selector).First().Text())
		if len(text) > 10 && !strings.EqualFold(text, searchKeyword) {
			return text
		}
	}

	var title string
	s.Find("td, div, span, p").EachWithBreak(func(i int, elem *goquery.Selection) bool {
		text := strings.TrimSpace(elem.Text())
		if len(text) > 15 && len(text) < 200 && !containsGenericText(text) {
			title = text
			return false
		}
		return true
	})
	if title != "" {
		return title
	}
	return "No title found"
}

func containsGenericText(text string) bool {
	lower := strings.ToLower(text)
	for _, generic := range []string{"search", "result", "page", "filter", "sort"} {
		if strings.Contains(lower, generic) {
			return true
		}
	}
	return false
}

var agencySelectors = []string{
	".agency", ".organization", ".client", ".issuer", ".owner",
	"[class*='agency']", "[class*='organization']", "[class*='client']",
	"td:nth-child(2)", "td:nth-child(3)",
	".entity-name", ".government-entity",
}

var agencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(city of|county of|state of|university of|school district)[\w\s]+`),
	regexp.MustCompile(`(?i)(department of|ministry of|office of)[\w\s]+`),
	regexp.MustCompile(`(?i)[\w\s]+ (county|city) of[\w\s]+`),
}

func (p *Parser) extractAgency(s *goquery.Selection) string {
	if agency := extractBySelectors(s, agencySelectors); agency != "" {
		return agency
	}
	text := s.Text()
	for _, pattern := range agencyPatterns {
		if match := pattern.FindString(text); match != "" {
			return strings.TrimSpace(match)
		}
	}
	return "Unknown agency"
}

var locationSelectors = []string{
	".location", ".address", ".city", ".state", ".region",
	"[class*='location']", "[class*='address']", "[class*='city']",
	"[data-location]", "[data-address]",
}

var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[\w\s]+,\s*(CA|California)\b`),
	regexp.MustCompile(`(?i)(los angeles|orange|san diego|san bernardino|riverside|ventura|imperial)\s+county`),
}

func (p *Parser) extractLocation(s *goquery.Selection) string {
	if location := extractBySelectors(s, locationSelectors); location != "" {
		return location
	}
	text := s.Text()
	for _, pattern := range locationPatterns {
		if match := pattern.FindString(text); match != "" {
			return strings.TrimSpace(match)
		}
	}
	return "Unknown location"
}

var dateSelectors = []string{
	".date", ".deadline", ".due-date", ".close-date", ".open-date",
	"[class*='date']", "[class*='deadline']", "[class*='due']",
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),
	regexp.MustCompile(`\d{1,2}-\d{1,2}-\d{4}`),
	regexp.MustCompile(`(?i)(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\w*\s+\d{1,2},?\s+\d{4}`),
}

// extractDates collects up to three date strings from the row,
// joined with " | "
func (p *Parser) extractDates(s *goquery.Selection) string {
	if dates := extractBySelectors(s, dateSelectors); dates != "" {
		return dates
	}
	text := s.Text()
	var found []string
	for _, pattern := range datePatterns {
		found = append(found, pattern.FindAllString(text, -1)...)
	}
	if len(found) > 3 {
		found = found[:3]
	}
	if len(found) > 0 {
		return strings.Join(found, " | ")
	}
	return "No dates found"
}

// extractURL prefers links that point at a solicitation detail page
func (p *Parser) extractURL(s *goquery.Selection) string {
	var best string
	s.Find("a[href]").EachWithBreak(func(i int, link *goquery.Selection) bool {
		href := link.AttrOr("href", "")
		if href == "" {
			return true
		}
		if best == "" {
			best = href
		}
		lower := strings.ToLower(href)
		for _, keyword := range []string{"solicitation", "opportunity", "bid", "rfp", "rfq"} {
			if strings.Contains(lower, keyword) {
				best = href
				return false
			}
		}
		return true
	})
	return ResolveURL(best)
}

// ResolveURL turns a relative portal link into an absolute one
func ResolveURL(href string) string {
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return config.BaseURL + href
	default:
		return config.BaseURL + "/" + href
	}
}

var valuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`),
	regexp.MustCompile(`(?i)value[:\s]*\$?[\d,]+`),
	regexp.MustCompile(`(?i)amount[:\s]*\$?[\d,]+`),
	regexp.MustCompile(`(?i)budget[:\s]*\$?[\d,]+`),
}

func (p *Parser) extractValue(text string) string {
	for _, pattern := range valuePatterns {
		if match := pattern.FindString(text); match != "" {
			return match
		}
	}
	return "Not specified"
}

// extractBySelectors returns the first non-empty text matched by any
// of the given selectors
func extractBySelectors(s *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(s.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
