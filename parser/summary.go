package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Patterns for the results-summary text the portal renders above the
// table, e.g. "1 - 25 of 53 results found". Tried in order; the first
// capture group is the advertised total.
var totalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)of\s+(\d+)\s+results?\s+found`),
	regexp.MustCompile(`(?i)of\s+(\d+)\s+results?`),
	regexp.MustCompile(`(?i)(\d+)\s+results?\s+found`),
	regexp.MustCompile(`(?i)(\d+)\s+total\s+results?`),
	regexp.MustCompile(`(?i)showing\s+\d+\s*-\s*\d+\s+of\s+(\d+)`),
	regexp.MustCompile(`(?i)page\s+\d+\s+of\s+\d+\s+\((\d+)\s+total\)`),
}

// ParseExpectedTotal extracts the total result count advertised by the
// page's results-summary text. The second return value is false when
// no summary text is present.
func (p *Parser) ParseExpectedTotal(htmlContent string) (int, bool) {
	for _, pattern := range totalPatterns {
		match := pattern.FindStringSubmatch(htmlContent)
		if len(match) < 2 {
			continue
		}
		total, err := strconv.Atoi(match[1])
		if err != nil || total < 0 {
			continue
		}
		return total, true
	}
	return 0, false
}

// Empty-state phrases the portal renders in place of a result row
var noResultsPhrases = []string{
	"no results",
	"no records",
	"not found",
	"nothing found",
	"no title found",
}

// IsNoResultsRow reports whether a title is the portal's empty-state
// sentinel rather than a real contract
func IsNoResultsRow(title string) bool {
	lower := strings.ToLower(strings.TrimSpace(title))
	if lower == "" {
		return true
	}
	for _, phrase := range noResultsPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
