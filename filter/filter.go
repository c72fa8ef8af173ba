package filter

import (
	"log"
	"strings"

	"github.com/ReliProjectW/bidnet-hvac-scraper/config"
	"github.com/ReliProjectW/bidnet-hvac-scraper/models"
)

// Filter keeps only HVAC-relevant contracts
type Filter struct {
	cfg *config.SearchConfig
}

// NewFilter creates a new Filter instance
func NewFilter(cfg *config.SearchConfig) *Filter {
	return &Filter{
		cfg: cfg,
	}
}

// Apply filters contracts for HVAC relevance. A contract is dropped
// when its combined text contains any negative keyword; otherwise it
// is kept if it matches a target keyword or the search keyword, and
// annotated with the number of matching target keywords.
func (f *Filter) Apply(contracts []models.Contract) []models.Contract {
	var kept []models.Contract

	for _, contract := range contracts {
		text := strings.ToLower(strings.Join([]string{
			contract.Title,
			contract.Agency,
			contract.Location,
			contract.FullText,
		}, " "))

		if negative := f.matchingNegative(text); negative != "" {
			log.Printf("Excluding %q due to keyword %q\n", truncateTitle(contract.Title), negative)
			continue
		}

		matching := f.matchingTargets(text)
		searchInContent := contract.SearchKeyword != "" &&
			strings.Contains(text, strings.ToLower(contract.SearchKeyword))

		if len(matching) == 0 && !searchInContent {
			continue
		}

		contract.RelevanceScore = len(matching)
		contract.MatchingKeywords = matching
		kept = append(kept, contract)
	}

	log.Printf("Filtered to %d HVAC-relevant contracts (from %d)\n", len(kept), len(contracts))
	return kept
}

func (f *Filter) matchingNegative(text string) string {
	for _, keyword := range f.cfg.NegativeKeywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			return keyword
		}
	}
	return ""
}

func (f *Filter) matchingTargets(text string) []string {
	var matching []string
	for _, keyword := range f.cfg.TargetKeywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			matching = append(matching, keyword)
		}
	}
	return matching
}

func truncateTitle(title string) string {
	if len(title) > 50 {
		return title[:50]
	}
	return title
}
