// Package extract drives pagination over a search's result pages,
// deduplicates the extracted contracts by URL and validates the final
// count against the total advertised by the portal.
package extract

import (
	"fmt"
	"log"

	"github.com/ReliProjectW/bidnet-hvac-scraper/models"
	"github.com/ReliProjectW/bidnet-hvac-scraper/parser"
)

// Pager supplies result pages in ascending page-number order. HTML
// returns the current page's content; Next advances to the following
// page and reports false when there is none.
type Pager interface {
	HTML() (string, error)
	Next() (bool, error)
}

// Extractor walks the result pages of a single search
type Extractor struct {
	parser         *parser.Parser
	maxPages       int
	resultsPerPage int
}

// Result holds the outcome of a pagination run
type Result struct {
	Contracts     []models.Contract
	ExpectedTotal int
	HasTotal      bool
	Pages         int
}

// CountMismatchError reports that the number of unique contracts
// extracted does not equal the total advertised by the portal
type CountMismatchError struct {
	Got, Want int
}

func (e *CountMismatchError) Error() string {
	if e.Got < e.Want {
		return fmt.Sprintf("extracted %d contracts, expected %d: may have missed some results", e.Got, e.Want)
	}
	return fmt.Sprintf("extracted %d contracts, expected %d: may have duplicates or a counting error", e.Got, e.Want)
}

// NewExtractor creates an Extractor. maxPages is a safety limit on
// pagination; resultsPerPage is the portal's page size (25 on BidNet).
func NewExtractor(p *parser.Parser, maxPages, resultsPerPage int) *Extractor {
	if maxPages <= 0 {
		maxPages = 20
	}
	if resultsPerPage <= 0 {
		resultsPerPage = 25
	}
	return &Extractor{
		parser:         p,
		maxPages:       maxPages,
		resultsPerPage: resultsPerPage,
	}
}

// Run paginates through all result pages, collecting unique contracts.
// It stops once the running count reaches the advertised total, after
// the max-pages safety limit, after two consecutive pages with no new
// contracts (only from page three onward), or when no next page exists.
func (e *Extractor) Run(pager Pager, keyword string) (*Result, error) {
	htmlContent, err := pager.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read first results page: %w", err)
	}

	res := &Result{}
	res.ExpectedTotal, res.HasTotal = e.parser.ParseExpectedTotal(htmlContent)

	expectedPages := 0
	if res.HasTotal {
		expectedPages = (res.ExpectedTotal + e.resultsPerPage - 1) / e.resultsPerPage
		log.Printf("Expected total results: %d across %d pages\n", res.ExpectedTotal, expectedPages)
	} else {
		log.Println("No results-summary total found on first page")
	}

	seenURLs := make(map[string]bool)
	emptyPages := 0

	for pageNum := 1; pageNum <= e.maxPages; pageNum++ {
		res.Pages = pageNum

		pageContracts, err := e.parser.ParseResults(htmlContent, keyword)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %d: %w", pageNum, err)
		}

		newCount, duplicates := 0, 0
		for _, contract := range pageContracts {
			if parser.IsNoResultsRow(contract.Title) {
				continue
			}
			if contract.URL == "" {
				continue
			}
			if seenURLs[contract.URL] {
				duplicates++
				continue
			}
			seenURLs[contract.URL] = true
			contract.PageNumber = pageNum
			res.Contracts = append(res.Contracts, contract)
			newCount++
		}

		if duplicates > 0 {
			log.Printf("Skipped %d duplicate contracts on page %d\n", duplicates, pageNum)
		}
		log.Printf("Found %d new contracts on page %d (total unique: %d)\n", newCount, pageNum, len(res.Contracts))

		if res.HasTotal && len(res.Contracts) >= res.ExpectedTotal {
			log.Printf("Reached expected total of %d contracts, stopping pagination\n", res.ExpectedTotal)
			break
		}

		if newCount == 0 {
			if expectedPages > 0 && pageNum >= expectedPages {
				log.Printf("Reached expected page limit of %d, stopping pagination\n", expectedPages)
				break
			}
			emptyPages++
			if emptyPages >= 2 && pageNum >= 3 {
				log.Printf("Ending pagination after %d consecutive empty pages\n", emptyPages)
				break
			}
		} else {
			emptyPages = 0
		}

		hasNext, err := pager.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to advance past page %d: %w", pageNum, err)
		}
		if !hasNext {
			log.Printf("No more pages found after page %d\n", pageNum)
			break
		}

		htmlContent, err = pager.HTML()
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", pageNum+1, err)
		}
	}

	log.Printf("Pagination complete: collected %d unique contracts from %d pages\n", len(res.Contracts), res.Pages)
	return res, nil
}

// Validate checks the extracted count against the advertised total.
// Runs without an advertised total always validate.
func (r *Result) Validate() error {
	if !r.HasTotal {
		return nil
	}
	if len(r.Contracts) != r.ExpectedTotal {
		return &CountMismatchError{Got: len(r.Contracts), Want: r.ExpectedTotal}
	}
	return nil
}
