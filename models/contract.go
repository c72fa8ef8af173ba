package models

// Contract represents a single contract posting extracted from a
// search results page
type Contract struct {
	ContractID     string
	Title          string
	Agency         string
	Location       string
	Dates          string
	EstimatedValue string
	URL            string
	SearchKeyword  string
	PageNumber     int // Results page where this contract was found

	// FullText keeps a preview of the row's text for relevance
	// scoring and debugging
	FullText string

	RelevanceScore   int
	MatchingKeywords []string
}
